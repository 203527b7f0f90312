package wiki

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
)

// Path is a generated navigation challenge.
type Path struct {
	Start    Page
	Target   Page
	Attempts int
}

// Generator produces random start/target article pairs with a bounded retry
// budget. Cancelling the context abandons the generation; the session's
// token check discards any result that would arrive late anyway.
type Generator struct {
	client      Client
	randomPages int
	maxAttempts int
}

func NewGenerator(client Client, randomPages, maxAttempts int) *Generator {
	if randomPages < 2 {
		randomPages = 2
	}
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Generator{
		client:      client,
		randomPages: randomPages,
		maxAttempts: maxAttempts,
	}
}

// Generate picks two random seed articles, resolves both, then walks one
// random outbound link from the second seed to land on the target. Lookup
// failures burn an attempt; an exhausted budget reports ErrGenerationFailed.
func (g *Generator) Generate(ctx context.Context) (*Path, error) {
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		path, err := g.generateOnce(ctx, attempt)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[Wiki] Generation attempt %d/%d failed: %v\n", attempt, g.maxAttempts, err)
			continue
		}
		return path, nil
	}
	return nil, fmt.Errorf("%w after %d attempts", ErrGenerationFailed, g.maxAttempts)
}

func (g *Generator) generateOnce(ctx context.Context, attempt int) (*Path, error) {
	titles, err := g.client.Random(ctx, g.randomPages)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return nil, ErrNotFound
	}

	seed1 := titles[rand.IntN(len(titles))]
	seed2 := titles[rand.IntN(len(titles))]

	var start, hub *Page
	grp, grpCtx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		p, err := g.resolve(grpCtx, seed1)
		if err != nil {
			return err
		}
		start = p
		return nil
	})
	grp.Go(func() error {
		p, err := g.resolve(grpCtx, seed2)
		if err != nil {
			return err
		}
		hub = p
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}

	target := hub
	if len(hub.Links) > 0 {
		link := hub.Links[rand.IntN(len(hub.Links))]
		candidates, err := g.client.Search(ctx, link)
		if err != nil {
			return nil, err
		}
		if len(candidates) > 0 {
			resolved, err := g.resolve(ctx, candidates[rand.IntN(len(candidates))])
			if err != nil {
				return nil, err
			}
			target = resolved
		}
	}

	return &Path{Start: *start, Target: *target, Attempts: attempt}, nil
}

// Lookup resolves a free-form title to its page, for summary display outside
// of path generation.
func (g *Generator) Lookup(ctx context.Context, title string) (*Page, error) {
	return g.resolve(ctx, title)
}

// resolve maps a free-form title to a page: search first match, with the
// disambiguation fallback of taking the first offered alternative.
func (g *Generator) resolve(ctx context.Context, title string) (*Page, error) {
	candidates, err := g.client.Search(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
	}
	page, err := g.client.Fetch(ctx, candidates[0])
	if err != nil {
		var amb *AmbiguousError
		if errors.As(err, &amb) && len(amb.Options) > 0 {
			return g.client.Fetch(ctx, amb.Options[0])
		}
		return nil, err
	}
	return page, nil
}
