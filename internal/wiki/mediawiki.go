package wiki

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// MediaWiki is a Client backed by the MediaWiki web API.
type MediaWiki struct {
	endpoint string
	http     *http.Client
}

// NewMediaWiki returns a client for the given language edition, e.g. "en" or
// "fr".
func NewMediaWiki(lang string) *MediaWiki {
	return &MediaWiki{
		endpoint: fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang),
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// NewMediaWikiEndpoint returns a client for an explicit API endpoint. Used by
// tests and self-hosted wikis.
func NewMediaWikiEndpoint(endpoint string) *MediaWiki {
	return &MediaWiki{
		endpoint: endpoint,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

type apiResponse struct {
	Query struct {
		Random []struct {
			Title string `json:"title"`
		} `json:"random"`
		Search []struct {
			Title string `json:"title"`
		} `json:"search"`
		Pages map[string]struct {
			Title     string    `json:"title"`
			Missing   *struct{} `json:"missing,omitempty"`
			FullURL   string    `json:"fullurl"`
			Extract   string    `json:"extract"`
			PageProps struct {
				Disambiguation *string `json:"disambiguation"`
			} `json:"pageprops"`
			Links []struct {
				Title string `json:"title"`
			} `json:"links"`
		} `json:"pages"`
	} `json:"query"`
}

func (m *MediaWiki) call(ctx context.Context, params url.Values) (*apiResponse, error) {
	params.Set("format", "json")
	params.Set("action", "query")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building wiki request: %w", err)
	}
	resp, err := m.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling wiki api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wiki api status %d", resp.StatusCode)
	}
	var out apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decoding wiki response: %w", err)
	}
	return &out, nil
}

func (m *MediaWiki) Random(ctx context.Context, n int) ([]string, error) {
	params := url.Values{}
	params.Set("list", "random")
	params.Set("rnnamespace", "0")
	params.Set("rnlimit", fmt.Sprint(n))

	out, err := m.call(ctx, params)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(out.Query.Random))
	for _, r := range out.Query.Random {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

func (m *MediaWiki) Search(ctx context.Context, query string) ([]string, error) {
	params := url.Values{}
	params.Set("list", "search")
	params.Set("srsearch", query)
	params.Set("srlimit", "10")

	out, err := m.call(ctx, params)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(out.Query.Search))
	for _, r := range out.Query.Search {
		titles = append(titles, r.Title)
	}
	return titles, nil
}

func (m *MediaWiki) Fetch(ctx context.Context, title string) (*Page, error) {
	params := url.Values{}
	params.Set("titles", title)
	params.Set("prop", "extracts|links|info|pageprops")
	params.Set("inprop", "url")
	params.Set("exintro", "1")
	params.Set("explaintext", "1")
	params.Set("exsentences", "2")
	params.Set("plnamespace", "0")
	params.Set("pllimit", "max")
	params.Set("redirects", "1")

	out, err := m.call(ctx, params)
	if err != nil {
		return nil, err
	}
	for _, p := range out.Query.Pages {
		if p.Missing != nil {
			return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
		}
		links := make([]string, 0, len(p.Links))
		for _, l := range p.Links {
			links = append(links, l.Title)
		}
		if p.PageProps.Disambiguation != nil {
			return nil, &AmbiguousError{Title: p.Title, Options: links}
		}
		return &Page{
			Title:   p.Title,
			URL:     p.FullURL,
			Summary: p.Extract,
			Links:   links,
		}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, title)
}
