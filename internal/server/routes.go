package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"wikirace/internal/achievements"
	"wikirace/internal/bot"
	"wikirace/internal/config"
	"wikirace/internal/confirm"
	"wikirace/internal/hub"
	"wikirace/internal/progression"
	"wikirace/internal/session"
	"wikirace/internal/store"
	"wikirace/internal/wiki"
)

func Run() error {
	cfg := config.Load()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	registry := achievements.Builtin()
	if cfg.AchievementsFile != "" {
		registry = achievements.LoadFile(cfg.AchievementsFile)
	}

	engine := progression.NewEngine(st, registry)
	sess := session.New()
	generator := wiki.NewGenerator(wiki.NewMediaWiki(cfg.WikiLang), cfg.WikiRandomPages, cfg.WikiMaxAttempts)
	confirms := confirm.NewManager(cfg.ConfirmTimeout)
	eventHub := hub.NewHub()

	dispatcher := bot.NewDispatcher(sess, engine, generator, confirms, eventHub)
	go dispatcher.Run(context.Background())

	srv := &Server{
		Session:    sess,
		Engine:     engine,
		Dispatcher: dispatcher,
		Hub:        eventHub,
	}

	addr := "0.0.0.0:" + cfg.Port
	fmt.Printf("Server listening on http://localhost:%s\n", cfg.Port)
	return http.ListenAndServe(addr, srv.Routes())
}

// Routes builds the HTTP surface.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /session", s.handleSession)
	mux.HandleFunc("GET /leaderboard", s.handleLeaderboard)
	mux.HandleFunc("GET /achievements", s.handleAchievements)
	mux.HandleFunc("GET /players/{name}", s.handlePlayer)
	mux.HandleFunc("GET /players/{name}/achievements", s.handlePlayerAchievements)
	mux.HandleFunc("DELETE /players/{name}", s.handleDeletePlayer)
	mux.HandleFunc("POST /signal", s.handleSignal)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// openStore picks Postgres when a DATABASE_URL is configured, falling back to
// the JSON-file store otherwise.
func openStore(cfg config.Config) (store.PlayerStore, error) {
	if cfg.DatabaseURL != "" {
		pg, err := store.ConnectPostgres(cfg.DatabaseURL)
		if err != nil {
			log.Printf("[DB] Failed to connect: %v (falling back to file store)\n", err)
		} else {
			if err := pg.Migrate(); err != nil {
				return nil, fmt.Errorf("migrating database: %w", err)
			}
			log.Println("[DB] Database connected and migrations applied")
			return pg, nil
		}
	} else {
		log.Println("[DB] DATABASE_URL not set, using file store")
	}
	return store.NewFile(cfg.DataDir)
}
