package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATA_DIR", "")
	t.Setenv("WIKI_LANG", "")
	t.Setenv("WIKI_RANDOM_PAGES", "")
	t.Setenv("CONFIRM_TIMEOUT", "")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "")
	}
	if cfg.DataDir != "./players" {
		t.Errorf("DataDir = %q, want %q", cfg.DataDir, "./players")
	}
	if cfg.WikiLang != "en" {
		t.Errorf("WikiLang = %q, want %q", cfg.WikiLang, "en")
	}
	if cfg.WikiRandomPages != 10 {
		t.Errorf("WikiRandomPages = %d, want %d", cfg.WikiRandomPages, 10)
	}
	if cfg.ConfirmTimeout != 30*time.Second {
		t.Errorf("ConfirmTimeout = %v, want %v", cfg.ConfirmTimeout, 30*time.Second)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("DATABASE_URL", "postgres://localhost/wikirace")
	t.Setenv("WIKI_LANG", "fr")
	t.Setenv("WIKI_MAX_ATTEMPTS", "5")
	t.Setenv("CONFIRM_TIMEOUT", "10")

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want %q", cfg.Port, "3000")
	}
	if cfg.DatabaseURL != "postgres://localhost/wikirace" {
		t.Errorf("DatabaseURL = %q, want %q", cfg.DatabaseURL, "postgres://localhost/wikirace")
	}
	if cfg.WikiLang != "fr" {
		t.Errorf("WikiLang = %q, want %q", cfg.WikiLang, "fr")
	}
	if cfg.WikiMaxAttempts != 5 {
		t.Errorf("WikiMaxAttempts = %d, want %d", cfg.WikiMaxAttempts, 5)
	}
	if cfg.ConfirmTimeout != 10*time.Second {
		t.Errorf("ConfirmTimeout = %v, want %v", cfg.ConfirmTimeout, 10*time.Second)
	}
}

func TestLoad_InvalidInt(t *testing.T) {
	t.Setenv("WIKI_RANDOM_PAGES", "abc")

	cfg := Load()

	if cfg.WikiRandomPages != 10 {
		t.Errorf("WikiRandomPages = %d, want %d (fallback)", cfg.WikiRandomPages, 10)
	}
}
