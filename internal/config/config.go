package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port             string
	DatabaseURL      string
	DataDir          string
	WikiLang         string
	WikiRandomPages  int
	WikiMaxAttempts  int
	ConfirmTimeout   time.Duration
	AchievementsFile string
}

func Load() Config {
	cfg := Config{
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		DataDir:          getEnv("DATA_DIR", "./players"),
		WikiLang:         getEnv("WIKI_LANG", "en"),
		WikiRandomPages:  getEnvInt("WIKI_RANDOM_PAGES", 10),
		WikiMaxAttempts:  getEnvInt("WIKI_MAX_ATTEMPTS", 10),
		ConfirmTimeout:   time.Duration(getEnvInt("CONFIRM_TIMEOUT", 30)) * time.Second,
		AchievementsFile: os.Getenv("ACHIEVEMENTS_FILE"),
	}
	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
