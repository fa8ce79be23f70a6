package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment
// variables. Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")
	}

	if cfg.SearxURL == "" {
		// Support both SEARX_URL and SEARXNG_URL; prefer SEARX_URL if set
		v := os.Getenv("SEARX_URL")
		if v == "" {
			v = os.Getenv("SEARXNG_URL")
		}
		cfg.SearxURL = v
	}
	if cfg.SearxKey == "" {
		v := os.Getenv("SEARX_KEY")
		if v == "" {
			v = os.Getenv("SEARXNG_KEY")
		}
		cfg.SearxKey = v
	}
	if cfg.SearchFile == "" {
		cfg.SearchFile = os.Getenv("SEARCH_FILE")
	}

	if cfg.MaxAttempts == 0 {
		if n, err := strconv.Atoi(os.Getenv("CITATION_MAX_ATTEMPTS")); err == nil && n > 0 {
			cfg.MaxAttempts = n
		}
	}
	if cfg.Timeout == 0 {
		if s := strings.TrimSpace(os.Getenv("CITATION_TIMEOUT")); s != "" {
			if d, err := time.ParseDuration(s); err == nil && d > 0 {
				cfg.Timeout = d
			}
		}
	}
	if cfg.Language == "" {
		cfg.Language = os.Getenv("CITATION_LANGUAGE")
	}
}
