package app

import "time"

// Config holds runtime configuration for the citation validation pass.
type Config struct {
	// LLM backend for AI-assisted alternative search (OpenAI-compatible).
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Optional SearxNG backend; when set it is used instead of the LLM
	// for alternative search.
	SearxURL string
	SearxKey string
	SearxUA  string

	// Optional offline fixture provider for tests and dev runs; takes
	// precedence over both network backends.
	SearchFile string

	// Validation behavior
	ValidationEnabled bool
	MaxAttempts       int
	Timeout           time.Duration
	MaxConcurrent     int
	// MinValidRatio, when > 0, turns the quality gate on. Shipped
	// default is 0 (best-effort validation).
	MinValidRatio float64

	UserAgent string
	Language  string
	Verbose   bool
}

// Defaults mirrors the values applied by Normalize for unset fields.
const (
	DefaultTimeout       = 8 * time.Second
	DefaultMaxAttempts   = 3
	DefaultMaxConcurrent = 8
	DefaultUserAgent     = "gocite/1.0 (+https://github.com/hyperifyio/gocite)"
)

// Normalize fills unset fields with defaults.
func (c *Config) Normalize() {
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = DefaultMaxConcurrent
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
}
