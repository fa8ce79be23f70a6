package app

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig is the single-file YAML configuration schema. Nested
// sections map naturally to env variables and caller-supplied options.
type FileConfig struct {
	LLM struct {
		BaseURL string `yaml:"base"`
		Model   string `yaml:"model"`
		APIKey  string `yaml:"key"`
	} `yaml:"llm"`

	Searx struct {
		URL string `yaml:"url"`
		Key string `yaml:"key"`
		UA  string `yaml:"ua"`
	} `yaml:"searx"`

	Search struct {
		File string `yaml:"file"`
	} `yaml:"search"`

	Validation struct {
		Enabled     *bool  `yaml:"enabled"`
		MaxAttempts int    `yaml:"maxAttempts"`
		// Timeout accepts Go duration syntax, e.g. "8s".
		Timeout       string  `yaml:"timeout"`
		MaxConcurrent int     `yaml:"maxConcurrent"`
		MinValidRatio float64 `yaml:"minValidRatio"`
	} `yaml:"validation"`

	UserAgent string `yaml:"userAgent"`
	Language  string `yaml:"language"`
	Verbose   bool   `yaml:"verbose"`
}

// LoadConfigFile reads a YAML config file and merges it under cfg:
// explicit cfg values win, file values fill the gaps.
func LoadConfigFile(path string, cfg *Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	MergeFileConfig(cfg, fc)
	return nil
}

// MergeFileConfig applies file values to unset cfg fields.
func MergeFileConfig(cfg *Config, fc FileConfig) {
	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}
	if cfg.SearxURL == "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if cfg.SearxUA == "" {
		cfg.SearxUA = fc.Searx.UA
	}
	if cfg.SearchFile == "" {
		cfg.SearchFile = fc.Search.File
	}
	if fc.Validation.Enabled != nil {
		cfg.ValidationEnabled = *fc.Validation.Enabled
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = fc.Validation.MaxAttempts
	}
	if cfg.Timeout == 0 && fc.Validation.Timeout != "" {
		if d, err := time.ParseDuration(fc.Validation.Timeout); err == nil && d > 0 {
			cfg.Timeout = d
		}
	}
	if cfg.MaxConcurrent == 0 {
		cfg.MaxConcurrent = fc.Validation.MaxConcurrent
	}
	if cfg.MinValidRatio == 0 {
		cfg.MinValidRatio = fc.Validation.MinValidRatio
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = fc.UserAgent
	}
	if cfg.Language == "" {
		cfg.Language = fc.Language
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}
