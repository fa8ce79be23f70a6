package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/gocite/internal/citation"
)

func TestNew_DisabledValidationNeedsNoBackend(t *testing.T) {
	a, err := New(context.Background(), Config{ValidationEnabled: false})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if a == nil {
		t.Fatalf("nil app")
	}
}

func TestNew_EnabledWithoutBackendFails(t *testing.T) {
	if _, err := New(context.Background(), Config{ValidationEnabled: true}); err == nil {
		t.Fatalf("expected error when validation is enabled with no backend")
	}
}

func TestValidateSources_DisabledExtractsAndRenders(t *testing.T) {
	a, err := New(context.Background(), Config{ValidationEnabled: false})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	text := "[1]: https://example.com/a – A fine source description\n"
	list, results, html, err := a.ValidateSources(context.Background(), text, nil, citation.CompanyProfile{})
	if err != nil {
		t.Fatalf("validate sources: %v", err)
	}
	if len(list) != 1 || results != nil {
		t.Fatalf("unexpected output: %v / %v", list, results)
	}
	if !strings.Contains(html, "https://example.com/a") {
		t.Fatalf("html missing citation: %s", html)
	}
}

func TestValidateSources_NoCitations(t *testing.T) {
	a, err := New(context.Background(), Config{ValidationEnabled: false})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	list, _, html, err := a.ValidateSources(context.Background(), "nothing to see here", nil, citation.CompanyProfile{})
	if err != nil {
		t.Fatalf("validate sources: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list, got %v", list)
	}
	if html != "" {
		t.Fatalf("zero citations must render empty html, got %q", html)
	}
}

func TestValidateSources_FullPassWithFixtureBackend(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/dead") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	fixture := filepath.Join(t.TempDir(), "results.json")
	body := `[{"title": "Replacement source", "url": "` + srv.URL + `/alt", "snippet": "broken widget coverage"}]`
	if err := os.WriteFile(fixture, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	a, err := New(context.Background(), Config{
		ValidationEnabled: true,
		SearchFile:        fixture,
		Timeout:           2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	text := "[1]: " + srv.URL + "/good – A reachable source about widgets\n" +
		"[2]: " + srv.URL + "/dead – A broken source about widgets\n"
	profile := citation.CompanyProfile{CompanyURL: "https://mycompany.com"}

	list, results, html, err := a.ValidateSources(context.Background(), text, nil, profile)
	if err != nil {
		t.Fatalf("validate sources: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("count not preserved: %d", len(list))
	}
	if results[0].Outcome != citation.OutcomeOriginal {
		t.Fatalf("citation 1 outcome = %v", results[0].Outcome)
	}
	if results[1].Outcome != citation.OutcomeAlternative {
		t.Fatalf("citation 2 outcome = %v", results[1].Outcome)
	}
	if list[1].URL != srv.URL+"/alt" {
		t.Fatalf("citation 2 url = %q", list[1].URL)
	}
	if !strings.Contains(html, "Replacement source") {
		t.Fatalf("html missing repaired citation: %s", html)
	}
}

func TestConfig_Normalize(t *testing.T) {
	var cfg Config
	cfg.Normalize()
	if cfg.Timeout != DefaultTimeout || cfg.MaxAttempts != DefaultMaxAttempts {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
	cfg = Config{Timeout: time.Second, MaxAttempts: 7}
	cfg.Normalize()
	if cfg.Timeout != time.Second || cfg.MaxAttempts != 7 {
		t.Fatalf("explicit values overwritten: %+v", cfg)
	}
}

func TestApplyEnvToConfig(t *testing.T) {
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("CITATION_MAX_ATTEMPTS", "5")
	t.Setenv("CITATION_TIMEOUT", "12s")

	cfg := Config{}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMModel != "env-model" {
		t.Fatalf("LLMModel = %q", cfg.LLMModel)
	}
	if cfg.MaxAttempts != 5 {
		t.Fatalf("MaxAttempts = %d", cfg.MaxAttempts)
	}
	if cfg.Timeout != 12*time.Second {
		t.Fatalf("Timeout = %v", cfg.Timeout)
	}

	// Explicit values win over env.
	cfg = Config{LLMModel: "explicit"}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMModel != "explicit" {
		t.Fatalf("env overwrote explicit value: %q", cfg.LLMModel)
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gocite.yml")
	content := `
llm:
  base: http://localhost:8081/v1
  model: file-model
validation:
  enabled: true
  maxAttempts: 4
  timeout: 10s
language: fi
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg := Config{LLMModel: "explicit-model"}
	if err := LoadConfigFile(path, &cfg); err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLMModel != "explicit-model" {
		t.Fatalf("file overwrote explicit model: %q", cfg.LLMModel)
	}
	if cfg.LLMBaseURL != "http://localhost:8081/v1" {
		t.Fatalf("base url = %q", cfg.LLMBaseURL)
	}
	if !cfg.ValidationEnabled || cfg.MaxAttempts != 4 || cfg.Timeout != 10*time.Second {
		t.Fatalf("validation section not merged: %+v", cfg)
	}
	if cfg.Language != "fi" {
		t.Fatalf("language = %q", cfg.Language)
	}
}

func TestLoadConfigFile_Missing(t *testing.T) {
	if err := LoadConfigFile("/nonexistent/gocite.yml", &Config{}); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
