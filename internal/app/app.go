package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gocite/internal/altsearch"
	"github.com/hyperifyio/gocite/internal/citation"
	"github.com/hyperifyio/gocite/internal/extract"
	"github.com/hyperifyio/gocite/internal/llm"
	"github.com/hyperifyio/gocite/internal/render"
	"github.com/hyperifyio/gocite/internal/search"
	"github.com/hyperifyio/gocite/internal/urlcheck"
	"github.com/hyperifyio/gocite/internal/validate"
)

// App wires the citation validation subsystem together: one shared HTTP
// client, one checker, one search backend, reused across articles. The
// per-article inputs (sources text, grounding hints, company profile)
// arrive per call.
type App struct {
	cfg      Config
	checker  *urlcheck.Checker
	resolver *extract.RedirectResolver
	coord    *validate.Coordinator
}

// New constructs the subsystem. It fails only when no usable search
// backend can be built while validation is enabled; everything downstream
// absorbs its own errors.
func New(ctx context.Context, cfg Config) (*App, error) {
	cfg.Normalize()

	httpClient := newHighThroughputHTTPClient()
	checker := &urlcheck.Checker{
		HTTPClient:    httpClient,
		UserAgent:     cfg.UserAgent,
		Timeout:       cfg.Timeout,
		MaxConcurrent: cfg.MaxConcurrent,
	}
	resolver := &extract.RedirectResolver{
		HTTPClient: httpClient,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
	}

	a := &App{cfg: cfg, checker: checker, resolver: resolver}

	if !cfg.ValidationEnabled {
		return a, nil
	}

	provider, err := buildProvider(ctx, cfg, httpClient)
	if err != nil {
		return nil, err
	}
	a.coord = &validate.Coordinator{
		Checker: checker,
		Finder: &altsearch.Finder{
			Provider:    provider,
			Checker:     checker,
			MaxAttempts: cfg.MaxAttempts,
		},
		MinValidRatio: cfg.MinValidRatio,
	}
	return a, nil
}

// buildProvider picks the alternative-search backend: offline fixture
// first, then SearxNG, then the LLM.
func buildProvider(ctx context.Context, cfg Config, httpClient *http.Client) (search.Provider, error) {
	switch {
	case cfg.SearchFile != "":
		return &search.FileProvider{Path: cfg.SearchFile}, nil
	case cfg.SearxURL != "":
		return &search.SearxNG{
			BaseURL:    cfg.SearxURL,
			APIKey:     cfg.SearxKey,
			HTTPClient: httpClient,
			UserAgent:  cfg.SearxUA,
			Language:   cfg.Language,
		}, nil
	case cfg.LLMModel != "":
		transportCfg := openai.DefaultConfig(cfg.LLMAPIKey)
		if cfg.LLMBaseURL != "" {
			transportCfg.BaseURL = cfg.LLMBaseURL
		}
		transportCfg.HTTPClient = httpClient
		client := &llm.OpenAIProvider{Inner: openai.NewClientWithConfig(transportCfg)}
		preflight(ctx, client)
		return &search.LLMSearch{
			Client:       client,
			Model:        cfg.LLMModel,
			LanguageHint: cfg.Language,
			Verbose:      cfg.Verbose,
		}, nil
	}
	return nil, errors.New("citation validation enabled but no search backend configured")
}

// preflight lists models as a best-effort connectivity check; warn-only,
// never fatal.
func preflight(ctx context.Context, client llm.ModelLister) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := client.ListModels(ctx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
	case len(models.Models) == 0:
		log.Warn().Msg("LLM returned zero models")
	default:
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	}
}

// ValidateSources runs the full pass for one article: extract, resolve
// redirectors, validate/repair, render. With validation disabled the
// extracted list is rendered as-is.
func (a *App) ValidateSources(ctx context.Context, sourcesText string, groundingURLs []citation.GroundingURL, profile citation.CompanyProfile) (citation.List, []citation.Result, string, error) {
	list := extract.ParseSources(sourcesText)
	if len(list) == 0 {
		log.Debug().Msg("no citations extracted")
		return citation.List{}, nil, "", nil
	}
	list = a.resolver.ResolveAll(ctx, list)

	if !a.cfg.ValidationEnabled || a.coord == nil {
		return list, nil, render.HTML(list), nil
	}

	start := time.Now()
	validated, results, err := a.coord.Validate(ctx, list, groundingURLs, profile)
	if err != nil {
		return nil, nil, "", err
	}
	log.Info().Int("citations", len(validated)).Dur("elapsed", time.Since(start)).Msg("citation validation pass complete")
	return validated, results, render.HTML(validated), nil
}
