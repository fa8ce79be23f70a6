package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gocite/internal/app"
	"github.com/hyperifyio/gocite/internal/citation"
)

// debugcite runs a single validation pass against a sources file and
// prints the outcome per citation. Developer tooling only; the subsystem
// itself is invoked as a library by the article pipeline.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		inputPath   string
		configPath  string
		companyURL  string
		competitors string
		language    string
		maxAttempts int
		timeout     time.Duration
		noValidate  bool
		verbose     bool
	)
	flag.StringVar(&inputPath, "input", "sources.txt", "Path to the raw sources text block")
	flag.StringVar(&configPath, "config", "", "Optional YAML config file")
	flag.StringVar(&companyURL, "company", "", "Company URL (self-citations are filtered; used for fallback)")
	flag.StringVar(&competitors, "competitors", "", "Comma-separated competitor domains to filter")
	flag.StringVar(&language, "lang", "", "Optional language hint, e.g. 'en' or 'fi'")
	flag.IntVar(&maxAttempts, "max.attempts", 0, "Alternative search attempts per citation (default 3)")
	flag.DurationVar(&timeout, "timeout", 0, "Per-request HTTP timeout (default 8s)")
	flag.BoolVar(&noValidate, "no-validate", false, "Extract and render only, skip validation")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := app.Config{
		ValidationEnabled: !noValidate,
		MaxAttempts:       maxAttempts,
		Timeout:           timeout,
		Language:          language,
		Verbose:           verbose,
	}
	if configPath != "" {
		if err := app.LoadConfigFile(configPath, &cfg); err != nil {
			log.Error().Err(err).Msg("config file")
			os.Exit(1)
		}
	}
	app.ApplyEnvToConfig(&cfg)

	raw, err := os.ReadFile(inputPath)
	if err != nil {
		log.Error().Err(err).Str("path", inputPath).Msg("read sources")
		os.Exit(1)
	}

	profile := citation.CompanyProfile{CompanyURL: companyURL, Language: language}
	for _, d := range strings.Split(competitors, ",") {
		if s := strings.TrimSpace(d); s != "" {
			profile.CompetitorDomains = append(profile.CompetitorDomains, s)
		}
	}

	ctx := context.Background()
	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("init")
		os.Exit(1)
	}

	list, results, htmlFragment, err := a.ValidateSources(ctx, string(raw), nil, profile)
	if err != nil {
		log.Error().Err(err).Msg("validation pass failed")
		os.Exit(2)
	}

	for i, c := range list {
		outcome := "extracted"
		if results != nil {
			outcome = results[i].Outcome.String()
			if len(results[i].Issues) > 0 {
				outcome += " (" + strings.Join(results[i].Issues, "; ") + ")"
			}
		}
		fmt.Printf("[%d] %s\n    %s\n    %s\n", c.Number, c.Title, c.URL, outcome)
	}
	fmt.Println()
	fmt.Println(htmlFragment)
}
