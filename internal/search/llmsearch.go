package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"github.com/hyperifyio/gocite/internal/llm"
)

// LLMSearch implements Provider on top of a chat model with web-search
// capability, speaking an OpenAI-compatible API. The model is held to a
// strict JSON contract; because models drift, the response parser accepts
// fenced code blocks and falls back to scraping bare URLs out of prose.
type LLMSearch struct {
	Client llm.Client
	Model  string
	// LanguageHint, when set, asks the model to prefer sources in that
	// language (e.g. "en", "de").
	LanguageHint string
	Verbose      bool
}

const systemMessage = "You are a web search assistant. Find real, currently existing web pages matching the query. Respond with strict JSON only, no narration: {\"results\": [{\"title\": string, \"url\": string, \"snippet\": string}]}. URLs must be complete absolute http(s) URLs of real pages, never invented, never search-engine result pages."

func (s *LLMSearch) Name() string { return "llm" }

// Search asks the model for candidate pages. A response that cannot be
// parsed as the JSON contract degrades to URL scraping rather than
// failing, because a usable candidate in prose is still a candidate.
func (s *LLMSearch) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if s.Client == nil || strings.TrimSpace(s.Model) == "" {
		return nil, errors.New("llm search not configured")
	}
	if limit <= 0 {
		limit = 5
	}
	user := buildUserPrompt(query, s.LanguageHint, limit)
	if s.Verbose {
		log.Debug().Str("stage", "altsearch").Str("model", s.Model).Int("user_len", len(user)).Msg("search prompt")
	}
	resp, err := s.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemMessage},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.1,
		N:           1,
	})
	if err != nil {
		return nil, fmt.Errorf("llm search call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no choices")
	}
	raw := strings.TrimSpace(resp.Choices[0].Message.Content)
	results := parseResults(raw)
	if len(results) > limit {
		results = results[:limit]
	}
	for i := range results {
		results[i].Source = s.Name()
	}
	return results, nil
}

func buildUserPrompt(query, lang string, limit int) string {
	var sb strings.Builder
	sb.WriteString("Query: ")
	sb.WriteString(query)
	sb.WriteString(fmt.Sprintf("\nReturn up to %d results.", limit))
	if strings.TrimSpace(lang) != "" {
		sb.WriteString("\nPrefer sources in language: ")
		sb.WriteString(lang)
	}
	return sb.String()
}

type resultEnvelope struct {
	Results []Result `json:"results"`
}

var (
	fenceRe  = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")
	rawURLRe = regexp.MustCompile(`https?://[^\s"'<>\)\]]+`)
)

// parseResults decodes the model output. Order of preference: JSON body as
// given, JSON inside a fenced block, JSON substring between the outermost
// braces, then bare URL scraping.
func parseResults(raw string) []Result {
	for _, candidate := range jsonCandidates(raw) {
		var env resultEnvelope
		if err := json.Unmarshal([]byte(candidate), &env); err == nil && len(env.Results) > 0 {
			return cleanResults(env.Results)
		}
		// Some models return a bare array.
		var arr []Result
		if err := json.Unmarshal([]byte(candidate), &arr); err == nil && len(arr) > 0 {
			return cleanResults(arr)
		}
	}
	urls := rawURLRe.FindAllString(raw, -1)
	out := make([]Result, 0, len(urls))
	seen := map[string]struct{}{}
	for _, u := range urls {
		u = strings.TrimRight(u, ".,;")
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, Result{URL: u})
	}
	return out
}

func jsonCandidates(raw string) []string {
	out := []string{raw}
	for _, m := range fenceRe.FindAllStringSubmatch(raw, -1) {
		out = append(out, strings.TrimSpace(m[1]))
	}
	if i, j := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); i >= 0 && j > i {
		out = append(out, raw[i:j+1])
	}
	if i, j := strings.Index(raw, "["), strings.LastIndex(raw, "]"); i >= 0 && j > i {
		out = append(out, raw[i:j+1])
	}
	return out
}

func cleanResults(in []Result) []Result {
	out := make([]Result, 0, len(in))
	seen := map[string]struct{}{}
	for _, r := range in {
		u := strings.TrimSpace(r.URL)
		if u == "" || !strings.HasPrefix(u, "http") {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, Result{
			Title:   strings.TrimSpace(r.Title),
			URL:     u,
			Snippet: strings.TrimSpace(r.Snippet),
		})
	}
	return out
}
