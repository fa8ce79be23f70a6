package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
)

// openai-stub is a minimal OpenAI-compatible server for offline runs of
// debugcite: it answers /v1/models and returns a canned alternative-search
// result set from /v1/chat/completions.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func main() {
	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":8081"
	}
	resultURL := os.Getenv("RESULT_URL")
	if strings.TrimSpace(resultURL) == "" {
		resultURL = "https://www.rfc-editor.org/rfc/rfc9110"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"id": model, "object": "model"}},
		})
	})
	mux.HandleFunc("/v1/chat/completions", func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		query := ""
		if len(req.Messages) > 0 {
			query = req.Messages[len(req.Messages)-1].Content
		}
		payload := map[string]any{
			"results": []map[string]any{
				{
					"title":   "Stub result for: " + firstLine(query),
					"url":     resultURL,
					"snippet": "Canned search hit from openai-stub.",
				},
			},
		}
		content, _ := json.Marshal(payload)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "stub",
			"object": "chat.completion",
			"model":  model,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message": map[string]any{
						"role":    "assistant",
						"content": string(content),
					},
				},
			},
		})
	})

	log.Printf("openai-stub listening on %s (model=%s)", addr, model)
	log.Fatal(http.ListenAndServe(addr, mux))
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 80 {
		s = s[:80]
	}
	return s
}
