package search

import (
	"context"
	"errors"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

type fakeChatClient struct {
	content string
	err     error
}

func (f *fakeChatClient) CreateChatCompletion(_ context.Context, _ openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

func TestLLMSearch_ParsesStrictJSON(t *testing.T) {
	s := &LLMSearch{
		Client: &fakeChatClient{content: `{"results":[{"title":"Doc","url":"https://example.com/doc","snippet":"s"}]}`},
		Model:  "test-model",
	}
	got, err := s.Search(context.Background(), "query", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://example.com/doc" {
		t.Fatalf("unexpected results: %+v", got)
	}
	if got[0].Source != "llm" {
		t.Fatalf("source = %q", got[0].Source)
	}
}

func TestLLMSearch_ParsesFencedJSON(t *testing.T) {
	content := "Here are the results:\n```json\n{\"results\":[{\"title\":\"A\",\"url\":\"https://a.com/x\"}]}\n```\nHope that helps."
	s := &LLMSearch{Client: &fakeChatClient{content: content}, Model: "m"}
	got, err := s.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://a.com/x" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestLLMSearch_FallsBackToBareURLs(t *testing.T) {
	content := "I found two pages: https://one.example/a and https://two.example/b."
	s := &LLMSearch{Client: &fakeChatClient{content: content}, Model: "m"}
	got, err := s.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 scraped URLs, got %d: %+v", len(got), got)
	}
	if got[0].URL != "https://one.example/a" || got[1].URL != "https://two.example/b" {
		t.Fatalf("unexpected URLs: %+v", got)
	}
}

func TestLLMSearch_RespectsLimit(t *testing.T) {
	content := `{"results":[{"url":"https://a.com/1"},{"url":"https://a.com/2"},{"url":"https://a.com/3"}]}`
	s := &LLMSearch{Client: &fakeChatClient{content: content}, Model: "m"}
	got, err := s.Search(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("limit not applied: %d", len(got))
	}
}

func TestLLMSearch_DropsInventedNonHTTP(t *testing.T) {
	content := `{"results":[{"url":"ftp://a.com/x"},{"url":""},{"url":"https://ok.com/y"}]}`
	s := &LLMSearch{Client: &fakeChatClient{content: content}, Model: "m"}
	got, err := s.Search(context.Background(), "q", 5)
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(got) != 1 || got[0].URL != "https://ok.com/y" {
		t.Fatalf("unexpected results: %+v", got)
	}
}

func TestLLMSearch_CallError(t *testing.T) {
	s := &LLMSearch{Client: &fakeChatClient{err: errors.New("boom")}, Model: "m"}
	if _, err := s.Search(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error from backend failure")
	}
}

func TestLLMSearch_Unconfigured(t *testing.T) {
	s := &LLMSearch{}
	if _, err := s.Search(context.Background(), "q", 5); err == nil {
		t.Fatalf("expected error when client is missing")
	}
}
