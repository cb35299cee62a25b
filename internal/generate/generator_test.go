package generate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestStaticGeneratorAlwaysAnswers(t *testing.T) {
	g := NewStaticGenerator()

	answer, err := g.Generate(context.Background(), "any message")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer == "" {
		t.Fatal("answer must never be empty")
	}
	if answer != PlaceholderAnswer {
		t.Fatalf("answer = %q, want the fixed placeholder", answer)
	}
}

func TestOpenAIGenerator(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q, want /chat/completions", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"a real answer"}}]}`))
	}))
	defer server.Close()

	g := NewOpenAIGenerator(OpenAIConfig{
		BaseURL: server.URL,
		APIKey:  "test-key",
		Model:   "test-model",
	})

	answer, err := g.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if answer != "a real answer" {
		t.Fatalf("answer = %q", answer)
	}
}

func TestOpenAIGeneratorProviderFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer server.Close()

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	if _, err := g.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on provider failure")
	}
}

func TestOpenAIGeneratorEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	g := NewOpenAIGenerator(OpenAIConfig{BaseURL: server.URL, APIKey: "k", Model: "m"})
	if _, err := g.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error on empty choices")
	}
}
