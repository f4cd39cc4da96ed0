package ai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/carlosalbertoleide52-netizen/vitrine-sz/internal/config"
)

func TestParseSuggestionCleanJSON(t *testing.T) {
	result := ParseSuggestion(`{"name": "Vestido Floral", "description": "Vestido leve de verão", "suggestedPrice": 89.9}`)

	if result.Kind != KindOK {
		t.Fatalf("kind = %v, want KindOK (err: %v)", result.Kind, result.Err)
	}
	if result.Suggestion.Name != "Vestido Floral" {
		t.Errorf("name = %q", result.Suggestion.Name)
	}
	if result.Suggestion.SuggestedPrice != 89.9 {
		t.Errorf("price = %v, want 89.9", result.Suggestion.SuggestedPrice)
	}
}

func TestParseSuggestionMarkdownFencesAndPortugueseKeys(t *testing.T) {
	text := "```json\n{\"nome\": \"Bolsa Couro\", \"preco\": \"149,90\", \"descricao\": \"Bolsa de couro legítimo\"}\n```"
	result := ParseSuggestion(text)

	if result.Kind != KindOK {
		t.Fatalf("kind = %v, want KindOK (err: %v)", result.Kind, result.Err)
	}
	if result.Suggestion.Name != "Bolsa Couro" {
		t.Errorf("name = %q", result.Suggestion.Name)
	}
	if result.Suggestion.SuggestedPrice != 149.90 {
		t.Errorf("price = %v, want 149.90", result.Suggestion.SuggestedPrice)
	}
	if result.Suggestion.Description != "Bolsa de couro legítimo" {
		t.Errorf("description = %q", result.Suggestion.Description)
	}
}

func TestParseSuggestionMalformedDegrades(t *testing.T) {
	tests := []string{
		"não consegui analisar a imagem",
		"{}",
		`{"irrelevante": true}`,
		"",
	}
	for _, text := range tests {
		result := ParseSuggestion(text)
		if result.Kind != KindDegraded {
			t.Errorf("ParseSuggestion(%q) kind = %v, want KindDegraded", text, result.Kind)
		}
		if result.Err == nil {
			t.Errorf("ParseSuggestion(%q) expected a cause", text)
		}
	}
}

func TestAnalyzeProductPhotoServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := NewGeminiClient(&config.AIConfig{Endpoint: srv.URL, APIKey: "k", Model: "m"}, zap.NewNop())
	result := client.AnalyzeProductPhoto(context.Background(), []byte{0xFF, 0xD8}, "image/jpeg")

	if result.Kind != KindFailed {
		t.Fatalf("kind = %v, want KindFailed", result.Kind)
	}
}

func TestAnalyzeProductPhotoOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"name\":\"Tênis Runner\",\"price\":199.9,\"description\":\"Tênis esportivo\"}"}]}}]}`))
	}))
	defer srv.Close()

	client := NewGeminiClient(&config.AIConfig{Endpoint: srv.URL, APIKey: "k", Model: "m"}, zap.NewNop())
	result := client.AnalyzeProductPhoto(context.Background(), []byte{0xFF, 0xD8}, "")

	if result.Kind != KindOK {
		t.Fatalf("kind = %v, want KindOK (err: %v)", result.Kind, result.Err)
	}
	if result.Suggestion.Name != "Tênis Runner" || result.Suggestion.SuggestedPrice != 199.9 {
		t.Fatalf("unexpected suggestion: %+v", result.Suggestion)
	}
}
