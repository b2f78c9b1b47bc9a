package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestOllamaGeneratorSuccess(t *testing.T) {
	var gotReq ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "local answer"})
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "tinymodel")
	text := g.Generate(context.Background(), "the prompt", "reviewer")
	if text != "local answer" {
		t.Fatalf("text = %q", text)
	}
	if gotReq.Model != "tinymodel" || gotReq.Prompt != "the prompt" || gotReq.Stream {
		t.Fatalf("request = %+v", gotReq)
	}
}

func TestOllamaGeneratorFallsBackOnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewOllamaGenerator(srv.URL, "")
	text := g.Generate(context.Background(), "p", "security analyst")
	if !strings.Contains(text, "As a security analyst") {
		t.Fatalf("text = %q", text)
	}
}

func TestOllamaGeneratorFallsBackWhenUnreachable(t *testing.T) {
	// Grab an address nothing is listening on.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	g := NewOllamaGenerator(addr, "")
	text := g.Generate(context.Background(), "p", "")
	if text != RuleBasedFallback("") {
		t.Fatalf("text = %q", text)
	}
}

func TestRuleBasedFallbackDefaultsRole(t *testing.T) {
	if got := RuleBasedFallback(""); !strings.Contains(got, "As a assistant") {
		t.Fatalf("got %q", got)
	}
	if got := RuleBasedFallback("planner"); !strings.Contains(got, "As a planner") {
		t.Fatalf("got %q", got)
	}
}

func TestNewOllamaGeneratorDefaults(t *testing.T) {
	g := NewOllamaGenerator("", "")
	if g.baseURL != defaultOllamaURL || g.model != defaultOllamaModel {
		t.Fatalf("defaults = %q %q", g.baseURL, g.model)
	}
}
