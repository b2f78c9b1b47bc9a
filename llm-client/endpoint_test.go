package llmclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestEndpointClient_ResponseField(t *testing.T) {
	var gotAuth string
	var gotReq endpointRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]string{"response": "hello"})
	}))
	defer srv.Close()

	c := NewEndpointClient()
	text, err := c.Call(context.Background(), srv.URL, "secret", "the prompt", map[string]any{"k": "v"})
	if err != nil {
		t.Fatal(err)
	}
	if text != "hello" {
		t.Fatalf("text = %q", text)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotReq.Prompt != "the prompt" || gotReq.Context["k"] != "v" {
		t.Fatalf("request = %+v", gotReq)
	}
}

func TestEndpointClient_TextField(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"text": "alt shape"})
	}))
	defer srv.Close()

	c := NewEndpointClient()
	text, err := c.Call(context.Background(), srv.URL, "", "p", nil)
	if err != nil || text != "alt shape" {
		t.Fatalf("got (%q, %v)", text, err)
	}
}

func TestEndpointClient_BareStringBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("plain answer"))
	}))
	defer srv.Close()

	c := NewEndpointClient()
	text, err := c.Call(context.Background(), srv.URL, "", "p", nil)
	if err != nil || text != "plain answer" {
		t.Fatalf("got (%q, %v)", text, err)
	}
}

func TestEndpointClient_Non2xxFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewEndpointClient()
	if _, err := c.Call(context.Background(), srv.URL, "", "p", nil); err == nil {
		t.Fatal("expected error on 503")
	}
}

func TestEndpointClient_ContextCancellation(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c := NewEndpointClient()
	if _, err := c.Call(ctx, srv.URL, "", "p", nil); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
