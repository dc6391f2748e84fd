package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientSubmit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathSubmit {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method: %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Fatalf("unexpected content type: %s", ct)
		}
		var payload SubmitRequest
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("failed to decode payload: %v", err)
		}
		if payload.Question != "dinosaurs survived" {
			t.Fatalf("unexpected question: %q", payload.Question)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response":"Scenario: A"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", server.Client())
	got, err := client.Submit(context.Background(), "dinosaurs survived")
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if got != "Scenario: A" {
		t.Fatalf("unexpected response: %q", got)
	}
}

func TestClientSubmitInvalidPayload(t *testing.T) {
	bodies := map[string]string{
		"missing field": `{"answer":"Scenario: A"}`,
		"non-text":      `{"response":42}`,
		"null":          `{"response":null}`,
		"not json":      `Scenario: A`,
	}
	for name, body := range bodies {
		body := body
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL, server.Client()).Submit(context.Background(), "q")
			if !errors.Is(err, ErrInvalidPayload) {
				t.Fatalf("expected ErrInvalidPayload, got %v", err)
			}
		})
	}
}

func TestClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"slow down"}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL, server.Client()).Submit(context.Background(), "q")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected *StatusError, got %T (%v)", err, err)
	}
	if !statusErr.RateLimited() {
		t.Fatalf("expected rate limited status, got %d", statusErr.Code)
	}
	if statusErr.Body != "slow down" {
		t.Fatalf("unexpected body: %q", statusErr.Body)
	}
}

func TestClientInspiration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathInspiration || r.Method != http.MethodGet {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"questions":[{"text":"What if cats ruled?","count":3},{"text":"What if no moon?","count":1}]}`))
	}))
	defer server.Close()

	items, err := NewClient(server.URL, server.Client()).Inspiration(context.Background())
	if err != nil {
		t.Fatalf("inspiration failed: %v", err)
	}
	if len(items) != 2 || items[0].Count != 3 || items[1].Text != "What if no moon?" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestClientBackground(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != PathBackground {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"questions":["What if A happened?"]}`))
	}))
	defer server.Close()

	items, err := NewClient(server.URL, server.Client()).Background(context.Background())
	if err != nil {
		t.Fatalf("background failed: %v", err)
	}
	if len(items) != 1 || items[0] != "What if A happened?" {
		t.Fatalf("unexpected items: %#v", items)
	}
}

func TestNewClientDefaults(t *testing.T) {
	client := NewClient("  ", nil)
	if client.Endpoint() != DefaultEndpoint {
		t.Fatalf("expected default endpoint, got %s", client.Endpoint())
	}
	if client.client.Timeout != defaultHTTPTimeout {
		t.Fatalf("expected default timeout %s, got %s", defaultHTTPTimeout, client.client.Timeout)
	}
}
