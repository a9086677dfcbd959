package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, model string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient("sk-test", model)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.endpoint = srv.URL
	return c
}

func TestCompleteSendsJSONModeRequest(t *testing.T) {
	var got chatRequest
	c := newTestClient(t, "gpt-4o", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" {\"skills\":[\"Go\"]} "}}]}`))
	})

	out, err := c.Complete(context.Background(), "list skills")
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"skills":["Go"]}` {
		t.Fatalf("unexpected content %q", out)
	}
	if got.ResponseFormat.Type != "json_object" {
		t.Fatalf("expected json_object response format, got %q", got.ResponseFormat.Type)
	}
	if got.Temperature == nil || *got.Temperature != 0.6 {
		t.Fatalf("expected temperature 0.6, got %v", got.Temperature)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "list skills" {
		t.Fatalf("unexpected messages %+v", got.Messages)
	}
}

func TestCompleteOmitsTemperatureForGPT5(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, "gpt-5-mini", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})

	if _, err := c.Complete(context.Background(), "p"); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := raw["temperature"]; ok {
		t.Fatalf("temperature must be omitted for gpt-5 models")
	}
}

func TestCompleteReportsHTTPStatus(t *testing.T) {
	c := newTestClient(t, "gpt-4o", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	})

	_, err := c.Complete(context.Background(), "p")
	if err == nil || !strings.Contains(err.Error(), "http status 503") {
		t.Fatalf("expected http status 503 error, got %v", err)
	}
}

func TestCompleteRejectsEmptyChoices(t *testing.T) {
	c := newTestClient(t, "gpt-4o", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	})

	if _, err := c.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(" ", "gpt-4o"); err == nil {
		t.Fatal("expected error without api key")
	}
}

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		model string
		want  bool
	}{
		{model: "gpt-5", want: true},
		{model: " GPT-5o ", want: true},
		{model: "gpt-4.1", want: false},
		{model: "", want: false},
	}
	for _, tt := range tests {
		if got := isGPT5(tt.model); got != tt.want {
			t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}
