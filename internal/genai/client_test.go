package genai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func completionBody(content string) string {
	b, _ := json.Marshal(map[string]interface{}{
		"choices": []map[string]interface{}{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(b)
}

func TestNotConfigured(t *testing.T) {
	for _, key := range []string{"", "  ", PlaceholderAPIKey} {
		c := NewClient(Config{APIKey: key})
		if c.Enabled() {
			t.Errorf("key %q should not enable the client", key)
		}
		if _, err := c.GenerateCard(context.Background(), "flame", "attack"); !errors.Is(err, ErrNotConfigured) {
			t.Errorf("key %q: err = %v, want ErrNotConfigured", key, err)
		}
	}
}

func TestGenerateCardDecodesFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		content := "```json\n{\"word\":\"flame\",\"name\":\"Flame Lance\",\"role\":\"attack\",\"type\":\"pierce\",\"baseValue\":88,\"finalValue\":88,\"hitRate\":90}\n```"
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody(content)))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", HTTPClient: srv.Client()})
	raw, err := c.GenerateCard(context.Background(), "flame", "attack")
	if err != nil {
		t.Fatalf("GenerateCard failed: %v", err)
	}
	if raw.Name != "Flame Lance" || raw.Type != "pierce" {
		t.Errorf("decoded card wrong: %+v", raw)
	}
	if raw.FinalValue == nil || *raw.FinalValue != 88 {
		t.Errorf("finalValue = %v, want 88", raw.FinalValue)
	}
	if raw.HitRate == nil || *raw.HitRate != 90 {
		t.Errorf("hitRate = %v, want 90", raw.HitRate)
	}
}

func TestGenerateCardAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", HTTPClient: srv.Client()})
	if _, err := c.GenerateCard(context.Background(), "flame", "attack"); err == nil {
		t.Fatalf("expected an error on API status 429")
	}
}

func TestGenerateCardNoJSONInCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(completionBody("sorry, I cannot help with that")))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL, APIKey: "test-key", HTTPClient: srv.Client()})
	if _, err := c.GenerateCard(context.Background(), "flame", "attack"); err == nil {
		t.Fatalf("expected an error when the completion has no JSON object")
	}
}

func TestExtractJSONObject(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"noise before {\"a\":1} noise after", `{"a":1}`},
		{"no braces here", ""},
	}
	for _, c := range cases {
		if got := extractJSONObject(c.in); got != c.want {
			t.Errorf("extractJSONObject(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
