package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/starford/ansuz/internal/apperr"
)

func TestComplete_SendsRequestAndParsesCitations(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer geheim" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"sonar-pro","choices":[{"message":{"role":"assistant","content":"  Antwort  "}}],"citations":["https://a.example"]}`))
	}))
	defer srv.Close()

	c := New(Config{Name: "search", APIKey: "geheim", BaseURL: srv.URL + "/", Model: DefaultSearch})
	out, err := c.Complete(context.Background(), Request{
		Messages:    []Message{System("sys"), User("frage")},
		Temperature: Temperature(0.2),
		MaxTokens:   100,
		JSON:        true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out.Content != "Antwort" || out.Model != "sonar-pro" {
		t.Errorf("completion = %+v", out)
	}
	if diff := cmp.Diff([]string{"https://a.example"}, out.Citations); diff != "" {
		t.Errorf("citations (-want +got):\n%s", diff)
	}
	if got.Model != DefaultSearch || got.MaxTokens != 100 || got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("request = %+v", got)
	}
	if got.Temperature == nil || *got.Temperature != 0.2 {
		t.Errorf("temperature = %v", got.Temperature)
	}
}

func TestComplete_MissingKey(t *testing.T) {
	c := New(Config{Name: "reasoning", BaseURL: "http://127.0.0.1:1"})
	if _, err := c.Complete(context.Background(), Request{}); !errors.Is(err, apperr.ErrProviderAuth) {
		t.Errorf("err = %v, want ErrProviderAuth", err)
	}
}

func TestComplete_StatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, apperr.ErrProviderAuth},
		{http.StatusForbidden, apperr.ErrProviderAuth},
		{http.StatusTooManyRequests, apperr.ErrProvider},
		{http.StatusInternalServerError, apperr.ErrProvider},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope"}}`))
		}))
		c := New(Config{Name: "x", APIKey: "k", BaseURL: srv.URL})
		_, err := c.Complete(context.Background(), Request{})
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: err = %v, want %v", tc.status, err, tc.want)
		}
		srv.Close()
	}
}

func TestComplete_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`kein json`))
	}))
	defer srv.Close()
	c := New(Config{Name: "x", APIKey: "k", BaseURL: srv.URL, Model: "m"})
	if _, err := c.Complete(context.Background(), Request{}); !errors.Is(err, apperr.ErrProvider) {
		t.Errorf("err = %v, want ErrProvider", err)
	}
}
