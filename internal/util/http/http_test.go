package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestFetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), UserAgentName+"/") {
			t.Errorf("unexpected User-Agent %q", r.Header.Get("User-Agent"))
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("missing custom header")
		}
		_, _ = w.Write([]byte("strip"))
	}))
	defer srv.Close()

	data, err := Fetch(context.Background(), srv.URL, FetchOptions{Headers: map[string]string{"X-Test": "yes"}})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "strip" {
		t.Errorf("Fetch() = %q, want strip", data)
	}
}

func TestFetchErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	}))
	defer srv.Close()

	if _, err := Fetch(context.Background(), srv.URL+"/missing", FetchOptions{}); err == nil || !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("expected HTTP 404 error, got %v", err)
	}

	if _, err := Fetch(context.Background(), srv.URL, FetchOptions{MaxBytes: 16}); err == nil || !strings.Contains(err.Error(), "exceeds") {
		t.Errorf("expected size limit error, got %v", err)
	}
}
