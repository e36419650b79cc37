package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/doclens-labs/doclens-core/internal/core/domain"
)

func TestFetchReturnsBodyAndContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("policy text"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultConfig())
	data, contentType, err := f.Fetch(context.Background(), srv.URL+"/policy.txt")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != "policy text" {
		t.Errorf("body = %q", data)
	}
	if contentType != "text/plain" {
		t.Errorf("content type = %q, want text/plain without params", contentType)
	}
}

func TestFetchGuessesTypeFromExtension(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("%PDF-1.7"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultConfig())
	_, contentType, err := f.Fetch(context.Background(), srv.URL+"/policy.pdf")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if contentType != "application/pdf" {
		t.Errorf("content type = %q, want application/pdf", contentType)
	}
}

func TestFetchNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewHTTPFetcher(DefaultConfig())
	_, _, err := f.Fetch(context.Background(), srv.URL+"/missing.pdf")

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !strings.Contains(fetchErr.Error(), "404") {
		t.Errorf("error should carry the status: %v", fetchErr)
	}
}

func TestFetchConnectionRefused(t *testing.T) {
	f := NewHTTPFetcher(Config{Timeout: time.Second})

	_, _, err := f.Fetch(context.Background(), "http://127.0.0.1:1/doc.pdf")

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError, got %v", err)
	}
}

func TestFetchSizeLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(Config{Timeout: time.Second, MaxBytes: 1024})
	_, _, err := f.Fetch(context.Background(), srv.URL+"/big.pdf")

	var fetchErr *domain.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("expected FetchError for oversized body, got %v", err)
	}
}

func TestContentTypeFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://example.com/a/policy.pdf", "application/pdf"},
		{"https://example.com/doc.DOCX?sig=abc", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"https://example.com/page.html", "text/html"},
		{"https://example.com/noext", ""},
		{"https://example.com/archive.zip", ""},
	}
	for _, tc := range cases {
		if got := ContentTypeFromURL(tc.url); got != tc.want {
			t.Errorf("ContentTypeFromURL(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestFilenameFromURL(t *testing.T) {
	if got := FilenameFromURL("https://example.com/docs/policy.pdf?sig=x"); got != "policy.pdf" {
		t.Errorf("filename = %q", got)
	}
	if got := FilenameFromURL("https://example.com/"); got != "" {
		t.Errorf("filename = %q, want empty", got)
	}
}
