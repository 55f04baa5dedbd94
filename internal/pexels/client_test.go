package pexels

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"deckcraft-backend/internal/config"
)

func TestCleanQuery(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"cloud computing", "cloud computing"},
		{"server racks, glowing blue, cinematic", "server racks"},
		{"  rocket   launch!!! ", "rocket launch"},
		{"办公室 meeting", "办公室 meeting"},
		{"", ""},
		{"###", ""},
		{strings.Repeat("a", 80), strings.Repeat("a", 50)},
		// 截断按字符数而非字节数，不能切坏多字节字符
		{strings.Repeat("数", 80), strings.Repeat("数", 50)},
	}

	for _, tt := range tests {
		if got := CleanQuery(tt.input); !utf8.ValidString(got) {
			t.Errorf("CleanQuery(%q) produced invalid UTF-8: %q", tt.input, got)
		}
	}

	for _, tt := range tests {
		if got := CleanQuery(tt.input); got != tt.want {
			t.Errorf("CleanQuery(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func newTestClient(baseURL string) *Client {
	return NewClient(config.PexelsConfig{
		APIKey:  "test-key",
		BaseURL: baseURL,
		Timeout: 5 * time.Second,
	})
}

func TestSearchSuccess(t *testing.T) {
	photoBytes := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x01, 0x02}

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/search"):
			if r.Header.Get("Authorization") != "test-key" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if q := r.URL.Query().Get("query"); q != "mountain sunrise" {
				t.Errorf("query = %q", q)
			}
			fmt.Fprintf(w, `{"photos": [{"photographer": "Ana", "url": "https://example.com/p/1", "src": {"medium": %q}}]}`,
				server.URL+"/photo.jpg")
		case r.URL.Path == "/photo.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write(photoBytes)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	img, err := client.Search(context.Background(), "mountain sunrise, dramatic light")
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if !strings.HasPrefix(img.Data, "data:image/jpeg;base64,") {
		t.Errorf("Data = %q, want jpeg data URI", img.Data)
	}
	if img.Attribution == nil || img.Attribution.Photographer != "Ana" {
		t.Errorf("attribution = %+v", img.Attribution)
	}
	if img.Attribution.SourceURL != "https://example.com/p/1" {
		t.Errorf("source url = %q", img.Attribution.SourceURL)
	}
}

func TestSearchNoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"photos": []}`)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.Search(context.Background(), "nothing"); err == nil {
		t.Fatal("expected error for empty result set")
	}
}

func TestSearchHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestSearchDisabledClient(t *testing.T) {
	client := NewClient(config.PexelsConfig{BaseURL: "https://api.pexels.com/v1", Timeout: time.Second})

	if client.Enabled() {
		t.Fatal("client without API key should be disabled")
	}
	if _, err := client.Search(context.Background(), "anything"); err == nil {
		t.Fatal("expected error from disabled client")
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	client := newTestClient("https://api.pexels.com/v1")

	if _, err := client.Search(context.Background(), "!!! ,rest"); err == nil {
		t.Fatal("expected error for query that cleans to empty")
	}
}
