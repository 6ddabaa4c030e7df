package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, handler http.Handler) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewHTTPClient(srv.URL, "test-key", 2*time.Second, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client, srv
}

func TestHTTPClient_FetchByID(t *testing.T) {
	var gotPath, gotKey string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"id":           550,
			"title":        "Fight Club",
			"overview":     "A troubled insomniac.",
			"poster_path":  "/poster.jpg",
			"release_date": "1999-10-15",
			"runtime":      139,
			"genres":       []map[string]any{{"id": 18, "name": "Drama"}},
		})
	}))

	details, err := client.FetchByID(context.Background(), 550)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotPath != "/movie/550" {
		t.Fatalf("path = %q, want /movie/550", gotPath)
	}
	if gotKey != "test-key" {
		t.Fatalf("api_key = %q", gotKey)
	}
	if details.Title != "Fight Club" || details.Runtime != 139 {
		t.Fatalf("details = %+v", details)
	}
	if details.PosterPath == nil || *details.PosterPath != "/poster.jpg" {
		t.Fatalf("poster = %v", details.PosterPath)
	}
	if len(details.Genres) != 1 || details.Genres[0].Name != "Drama" {
		t.Fatalf("genres = %+v", details.Genres)
	}
}

func TestHTTPClient_FetchByIDNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.FetchByID(context.Background(), 42)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPClient_ServerErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.FetchByID(context.Background(), 550)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for 502, got %v", err)
	}
}

func TestHTTPClient_ConnectionRefusedIsUnavailable(t *testing.T) {
	client, srv := newTestClient(t, http.NotFoundHandler())
	srv.Close()

	_, err := client.FetchByID(context.Background(), 550)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable for refused connection, got %v", err)
	}
}

func TestHTTPClient_Search(t *testing.T) {
	var gotQuery, gotPage string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/movie" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("query")
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchPage{
			Page:         2,
			Results:      []SearchResult{{ID: 550, Title: "Fight Club"}},
			TotalPages:   3,
			TotalResults: 41,
		})
	}))

	page, err := client.Search(context.Background(), "fight", 2)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotQuery != "fight" || gotPage != "2" {
		t.Fatalf("query params = (%q, %q)", gotQuery, gotPage)
	}
	if page.TotalResults != 41 || len(page.Results) != 1 {
		t.Fatalf("page = %+v", page)
	}
	if page.Results[0].ID != 550 {
		t.Fatalf("result id = %d", page.Results[0].ID)
	}
}

func TestHTTPClient_SearchDefaultsPage(t *testing.T) {
	var gotPage string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPage = r.URL.Query().Get("page")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SearchPage{Page: 1})
	}))

	if _, err := client.Search(context.Background(), "fight", 0); err != nil {
		t.Fatalf("search: %v", err)
	}
	if gotPage != "1" {
		t.Fatalf("page param = %q, want 1", gotPage)
	}
}

func TestHTTPClient_MalformedPayload(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte("{not json"))
	}))

	_, err := client.FetchByID(context.Background(), 550)
	if err == nil {
		t.Fatalf("expected decode error")
	}
	if errors.Is(err, ErrUnavailable) || errors.Is(err, ErrNotFound) {
		t.Fatalf("decode failure must not map to a catalog sentinel: %v", err)
	}
}
