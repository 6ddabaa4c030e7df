package main

import (
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
)

type movieEntry struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	OriginalTitle string       `json:"original_title"`
	Overview      string       `json:"overview"`
	PosterPath    *string      `json:"poster_path"`
	BackdropPath  *string      `json:"backdrop_path"`
	ReleaseDate   string       `json:"release_date"`
	Runtime       int          `json:"runtime"`
	Genres        []genreEntry `json:"genres"`
}

type genreEntry struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type searchPage struct {
	Page         int          `json:"page"`
	Results      []movieEntry `json:"results"`
	TotalPages   int          `json:"total_pages"`
	TotalResults int          `json:"total_results"`
}

func main() {
	var (
		port = flag.String("port", "9098", "port to listen on")
		data = flag.String("data", "mock-tmdb.json", "path to mock data file")
	)
	flag.Parse()

	file, err := os.ReadFile(*data)
	if err != nil {
		log.Fatalf("read mock data: %v", err)
	}

	var movies []movieEntry
	if err := json.Unmarshal(file, &movies); err != nil {
		log.Fatalf("parse mock data: %v", err)
	}

	byID := make(map[int64]movieEntry, len(movies))
	for _, m := range movies {
		byID[m.ID] = m
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/movie/", func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.URL.Path, "/movie/")
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		entry, ok := byID[id]
		if !ok {
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
			return
		}
		writeJSON(w, entry)
	})
	mux.HandleFunc("/search/movie", func(w http.ResponseWriter, r *http.Request) {
		query := strings.ToLower(r.URL.Query().Get("query"))
		results := make([]movieEntry, 0)
		for _, m := range movies {
			if query != "" && strings.Contains(strings.ToLower(m.Title), query) {
				results = append(results, m)
			}
		}
		writeJSON(w, searchPage{
			Page:         1,
			Results:      results,
			TotalPages:   1,
			TotalResults: len(results),
		})
	})

	addr := ":" + *port
	log.Printf("mock tmdb listening on %s (%d movies)", addr, len(movies))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

func writeJSON(w http.ResponseWriter, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
