package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/moovies/moovies-api/internal/domain"
	"github.com/moovies/moovies-api/internal/repository"
	"github.com/moovies/moovies-api/internal/tmdb"
)

// MovieCache owns the authoritative local copy of catalog movies, keyed by
// tmdb_id. Reads check the store first and fall back to the catalog on miss;
// the fetched record is persisted before being returned.
type MovieCache struct {
	repo    *repository.Repository
	catalog tmdb.Client
	timeout time.Duration
	logger  *log.Logger
}

// NewMovieCache constructs the cache-aside resolver over the given catalog client.
func NewMovieCache(repo *repository.Repository, catalog tmdb.Client, timeout time.Duration, logger *log.Logger) *MovieCache {
	if logger == nil {
		logger = log.Default()
	}
	return &MovieCache{repo: repo, catalog: catalog, timeout: timeout, logger: logger}
}

// Resolve returns the cached movie for a catalog id, fetching and persisting
// it on miss. Two concurrent first-resolutions may both fetch; the unique
// constraint on tmdb_id decides the winner and the loser re-reads the
// existing row instead of failing.
func (c *MovieCache) Resolve(ctx context.Context, tmdbID domain.TMDBID) (domain.Movie, error) {
	movie, err := c.repo.Movies.GetByTMDBID(ctx, tmdbID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.Movie{}, fmt.Errorf("lookup movie %d: %w", tmdbID, err)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	details, err := c.catalog.FetchByID(fetchCtx, int64(tmdbID))
	if err != nil {
		switch {
		case errors.Is(err, tmdb.ErrNotFound):
			return domain.Movie{}, fmt.Errorf("%w: tmdb id %d", ErrCatalogItemNotFound, tmdbID)
		case errors.Is(err, tmdb.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
			return domain.Movie{}, fmt.Errorf("%w: tmdb id %d: %v", ErrCatalogUnavailable, tmdbID, err)
		default:
			return domain.Movie{}, fmt.Errorf("fetch movie %d: %w", tmdbID, err)
		}
	}

	created, err := c.repo.Movies.Insert(ctx, movieCreateParams(tmdbID, details))
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the first-insert race; the winning row is authoritative.
			c.logger.Printf("cache: concurrent insert for tmdb id %d, re-reading", tmdbID)
			return c.repo.Movies.GetByTMDBID(ctx, tmdbID)
		}
		return domain.Movie{}, fmt.Errorf("cache movie %d: %w", tmdbID, err)
	}

	c.logger.Printf("cache: stored movie %q (tmdb id %d)", created.Title, tmdbID)
	return created, nil
}

// Search passes a text query through to the catalog. Results are not cached
// and produce no local side effects.
func (c *MovieCache) Search(ctx context.Context, query string, page int) (*tmdb.SearchPage, error) {
	searchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.catalog.Search(searchCtx, query, page)
	if err != nil {
		if errors.Is(err, tmdb.ErrUnavailable) || errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: search %q: %v", ErrCatalogUnavailable, query, err)
		}
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return result, nil
}

// movieCreateParams maps a catalog record to a new cache row. Enrichment
// fields degrade to absent rather than failing the resolution: an
// unparseable release date, a zero runtime, and an empty genre list are all
// stored as NULL.
func movieCreateParams(tmdbID domain.TMDBID, details *tmdb.MovieDetails) repository.MovieCreateParams {
	params := repository.MovieCreateParams{
		TMDBID:       tmdbID,
		Title:        details.Title,
		Overview:     optionalString(details.Overview),
		PosterPath:   details.PosterPath,
		BackdropPath: details.BackdropPath,
	}

	if details.ReleaseDate != "" {
		if parsed, err := time.Parse("2006-01-02", details.ReleaseDate); err == nil {
			params.ReleaseDate = &parsed
		}
	}
	if details.Runtime > 0 {
		runtime := details.Runtime
		params.Runtime = &runtime
	}
	if len(details.Genres) > 0 {
		names := make([]string, 0, len(details.Genres))
		for _, genre := range details.Genres {
			names = append(names, genre.Name)
		}
		joined := strings.Join(names, ",")
		params.Genres = &joined
	}

	return params
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
