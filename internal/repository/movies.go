package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/moovies/moovies-api/internal/domain"
)

// MoviesRepository provides persistence helpers for cached catalog movies.
type MoviesRepository struct {
	db Querier
}

const movieColumns = `
    id,
    tmdb_id,
    title,
    overview,
    poster_path,
    backdrop_path,
    release_date,
    runtime,
    genres,
    average_rating::float8,
    vote_count,
    created_at,
    updated_at
`

// MovieCreateParams bundles the catalog fields stored on first resolution.
// Aggregate fields are deliberately absent: a new row always starts at
// average_rating 0.00 / vote_count 0 via the table defaults.
type MovieCreateParams struct {
	TMDBID       domain.TMDBID
	Title        string
	Overview     *string
	PosterPath   *string
	BackdropPath *string
	ReleaseDate  *time.Time
	Runtime      *int
	Genres       *string
}

// Insert stores a newly fetched catalog movie and returns the stored row.
// A concurrent insert for the same tmdb_id surfaces as ErrDuplicate; the
// caller re-reads the winning row.
func (r *MoviesRepository) Insert(ctx context.Context, params MovieCreateParams) (domain.Movie, error) {
	query := fmt.Sprintf(`
        INSERT INTO movies (tmdb_id, title, overview, poster_path, backdrop_path, release_date, runtime, genres)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING %s
    `, movieColumns)

	row := r.db.QueryRow(ctx, query,
		params.TMDBID, params.Title, params.Overview, params.PosterPath,
		params.BackdropPath, params.ReleaseDate, params.Runtime, params.Genres)
	movie, err := scanMovie(row)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.Movie{}, ErrDuplicate
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// GetByTMDBID fetches a cached movie by its catalog identifier.
func (r *MoviesRepository) GetByTMDBID(ctx context.Context, tmdbID domain.TMDBID) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE tmdb_id = $1`, movieColumns)
	movie, err := scanMovie(r.db.QueryRow(ctx, query, tmdbID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// GetByID fetches a cached movie by internal identifier.
func (r *MoviesRepository) GetByID(ctx context.Context, id domain.MovieID) (domain.Movie, error) {
	query := fmt.Sprintf(`SELECT %s FROM movies WHERE id = $1`, movieColumns)
	movie, err := scanMovie(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Movie{}, ErrNotFound
		}
		return domain.Movie{}, err
	}
	return movie, nil
}

// CountByTMDBID reports how many rows exist for a catalog id. The unique
// constraint keeps this at most 1; tests use it to assert resolve idempotence.
func (r *MoviesRepository) CountByTMDBID(ctx context.Context, tmdbID domain.TMDBID) (int, error) {
	var count int
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies WHERE tmdb_id = $1`, tmdbID).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// RecomputeAggregate re-derives average_rating and vote_count from the full
// user_ratings set for the movie. Runs inside the same transaction as the
// rating mutation; the aggregate is never patched incrementally.
func (r *MoviesRepository) RecomputeAggregate(ctx context.Context, id domain.MovieID) (domain.Aggregate, error) {
	const query = `
        UPDATE movies
        SET average_rating = COALESCE((SELECT ROUND(AVG(rating), 2) FROM user_ratings WHERE movie_id = $1), 0),
            vote_count = (SELECT COUNT(*) FROM user_ratings WHERE movie_id = $1),
            updated_at = now()
        WHERE id = $1
        RETURNING average_rating::float8, vote_count
    `

	var agg domain.Aggregate
	err := r.db.QueryRow(ctx, query, id).Scan(&agg.Average, &agg.Count)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Aggregate{}, ErrNotFound
		}
		return domain.Aggregate{}, fmt.Errorf("recompute aggregate: %w", err)
	}
	return agg, nil
}

func scanMovie(row pgx.Row) (domain.Movie, error) {
	var movie domain.Movie
	err := row.Scan(
		&movie.ID,
		&movie.TMDBID,
		&movie.Title,
		&movie.Overview,
		&movie.PosterPath,
		&movie.BackdropPath,
		&movie.ReleaseDate,
		&movie.Runtime,
		&movie.Genres,
		&movie.AverageRating,
		&movie.VoteCount,
		&movie.CreatedAt,
		&movie.UpdatedAt,
	)
	if err != nil {
		return domain.Movie{}, err
	}
	return movie, nil
}
