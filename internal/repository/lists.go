package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/moovies/moovies-api/internal/domain"
)

// ListRepository persists one membership list. The watch and watched lists
// share this implementation but write to independent tables.
type ListRepository struct {
	db   Querier
	kind domain.ListKind
}

// Kind reports which list this repository is bound to.
func (r *ListRepository) Kind() domain.ListKind {
	return r.kind
}

// Insert adds a (user, movie) entry. ErrDuplicate when the pair already
// exists; the unique constraint is the authority, not a prior exists-check.
func (r *ListRepository) Insert(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (int64, time.Time, error) {
	query := fmt.Sprintf(`INSERT INTO %s (user_id, movie_id) VALUES ($1,$2) RETURNING id, added_at`, r.kind)

	var id int64
	var addedAt time.Time
	if err := r.db.QueryRow(ctx, query, userID, movieID).Scan(&id, &addedAt); err != nil {
		if isUniqueViolation(err) {
			return 0, time.Time{}, ErrDuplicate
		}
		return 0, time.Time{}, err
	}
	return id, addedAt, nil
}

// Delete removes a (user, movie) entry. ErrNotFound when none exists.
func (r *ListRepository) Delete(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE user_id = $1 AND movie_id = $2`, r.kind)
	tag, err := r.db.Exec(ctx, query, userID, movieID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Contains reports whether the (user, movie) entry exists.
func (r *ListRepository) Contains(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE user_id = $1 AND movie_id = $2)`, r.kind)
	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, movieID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// ListByUser returns the user's entries newest first, each carrying the movie
// row and the user's own rating when one exists. The rating join is read-only.
func (r *ListRepository) ListByUser(ctx context.Context, userID domain.UserID) ([]domain.ListEntry, error) {
	query := fmt.Sprintf(`
        SELECT l.id, l.user_id, l.added_at,
               m.id, m.tmdb_id, m.title, m.overview, m.poster_path, m.backdrop_path,
               m.release_date, m.runtime, m.genres, m.average_rating::float8, m.vote_count,
               m.created_at, m.updated_at,
               r.id, r.rating::float8, r.created_at, r.updated_at
        FROM %s l
        JOIN movies m ON m.id = l.movie_id
        LEFT JOIN user_ratings r ON r.movie_id = l.movie_id AND r.user_id = l.user_id
        WHERE l.user_id = $1
        ORDER BY l.added_at DESC, l.id DESC
    `, r.kind)

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.ListEntry, 0)
	for rows.Next() {
		entry, err := scanListEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

func scanListEntry(row pgx.Row) (domain.ListEntry, error) {
	var (
		entry           domain.ListEntry
		ratingID        *int64
		ratingValue     *float64
		ratingCreatedAt *time.Time
		ratingUpdatedAt *time.Time
	)

	err := row.Scan(
		&entry.ID,
		&entry.UserID,
		&entry.AddedAt,
		&entry.Movie.ID,
		&entry.Movie.TMDBID,
		&entry.Movie.Title,
		&entry.Movie.Overview,
		&entry.Movie.PosterPath,
		&entry.Movie.BackdropPath,
		&entry.Movie.ReleaseDate,
		&entry.Movie.Runtime,
		&entry.Movie.Genres,
		&entry.Movie.AverageRating,
		&entry.Movie.VoteCount,
		&entry.Movie.CreatedAt,
		&entry.Movie.UpdatedAt,
		&ratingID,
		&ratingValue,
		&ratingCreatedAt,
		&ratingUpdatedAt,
	)
	if err != nil {
		return domain.ListEntry{}, err
	}

	if ratingID != nil {
		entry.UserRating = &domain.Rating{
			ID:        *ratingID,
			UserID:    entry.UserID,
			MovieID:   entry.Movie.ID,
			Value:     *ratingValue,
			CreatedAt: *ratingCreatedAt,
			UpdatedAt: *ratingUpdatedAt,
		}
	}

	return entry, nil
}
