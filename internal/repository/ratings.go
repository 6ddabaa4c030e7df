package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/moovies/moovies-api/internal/domain"
)

// RatingsRepository provides helpers for per-user movie ratings.
type RatingsRepository struct {
	db Querier
}

// Upsert inserts or updates the (user, movie) rating and indicates whether it
// was newly created.
func (r *RatingsRepository) Upsert(ctx context.Context, userID domain.UserID, movieID domain.MovieID, value float64) (domain.Rating, bool, error) {
	const query = `
        INSERT INTO user_ratings (user_id, movie_id, rating)
        VALUES ($1,$2,$3)
        ON CONFLICT (user_id, movie_id)
        DO UPDATE SET rating = EXCLUDED.rating, updated_at = now()
        RETURNING id, user_id, movie_id, rating::float8, created_at, updated_at, (xmax = 0) AS inserted
    `

	var rating domain.Rating
	var inserted bool
	err := r.db.QueryRow(ctx, query, userID, movieID, value).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return domain.Rating{}, false, err
	}

	return rating, inserted, nil
}

// Get retrieves the rating one user gave one movie.
func (r *RatingsRepository) Get(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (domain.Rating, error) {
	const query = `
        SELECT id, user_id, movie_id, rating::float8, created_at, updated_at
        FROM user_ratings
        WHERE user_id = $1 AND movie_id = $2
    `
	var rating domain.Rating
	err := r.db.QueryRow(ctx, query, userID, movieID).Scan(
		&rating.ID,
		&rating.UserID,
		&rating.MovieID,
		&rating.Value,
		&rating.CreatedAt,
		&rating.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Rating{}, ErrNotFound
		}
		return domain.Rating{}, err
	}
	return rating, nil
}

// Delete removes the (user, movie) rating. ErrNotFound when none exists.
func (r *RatingsRepository) Delete(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_ratings WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
