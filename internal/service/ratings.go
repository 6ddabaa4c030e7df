package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/moovies/moovies-api/internal/domain"
	"github.com/moovies/moovies-api/internal/repository"
)

// RatingService owns each (user, movie) rating and keeps the movie's derived
// average/vote-count consistent with the stored rating set. Every mutation
// and its aggregate recomputation share one transaction.
type RatingService struct {
	cache  *MovieCache
	repo   *repository.Repository
	logger *log.Logger
}

// NewRatingService constructs the rating aggregator.
func NewRatingService(cache *MovieCache, repo *repository.Repository, logger *log.Logger) *RatingService {
	if logger == nil {
		logger = log.Default()
	}
	return &RatingService{cache: cache, repo: repo, logger: logger}
}

// Rate records or replaces the caller's rating for a catalog movie, resolving
// the movie first (which may fetch it). The value must lie in [0.25, 5.00] on
// a 0.25 step; anything else is rejected before any I/O.
func (s *RatingService) Rate(ctx context.Context, userID domain.UserID, tmdbID domain.TMDBID, value float64) (domain.Rating, error) {
	if !domain.ValidRatingValue(value) {
		return domain.Rating{}, fmt.Errorf("%w: rating %v must be in [0.25, 5.00] with 0.25 step", ErrValidation, value)
	}

	movie, err := s.cache.Resolve(ctx, tmdbID)
	if err != nil {
		return domain.Rating{}, err
	}

	var rating domain.Rating
	err = s.repo.InTx(ctx, func(tx *repository.Repository) error {
		var inserted bool
		rating, inserted, err = tx.Ratings.Upsert(ctx, userID, movie.ID, value)
		if err != nil {
			return fmt.Errorf("upsert rating: %w", err)
		}

		agg, err := tx.Movies.RecomputeAggregate(ctx, movie.ID)
		if err != nil {
			return err
		}

		if inserted {
			s.logger.Printf("ratings: user %d rated movie %d: %.2f (avg %.2f, %d votes)",
				userID, movie.ID, value, agg.Average, agg.Count)
		} else {
			s.logger.Printf("ratings: user %d re-rated movie %d: %.2f (avg %.2f, %d votes)",
				userID, movie.ID, value, agg.Average, agg.Count)
		}
		return nil
	})
	if err != nil {
		return domain.Rating{}, err
	}

	return rating, nil
}

// Get returns the caller's rating for a movie, or nil when none exists.
// Absence is a normal state here, not a failure.
func (s *RatingService) Get(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (*domain.Rating, error) {
	rating, err := s.repo.Ratings.Get(ctx, userID, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

// Delete removes the caller's rating and recomputes the aggregate in the same
// transaction. With the last rating gone the movie returns to the explicit
// zero state (average 0.00, count 0).
func (s *RatingService) Delete(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	return s.repo.InTx(ctx, func(tx *repository.Repository) error {
		if err := tx.Ratings.Delete(ctx, userID, movieID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%w: user %d, movie %d", ErrRatingNotFound, userID, movieID)
			}
			return fmt.Errorf("delete rating: %w", err)
		}

		agg, err := tx.Movies.RecomputeAggregate(ctx, movieID)
		if err != nil {
			return err
		}
		s.logger.Printf("ratings: user %d removed rating for movie %d (avg %.2f, %d votes)",
			userID, movieID, agg.Average, agg.Count)
		return nil
	})
}
