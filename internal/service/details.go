package service

import (
	"context"

	"github.com/moovies/moovies-api/internal/domain"
)

// Details is the consolidated read-only view for one (user, movie) pair.
type Details struct {
	Movie         domain.Movie
	UserRating    *domain.Rating
	OnWatchList   bool
	OnWatchedList bool
}

// DetailService composes the movie cache, rating aggregator, and both
// membership managers into one view. It reads but never creates ratings or
// memberships and triggers no aggregate recomputation.
type DetailService struct {
	cache   *MovieCache
	ratings *RatingService
	watch   *ListService
	watched *ListService
}

// NewDetailService constructs the composer.
func NewDetailService(cache *MovieCache, ratings *RatingService, watch, watched *ListService) *DetailService {
	return &DetailService{cache: cache, ratings: ratings, watch: watch, watched: watched}
}

// GetDetails resolves the movie (fetching on first sight) and assembles the
// caller's rating and list memberships at call time. Absent rating or
// membership is a normal state, not a failure.
func (s *DetailService) GetDetails(ctx context.Context, userID domain.UserID, tmdbID domain.TMDBID) (Details, error) {
	movie, err := s.cache.Resolve(ctx, tmdbID)
	if err != nil {
		return Details{}, err
	}

	userRating, err := s.ratings.Get(ctx, userID, movie.ID)
	if err != nil {
		return Details{}, err
	}

	onWatch, err := s.watch.Contains(ctx, userID, movie.ID)
	if err != nil {
		return Details{}, err
	}
	onWatched, err := s.watched.Contains(ctx, userID, movie.ID)
	if err != nil {
		return Details{}, err
	}

	return Details{
		Movie:         movie,
		UserRating:    userRating,
		OnWatchList:   onWatch,
		OnWatchedList: onWatched,
	}, nil
}
