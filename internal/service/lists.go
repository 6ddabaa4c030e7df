package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/moovies/moovies-api/internal/domain"
	"github.com/moovies/moovies-api/internal/repository"
)

// ListService manages per-user set-membership of movies for one list. The
// watch and watched lists run as two independent instances of this type and
// never interact: membership in one says nothing about the other.
type ListService struct {
	cache   *MovieCache
	ratings *RatingService
	list    *repository.ListRepository
	logger  *log.Logger
}

// NewListService constructs a membership manager over one list repository.
func NewListService(cache *MovieCache, ratings *RatingService, list *repository.ListRepository, logger *log.Logger) *ListService {
	if logger == nil {
		logger = log.Default()
	}
	return &ListService{cache: cache, ratings: ratings, list: list, logger: logger}
}

// Kind reports which list this service manages.
func (s *ListService) Kind() domain.ListKind {
	return s.list.Kind()
}

// Add resolves the catalog movie (fetching on miss) and puts it on the
// caller's list. A pair already present fails with ErrAlreadyInList and
// leaves exactly one entry.
func (s *ListService) Add(ctx context.Context, userID domain.UserID, tmdbID domain.TMDBID) (domain.ListEntry, error) {
	movie, err := s.cache.Resolve(ctx, tmdbID)
	if err != nil {
		return domain.ListEntry{}, err
	}

	id, addedAt, err := s.list.Insert(ctx, userID, movie.ID)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domain.ListEntry{}, fmt.Errorf("%w: movie %d on %s of user %d", ErrAlreadyInList, movie.ID, s.Kind(), userID)
		}
		return domain.ListEntry{}, fmt.Errorf("add to %s: %w", s.Kind(), err)
	}

	// Decorate with the caller's rating; adding to a list never creates one.
	userRating, err := s.ratings.Get(ctx, userID, movie.ID)
	if err != nil {
		return domain.ListEntry{}, err
	}

	s.logger.Printf("%s: user %d added movie %d", s.Kind(), userID, movie.ID)
	return domain.ListEntry{
		ID:         id,
		UserID:     userID,
		Movie:      movie,
		AddedAt:    addedAt,
		UserRating: userRating,
	}, nil
}

// List returns the caller's entries, each decorated with their own rating
// for the movie when one exists.
func (s *ListService) List(ctx context.Context, userID domain.UserID) ([]domain.ListEntry, error) {
	entries, err := s.list.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.Kind(), err)
	}
	return entries, nil
}

// Remove deletes a membership entry. ErrNotInList when the pair is absent.
func (s *ListService) Remove(ctx context.Context, userID domain.UserID, movieID domain.MovieID) error {
	if err := s.list.Delete(ctx, userID, movieID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("%w: movie %d on %s of user %d", ErrNotInList, movieID, s.Kind(), userID)
		}
		return fmt.Errorf("remove from %s: %w", s.Kind(), err)
	}
	s.logger.Printf("%s: user %d removed movie %d", s.Kind(), userID, movieID)
	return nil
}

// Contains reports membership without side effects.
func (s *ListService) Contains(ctx context.Context, userID domain.UserID, movieID domain.MovieID) (bool, error) {
	return s.list.Contains(ctx, userID, movieID)
}
