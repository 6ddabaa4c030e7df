package httpserver

import (
	"net/http"
	"time"

	"github.com/moovies/moovies-api/internal/domain"
	"github.com/moovies/moovies-api/internal/service"
)

type addToListRequest struct {
	TMDBID int64 `json:"tmdbId"`
}

type movieSummaryResponse struct {
	ID            int64   `json:"id"`
	TMDBID        int64   `json:"tmdbId"`
	Title         string  `json:"title"`
	PosterPath    *string `json:"posterPath,omitempty"`
	PosterURL     *string `json:"posterUrl,omitempty"`
	ReleaseDate   *string `json:"releaseDate,omitempty"`
	AverageRating float64 `json:"averageRating"`
	VoteCount     int     `json:"voteCount"`
}

type listItemResponse struct {
	ID         int64                `json:"id"`
	Movie      movieSummaryResponse `json:"movie"`
	AddedAt    time.Time            `json:"addedAt"`
	UserRating *userRatingResponse  `json:"userRating"`
}

func (s *Server) handleAddToList(list *service.ListService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.callerID(w, r)
		if !ok {
			return
		}

		var req addToListRequest
		if err := decodeJSONBody(w, r, &req); err != nil {
			s.respondDecodeError(w, err)
			return
		}
		if req.TMDBID <= 0 {
			s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "tmdbId must be positive")
			return
		}

		entry, err := list.Add(r.Context(), userID, domain.TMDBID(req.TMDBID))
		if err != nil {
			s.respondServiceError(w, err)
			return
		}
		s.respondJSON(w, http.StatusCreated, s.toListItemResponse(entry))
	}
}

func (s *Server) handleListEntries(list *service.ListService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.callerID(w, r)
		if !ok {
			return
		}

		entries, err := list.List(r.Context(), userID)
		if err != nil {
			s.respondServiceError(w, err)
			return
		}

		items := make([]listItemResponse, 0, len(entries))
		for _, entry := range entries {
			items = append(items, s.toListItemResponse(entry))
		}
		s.respondJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleRemoveFromList(list *service.ListService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := s.callerID(w, r)
		if !ok {
			return
		}
		movieID, err := pathID(r, "movieId")
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
			return
		}

		if err := list.Remove(r.Context(), userID, domain.MovieID(movieID)); err != nil {
			s.respondServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) toListItemResponse(entry domain.ListEntry) listItemResponse {
	movie := entry.Movie
	summary := movieSummaryResponse{
		ID:            int64(movie.ID),
		TMDBID:        int64(movie.TMDBID),
		Title:         movie.Title,
		PosterPath:    movie.PosterPath,
		PosterURL:     s.imageURL(movie.PosterPath, "w500"),
		AverageRating: movie.AverageRating,
		VoteCount:     movie.VoteCount,
	}
	if movie.ReleaseDate != nil {
		formatted := movie.ReleaseDate.Format("2006-01-02")
		summary.ReleaseDate = &formatted
	}

	item := listItemResponse{
		ID:      entry.ID,
		Movie:   summary,
		AddedAt: entry.AddedAt,
	}
	if entry.UserRating != nil {
		rating := toRatingResponse(*entry.UserRating)
		item.UserRating = &rating
	}
	return item
}
