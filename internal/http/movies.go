package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moovies/moovies-api/internal/domain"
	"github.com/moovies/moovies-api/internal/service"
)

const maxRequestBody = 1 << 20 // 1 MiB

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type rateMovieRequest struct {
	TMDBID int64   `json:"tmdbId"`
	Rating float64 `json:"rating"`
}

type userRatingResponse struct {
	ID        int64     `json:"id"`
	Rating    float64   `json:"rating"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type movieDetailsResponse struct {
	ID            int64               `json:"id"`
	TMDBID        int64               `json:"tmdbId"`
	Title         string              `json:"title"`
	Overview      *string             `json:"overview,omitempty"`
	PosterPath    *string             `json:"posterPath,omitempty"`
	BackdropPath  *string             `json:"backdropPath,omitempty"`
	PosterURL     *string             `json:"posterUrl,omitempty"`
	BackdropURL   *string             `json:"backdropUrl,omitempty"`
	ReleaseDate   *string             `json:"releaseDate,omitempty"`
	Runtime       *int                `json:"runtime,omitempty"`
	Genres        *string             `json:"genres,omitempty"`
	AverageRating float64             `json:"averageRating"`
	VoteCount     int                 `json:"voteCount"`
	UserRating    *userRatingResponse `json:"userRating"`
	OnWatchList   bool                `json:"onWatchList"`
	OnWatchedList bool                `json:"onWatchedList"`
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "query parameter is required")
		return
	}

	page := 1
	if val := strings.TrimSpace(r.URL.Query().Get("page")); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil || parsed <= 0 {
			s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid page value")
			return
		}
		page = parsed
	}

	result, err := s.svcs.Movies.Search(r.Context(), query, page)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetMovieDetails(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	tmdbID, err := pathID(r, "tmdbId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	details, err := s.svcs.Details.GetDetails(r.Context(), userID, domain.TMDBID(tmdbID))
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, s.toDetailsResponse(details))
}

func (s *Server) handleRateMovie(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}

	var req rateMovieRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if req.TMDBID <= 0 {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "tmdbId must be positive")
		return
	}

	rating, err := s.svcs.Ratings.Rate(r.Context(), userID, domain.TMDBID(req.TMDBID), req.Rating)
	if err != nil {
		s.respondServiceError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, toRatingResponse(rating))
}

func (s *Server) handleDeleteRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.callerID(w, r)
	if !ok {
		return
	}
	movieID, err := pathID(r, "movieId")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	if err := s.svcs.Ratings.Delete(r.Context(), userID, domain.MovieID(movieID)); err != nil {
		s.respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// callerID extracts the already-authenticated user id from the X-User-Id
// header. Credential checks happen upstream; this layer only needs the id.
func (s *Server) callerID(w http.ResponseWriter, r *http.Request) (domain.UserID, bool) {
	raw := strings.TrimSpace(r.Header.Get("X-User-Id"))
	if raw == "" {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		s.respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing or invalid authentication information")
		return 0, false
	}
	return domain.UserID(id), true
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		return 0, fmt.Errorf("missing %s parameter", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s parameter", name)
	}
	return id, nil
}

func (s *Server) respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, service.ErrCatalogItemNotFound):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrCatalogUnavailable):
		s.respondError(w, http.StatusBadGateway, "UPSTREAM_UNAVAILABLE", err.Error())
	case errors.Is(err, service.ErrRatingNotFound), errors.Is(err, service.ErrNotInList):
		s.respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrAlreadyInList):
		s.respondError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		s.logger.Printf("internal error: %v", err)
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	return nil
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Printf("failed to encode response: %v", err)
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}

func (s *Server) toDetailsResponse(details service.Details) movieDetailsResponse {
	movie := details.Movie
	resp := movieDetailsResponse{
		ID:            int64(movie.ID),
		TMDBID:        int64(movie.TMDBID),
		Title:         movie.Title,
		Overview:      movie.Overview,
		PosterPath:    movie.PosterPath,
		BackdropPath:  movie.BackdropPath,
		PosterURL:     s.imageURL(movie.PosterPath, "w500"),
		BackdropURL:   s.imageURL(movie.BackdropPath, "w1280"),
		Runtime:       movie.Runtime,
		Genres:        movie.Genres,
		AverageRating: movie.AverageRating,
		VoteCount:     movie.VoteCount,
		OnWatchList:   details.OnWatchList,
		OnWatchedList: details.OnWatchedList,
	}
	if movie.ReleaseDate != nil {
		formatted := movie.ReleaseDate.Format("2006-01-02")
		resp.ReleaseDate = &formatted
	}
	if details.UserRating != nil {
		rating := toRatingResponse(*details.UserRating)
		resp.UserRating = &rating
	}
	return resp
}

func toRatingResponse(rating domain.Rating) userRatingResponse {
	return userRatingResponse{
		ID:        rating.ID,
		Rating:    rating.Value,
		CreatedAt: rating.CreatedAt,
		UpdatedAt: rating.UpdatedAt,
	}
}

// imageURL composes an absolute catalog image URL, or nil when the movie has
// no stored path.
func (s *Server) imageURL(path *string, size string) *string {
	if path == nil || *path == "" {
		return nil
	}
	full := s.cfg.TMDBImageBaseURL + size + *path
	return &full
}
