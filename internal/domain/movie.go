package domain

import "time"

// TMDBID identifies a movie in the third-party catalog. It is the cache key
// and is never used as a join key once a movie exists locally.
type TMDBID int64

// MovieID identifies a movie row in our own store. Ratings and list entries
// reference movies exclusively by MovieID.
type MovieID int64

// UserID is the already-authenticated caller identity.
type UserID int64

// Movie represents the canonical cached copy of a catalog movie.
// AverageRating and VoteCount are derived from user_ratings and are written
// only by the aggregate recomputation, never by callers.
type Movie struct {
	ID            MovieID
	TMDBID        TMDBID
	Title         string
	Overview      *string
	PosterPath    *string
	BackdropPath  *string
	ReleaseDate   *time.Time
	Runtime       *int
	Genres        *string
	AverageRating float64
	VoteCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
