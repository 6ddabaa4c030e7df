package domain

import "time"

// Rating represents a single user's rating for a movie.
type Rating struct {
	ID        int64
	UserID    UserID
	MovieID   MovieID
	Value     float64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ValidRatingValue reports whether v lies in [0.25, 5.00] on a 0.25 step.
// Allowed values scale to whole quarters, so the float comparison is exact.
func ValidRatingValue(v float64) bool {
	q := v * 4
	return q == float64(int64(q)) && q >= 1 && q <= 20
}

// Aggregate provides the derived average and vote count for a movie.
// A movie with no ratings has the explicit zero state {0.00, 0}.
type Aggregate struct {
	Average float64
	Count   int
}
