package domain

import "time"

// ListKind selects between the two membership lists. They share a contract
// but never interact: a movie may sit on both lists at once.
type ListKind string

const (
	WatchList   ListKind = "watch_list"
	WatchedList ListKind = "watched_list"
)

// ListEntry is one (user, movie) membership row, decorated on read with the
// movie summary and the user's own rating when one exists.
type ListEntry struct {
	ID         int64
	UserID     UserID
	Movie      Movie
	AddedAt    time.Time
	UserRating *Rating
}
