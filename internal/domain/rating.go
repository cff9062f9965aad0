package domain

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

// Rating represents a single user's rating of a content item.
type Rating struct {
	ID        string
	UserID    string
	ContentID string
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RatingWithUser is a rating joined with the rater's display name.
type RatingWithUser struct {
	Rating
	Username string
}

// RatingWithContent is a rating joined with the rated content's title.
type RatingWithContent struct {
	Rating
	ContentTitle string
}

// Disposition tells whether a rate call created or updated the stored rating.
type Disposition string

const (
	DispositionCreated Disposition = "created"
	DispositionUpdated Disposition = "updated"
)

// ValidRating reports whether v lies within the accepted range.
func ValidRating(v int) bool {
	return v >= MinRating && v <= MaxRating
}
