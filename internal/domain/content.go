package domain

import (
	"strings"
	"time"
)

// Category classifies a content item. The accepted set is configurable.
type Category string

const (
	CategoryGame  Category = "game"
	CategoryVideo Category = "video"
)

// DefaultCategories is used when no category list is configured.
var DefaultCategories = []Category{CategoryGame, CategoryVideo}

// Content represents a catalog entry.
type Content struct {
	ID           string
	Title        string
	Description  string
	Category     Category
	ThumbnailURL string
	ContentURL   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ContentFields carries the values supplied on create.
type ContentFields struct {
	Title        string
	Description  string
	Category     Category
	ThumbnailURL string
	ContentURL   string
}

// ContentPatch carries a partial update; nil fields keep their stored value.
type ContentPatch struct {
	Title        *string
	Description  *string
	Category     *Category
	ThumbnailURL *string
	ContentURL   *string
}

// Empty reports whether the patch changes nothing.
func (p ContentPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil &&
		p.ThumbnailURL == nil && p.ContentURL == nil
}

// CategorySet is the set of categories accepted on create and update.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from the given categories, ignoring blanks.
func NewCategorySet(categories ...Category) CategorySet {
	set := make(CategorySet, len(categories))
	for _, c := range categories {
		c = Category(strings.ToLower(strings.TrimSpace(string(c))))
		if c == "" {
			continue
		}
		set[c] = struct{}{}
	}
	return set
}

// Allows reports whether c is a member of the set.
func (s CategorySet) Allows(c Category) bool {
	_, ok := s[c]
	return ok
}

// Names lists the members for error messages.
func (s CategorySet) Names() []string {
	names := make([]string, 0, len(s))
	for c := range s {
		names = append(names, string(c))
	}
	return names
}
