package domain

import "errors"

var (
	ErrPostNotFound  = errors.New("community post not found")
	ErrInvalidPostID = errors.New("invalid community post id")
	ErrEmptyContent  = errors.New("content is required")
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
