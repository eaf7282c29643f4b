package domain

import "errors"

var (
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrInvalidSessionID = errors.New("invalid chat session id")
	ErrInvalidMessages  = errors.New("messages must be a JSON array")
)
