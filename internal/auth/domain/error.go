package domain

import "errors"

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUserExists     = errors.New("user already exists")
	ErrInvalidRole    = errors.New("invalid role")
	ErrInvalidProfile = errors.New("invalid profile")
	ErrInvalidIntent  = errors.New("invalid intent")
)
