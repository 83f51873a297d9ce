package repository

import "errors"

var (
	ErrChallengeNotFound = errors.New("challenge not found")
	ErrAlreadySolved     = errors.New("challenge already solved by team")
)
