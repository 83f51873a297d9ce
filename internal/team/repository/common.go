package repository

import "errors"

var (
	ErrTeamNotFound   = errors.New("team not found")
	ErrTeamNameExists = errors.New("team name already exists")
	ErrDuplicate      = errors.New("duplicate record")
)
