package model

import "errors"

var (
	// ErrProjectNotFound indicates that a requested project does not exist.
	ErrProjectNotFound = errors.New("project not found")
)
