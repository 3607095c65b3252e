package model

import "errors"

var (
	// ErrReviewNotFound indicates that the requested review does not exist.
	ErrReviewNotFound = errors.New("review not found")
	// ErrInvalidReviewID indicates that the provided review ID is invalid (e.g., empty).
	ErrInvalidReviewID = errors.New("invalid review ID")
	// ErrUnknownState indicates a state string outside the closed state set.
	ErrUnknownState = errors.New("unknown review state")
	// ErrTransitionNotAllowed indicates the target state is a known state but
	// not a currently allowed transition for the acting user.
	ErrTransitionNotAllowed = errors.New("transition not currently allowed")
	// ErrTransitionsDisallowed indicates the acting user may not transition
	// this review at all.
	ErrTransitionsDisallowed = errors.New("transitions disallowed for user")
	// ErrInvalidUserID indicates that the acting user id is invalid (e.g., empty).
	ErrInvalidUserID = errors.New("invalid user ID")
)
