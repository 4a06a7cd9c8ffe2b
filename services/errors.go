package services

import "errors"

// Shared service errors, mapped to HTTP statuses in the handlers.
var (
	ErrNotFound = errors.New("requested resource not found")

	ErrValidationFailed  = errors.New("validation failed")
	ErrNegativeScore     = errors.New("scores must be non-negative")
	ErrMatchNotOpen      = errors.New("guesses are only accepted while the match is scheduled")
	ErrMatchNotFound     = errors.New("match not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrGuessNotFound     = errors.New("guess not found")
	ErrRankingNotFound   = errors.New("ranking not found")
	ErrEmptySpreadsheet  = errors.New("spreadsheet grid is empty")
	ErrSyncFailed        = errors.New("spreadsheet sync failed")
	ErrRecalculateFailed = errors.New("ranking recalculation failed")
)
