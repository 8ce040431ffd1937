package tui

import "errors"

// ErrMissingRepositoryService is returned when the repository service is not provided.
var ErrMissingRepositoryService = errors.New("tui: repository service is required")

// ErrMissingReviewService is returned when the review service is not provided.
var ErrMissingReviewService = errors.New("tui: review service is required")
