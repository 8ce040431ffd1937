package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrors_AreDistinct(t *testing.T) {
	assert.NotEqual(t, ErrMissingRepositoryService.Error(), ErrMissingReviewService.Error())
	assert.Contains(t, ErrMissingRepositoryService.Error(), "repository service")
	assert.Contains(t, ErrMissingReviewService.Error(), "review service")
}
