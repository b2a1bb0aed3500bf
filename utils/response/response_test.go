package response

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePagination(t *testing.T) {
	meta := CalculatePagination(1, 9, 12)
	assert.Equal(t, 1, meta.CurrentPage)
	assert.Equal(t, 9, meta.PerPage)
	assert.Equal(t, int64(12), meta.Total)
	assert.Equal(t, 2, meta.TotalPages)
}

func TestCalculatePaginationClampsInputs(t *testing.T) {
	// Page below 1 is clamped
	meta := CalculatePagination(0, 9, 12)
	assert.Equal(t, 1, meta.CurrentPage)

	meta = CalculatePagination(-3, 9, 12)
	assert.Equal(t, 1, meta.CurrentPage)

	// Limit is clamped to [1, 100]
	meta = CalculatePagination(1, 0, 12)
	assert.Equal(t, 1, meta.PerPage)

	meta = CalculatePagination(1, 500, 12)
	assert.Equal(t, 100, meta.PerPage)
}

func TestCalculatePaginationEmptyResult(t *testing.T) {
	meta := CalculatePagination(1, 9, 0)
	assert.Equal(t, int64(0), meta.Total)
	assert.Equal(t, 0, meta.TotalPages)
}

func TestCalculatePaginationRoundsUp(t *testing.T) {
	meta := CalculatePagination(1, 10, 11)
	assert.Equal(t, 2, meta.TotalPages)

	meta = CalculatePagination(1, 10, 10)
	assert.Equal(t, 1, meta.TotalPages)
}
