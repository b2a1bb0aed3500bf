package pdfvalidation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBytesRejectsOversizedFile(t *testing.T) {
	limits := Limits{MaxFileSizeMB: 1, MaxPages: 10}
	content := bytes.Repeat([]byte("a"), 2*1024*1024)

	result, err := ValidateBytes(content, limits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "exceeds maximum allowed size")
	assert.Equal(t, int64(len(content)), result.FileSize)
}

func TestValidateBytesRejectsNonPDF(t *testing.T) {
	result, err := ValidateBytes([]byte("plain text, not a pdf"), MaterialLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Error, "missing PDF header")
}

func TestValidateBytesRejectsCorruptPDF(t *testing.T) {
	// Correct header but garbage body
	result, err := ValidateBytes([]byte("%PDF-1.7\ngarbage"), MaterialLimits)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Error)
}
