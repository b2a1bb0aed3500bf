package linkpreview

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrefersOpenGraphTags(t *testing.T) {
	page := `<html><head>
		<title>Plain Title</title>
		<meta property="og:title" content="OG Title">
		<meta property="og:description" content="OG description">
		<meta property="og:site_name" content="Example Site">
		<meta property="og:image" content="https://example.com/cover.png">
		<meta name="description" content="Meta description">
	</head><body></body></html>`

	preview, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "OG Title", preview.Title)
	assert.Equal(t, "OG description", preview.Description)
	assert.Equal(t, "Example Site", preview.SiteName)
	assert.Equal(t, "https://example.com/cover.png", preview.ImageURL)
}

func TestParseFallsBackToTitleAndMetaDescription(t *testing.T) {
	page := `<html><head>
		<title>  Interview Prep Guide  </title>
		<meta name="description" content="A guide to placement interviews">
	</head><body><h1>hi</h1></body></html>`

	preview, err := Parse(strings.NewReader(page))
	require.NoError(t, err)
	assert.Equal(t, "Interview Prep Guide", preview.Title)
	assert.Equal(t, "A guide to placement interviews", preview.Description)
}

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html><head><title>Served Page</title></head></html>`))
	}))
	defer server.Close()

	svc := NewService()
	preview, err := svc.Fetch(context.Background(), server.URL)
	require.NoError(t, err)
	assert.Equal(t, "Served Page", preview.Title)
	assert.NotEmpty(t, preview.SiteName)
}

func TestFetchRejectsBadURLs(t *testing.T) {
	svc := NewService()

	for _, raw := range []string{"", "not a url", "ftp://example.com/file", "javascript:alert(1)"} {
		_, err := svc.Fetch(context.Background(), raw)
		assert.ErrorIs(t, err, ErrInvalidURL, raw)
	}
}

func TestFetchNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	svc := NewService()
	_, err := svc.Fetch(context.Background(), server.URL)
	assert.Error(t, err)
}
