package linkpreview

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"
)

const (
	fetchTimeout = 10 * time.Second
	maxBodyBytes = 1 << 20 // read at most 1MB of the page
)

var ErrInvalidURL = errors.New("invalid preview url")

// Preview is the summary extracted from a linked preparation resource.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
	SiteName    string `json:"site_name,omitempty"`
	ImageURL    string `json:"image_url,omitempty"`
}

// Service fetches linked pages and extracts title/description metadata
// for material link cards.
type Service struct {
	httpClient *http.Client
}

// NewService creates a link preview service.
func NewService() *Service {
	return &Service{
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
	}
}

// Fetch downloads the page at rawURL and extracts its preview metadata.
// Only http and https URLs are accepted.
func (s *Service) Fetch(ctx context.Context, rawURL string) (*Preview, error) {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || parsed.Host == "" {
		return nil, ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, ErrInvalidURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; PlaceHubBot/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("preview fetch returned status %d", resp.StatusCode)
	}

	preview, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	preview.URL = parsed.String()
	if preview.SiteName == "" {
		preview.SiteName = parsed.Host
	}
	return preview, nil
}

// Parse extracts preview metadata from an HTML document. OpenGraph tags
// win over the plain title and meta description.
func Parse(r io.Reader) (*Preview, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse html: %w", err)
	}

	preview := &Preview{}
	var title string

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if n.FirstChild != nil && title == "" {
					title = strings.TrimSpace(n.FirstChild.Data)
				}
			case "meta":
				name, property, content := metaAttrs(n)
				if content == "" {
					break
				}
				switch {
				case property == "og:title":
					preview.Title = content
				case property == "og:description":
					preview.Description = content
				case property == "og:site_name":
					preview.SiteName = content
				case property == "og:image":
					preview.ImageURL = content
				case name == "description" && preview.Description == "":
					preview.Description = content
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if preview.Title == "" {
		preview.Title = title
	}
	return preview, nil
}

func metaAttrs(n *html.Node) (name, property, content string) {
	for _, attr := range n.Attr {
		switch attr.Key {
		case "name":
			name = strings.ToLower(attr.Val)
		case "property":
			property = strings.ToLower(attr.Val)
		case "content":
			content = strings.TrimSpace(attr.Val)
		}
	}
	return name, property, content
}
