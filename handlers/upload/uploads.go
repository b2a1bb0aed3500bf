package upload

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/services/linkpreview"
	"github.com/roohithbala/placement/services/storage"
	"github.com/roohithbala/placement/utils/middleware"
	"github.com/roohithbala/placement/utils/pdfvalidation"
	"github.com/roohithbala/placement/utils/response"
)

// UploadHandler handles material file uploads and link previews.
type UploadHandler struct {
	spaces   *storage.SpacesClient // nil when Spaces is not configured
	previews *linkpreview.Service
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(spaces *storage.SpacesClient, previews *linkpreview.Service) *UploadHandler {
	return &UploadHandler{
		spaces:   spaces,
		previews: previews,
	}
}

// UploadMaterial accepts a multipart PDF, validates it and stores it in
// the Spaces bucket under the caller's prefix.
func (h *UploadHandler) UploadMaterial(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	if h.spaces == nil {
		return response.Error(c, fiber.StatusServiceUnavailable,
			"File uploads are not configured", "UPLOADS_DISABLED")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.BadRequest(c, "A file is required")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.InternalServerError(c, "Failed to read the upload")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return response.InternalServerError(c, "Failed to read the upload")
	}

	result, err := pdfvalidation.ValidateBytes(content, pdfvalidation.MaterialLimits)
	if err != nil {
		return response.InternalServerError(c, "Failed to validate the upload")
	}
	if !result.Valid {
		return response.BadRequest(c, result.Error)
	}

	key := storage.GenerateKey(
		"materials/"+strconv.FormatUint(uint64(userID), 10),
		fileHeader.Filename,
	)
	url, err := h.spaces.UploadBytes(c.UserContext(), key, content,
		storage.GetContentType(fileHeader.Filename))
	if err != nil {
		return response.InternalServerError(c, "Failed to store the upload")
	}

	return response.Created(c, fiber.Map{
		"key":        key,
		"url":        url,
		"page_count": result.PageCount,
		"file_size":  result.FileSize,
	})
}

// PreviewLink fetches the page behind a material link and returns its
// title and description for a link card.
func (h *UploadHandler) PreviewLink(c *fiber.Ctx) error {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		return response.BadRequest(c, "A url query parameter is required")
	}

	preview, err := h.previews.Fetch(c.UserContext(), rawURL)
	if err != nil {
		if errors.Is(err, linkpreview.ErrInvalidURL) {
			return response.BadRequest(c, "Invalid url")
		}
		return response.Error(c, fiber.StatusBadGateway,
			"Failed to fetch the linked page", "PREVIEW_FAILED")
	}

	return response.Success(c, preview)
}
