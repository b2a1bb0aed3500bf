package experience

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/utils/validation"
)

// ExperienceHandler handles the experience report lifecycle and the
// public listing endpoints.
type ExperienceHandler struct {
	service   *services.ExperienceService
	validator *validation.Validator
}

// NewExperienceHandler creates a new experience handler.
func NewExperienceHandler(service *services.ExperienceService) *ExperienceHandler {
	return &ExperienceHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// multiQuery collects a repeatable query parameter, also splitting
// comma-separated values. ?batch=2024,2025 and ?batch=2024&batch=2025
// both yield two entries.
func multiQuery(c *fiber.Ctx, key string) []string {
	var values []string
	for _, raw := range c.Context().QueryArgs().PeekMulti(key) {
		for _, part := range strings.Split(string(raw), ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}
