package admin

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/utils/response"
)

// ModerationHandler handles the admin review queue.
type ModerationHandler struct {
	service *services.ExperienceService
}

// NewModerationHandler creates a new moderation handler.
func NewModerationHandler(service *services.ExperienceService) *ModerationHandler {
	return &ModerationHandler{service: service}
}

// ListQueue pages through experiences by lifecycle state, oldest first.
// Defaults to the pending queue.
func (h *ModerationHandler) ListQueue(c *fiber.Ctx) error {
	status := c.Query("status", model.ExperienceStatusPending)
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 20)

	experiences, pagination, err := h.service.ListByStatus(c.UserContext(), status, page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load moderation queue")
	}

	return response.Paginated(c, experiences, pagination)
}

// Approve publishes a pending experience.
func (h *ModerationHandler) Approve(c *fiber.Ctx) error {
	return h.decide(c, model.ExperienceStatusApproved)
}

// Reject declines a pending experience.
func (h *ModerationHandler) Reject(c *fiber.Ctx) error {
	return h.decide(c, model.ExperienceStatusRejected)
}

func (h *ModerationHandler) decide(c *fiber.Ctx, status string) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return response.BadRequest(c, "Invalid experience id")
	}

	if err := h.service.SetStatus(c.UserContext(), uint(id), status); err != nil {
		if errors.Is(err, services.ErrExperienceNotFound) {
			return response.NotFound(c, "No pending experience with this id")
		}
		return response.InternalServerError(c, "Failed to apply moderation decision")
	}

	return response.SuccessWithMessage(c, "Experience "+status, nil)
}
