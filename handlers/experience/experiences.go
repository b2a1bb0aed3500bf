package experience

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/utils/middleware"
	"github.com/roohithbala/placement/utils/response"
	"github.com/roohithbala/placement/utils/validation"
)

// MetadataRequest is the experience header payload.
type MetadataRequest struct {
	CompanyName             string `json:"company_name" validate:"required"`
	RoleAppliedFor          string `json:"role_applied_for" validate:"required"`
	InterviewMonth          string `json:"interview_month" validate:"required"`
	InterviewYear           int    `json:"interview_year" validate:"required,gte=2000,lte=2100"`
	Batch                   string `json:"batch" validate:"required"`
	Outcome                 string `json:"outcome" validate:"required"`
	PlacementSeason         string `json:"placement_season"`
	OverallExperienceRating int    `json:"overall_experience_rating" validate:"gte=0,lte=5"`
	DifficultyRating        int    `json:"difficulty_rating" validate:"gte=0,lte=5"`
}

// RoundsRequest replaces the whole round list.
type RoundsRequest struct {
	Rounds []model.RoundEntry `json:"rounds" validate:"required"`
}

// MaterialsRequest replaces the whole material list.
type MaterialsRequest struct {
	Materials []model.MaterialEntry `json:"materials" validate:"required"`
}

func (r MetadataRequest) toInput() services.MetadataInput {
	return services.MetadataInput{
		CompanyName:             validation.SanitizeString(r.CompanyName),
		RoleAppliedFor:          validation.SanitizeString(r.RoleAppliedFor),
		InterviewMonth:          validation.SanitizeString(r.InterviewMonth),
		InterviewYear:           r.InterviewYear,
		Batch:                   validation.SanitizeString(r.Batch),
		Outcome:                 r.Outcome,
		PlacementSeason:         r.PlacementSeason,
		OverallExperienceRating: r.OverallExperienceRating,
		DifficultyRating:        r.DifficultyRating,
	}
}

func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// SaveMetadata creates a new draft or updates an owned experience when
// the id query parameter is present.
func (h *ExperienceHandler) SaveMetadata(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	var req MetadataRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(&req); err != nil {
		return response.ValidationError(c, validation.FormatValidationErrors(err))
	}

	var id *uint
	if raw := c.Query("id"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return response.BadRequest(c, "Invalid experience id")
		}
		value := uint(parsed)
		id = &value
	}

	experience, err := h.service.SaveMetadata(c.UserContext(), userID, id, req.toInput())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrExperienceNotFound):
			return response.NotFound(c, "Experience not found")
		case errors.Is(err, services.ErrDuplicateExperience):
			return response.Conflict(c,
				"You already have an experience entry for "+req.CompanyName+" in "+req.InterviewMonth)
		default:
			return response.InternalServerError(c, "Failed to save experience")
		}
	}

	if id == nil {
		return response.Created(c, experience)
	}
	return response.Success(c, experience)
}

// SaveRounds replaces the round list of an owned experience.
func (h *ExperienceHandler) SaveRounds(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	experienceID, err := parseID(c, "experienceId")
	if err != nil {
		return response.BadRequest(c, "Invalid experience id")
	}

	var req RoundsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.SaveRounds(c.UserContext(), userID, experienceID, req.Rounds); err != nil {
		if errors.Is(err, services.ErrExperienceNotFound) {
			return response.NotFound(c, "Experience not found")
		}
		return response.InternalServerError(c, "Failed to save rounds")
	}

	return response.SuccessWithMessage(c, "Rounds saved", nil)
}

// SaveMaterials replaces the material list of an owned experience.
func (h *ExperienceHandler) SaveMaterials(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	experienceID, err := parseID(c, "experienceId")
	if err != nil {
		return response.BadRequest(c, "Invalid experience id")
	}

	var req MaterialsRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if err := h.service.SaveMaterials(c.UserContext(), userID, experienceID, req.Materials); err != nil {
		if errors.Is(err, services.ErrExperienceNotFound) {
			return response.NotFound(c, "Experience not found")
		}
		return response.InternalServerError(c, "Failed to save materials")
	}

	return response.SuccessWithMessage(c, "Materials saved", nil)
}

// Submit moves an owned experience into the moderation queue.
func (h *ExperienceHandler) Submit(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	experienceID, err := parseID(c, "experienceId")
	if err != nil {
		return response.BadRequest(c, "Invalid experience id")
	}

	experience, err := h.service.Submit(c.UserContext(), userID, experienceID)
	if err != nil {
		if errors.Is(err, services.ErrExperienceNotFound) {
			return response.NotFound(c, "Experience not found")
		}
		return response.InternalServerError(c, "Failed to submit experience")
	}

	return response.SuccessWithMessage(c, "Experience submitted for review", experience)
}

// Delete removes an owned experience and its satellites.
func (h *ExperienceHandler) Delete(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	experienceID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid experience id")
	}

	if err := h.service.Delete(c.UserContext(), userID, experienceID); err != nil {
		if errors.Is(err, services.ErrExperienceNotFound) {
			return response.NotFound(c, "Experience not found")
		}
		return response.InternalServerError(c, "Failed to delete experience")
	}

	return response.SuccessWithMessage(c, "Experience deleted", nil)
}

// ListMine returns all of the caller's experiences.
func (h *ExperienceHandler) ListMine(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	experiences, err := h.service.ListMine(c.UserContext(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load experiences")
	}

	return response.Success(c, experiences)
}

// LatestDraft returns the caller's newest draft with its satellites.
func (h *ExperienceHandler) LatestDraft(c *fiber.Ctx) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "Authentication required")
	}

	draft, err := h.service.LatestDraft(c.UserContext(), userID)
	if err != nil {
		return response.InternalServerError(c, "Failed to load draft")
	}
	if draft == nil {
		return response.Success(c, nil)
	}

	return response.Success(c, draft)
}

// GetDetail returns one full experience. Approved experiences get their
// view counter bumped.
func (h *ExperienceHandler) GetDetail(c *fiber.Ctx) error {
	experienceID, err := parseID(c, "id")
	if err != nil {
		return response.BadRequest(c, "Invalid experience id")
	}

	detail, err := h.service.GetDetail(c.UserContext(), experienceID)
	if err != nil {
		if errors.Is(err, services.ErrExperienceNotFound) {
			return response.NotFound(c, "Experience not found")
		}
		return response.InternalServerError(c, "Failed to load experience")
	}

	return response.Success(c, detail)
}
