package experience

import (
	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/services"
	"github.com/roohithbala/placement/utils/response"
)

const (
	defaultBrowseLimit = 9
	defaultRecentLimit = 6
)

// Browse serves the public paginated listing with filters and sorts.
func (h *ExperienceHandler) Browse(c *fiber.Ctx) error {
	// The season filter arrives as "type" from older clients.
	season := c.Query("season")
	if season == "" {
		season = c.Query("type")
	}

	query := services.BrowseQuery{
		Search:        c.Query("search"),
		Batches:       multiQuery(c, "batch"),
		Companies:     multiQuery(c, "company"),
		Outcomes:      multiQuery(c, "outcome"),
		Season:        season,
		MinDifficulty: c.QueryInt("difficulty", 0),
		Sort:          c.Query("sort", "newest"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", defaultBrowseLimit),
	}

	items, pagination, err := h.service.Browse(c.UserContext(), query)
	if err != nil {
		return response.InternalServerError(c, "Failed to load experiences")
	}

	return response.Paginated(c, items, pagination)
}

// Recent serves the newest experiences for the landing page.
func (h *ExperienceHandler) Recent(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", defaultRecentLimit)

	experiences, pagination, err := h.service.ListRecent(c.UserContext(), page, limit)
	if err != nil {
		return response.InternalServerError(c, "Failed to load recent experiences")
	}

	return response.Paginated(c, experiences, pagination)
}

// ByCompany lists approved experiences for one company.
func (h *ExperienceHandler) ByCompany(c *fiber.Ctx) error {
	company := c.Params("company")
	if company == "" {
		return response.BadRequest(c, "Company is required")
	}

	experiences, err := h.service.ListApprovedByCompany(c.UserContext(), company)
	if err != nil {
		return response.InternalServerError(c, "Failed to load experiences")
	}

	return response.Success(c, experiences)
}

// ByBatch lists approved experiences for one batch.
func (h *ExperienceHandler) ByBatch(c *fiber.Ctx) error {
	batch := c.Params("batch")
	if batch == "" {
		return response.BadRequest(c, "Batch is required")
	}

	experiences, err := h.service.ListApprovedByBatch(c.UserContext(), batch)
	if err != nil {
		return response.InternalServerError(c, "Failed to load experiences")
	}

	return response.Success(c, experiences)
}

// Options serves the distinct companies and roles for filter dropdowns.
func (h *ExperienceHandler) Options(c *fiber.Ctx) error {
	companies, roles, err := h.service.Options(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to load options")
	}

	return response.Success(c, fiber.Map{
		"companies": companies,
		"roles":     roles,
	})
}

// Stats serves the cached platform statistics.
func (h *ExperienceHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.service.GetPlatformStats(c.UserContext())
	if err != nil {
		return response.InternalServerError(c, "Failed to load platform stats")
	}

	return response.Success(c, stats)
}
