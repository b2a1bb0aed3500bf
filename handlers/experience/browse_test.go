package experience

import (
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupBrowseApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.ExperienceMetadata{},
		&model.ExperienceRound{},
		&model.ExperienceMaterial{},
	))

	handler := NewExperienceHandler(services.NewExperienceService(db, nil))

	app := fiber.New()
	app.Get("/experiences/browse", handler.Browse)

	return app, db
}

func seedBrowseRow(t *testing.T, db *gorm.DB, company, season string, difficulty int) {
	t.Helper()
	require.NoError(t, db.Create(&model.ExperienceMetadata{
		UserID:           1,
		CompanyName:      company,
		RoleAppliedFor:   "SDE",
		PlacementSeason:  season,
		DifficultyRating: difficulty,
		Status:           model.ExperienceStatusApproved,
	}).Error)
}

func getBrowse(t *testing.T, app *fiber.App, query string) []map[string]interface{} {
	t.Helper()

	req := httptest.NewRequest("GET", "/experiences/browse?"+query, nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body.Data
}

func TestBrowseDifficultyQueryParam(t *testing.T) {
	app, db := setupBrowseApp(t)

	seedBrowseRow(t, db, "ZetaWorks", "on-campus", 2)
	seedBrowseRow(t, db, "NimbusLabs", "on-campus", 5)

	items := getBrowse(t, app, "difficulty=4")
	require.Len(t, items, 1)
	assert.Equal(t, "NimbusLabs", items[0]["company_name"])

	items = getBrowse(t, app, "difficulty=1")
	assert.Len(t, items, 2)
}

func TestBrowseSeasonAcceptsTypeAlias(t *testing.T) {
	app, db := setupBrowseApp(t)

	seedBrowseRow(t, db, "ZetaWorks", "on-campus", 3)
	seedBrowseRow(t, db, "NimbusLabs", "off-campus", 3)

	items := getBrowse(t, app, "type=off-campus")
	require.Len(t, items, 1)
	assert.Equal(t, "NimbusLabs", items[0]["company_name"])

	// The canonical name wins when both are present.
	items = getBrowse(t, app, "season=on-campus&type=off-campus")
	require.Len(t, items, 1)
	assert.Equal(t, "ZetaWorks", items[0]["company_name"])
}
