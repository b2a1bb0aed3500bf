package auth

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/services"
	authutil "github.com/roohithbala/placement/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingMailer struct {
	mu     sync.Mutex
	tokens []string
}

func (m *recordingMailer) SendPasswordResetEmail(toEmail, resetToken string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = append(m.tokens, resetToken)
	return nil
}

func (m *recordingMailer) SendPasswordResetSuccessEmail(toEmail string) error {
	return nil
}

func (m *recordingMailer) lastToken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.tokens) == 0 {
		return ""
	}
	return m.tokens[len(m.tokens)-1]
}

func setupAuthApp(t *testing.T) (*fiber.App, *gorm.DB, *recordingMailer) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}))

	mailer := &recordingMailer{}
	resetService := services.NewPasswordResetService(db, mailer)
	jwtManager := authutil.NewJWTManager(authutil.JWTConfig{
		Secret: "test-secret",
		Expiry: time.Hour,
		Issuer: "placehub-test",
	})
	handler := NewAuthHandler(db, jwtManager, resetService, nil)

	app := fiber.New()
	app.Post("/auth/register", handler.Register)
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/forgot-password", handler.ForgotPassword)
	app.Get("/auth/verify-reset-token/:token", handler.VerifyResetToken)
	app.Post("/auth/reset-password", handler.ResetPassword)

	return app, db, mailer
}

func doPost(t *testing.T, app *fiber.App, path string, body map[string]interface{}) (int, map[string]interface{}) {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var decoded map[string]interface{}
	json.NewDecoder(resp.Body).Decode(&decoded)
	return resp.StatusCode, decoded
}

func TestRegisterRejectsNonCollegeEmail(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	status, body := doPost(t, app, "/auth/register", map[string]interface{}{
		"email":            "priya@gmail.com",
		"password":         "password-one",
		"confirm_password": "password-one",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, false, body["success"])
}

func TestRegisterAndLogin(t *testing.T) {
	app, _, _ := setupAuthApp(t)

	status, body := doPost(t, app, "/auth/register", map[string]interface{}{
		"email":            "priya@nitt.edu",
		"password":         "password-one",
		"confirm_password": "password-one",
	})
	require.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, true, body["success"])

	status, body = doPost(t, app, "/auth/login", map[string]interface{}{
		"email":    "priya@nitt.edu",
		"password": "password-one",
	})
	require.Equal(t, fiber.StatusOK, status)
	data := body["data"].(map[string]interface{})
	assert.NotEmpty(t, data["token"])

	status, _ = doPost(t, app, "/auth/login", map[string]interface{}{
		"email":    "priya@nitt.edu",
		"password": "wrong-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)
}

func TestForgotPasswordIsUniformForUnknownEmails(t *testing.T) {
	app, db, _ := setupAuthApp(t)

	hash, err := authutil.HashPassword("password-one")
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{Email: "known@nitt.edu", PasswordHash: hash}).Error)

	knownStatus, knownBody := doPost(t, app, "/auth/forgot-password", map[string]interface{}{
		"email": "known@nitt.edu",
	})
	unknownStatus, unknownBody := doPost(t, app, "/auth/forgot-password", map[string]interface{}{
		"email": "unknown@nitt.edu",
	})

	assert.Equal(t, knownStatus, unknownStatus)
	assert.Equal(t, knownBody["message"], unknownBody["message"])
}

func TestResetPasswordFlow(t *testing.T) {
	app, db, mailer := setupAuthApp(t)

	hash, err := authutil.HashPassword("old-password")
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.User{Email: "priya@nitt.edu", PasswordHash: hash}).Error)

	status, _ := doPost(t, app, "/auth/forgot-password", map[string]interface{}{
		"email": "priya@nitt.edu",
	})
	require.Equal(t, fiber.StatusOK, status)

	rawToken := mailer.lastToken()
	require.NotEmpty(t, rawToken)

	verifyReq := httptest.NewRequest("GET", "/auth/verify-reset-token/"+rawToken, nil)
	verifyResp, err := app.Test(verifyReq, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, verifyResp.StatusCode)

	garbageReq := httptest.NewRequest("GET", "/auth/verify-reset-token/not-a-real-token", nil)
	garbageResp, err := app.Test(garbageReq, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, garbageResp.StatusCode)

	status, _ = doPost(t, app, "/auth/reset-password", map[string]interface{}{
		"token":            rawToken,
		"password":         "new-password-1",
		"confirm_password": "new-password-1",
	})
	require.Equal(t, fiber.StatusOK, status)

	// Old password no longer works, new one does
	status, _ = doPost(t, app, "/auth/login", map[string]interface{}{
		"email":    "priya@nitt.edu",
		"password": "old-password",
	})
	assert.Equal(t, fiber.StatusUnauthorized, status)

	status, _ = doPost(t, app, "/auth/login", map[string]interface{}{
		"email":    "priya@nitt.edu",
		"password": "new-password-1",
	})
	assert.Equal(t, fiber.StatusOK, status)

	// The consumed token cannot be replayed
	status, body := doPost(t, app, "/auth/reset-password", map[string]interface{}{
		"token":            rawToken,
		"password":         "attacker-password",
		"confirm_password": "attacker-password",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	errObj := body["error"].(map[string]interface{})
	assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", errObj["code"])
}
