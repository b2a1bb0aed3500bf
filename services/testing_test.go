package services

import (
	"fmt"
	"sync"
	"testing"

	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/utils/auth"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory SQLite database and runs the
// migrations. No Docker required.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	err = db.AutoMigrate(
		&model.User{},
		&model.Profile{},
		&model.ExperienceMetadata{},
		&model.ExperienceRound{},
		&model.ExperienceMaterial{},
		&model.Question{},
		&model.CronJobLog{},
	)
	require.NoError(t, err, "failed to run migrations")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	return db
}

func createTestUser(t *testing.T, db *gorm.DB, email, password string) *model.User {
	t.Helper()

	user := &model.User{
		Email: model.NormalizeEmail(email),
		Role:  "student",
	}
	if password != "" {
		hash, err := auth.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = hash
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// fakeMailer records sent mail instead of talking to SMTP.
type fakeMailer struct {
	mu            sync.Mutex
	failSend      bool
	resetEmails   []string
	resetTokens   []string
	successEmails []string
}

func (f *fakeMailer) SendPasswordResetEmail(toEmail, resetToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSend {
		return fmt.Errorf("smtp unavailable")
	}
	f.resetEmails = append(f.resetEmails, toEmail)
	f.resetTokens = append(f.resetTokens, resetToken)
	return nil
}

func (f *fakeMailer) SendPasswordResetSuccessEmail(toEmail string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.successEmails = append(f.successEmails, toEmail)
	return nil
}

func (f *fakeMailer) sentResetTokens() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.resetTokens...)
}
