package services

import (
	"context"
	"testing"
	"time"

	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/utils/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newResetService(t *testing.T) (*PasswordResetService, *fakeMailer) {
	t.Helper()
	mailer := &fakeMailer{}
	return NewPasswordResetService(newTestDB(t), mailer), mailer
}

func TestAuthenticate(t *testing.T) {
	svc, _ := newResetService(t)
	ctx := context.Background()
	createTestUser(t, svc.db, "priya@college.com", "correct-horse")

	user, err := svc.Authenticate(ctx, "priya@college.com", "correct-horse")
	require.NoError(t, err)
	assert.Equal(t, "priya@college.com", user.Email)

	// Email lookup is case-insensitive
	_, err = svc.Authenticate(ctx, "  PRIYA@College.com ", "correct-horse")
	assert.NoError(t, err)

	// Wrong password and unknown account yield the same error
	_, wrongPass := svc.Authenticate(ctx, "priya@college.com", "wrong-password")
	_, unknown := svc.Authenticate(ctx, "nobody@college.com", "correct-horse")
	assert.ErrorIs(t, wrongPass, ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, ErrInvalidCredentials)
	assert.Equal(t, wrongPass, unknown)
}

func TestAuthenticateSocialOnlyAccount(t *testing.T) {
	svc, _ := newResetService(t)
	ctx := context.Background()

	user := &model.User{Email: "social@college.com", GoogleID: "google-123"}
	require.NoError(t, svc.db.Create(user).Error)

	_, err := svc.Authenticate(ctx, "social@college.com", "anything")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestIssueResetTokenUnknownEmailIsSilent(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()

	err := svc.IssueResetToken(ctx, "ghost@college.com")
	assert.NoError(t, err)
	assert.Empty(t, mailer.sentResetTokens(), "no mail for unknown accounts")
}

func TestIssueResetTokenStoresDigestNotRawToken(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "correct-horse")

	require.NoError(t, svc.IssueResetToken(ctx, user.Email))

	tokens := mailer.sentResetTokens()
	require.Len(t, tokens, 1)
	rawToken := tokens[0]

	var stored model.User
	require.NoError(t, svc.db.First(&stored, user.ID).Error)
	require.True(t, stored.HasLiveResetToken())
	assert.NotEqual(t, rawToken, *stored.ResetPasswordToken, "raw token must never be stored")
	assert.WithinDuration(t, time.Now().Add(ResetTokenTTL), *stored.ResetPasswordExpires, 5*time.Second)

	assert.NoError(t, svc.VerifyResetToken(ctx, rawToken))
}

func TestIssueResetTokenSocialOnlyAccount(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()

	user := &model.User{Email: "social@college.com", GithubID: "gh-42"}
	require.NoError(t, svc.db.Create(user).Error)

	err := svc.IssueResetToken(ctx, user.Email)
	assert.ErrorIs(t, err, ErrSocialLoginOnly)
	assert.Empty(t, mailer.sentResetTokens())
}

func TestIssueResetTokenRollsBackOnDeliveryFailure(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "correct-horse")

	mailer.failSend = true
	err := svc.IssueResetToken(ctx, user.Email)
	assert.ErrorIs(t, err, ErrEmailDelivery)

	var stored model.User
	require.NoError(t, svc.db.First(&stored, user.ID).Error)
	assert.False(t, stored.HasLiveResetToken(), "undeliverable token must not stay live")
}

func TestIssueResetTokenOverwritesPriorToken(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "correct-horse")

	require.NoError(t, svc.IssueResetToken(ctx, user.Email))
	require.NoError(t, svc.IssueResetToken(ctx, user.Email))

	tokens := mailer.sentResetTokens()
	require.Len(t, tokens, 2)

	assert.ErrorIs(t, svc.VerifyResetToken(ctx, tokens[0]), ErrInvalidOrExpiredToken)
	assert.NoError(t, svc.VerifyResetToken(ctx, tokens[1]))
}

func TestConsumeResetTokenIsSingleUse(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "old-password")

	require.NoError(t, svc.IssueResetToken(ctx, user.Email))
	rawToken := mailer.sentResetTokens()[0]

	require.NoError(t, svc.ConsumeResetToken(ctx, rawToken, "new-password-1"))

	// New password works, old one does not
	_, err := svc.Authenticate(ctx, user.Email, "new-password-1")
	assert.NoError(t, err)
	_, err = svc.Authenticate(ctx, user.Email, "old-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Replay fails and leaves the new password intact
	err = svc.ConsumeResetToken(ctx, rawToken, "attacker-password")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
	_, err = svc.Authenticate(ctx, user.Email, "new-password-1")
	assert.NoError(t, err)
}

func TestConsumeResetTokenExpired(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "old-password")

	require.NoError(t, svc.IssueResetToken(ctx, user.Email))
	rawToken := mailer.sentResetTokens()[0]

	// Age the token past its TTL
	past := time.Now().Add(-time.Minute)
	require.NoError(t, svc.db.Model(&model.User{}).
		Where("id = ?", user.ID).
		Update("reset_password_expires", past).Error)

	err := svc.ConsumeResetToken(ctx, rawToken, "new-password-1")
	assert.ErrorIs(t, err, ErrInvalidOrExpiredToken)
}

func TestConsumeResetTokenRejectsShortPassword(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "old-password")

	require.NoError(t, svc.IssueResetToken(ctx, user.Email))
	rawToken := mailer.sentResetTokens()[0]

	err := svc.ConsumeResetToken(ctx, rawToken, "short")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	// Token stays live after the rejected attempt
	assert.NoError(t, svc.VerifyResetToken(ctx, rawToken))
}

func TestVerifyResetTokenDoesNotConsume(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()
	user := createTestUser(t, svc.db, "priya@college.com", "old-password")

	require.NoError(t, svc.IssueResetToken(ctx, user.Email))
	rawToken := mailer.sentResetTokens()[0]

	assert.NoError(t, svc.VerifyResetToken(ctx, rawToken))
	assert.NoError(t, svc.VerifyResetToken(ctx, rawToken))
	assert.NoError(t, svc.ConsumeResetToken(ctx, rawToken, "new-password-1"))
}

func TestVerifyResetTokenGarbage(t *testing.T) {
	svc, _ := newResetService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.VerifyResetToken(ctx, ""), ErrInvalidOrExpiredToken)
	assert.ErrorIs(t, svc.VerifyResetToken(ctx, "not-a-token"), ErrInvalidOrExpiredToken)
}

func TestSweepExpiredTokens(t *testing.T) {
	svc, mailer := newResetService(t)
	ctx := context.Background()

	expired := createTestUser(t, svc.db, "expired@college.com", "password-one")
	live := createTestUser(t, svc.db, "live@college.com", "password-two")

	require.NoError(t, svc.IssueResetToken(ctx, expired.Email))
	require.NoError(t, svc.IssueResetToken(ctx, live.Email))
	liveToken := mailer.sentResetTokens()[1]

	require.NoError(t, svc.db.Model(&model.User{}).
		Where("id = ?", expired.ID).
		Update("reset_password_expires", time.Now().Add(-time.Hour)).Error)

	cleared, err := svc.SweepExpiredTokens(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cleared)

	var sweptUser model.User
	require.NoError(t, svc.db.First(&sweptUser, expired.ID).Error)
	assert.False(t, sweptUser.HasLiveResetToken())

	assert.NoError(t, svc.VerifyResetToken(ctx, liveToken))
}
