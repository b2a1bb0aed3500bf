package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log"
	"time"

	"github.com/roohithbala/placement/model"
	"github.com/roohithbala/placement/utils/auth"
	"gorm.io/gorm"
)

// ResetTokenTTL is how long a reset token stays valid after issuance.
const ResetTokenTTL = 10 * time.Minute

var (
	// ErrInvalidCredentials covers both "no such account" and "wrong
	// password". POLICY: the two cases must stay indistinguishable to the
	// caller so the login endpoint cannot be used to enumerate accounts.
	// Do not split this error.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidOrExpiredToken covers never-issued, already-consumed and
	// expired tokens alike. POLICY: conflated on purpose, same reasoning
	// as ErrInvalidCredentials.
	ErrInvalidOrExpiredToken = errors.New("invalid or expired reset token")

	// ErrSocialLoginOnly is returned when the account exists but has no
	// local password. Safe to distinguish: the caller learns nothing new,
	// a social account's owner already knows how they signed up.
	ErrSocialLoginOnly = errors.New("account uses social login")

	// ErrEmailDelivery means the reset mail could not be sent and the
	// just-issued token was rolled back.
	ErrEmailDelivery = errors.New("failed to send reset email")

	ErrPasswordTooShort = auth.ErrPasswordTooShort
)

// PasswordResetService owns user credentials and the reset token
// lifecycle: issuance, verification, single-use consumption, and
// invalidation when the reset mail cannot be delivered.
type PasswordResetService struct {
	db     *gorm.DB
	mailer EmailSender
}

// NewPasswordResetService creates a new password reset service.
func NewPasswordResetService(db *gorm.DB, mailer EmailSender) *PasswordResetService {
	return &PasswordResetService{
		db:     db,
		mailer: mailer,
	}
}

// hashToken computes the storage digest of a raw reset token. The raw
// token travels only inside the reset email; lookups compare digests.
func hashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}

// generateRawToken returns a 256-bit random token, hex encoded.
func generateRawToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

// Authenticate verifies an email/password pair and returns the user.
func (s *PasswordResetService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.PasswordHash == "" {
		// Social-only accounts have no password to compare against.
		return nil, ErrInvalidCredentials
	}

	if err := auth.VerifyPassword(user.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &user, nil
}

// IssueResetToken generates a single-use reset token for the account,
// stores its digest with a 10 minute expiry, and mails the raw token.
// Unknown emails succeed without side effects. POLICY: that silent
// success is deliberate enumeration hiding; do not "fix" it into an
// error. If the mail cannot be sent the stored digest is cleared again
// so no undeliverable token stays live.
func (s *PasswordResetService) IssueResetToken(ctx context.Context, email string) error {
	var user model.User
	err := s.db.WithContext(ctx).
		Where("email = ?", model.NormalizeEmail(email)).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if user.IsSocialLoginOnly() {
		return ErrSocialLoginOnly
	}

	rawToken, err := generateRawToken()
	if err != nil {
		return err
	}

	digest := hashToken(rawToken)
	expiresAt := time.Now().Add(ResetTokenTTL)

	// Overwrites any prior unconsumed token: one live token per user.
	err = s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"reset_password_token":   digest,
			"reset_password_expires": expiresAt,
		}).Error
	if err != nil {
		return err
	}

	if err := s.mailer.SendPasswordResetEmail(user.Email, rawToken); err != nil {
		log.Printf("Reset email delivery failed for user %d: %v", user.ID, err)
		if clearErr := s.clearResetToken(ctx, user.ID); clearErr != nil {
			log.Printf("Failed to roll back reset token for user %d: %v", user.ID, clearErr)
		}
		return ErrEmailDelivery
	}

	return nil
}

// VerifyResetToken reports whether a raw token is currently consumable,
// without mutating anything. Lets the client validate before rendering
// the reset form.
func (s *PasswordResetService) VerifyResetToken(ctx context.Context, rawToken string) error {
	_, err := s.findUserByLiveToken(ctx, rawToken)
	return err
}

// ConsumeResetToken redeems a raw token: re-hashes the new password and
// clears the token fields in the same update, so the token cannot be
// replayed.
func (s *PasswordResetService) ConsumeResetToken(ctx context.Context, rawToken, newPassword string) error {
	if !auth.IsPasswordValid(newPassword) {
		return ErrPasswordTooShort
	}

	user, err := s.findUserByLiveToken(ctx, rawToken)
	if err != nil {
		return err
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"password_hash":          passwordHash,
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
	if err != nil {
		return err
	}

	// Confirmation mail is best-effort; the reset already happened.
	go func(email string) {
		if err := s.mailer.SendPasswordResetSuccessEmail(email); err != nil {
			log.Printf("Reset confirmation email failed for %s: %v", email, err)
		}
	}(user.Email)

	return nil
}

// SweepExpiredTokens clears token fields whose expiry has passed. The
// strict expiry comparison in findUserByLiveToken is what enforces
// correctness; this sweep only keeps stale digests from lingering.
// Returns the number of rows cleared.
func (s *PasswordResetService) SweepExpiredTokens(ctx context.Context) (int64, error) {
	result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("reset_password_token IS NOT NULL AND reset_password_expires <= ?", time.Now()).
		Updates(map[string]interface{}{
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		})
	return result.RowsAffected, result.Error
}

func (s *PasswordResetService) findUserByLiveToken(ctx context.Context, rawToken string) (*model.User, error) {
	if rawToken == "" {
		return nil, ErrInvalidOrExpiredToken
	}

	var user model.User
	err := s.db.WithContext(ctx).
		Where("reset_password_token = ? AND reset_password_expires > ?", hashToken(rawToken), time.Now()).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidOrExpiredToken
		}
		return nil, err
	}

	return &user, nil
}

func (s *PasswordResetService) clearResetToken(ctx context.Context, userID uint) error {
	return s.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"reset_password_token":   nil,
			"reset_password_expires": nil,
		}).Error
}
