package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCollegeEmail(t *testing.T) {
	valid := []string{
		"priya@mit.edu",
		"arjun@iitm.ac.in",
		"student@srm.college.com",
		"UPPER@CASE.EDU",
	}
	for _, email := range valid {
		assert.True(t, IsCollegeEmail(email), email)
	}

	invalid := []string{
		"priya@gmail.com",
		"arjun@yahoo.in",
		"no-at-sign.edu",
		"spaces in@mit.edu",
		"",
	}
	for _, email := range invalid {
		assert.False(t, IsCollegeEmail(email), email)
	}
}

func TestValidateStructCollegeEmailRule(t *testing.T) {
	type form struct {
		Email string `validate:"required,college_email"`
	}

	v := NewValidator()
	assert.NoError(t, v.ValidateStruct(&form{Email: "priya@nitt.edu"}))
	assert.Error(t, v.ValidateStruct(&form{Email: "priya@gmail.com"}))
}

func TestFormatValidationErrors(t *testing.T) {
	type form struct {
		Email           string `validate:"required,email"`
		Password        string `validate:"required,min=8"`
		ConfirmPassword string `validate:"eqfield=Password"`
	}

	v := NewValidator()
	err := v.ValidateStruct(&form{
		Email:           "not-an-email",
		Password:        "short",
		ConfirmPassword: "different",
	})
	assert.Error(t, err)

	fields := FormatValidationErrors(err)
	assert.Equal(t, "Invalid email format", fields["email"])
	assert.Contains(t, fields["password"], "at least 8")
	assert.Equal(t, "Passwords do not match", fields["confirmpassword"])
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  hello  "))
	assert.Equal(t, "hello", SanitizeString("hel\x00lo"))
}
