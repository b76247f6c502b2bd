package domain

import (
	"errors"
	"time"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already used")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPasswordMismatch   = errors.New("passwords do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters")
)

const MinPasswordLength = 6

// User is the account profile. The business fields are optional and only
// filled in by users who invoice as a company.
type User struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`

	BusinessName       string `json:"business_name,omitempty"`
	VATNumber          string `json:"vat_number,omitempty"`
	RegistrationNumber string `json:"registration_number,omitempty"`
	Address            string `json:"address,omitempty"`
	City               string `json:"city,omitempty"`
	PostalCode         string `json:"postal_code,omitempty"`
	Country            string `json:"country,omitempty"`
	Phone              string `json:"phone,omitempty"`

	CreatedAt time.Time `json:"created_at,omitzero"`
}

// ProfileUpdate carries an account edit. A nil Avatar leaves the stored
// avatar URL untouched.
type ProfileUpdate struct {
	Name        string
	Description string

	BusinessName       string
	VATNumber          string
	RegistrationNumber string
	Address            string
	City               string
	PostalCode         string
	Country            string
	Phone              string

	Avatar *Upload
}

// Upload is an in-memory file received from a form.
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ValidatePasswords applies the registration form checks.
func ValidatePasswords(password1, password2 string) error {
	if password1 != password2 {
		return ErrPasswordMismatch
	}
	if len(password1) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}
