package models

import (
	"net/mail"
	"strings"
	"time"

	"github.com/harrylevesque/rentnest/internal/utils"
)

type Role string

const (
	RoleTenant   Role = "tenant"
	RoleLandlord Role = "landlord"
)

const MinPasswordLength = 8

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsLandlord reports whether the user may post listings.
func (u *User) IsLandlord() bool { return u.Role == RoleLandlord }

// Registration is the input to account creation.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

// Normalize trims fields, lower-cases the email and defaults the role to tenant.
func (r *Registration) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Phone = strings.TrimSpace(r.Phone)
	r.Role = Role(strings.ToLower(strings.TrimSpace(string(r.Role))))
	if r.Role == "" {
		r.Role = RoleTenant
	}
}

func (r *Registration) Validate() error {
	if r.Name == "" {
		return utils.Invalid("name is required")
	}
	if err := ValidateEmail(r.Email); err != nil {
		return err
	}
	if err := ValidatePassword(r.Password); err != nil {
		return err
	}
	if err := ValidatePhone(r.Phone); err != nil {
		return err
	}
	if r.Role != RoleTenant && r.Role != RoleLandlord {
		return utils.Invalid("unknown role %q", r.Role)
	}
	return nil
}

func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return utils.Invalid("invalid email address %q", email)
	}
	return nil
}

func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return utils.Invalid("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

// ValidatePhone accepts an empty phone or 7-15 digits with an optional leading +,
// spaces and dashes.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0, r == ' ', r == '-':
		default:
			return utils.Invalid("invalid phone number %q", phone)
		}
	}
	if digits < 7 || digits > 15 {
		return utils.Invalid("invalid phone number %q", phone)
	}
	return nil
}

// ProfileUpdate carries the editable profile fields; nil means unchanged.
type ProfileUpdate struct {
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionLoggedOut SessionStatus = "logged_out"
)

type Session struct {
	ID        string        `json:"session_id"`
	UserID    string        `json:"user_id"`
	TokenHash string        `json:"-"`
	CreatedAt time.Time     `json:"created_at"`
	ExpiresAt time.Time     `json:"expires_at"`
	Status    SessionStatus `json:"status"`
}

// Valid reports whether the session is active and unexpired at now.
func (s *Session) Valid(now time.Time) bool {
	return s.Status == SessionActive && now.Before(s.ExpiresAt)
}

// LoginResult is what a successful login hands back. Token is shown once.
type LoginResult struct {
	Token   string   `json:"token"`
	Session *Session `json:"session"`
	User    *User    `json:"user"`
}
