package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// AccountStatus represents the status of a customer account
type AccountStatus string

const (
	AccountStatusActive      AccountStatus = "active"
	AccountStatusDeactivated AccountStatus = "deactivated"
)

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// Account represents a storefront customer account. Its identity is what
// scopes the durable cart rows and drives the guest-to-identified cart
// transition.
type Account struct {
	shared.BaseEntity
	Email        string
	PasswordHash string
	DisplayName  string
	Status       AccountStatus
	LastLoginAt  *time.Time
}

// NewAccount creates a new active account with a hashed password
func NewAccount(email, password, displayName string) (*Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailPattern.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Email address is not valid")
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &Account{
		BaseEntity:   shared.NewBaseEntity(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  strings.TrimSpace(displayName),
		Status:       AccountStatusActive,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (a *Account) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) == nil
}

// RecordLogin stamps the last successful login time
func (a *Account) RecordLogin(at time.Time) {
	a.LastLoginAt = &at
	a.Touch()
}

// IsActive returns true if the account may sign in
func (a *Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// Deactivate disables the account
func (a *Account) Deactivate() {
	a.Status = AccountStatusDeactivated
	a.Touch()
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("WEAK_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		// bcrypt truncates beyond 72 bytes
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
