package identity

import (
	"time"

	"github.com/google/uuid"
)

// RegisterInput contains the data needed to create an account
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// LoginInput contains the data needed to authenticate
type LoginInput struct {
	Email    string
	Password string
}

// AccountInfo is the account representation returned to callers
type AccountInfo struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
}

// AuthResult is returned from Register and Login
type AuthResult struct {
	AccessToken string      `json:"access_token"`
	ExpiresAt   time.Time   `json:"expires_at"`
	TokenType   string      `json:"token_type"`
	Account     AccountInfo `json:"account"`
}
