package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// AuthService handles account registration and authentication. A successful
// login yields the identity signal that flips the shopper's cart from the
// guest snapshot to durable rows.
type AuthService struct {
	accounts   identity.AccountRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(accounts identity.AccountRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		accounts:   accounts,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Register creates a new account and signs it in
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	exists, err := s.accounts.ExistsByEmail(ctx, input.Email)
	if err != nil {
		s.logger.Error("Failed to check email availability", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_TAKEN", "An account with this email already exists")
	}

	account, err := identity.NewAccount(input.Email, input.Password, input.DisplayName)
	if err != nil {
		return nil, err
	}

	if err := s.accounts.Save(ctx, account); err != nil {
		s.logger.Error("Failed to save account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create account")
	}

	s.logger.Info("Account registered",
		zap.String("account_id", account.ID.String()),
		zap.String("email", account.Email))

	return s.issueToken(account)
}

// Login authenticates an account and returns an access token
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	account, err := s.accounts.FindByEmail(ctx, input.Email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login attempt for unknown email", zap.String("email", input.Email))
			return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
		}
		s.logger.Error("Failed to look up account", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to sign in")
	}

	if !account.IsActive() {
		s.logger.Warn("Login attempt for deactivated account", zap.String("account_id", account.ID.String()))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !account.VerifyPassword(input.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("account_id", account.ID.String()))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	account.RecordLogin(time.Now())
	if err := s.accounts.Save(ctx, account); err != nil {
		// Login still succeeds; the stamp is best-effort.
		s.logger.Error("Failed to record login time", zap.Error(err))
	}

	s.logger.Info("Account signed in", zap.String("account_id", account.ID.String()))

	return s.issueToken(account)
}

// GetAccount retrieves account information by ID
func (s *AuthService) GetAccount(ctx context.Context, accountID uuid.UUID) (*AccountInfo, error) {
	account, err := s.accounts.FindByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("ACCOUNT_NOT_FOUND", "Account not found")
		}
		return nil, err
	}

	info := accountInfo(account)
	return &info, nil
}

func (s *AuthService) issueToken(account *identity.Account) (*AuthResult, error) {
	token, err := s.jwtService.GenerateToken(account.ID, account.Email)
	if err != nil {
		s.logger.Error("Failed to generate token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	return &AuthResult{
		AccessToken: token.AccessToken,
		ExpiresAt:   token.ExpiresAt,
		TokenType:   token.TokenType,
		Account:     accountInfo(account),
	}, nil
}

func accountInfo(account *identity.Account) AccountInfo {
	return AccountInfo{
		ID:          account.ID,
		Email:       account.Email,
		DisplayName: account.DisplayName,
		LastLoginAt: account.LastLoginAt,
	}
}
