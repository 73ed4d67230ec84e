package identity

import (
	"context"

	"github.com/google/uuid"
)

// AccountRepository provides access to persisted accounts
type AccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Save(ctx context.Context, account *Account) error
}
