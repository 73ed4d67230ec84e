package cart

import (
	"context"

	"github.com/google/uuid"
)

// RemoteStore persists cart line items durably, one row per account and
// identity key. It is written through on every identified mutation and read
// only at bootstrap or merge time.
type RemoteStore interface {
	// Load returns all line items owned by the account, with the
	// DefaultVariation sentinel mapped back to an absent variation.
	Load(ctx context.Context, accountID uuid.UUID) ([]LineItem, error)

	// Upsert writes one row per item keyed by (account, product,
	// variation). Conflict policy is last-write-wins per row: quantity is
	// replaced with the current value, never incremented server-side.
	Upsert(ctx context.Context, accountID uuid.UUID, items []LineItem) error

	// Reconcile deletes all rows owned by the account whose identity key
	// is not present in keep. An empty keep set deletes every row for the
	// account.
	Reconcile(ctx context.Context, accountID uuid.UUID, keep []LineItem) error
}

// LocalStore persists a cart snapshot in ephemeral session-scoped storage
// for anonymous sessions. Load degrades softly: absent or corrupt data
// yields an empty snapshot, never an error.
type LocalStore interface {
	Load(ctx context.Context, sessionID string) []LineItem
	Save(ctx context.Context, sessionID string, items []LineItem) error
	Clear(ctx context.Context, sessionID string) error
}
