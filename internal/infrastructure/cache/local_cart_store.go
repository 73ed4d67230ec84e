package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/cart"
)

const cartKeyPrefix = "cart:session:"

// LocalCartStore keeps per-session cart snapshots as JSON blobs in a KV
// store. It is the ephemeral side of the cart: absent or corrupt snapshots
// degrade to an empty cart so an anonymous shopper never sees an error.
type LocalCartStore struct {
	kv     KV
	ttl    time.Duration
	logger *zap.Logger
}

// NewLocalCartStore creates a snapshot store. Snapshots expire after ttl;
// a zero ttl keeps them until explicitly cleared.
func NewLocalCartStore(kv KV, ttl time.Duration, logger *zap.Logger) *LocalCartStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LocalCartStore{kv: kv, ttl: ttl, logger: logger}
}

// Load returns the snapshot for the session. Missing keys, backend errors
// and malformed payloads all yield an empty snapshot.
func (s *LocalCartStore) Load(ctx context.Context, sessionID string) []cart.LineItem {
	data, err := s.kv.Get(ctx, cartKeyPrefix+sessionID)
	if err != nil {
		s.logger.Warn("failed to load cart snapshot, starting empty",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var items []cart.LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		s.logger.Warn("discarding corrupt cart snapshot",
			zap.String("session_id", sessionID),
			zap.Error(err))
		return nil
	}
	return items
}

// Save replaces the snapshot for the session
func (s *LocalCartStore) Save(ctx context.Context, sessionID string, items []cart.LineItem) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to encode cart snapshot: %w", err)
	}
	if err := s.kv.Set(ctx, cartKeyPrefix+sessionID, data, s.ttl); err != nil {
		return fmt.Errorf("failed to save cart snapshot: %w", err)
	}
	return nil
}

// Clear removes the snapshot for the session
func (s *LocalCartStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.kv.Delete(ctx, cartKeyPrefix+sessionID); err != nil {
		return fmt.Errorf("failed to clear cart snapshot: %w", err)
	}
	return nil
}

var _ cart.LocalStore = (*LocalCartStore)(nil)
