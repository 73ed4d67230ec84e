package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcart "github.com/storefront/backend/internal/application/cart"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// memoryRemoteStore is an in-process cart.RemoteStore for handler tests
type memoryRemoteStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]map[cart.IdentityKey]cart.LineItem
}

func newMemoryRemoteStore() *memoryRemoteStore {
	return &memoryRemoteStore{rows: make(map[uuid.UUID]map[cart.IdentityKey]cart.LineItem)}
}

func (s *memoryRemoteStore) Load(ctx context.Context, accountID uuid.UUID) ([]cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make([]cart.LineItem, 0, len(s.rows[accountID]))
	for _, item := range s.rows[accountID] {
		items = append(items, item)
	}
	return items, nil
}

func (s *memoryRemoteStore) Upsert(ctx context.Context, accountID uuid.UUID, items []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rows[accountID] == nil {
		s.rows[accountID] = make(map[cart.IdentityKey]cart.LineItem)
	}
	for _, item := range items {
		s.rows[accountID][item.Key()] = item
	}
	return nil
}

func (s *memoryRemoteStore) Reconcile(ctx context.Context, accountID uuid.UUID, keep []cart.LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	keepSet := make(map[cart.IdentityKey]bool, len(keep))
	for _, item := range keep {
		keepSet[item.Key()] = true
	}
	for key := range s.rows[accountID] {
		if !keepSet[key] {
			delete(s.rows[accountID], key)
		}
	}
	return nil
}

type cartTestEnv struct {
	router     *gin.Engine
	remote     *memoryRemoteStore
	jwtService *auth.JWTService
}

func newCartTestEnv(t *testing.T) *cartTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	middleware.RegisterCustomValidators()

	kv := cache.NewInMemoryKV()
	t.Cleanup(func() { _ = kv.Close() })

	local := cache.NewLocalCartStore(kv, time.Hour, nil)
	remote := newMemoryRemoteStore()
	// Long debounce interval: tests flush explicitly via /cart/sync.
	registry := appcart.NewRegistry(local, remote, time.Hour, nil, nil)

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:     "test-secret-key-at-least-32-chars!!",
		Expiration: time.Hour,
		Issuer:     "storefront-backend-test",
	})

	router := gin.New()
	group := router.Group("/api/v1")
	group.Use(middleware.SessionID(), middleware.OptionalJWTAuthMiddleware(jwtService))
	NewCartHandler(registry).RegisterRoutes(group)

	return &cartTestEnv{router: router, remote: remote, jwtService: jwtService}
}

func (e *cartTestEnv) do(t *testing.T, method, path, sessionID, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sessionID != "" {
		req.Header.Set(middleware.SessionHeaderKey, sessionID)
	}
	if token != "" {
		req.Header.Set(middleware.AuthHeaderKey, middleware.BearerPrefix+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *cartTestEnv) token(t *testing.T, accountID uuid.UUID) string {
	t.Helper()
	token, err := e.jwtService.GenerateToken(accountID, "shopper@example.com")
	require.NoError(t, err)
	return token.AccessToken
}

func decodeCart(t *testing.T, w *httptest.ResponseRecorder) CartResponse {
	t.Helper()
	var envelope struct {
		Success bool         `json:"success"`
		Data    CartResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func addItemBody(product string, qty int) gin.H {
	return gin.H{
		"product_id": product,
		"name":       "Item " + product,
		"unit_price": "12.50",
		"quantity":   qty,
	}
}

func TestCartHandler_GuestLifecycle(t *testing.T) {
	env := newCartTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/v1/cart", "session-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "READY_GUEST", resp.State)

	w = env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", addItemBody("prod-a", 2))
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.Items[0].Quantity)
	assert.Equal(t, "25.00", resp.Total)

	// Same identity key merges quantities.
	w = env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", addItemBody("prod-a", 3))
	resp = decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)

	w = env.do(t, http.MethodPatch, "/api/v1/cart/items/prod-a", "session-1", "", gin.H{"quantity": 1})
	resp = decodeCart(t, w)
	assert.Equal(t, 1, resp.Items[0].Quantity)

	w = env.do(t, http.MethodDelete, "/api/v1/cart/items/prod-a", "session-1", "", nil)
	resp = decodeCart(t, w)
	assert.Empty(t, resp.Items)
}

func TestCartHandler_Validation(t *testing.T) {
	env := newCartTestEnv(t)

	t.Run("missing unit price", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", gin.H{
			"product_id": "prod-a",
			"name":       "Item",
			"quantity":   1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed price", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", gin.H{
			"product_id": "prod-a",
			"name":       "Item",
			"unit_price": "abc",
			"quantity":   1,
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("comma price accepted", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", gin.H{
			"product_id": "prod-b",
			"name":       "Item",
			"unit_price": "5,00",
			"quantity":   1,
		})
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("zero quantity", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", addItemBody("prod-a", 0))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("no session and no identity", func(t *testing.T) {
		w := env.do(t, http.MethodGet, "/api/v1/cart", "", "", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "ERR_CART_NOT_READY")
	})
}

func TestCartHandler_IdentifiedSync(t *testing.T) {
	env := newCartTestEnv(t)
	accountID := uuid.New()
	token := env.token(t, accountID)

	w := env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", token, addItemBody("prod-a", 2))
	require.Equal(t, http.StatusOK, w.Code)

	// Nothing durable yet: the debounce interval has not elapsed.
	rows, err := env.remote.Load(context.Background(), accountID)
	require.NoError(t, err)
	assert.Empty(t, rows)

	w = env.do(t, http.MethodPost, "/api/v1/cart/sync", "session-1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	rows, err = env.remote.Load(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "prod-a", rows[0].ProductID)
	assert.Equal(t, 2, rows[0].Quantity)
}

func TestCartHandler_GuestToIdentifiedMerge(t *testing.T) {
	env := newCartTestEnv(t)
	accountID := uuid.New()

	// Seed the durable cart.
	require.NoError(t, env.remote.Upsert(context.Background(), accountID, []cart.LineItem{{
		ProductID: "prod-a",
		Name:      "Item prod-a remote",
		UnitPrice: "12.50",
		Quantity:  3,
	}}))

	// Shop anonymously.
	w := env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", addItemBody("prod-a", 2))
	require.Equal(t, http.StatusOK, w.Code)

	// Sign-in arrives on the next request: quantities sum, remote
	// metadata wins.
	token := env.token(t, accountID)
	w = env.do(t, http.MethodGet, "/api/v1/cart", "session-1", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, 5, resp.Items[0].Quantity)
	assert.Equal(t, "Item prod-a remote", resp.Items[0].Name)
	assert.Equal(t, "READY_IDENTIFIED", resp.State)

	// The merged cart was written through.
	rows, err := env.remote.Load(context.Background(), accountID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 5, rows[0].Quantity)
}

func TestCartHandler_Clear(t *testing.T) {
	env := newCartTestEnv(t)

	env.do(t, http.MethodPost, "/api/v1/cart/items", "session-1", "", addItemBody("prod-a", 2))
	w := env.do(t, http.MethodDelete, "/api/v1/cart", "session-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeCart(t, w)
	assert.Empty(t, resp.Items)
	assert.Equal(t, "0.00", resp.Total)
}
