package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
)

// JWT context keys
const (
	JWTClaimsKey    = "jwt_claims"
	JWTAccountIDKey = "jwt_account_id"
	JWTEmailKey     = "jwt_email"
	AuthHeaderKey   = "Authorization"
	BearerPrefix    = "Bearer "
)

// JWTAuthMiddleware creates JWT authentication middleware. Requests
// without a valid token are rejected with 401.
func JWTAuthMiddleware(jwtService *auth.JWTService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			rejectUnauthorized(c, log, auth.ErrInvalidToken, "Missing or malformed authorization header")
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			rejectUnauthorized(c, log, err, "Token validation failed")
			return
		}

		storeClaims(c, claims)
		c.Next()
	}
}

// OptionalJWTAuthMiddleware extracts claims when a valid token is present
// but lets anonymous requests through. Cart routes use this: the same
// endpoint serves guest and identified shoppers, and the presence of
// claims is what selects the durable cart.
func OptionalJWTAuthMiddleware(jwtService *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			// An invalid token on an optional route degrades to guest.
			c.Next()
			return
		}

		storeClaims(c, claims)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader(AuthHeaderKey)
	if authHeader == "" || !strings.HasPrefix(authHeader, BearerPrefix) {
		return "", false
	}
	token := strings.TrimPrefix(authHeader, BearerPrefix)
	return token, token != ""
}

func storeClaims(c *gin.Context, claims *auth.Claims) {
	c.Set(JWTClaimsKey, claims)
	c.Set(JWTAccountIDKey, claims.AccountID)
	c.Set(JWTEmailKey, claims.Email)

	// Tag the request-scoped logger with the account.
	ctx := c.Request.Context()
	log := logger.FromContext(ctx)
	ctx, _ = logger.WithAccountID(ctx, log, claims.AccountID)
	c.Request = c.Request.WithContext(ctx)
}

func rejectUnauthorized(c *gin.Context, log *zap.Logger, err error, message string) {
	if log != nil {
		log.Warn("JWT authentication failed",
			zap.Error(err),
			zap.String("message", message),
			zap.String("path", c.Request.URL.Path),
		)
	}

	errorCode := "ERR_UNAUTHORIZED"
	errorMessage := "Authentication required"
	if errors.Is(err, auth.ErrExpiredToken) {
		errorCode = "ERR_TOKEN_EXPIRED"
		errorMessage = "Token has expired"
	} else if errors.Is(err, auth.ErrInvalidToken) {
		errorCode = "ERR_TOKEN_INVALID"
		errorMessage = "Invalid token"
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    errorCode,
			"message": errorMessage,
		},
	})
}

// GetJWTClaims retrieves JWT claims from gin.Context
func GetJWTClaims(c *gin.Context) *auth.Claims {
	if claims, exists := c.Get(JWTClaimsKey); exists {
		if jwtClaims, ok := claims.(*auth.Claims); ok {
			return jwtClaims
		}
	}
	return nil
}

// GetJWTAccountID retrieves the account ID from JWT claims in context,
// or "" for an anonymous request
func GetJWTAccountID(c *gin.Context) string {
	return c.GetString(JWTAccountIDKey)
}
