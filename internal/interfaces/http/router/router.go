package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appcart "github.com/storefront/backend/internal/application/cart"
	appidentity "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// Config wires the dependencies the HTTP surface needs
type Config struct {
	Registry    *appcart.Registry
	AuthService *appidentity.AuthService
	JWTService  *auth.JWTService
	DB          handler.HealthChecker
	Logger      *zap.Logger
	CORS        middleware.CORSConfig
}

// New builds the gin engine with all middleware and routes installed
func New(cfg Config) *gin.Engine {
	middleware.RegisterCustomValidators()

	engine := gin.New()
	engine.Use(
		logger.GinMiddleware(cfg.Logger),
		logger.Recovery(cfg.Logger),
		middleware.RequestID(),
		middleware.Secure(),
		middleware.CORSWithConfig(cfg.CORS),
		middleware.SessionID(),
	)

	api := engine.Group("/api/v1")

	systemHandler := handler.NewSystemHandler(cfg.DB)
	systemHandler.RegisterRoutes(api)

	// Cart routes accept both guests and identified shoppers; identity is
	// optional and selects the durable cart when present.
	cartGroup := api.Group("")
	cartGroup.Use(middleware.OptionalJWTAuthMiddleware(cfg.JWTService))
	handler.NewCartHandler(cfg.Registry).RegisterRoutes(cartGroup)

	protected := api.Group("")
	protected.Use(middleware.JWTAuthMiddleware(cfg.JWTService, cfg.Logger))
	handler.NewAuthHandler(cfg.AuthService).RegisterRoutes(api, protected)

	return engine
}
