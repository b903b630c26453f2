package routes

import (
	"time"

	"livebait-directory/handlers"
	"livebait-directory/metrics"
	"livebait-directory/middleware"
	"livebait-directory/utils"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type Handlers struct {
	Directory *handlers.DirectoryHandler
	Auth      *handlers.AuthHandler
	Imports   *handlers.ImportHandler
}

// SetupRoutes registers every route on r. The returned func stops the
// rate limiters' background sweeps.
func SetupRoutes(r *gin.Engine, h Handlers, issuer *utils.TokenIssuer, log logrus.FieldLogger) func() {
	publicLimiter := middleware.NewRateLimiter(120, time.Minute, log)
	loginLimiter := middleware.NewRateLimiter(5, time.Minute, log)

	r.Use(metrics.Middleware())

	// Public directory routes
	api := r.Group("/api")
	api.Use(publicLimiter.Middleware())
	{
		api.GET("/regions", h.Directory.GetRegions)
		api.GET("/regions/:region", h.Directory.GetRegion)
		api.GET("/regions/:region/:city", h.Directory.GetCityListings)
		api.GET("/listings/near", h.Directory.GetNearby)
		api.GET("/listings/:slug", h.Directory.GetListing)
	}

	r.POST("/api/auth/login", loginLimiter.Middleware(), h.Auth.Login)

	// Admin routes (require admin role)
	admin := r.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(issuer))
	admin.Use(middleware.AdminMiddleware())
	{
		admin.GET("/me", h.Auth.GetProfile)
		admin.POST("/imports", h.Imports.StartImport)
		admin.GET("/imports/:id", h.Imports.GetImport)
	}

	r.GET("/health", h.Directory.Health)
	r.GET("/metrics", metrics.Handler())

	return func() {
		publicLimiter.Stop()
		loginLimiter.Stop()
	}
}
