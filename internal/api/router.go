package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/wanty-app/wishfeed/config"
	"github.com/wanty-app/wishfeed/internal/api/handler"
	"github.com/wanty-app/wishfeed/internal/api/middleware"
)

// NewRouter assembles the HTTP surface: recovery, sentry, tracing, gzip and
// rate limiting on everything, JWT auth on the versioned API.
func NewRouter(cfg *config.Config, h *handler.Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(otelgin.Middleware("wishfeed"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(cfg.HTTP.RateLimit, cfg.HTTP.RateBurst))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := r.Group("/api/v1", middleware.Auth(cfg.HTTP.JWTSecret))
	{
		feed := v1.Group("/feed")
		{
			feed.GET("/current", h.Current)
			feed.POST("/approve", h.Approve)
			feed.POST("/decline", h.Decline)
			feed.POST("/restart", h.Restart)
			feed.POST("/reveal", h.RevealContact)
			feed.DELETE("/session", h.EndSession)
		}
		wishes := v1.Group("/wishes")
		{
			wishes.POST("", h.CreateWish)
			wishes.GET("", h.ListWishes)
			wishes.PUT("/:wish_id", h.UpdateWish)
			wishes.DELETE("/:wish_id", h.DeleteWish)
		}
		profile := v1.Group("/profile")
		{
			profile.GET("/achievements", h.Achievements)
			profile.GET("/stats", h.Stats)
		}
	}
	return r
}
