package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"community-hub-backend/config"
	"community-hub-backend/internal/mw"
	"community-hub-backend/internal/store"
)

// NewRouter creates and configures a new Gin router. The push routes are
// always mounted; when VAPID keys are absent the handlers answer
// "not configured".
func NewRouter(cfg *config.Config, s store.Store, webpushOptions *webpush.Options, fanout Broadcaster) *gin.Engine {
	r := gin.Default()
	r.Use(mw.RequestID())

	handler := NewHandler(s, webpushOptions, fanout, cfg.Push.Configured())

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)

	cacheStore := cache.New(cfg.Server.CacheTTL(), 2*cfg.Server.CacheTTL())
	caching := mw.Cache(cacheStore, cfg.Server.CacheTTL())

	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/links", caching, GetLinks(cfg.Links))
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		api.GET("/notifications", handler.GetNotifications)
		api.POST("/notifications/subscribe", handler.Subscribe)

		admin := api.Group("/notifications")
		admin.Use(mw.AdminAuth(cfg.Server.AdminToken))
		{
			admin.POST("/send", handler.SendNotification)
			admin.DELETE("/:id", handler.DeleteNotification)
		}
	}

	return r
}
