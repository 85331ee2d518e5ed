package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/novaire/signal-feed/app/cfg"
)

// NewServer creates the HTTP adapter around the feed core: routing, method
// filtering, CORS, and cache headers live here and nowhere else.
func NewServer(handler *Handler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	r.Use(gin.Recovery())

	// CORS middleware
	r.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Non-GET requests to known routes are rejected, not silently dropped
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "Method not allowed"})
	})

	setupRoutes(r, handler)

	return r
}

func setupRoutes(r *gin.Engine, handler *Handler) {
	r.GET("/feed", handler.GetFeed)
	r.GET("/health", handler.GetHealth)
	r.GET("/debug/timeline", handler.GetTimelineDebug)

	r.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service":     "Signal Feed",
			"version":     cfg.Get().Version,
			"description": "Aggregated, deduplicated, freshness-filtered feed from a fixed account roster",
			"endpoints": map[string]string{
				"feed":   "/feed (add ?live=1 to bypass the snapshot)",
				"health": "/health",
				"debug":  "/debug/timeline?handle=<handle>",
			},
		})
	})

	r.GET("/favicon.ico", func(c *gin.Context) {
		c.Status(204)
	})
}
