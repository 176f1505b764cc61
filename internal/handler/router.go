package handler

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"jetrent/internal/config"
)

// BuildInfo is reported by /health and /version
type BuildInfo struct {
	Version   string
	BuildTime string
	GitCommit string
}

// Handlers groups the API handlers mounted by NewRouter
type Handlers struct {
	Chat      *ChatHandler
	Listings  *ListingHandler
	Bookmarks *BookmarkHandler
}

// NewRouter builds the gin engine with CORS and every API route
func NewRouter(cfg *config.ServerConfig, h Handlers, info BuildInfo, middleware ...gin.HandlerFunc) *gin.Engine {
	router := gin.New()
	router.Use(middleware...)

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = splitList(cfg.AllowedOrigins)
	corsConfig.AllowMethods = splitList(cfg.AllowedMethods)
	corsConfig.AllowHeaders = splitList(cfg.AllowedHeaders)
	if len(corsConfig.AllowOrigins) == 0 || corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "jetrent",
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	// Version endpoint
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    info.Version,
			"build_time": info.BuildTime,
			"git_commit": info.GitCommit,
		})
	})

	apiV1 := router.Group("/api/v1")
	{
		apiV1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Chat endpoints
		apiV1.POST("/chat", h.Chat.Submit)
		apiV1.POST("/chat/stream", h.Chat.SubmitStream)
		apiV1.GET("/conversations/:id", h.Chat.Get)
		apiV1.DELETE("/conversations/:id", h.Chat.Reset)
		apiV1.PUT("/conversations/:id/results-panel", h.Chat.SetResultsPanel)

		// Listing endpoints
		apiV1.POST("/listings/search", h.Listings.Search)
		apiV1.GET("/listings/url", h.Listings.URL)

		// Bookmark endpoints
		apiV1.GET("/bookmarks", h.Bookmarks.List)
		apiV1.POST("/bookmarks", h.Bookmarks.Add)
		apiV1.DELETE("/bookmarks/:id", h.Bookmarks.Remove)
		apiV1.GET("/bookmarks/:id/labels", h.Bookmarks.Labels)
		apiV1.POST("/bookmarks/:id/labels/:labelId", h.Bookmarks.AttachLabel)
		apiV1.DELETE("/bookmarks/:id/labels/:labelId", h.Bookmarks.DetachLabel)

		// Label endpoints
		apiV1.GET("/labels", h.Bookmarks.ListLabels)
		apiV1.POST("/labels", h.Bookmarks.CreateLabel)
		apiV1.PATCH("/labels/:id", h.Bookmarks.UpdateLabel)
		apiV1.DELETE("/labels/:id", h.Bookmarks.DeleteLabel)
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"error": "API endpoint not found"})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return router
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
