// Package api exposes the news pipeline over a REST API.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/RobinCoderZhao/newsdesk/internal/collector"
	"github.com/RobinCoderZhao/newsdesk/internal/store"
	"github.com/RobinCoderZhao/newsdesk/pkg/llm"
)

// Server holds the dependencies for the API.
type Server struct {
	collector *collector.Collector
	store     *store.Store
	llm       *llm.Client
	logger    *slog.Logger
}

// NewServer creates a new API Server instance.
func NewServer(c *collector.Collector, st *store.Store, client *llm.Client) *Server {
	return &Server{
		collector: c,
		store:     st,
		llm:       client,
		logger:    slog.Default(),
	}
}

// Router returns the configured gin engine.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	api := r.Group("/api/v1")
	{
		api.GET("/news", s.handleNews)
		api.GET("/search", s.handleSearch)
		api.GET("/sources", s.handleListSources)
		api.POST("/sources", s.handleAddSource)
		api.DELETE("/sources", s.handleRemoveSource)
		api.GET("/categories", s.handleCategories)
		api.POST("/refresh", s.handleRefresh)
		api.POST("/analyze", s.handleAnalyze)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy", "timestamp": time.Now()})
		})
	}

	return r
}
