// Package server exposes the HTTP surface: the scheduled-trigger endpoint,
// the interactive SSE scrape stream, the source-target CRUD collaborator and
// the listing read API.
package server

import (
	"context"
	"crypto/subtle"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"go-jobharvest/internal/events"
	"go-jobharvest/internal/models"
)

// Runner is the ingestion pipeline as the HTTP layer sees it.
type Runner interface {
	Run(ctx context.Context) models.RunResult
	RunSingle(ctx context.Context, rep events.Reporter)
}

// Store is the CRUD/read surface backing the source and listing endpoints.
type Store interface {
	CreateSource(ctx context.Context, url, title string) (*models.SourceTarget, error)
	ListSources(ctx context.Context) ([]models.SourceTarget, error)
	SetSourceActive(ctx context.Context, id string, active bool) error
	DeleteSource(ctx context.Context, id string) error
	ListListings(ctx context.Context, limit int) ([]models.JobListing, error)
}

type Handler struct {
	token  string
	runner Runner
	store  Store
}

// NewRouter wires all routes. The scrape trigger sits behind the bearer-token
// check; everything else is the UI-facing collaborator surface.
func NewRouter(token string, runner Runner, store Store) *gin.Engine {
	r := gin.Default()

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	r.Use(cors.New(corsCfg))

	h := &Handler{token: token, runner: runner, store: store}

	api := r.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.POST("/scrape/run", h.requireToken, h.TriggerRun)
		api.GET("/scrape/stream", h.StreamScrape)

		api.GET("/sources", h.ListSources)
		api.POST("/sources", h.CreateSource)
		api.PATCH("/sources/:id/active", h.ToggleSource)
		api.DELETE("/sources/:id", h.DeleteSource)

		api.GET("/listings", h.ListListings)
	}

	return r
}

// requireToken rejects the request before any target is selected or browser
// launched. Constant-time compare so the token is not timing-probeable.
func (h *Handler) requireToken(c *gin.Context) {
	auth := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(h.token)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "unauthorized",
		})
		return
	}
	c.Next()
}

// TriggerRun is the scheduled-trigger endpoint: one full batch ingestion run,
// summarized as JSON.
func (h *Handler) TriggerRun(c *gin.Context) {
	result := h.runner.Run(c.Request.Context())
	if !result.Success {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   result.Error,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"scrapedTarget": result.Target.URL,
		"jobsFound":     result.JobsFound,
		"jobsSaved":     result.JobsSaved,
	})
}

// StreamScrape runs interactive single-job mode and pushes each ScraperEvent
// as one SSE frame. The stream ends after the terminal event; if the caller
// disconnects first, the run's own deferred cleanup still tears the browser
// down.
func (h *Handler) StreamScrape(c *gin.Context) {
	rep := events.NewStreamReporter(32)
	go h.runner.RunSingle(c.Request.Context(), rep)

	c.Stream(func(w io.Writer) bool {
		ev, ok := <-rep.Events()
		if !ok {
			return false
		}
		c.SSEvent("message", ev)
		return true
	})
}

type createSourceRequest struct {
	URL   string `json:"url" binding:"required"`
	Title string `json:"title"`
}

func (h *Handler) CreateSource(c *gin.Context) {
	var req createSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	src, err := h.store.CreateSource(c.Request.Context(), req.URL, req.Title)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, src)
}

func (h *Handler) ListSources(c *gin.Context) {
	sources, err := h.store.ListSources(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if sources == nil {
		sources = []models.SourceTarget{}
	}
	c.JSON(http.StatusOK, sources)
}

type toggleSourceRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (h *Handler) ToggleSource(c *gin.Context) {
	var req toggleSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if err := h.store.SetSourceActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) DeleteSource(c *gin.Context) {
	if err := h.store.DeleteSource(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) ListListings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	listings, err := h.store.ListListings(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if listings == nil {
		listings = []models.JobListing{}
	}
	c.JSON(http.StatusOK, listings)
}
