// Package httpapi exposes the translation cache over HTTP for
// progressive page enhancement.
package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/motorplaza/lingocache"
)

// TranslateRequest is the request body for the translations endpoint.
type TranslateRequest struct {
	Locale        string   `json:"locale" binding:"required"`
	DefaultLocale string   `json:"defaultLocale" binding:"required"`
	Texts         []string `json:"texts" binding:"required"`
}

// TranslateResponse carries translations aligned by index with the
// request texts.
type TranslateResponse struct {
	Translations []string `json:"translations"`
}

// Server serves the cache endpoint over an Orchestrator.
type Server struct {
	orch *lingocache.Orchestrator
}

// NewServer creates a Server.
func NewServer(orch *lingocache.Orchestrator) *Server {
	return &Server{orch: orch}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", s.handleHealth)

	api := r.Group("/api/v1")
	api.POST("/translations", s.handleTranslations)

	return r
}

// handleTranslations returns best-available translations for the
// requested texts. The orchestrator guarantees a prompt, error-free
// answer; a cache miss comes back as the source text while the
// background fill runs.
func (s *Server) handleTranslations(c *gin.Context) {
	var req TranslateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if flag := c.Query("debug"); flag == "1" || flag == "true" {
		// Verbose logging covers this request only; the process-wide
		// setting from config stays untouched.
		prev := lingocache.DebugEnabled()
		lingocache.SetDebug(true)
		defer lingocache.SetDebug(prev)
	}

	translations := s.orch.TranslationsOrDefault(c.Request.Context(), req.Texts, req.Locale, req.DefaultLocale)
	c.JSON(http.StatusOK, TranslateResponse{Translations: translations})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":    lingocache.Name,
		"version": lingocache.FullVersion(),
	})
}
