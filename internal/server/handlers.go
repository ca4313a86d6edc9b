package server

import (
	"errors"
	"net/http"

	"github.com/GriffinCanCode/seolint/internal/document"
	"github.com/GriffinCanCode/seolint/internal/report"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditRequest is the body of POST /audit.
type AuditRequest struct {
	HTML  string   `json:"html"`
	URL   string   `json:"url"`
	Rules []string `json:"rules"`
}

// AuditResponse wraps the report with its status.
type AuditResponse struct {
	Status string         `json:"status"`
	Report *report.Report `json:"report"`
}

// Health handles detailed health check
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "seolint",
		"rules":   len(s.defaults.Rules()),
		"totals":  s.metrics.Snapshot(),
	})
}

// ListRules lists the active rule definitions
func (s *Server) ListRules(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"rules": s.rules.Enabled(),
	})
}

// Audit checks inline HTML or a URL
func (s *Server) Audit(c *gin.Context) {
	var req AuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	if (req.HTML == "") == (req.URL == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of html or url is required"})
		return
	}
	if req.URL != "" && !document.IsURL(req.URL) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url must be http or https"})
		return
	}

	chk := s.defaults
	if len(req.Rules) > 0 {
		selected, err := s.rules.Select(req.Rules...)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		compiled, err := selected.Compile()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		chk = s.newChecker(compiled)
	}

	var (
		doc *document.Document
		err error
	)
	if req.URL != "" {
		doc, err = s.loader.Load(c.Request.Context(), req.URL)
	} else {
		doc, err = document.ParseWith("inline", []byte(req.HTML), s.loader.Engine())
	}
	if err != nil {
		status := loadErrorStatus(err)
		s.logger.Warn("Audit load failed",
			zap.String("url", req.URL),
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	r := chk.CheckDocument(doc)
	c.JSON(http.StatusOK, AuditResponse{Status: r.Status(), Report: r})
}

// loadErrorStatus maps a load failure to a response code. Upstream and
// network failures are 502.
func loadErrorStatus(err error) int {
	switch {
	case errors.Is(err, document.ErrEmpty),
		errors.Is(err, document.ErrTooLarge),
		errors.Is(err, document.ErrNotText):
		return http.StatusUnprocessableEntity
	case errors.Is(err, document.ErrNoFetcher):
		return http.StatusNotImplemented
	default:
		return http.StatusBadGateway
	}
}
