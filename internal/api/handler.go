package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/opsdigest/opsdigest/internal/errors"
	"github.com/opsdigest/opsdigest/internal/report"
	"github.com/opsdigest/opsdigest/internal/source/github"
	"github.com/opsdigest/opsdigest/internal/timewindow"
)

// Handler handles API requests
type Handler struct {
	client   *github.Client
	resolver *timewindow.Resolver
}

// NewHandler creates a new API handler
func NewHandler(client *github.Client, resolver *timewindow.Resolver) *Handler {
	return &Handler{
		client:   client,
		resolver: resolver,
	}
}

// HealthCheck returns service health
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetActivityReport renders the activity report
// GET /api/v1/reports/activity?organization=acme&author=alice&when=2025W07
func (h *Handler) GetActivityReport(c *gin.Context) {
	organization := c.Query("organization")
	if organization == "" {
		respondError(c, apperrors.NewUsageError("organization is required"))
		return
	}
	when := c.Query("when")
	window, err := h.resolver.Resolve(when)
	if err != nil {
		respondError(c, err)
		return
	}

	markdown, err := report.NewActivityReport(h.client, report.ActivityOptions{
		Organization: organization,
		Author:       c.Query("author"),
		When:         when,
		Window:       window,
	}).Generate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"markdown": markdown},
	})
}

// GetAttentionReport renders the attention report
// GET /api/v1/reports/attention?organization=acme&when=2025W07
func (h *Handler) GetAttentionReport(c *gin.Context) {
	organization := c.Query("organization")
	if organization == "" {
		respondError(c, apperrors.NewUsageError("organization is required"))
		return
	}
	when := c.Query("when")
	window, err := h.resolver.Resolve(when)
	if err != nil {
		respondError(c, err)
		return
	}

	markdown, err := report.NewAttentionReport(h.client, report.AttentionOptions{
		Organization: organization,
		When:         when,
		Window:       window,
	}).Generate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"markdown": markdown},
	})
}

// GetCIReport renders the CI failures report
// GET /api/v1/reports/ci?repository=acme/widget&repository=acme/gadget
func (h *Handler) GetCIReport(c *gin.Context) {
	repositories := c.QueryArray("repository")
	if len(repositories) == 0 {
		respondError(c, apperrors.NewUsageError("at least one repository is required"))
		return
	}

	markdown, err := report.NewCIReport(h.client, report.CIOptions{
		Repositories: repositories,
	}).Generate(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{"markdown": markdown},
	})
}

// respondError maps application errors onto HTTP statuses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsUsage(err), apperrors.IsInvalidTimeExpression(err), apperrors.IsUnknownFormat(err):
		status = http.StatusBadRequest
	case apperrors.IsUpstreamAuth(err):
		status = http.StatusBadGateway
	case apperrors.IsRateLimited(err):
		status = http.StatusTooManyRequests
	}
	c.JSON(status, gin.H{
		"error": err.Error(),
	})
}
