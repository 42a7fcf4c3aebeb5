package archive

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"bodgate/internal/logger"
	"bodgate/pkg/errors"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// Handler exposes a read-only inspection surface over the archive index.
type Handler struct {
	repo   Repository
	logger logger.Logger
}

func NewHandler(repo Repository, log logger.Logger) *Handler {
	return &Handler{
		repo:   repo,
		logger: log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	group := router.Group("/archive")
	{
		group.GET("/recent", h.ListRecent)
		group.GET("/stats", h.Stats)
	}
}

func (h *Handler) ListRecent(c *gin.Context) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, errors.ToErrorResponse(
				errors.ErrValidation.WithDetail("message", "limit must be a positive integer")))
			return
		}
		limit = parsed
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	records, err := h.repo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

func (h *Handler) Stats(c *gin.Context) {
	counts, err := h.repo.CountByStatus(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"by_status": counts})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Archive request error", "error", err, "path", c.Request.URL.Path)
	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}
