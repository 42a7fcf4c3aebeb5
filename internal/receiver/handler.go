package receiver

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"bodgate/internal/logger"
)

// Handler binds the submission pipeline to the single valid endpoint.
// Everything else falls through NoRoute: a 404 with no side effects.
type Handler struct {
	service *Service
	logger  logger.Logger
}

func NewHandler(service *Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

// RegisterRoutes wires the endpoint path. The engine must keep gin's
// default HandleMethodNotAllowed=false so a GET on the endpoint path also
// lands in NoRoute, per the contract.
func (h *Handler) RegisterRoutes(router *gin.Engine, endpointPath string) {
	router.POST(endpointPath, h.HandleSubmission)
	router.NoRoute(h.HandleNotFound)
}

func (h *Handler) HandleSubmission(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		// A truncated or unreadable body degrades to whatever was read;
		// the XML parse classifies it from here.
		h.logger.WarnwCtx(c.Request.Context(), "Failed to read full request body", "error", err)
	}

	sub := Submission{
		Raw:        raw,
		ReceivedAt: time.Now(),
		Client:     c.ClientIP(),
		Headers:    flattenHeaders(c.Request.Header),
	}

	out := h.service.Process(c.Request.Context(), sub)
	c.JSON(out.Code, out.Body)
}

func (h *Handler) HandleNotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, NotFoundResponse{
		Error: "Not found: " + c.Request.URL.Path,
	})
}

func flattenHeaders(h http.Header) map[string]string {
	headers := make(map[string]string, len(h))
	for name, values := range h {
		if len(values) > 0 {
			headers[name] = values[0]
		}
	}
	return headers
}
