// Package ingest exposes the HTTP inbound path: a way to feed raw push
// messages into the renderer without going through the broker, plus
// cancellation by notification id.
package ingest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"pushrender/internal/logger"
	"pushrender/internal/render"
	"pushrender/pkg/errors"
	"pushrender/pkg/logging"
	"pushrender/pkg/models"
)

type Handler struct {
	service *render.Service
	logger  logger.Logger
}

func NewHandler(service *render.Service, log logger.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  log,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	v1 := router.Group("/v1")
	{
		v1.POST("/messages", h.IngestMessage)
		v1.DELETE("/notifications/:id", h.CancelNotification)
	}
}

type ingestRequest struct {
	TraceID string            `json:"trace_id"`
	Data    map[string]string `json:"data" binding:"required"`
}

func (h *Handler) IngestMessage(c *gin.Context) {
	var req ingestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.handleError(c, errors.ErrValidation.WithCause(err))
		return
	}

	if req.TraceID == "" {
		req.TraceID = uuid.NewString()
	}

	ctx := logging.WithTraceID(c.Request.Context(), req.TraceID)

	msg := models.PushMessage{
		TraceID: req.TraceID,
		Data:    req.Data,
	}

	if err := h.service.Process(ctx, msg); err != nil {
		h.handleError(c, errors.ErrInternal.WithCause(err))
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"status":   "accepted",
		"trace_id": req.TraceID,
	})
}

func (h *Handler) CancelNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 32)
	if err != nil {
		h.handleError(c, errors.ErrValidation.WithDetail("message", "notification id must be an integer"))
		return
	}

	if err := h.service.Cancel(c.Request.Context(), models.NotificationID(id)); err != nil {
		h.handleError(c, errors.ErrInternal.WithCause(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "canceled"})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	h.logger.ErrorwCtx(c.Request.Context(), "Request error",
		"error", err,
		"path", c.Request.URL.Path,
	)

	c.JSON(errors.ToHTTPStatus(err), errors.ToErrorResponse(err))
}
