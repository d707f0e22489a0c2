package handler

import (
	"errors"
	"io"
	"net/http"

	"marketplace_backend/internal/directory/service"
	"marketplace_backend/internal/directory/transport"
	"marketplace_backend/platform/apperr"
	"marketplace_backend/platform/httpkit"
	"marketplace_backend/platform/logger"
	"marketplace_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handler handles HTTP requests for the provider directory.
type Handler struct {
	svc *service.Service
	val *validator.Validator
	log *logger.Logger
}

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgInvalidID        = "invalid provider ID"
)

// New creates a new directory handler.
func New(svc *service.Service, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{svc: svc, val: val, log: log}
}

// ListProviders returns a page of providers matching the filters.
// GET /api/v1/directory/providers
func (h *Handler) ListProviders(c *gin.Context) {
	var req transport.ListProvidersRequest
	if !h.bindQuery(c, &req) {
		return
	}

	fs := h.svc.ParseFilters(c.Request.URL.Query())
	result, err := h.svc.ListProviders(c.Request.Context(), req, fs)
	if h.handleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Markers returns one map pin per matching provider.
// GET /api/v1/directory/markers
func (h *Handler) Markers(c *gin.Context) {
	var req transport.MarkersRequest
	if !h.bindQuery(c, &req) {
		return
	}

	fs := h.svc.ParseFilters(c.Request.URL.Query())
	result, err := h.svc.Markers(c.Request.Context(), req, fs)
	if h.handleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Schema returns the option tree for a filter key.
// GET /api/v1/filters/:key
func (h *Handler) Schema(c *gin.Context) {
	result, err := h.svc.Schema(c.Param("key"))
	if h.handleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// NormalizeSelection canonicalizes the selection passed under the key's own
// query parameter.
// GET /api/v1/filters/:key/normalize?<key>=...
func (h *Handler) NormalizeSelection(c *gin.Context) {
	result, err := h.svc.NormalizeSelection(c.Param("key"), c.Request.URL.Query())
	if h.handleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// GeocodeProvider resolves and stores one provider's location right away.
// POST /api/v1/admin/directory/providers/:id/geocode
func (h *Handler) GeocodeProvider(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.handleError(c, apperr.BadRequest(msgInvalidID))
		return
	}
	h.logAdminAction(c, "provider geocode requested", "providerId", id.String())

	result, err := h.svc.ResolveAndStore(c.Request.Context(), id)
	if h.handleError(c, err) {
		return
	}
	httpkit.OK(c, result)
}

// Backfill queues providers without coordinates for background geocoding.
// POST /api/v1/admin/directory/geocode-backfill
func (h *Handler) Backfill(c *gin.Context) {
	var req transport.BackfillRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.handleError(c, apperr.BadRequest(msgInvalidRequest))
		return
	}
	if err := h.val.Struct(req); err != nil {
		h.handleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return
	}

	result, err := h.svc.QueueBackfill(c.Request.Context(), req)
	if h.handleError(c, err) {
		return
	}
	h.logAdminAction(c, "geocode backfill requested", "queued", result.Queued)
	httpkit.Accepted(c, result)
}

// GeocodeStats returns resolution counters since start-up.
// GET /api/v1/admin/directory/geocode-stats
func (h *Handler) GeocodeStats(c *gin.Context) {
	httpkit.OK(c, h.svc.GeocodeStats())
}

func (h *Handler) bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		h.handleError(c, apperr.BadRequest(msgInvalidRequest))
		return false
	}
	if err := h.val.Struct(req); err != nil {
		h.handleError(c, apperr.Validation(msgValidationFailed).WithDetails(err.Error()))
		return false
	}
	return true
}

// handleError logs server-side failures before writing the response.
// Client errors are answered without logging.
func (h *Handler) handleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	var appErr *apperr.Error
	switch {
	case !errors.As(err, &appErr):
		h.log.HTTPError(c.Request.Method, c.FullPath(), http.StatusInternalServerError, err, c.ClientIP())
	case appErr.Kind == apperr.KindInternal:
		h.log.DatabaseError(appErr.Op, causeOf(appErr))
	case appErr.Kind == apperr.KindUnavailable:
		h.log.HTTPError(c.Request.Method, c.FullPath(), appErr.HTTPStatus(), causeOf(appErr), c.ClientIP())
	}
	return httpkit.HandleError(c, err)
}

// causeOf prefers the wrapped error, whose text the response never shows.
func causeOf(err *apperr.Error) error {
	if err.Err != nil {
		return err.Err
	}
	return err
}

func (h *Handler) logAdminAction(c *gin.Context, msg string, args ...any) {
	log := h.log
	if identity, ok := httpkit.IdentityFrom(c); ok {
		log = log.WithUserID(identity.UserID.String())
	}
	log.Info(msg, args...)
}
