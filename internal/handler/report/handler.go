package report

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/liefhq/injury-api/internal/model"
	"github.com/liefhq/injury-api/internal/service/report"
	apperrors "github.com/liefhq/injury-api/pkg/errors"
)

type Handler struct {
	service report.ReportService
}

func NewHandler(service report.ReportService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes wires the report surface. The shapes and paths match the
// original client contract: a bare array from the list, JSON null for a
// missing report, POST /create for creation, POST /reports/:id for the
// full-replace update.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/reports", h.ListReports)
	public.GET("/reports/:id", h.GetReport)

	protected.POST("/create", h.CreateReport)
	protected.POST("/reports/:id", h.UpdateReport)
	protected.DELETE("/reports/:id", h.DeleteReport)
}

// ListReports returns every report with the reportDateTime projection. No
// server-side filtering, sorting, or pagination: the list view derives its
// own ordering in memory.
func (h *Handler) ListReports(c *gin.Context) {
	items, err := h.service.ListReports(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to list reports")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch reports"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// GetReport returns the report with nested injuries, or a JSON null body when
// the id matches nothing. Callers treat the empty result as not-found; the
// status stays 200 either way.
func (h *Handler) GetReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	detail, err := h.service.GetReport(c.Request.Context(), id)
	if err != nil {
		log.Error().Err(err).Int64("report_id", id).Msg("failed to fetch report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch report"})
		return
	}

	// detail is nil for a missing id; gin renders that as a JSON null.
	c.JSON(http.StatusOK, detail)
}

// CreateReport creates the report and all its injuries as one write. On a
// persistence failure the client sees the original plain-text 500.
func (h *Handler) CreateReport(c *gin.Context) {
	var sub model.ReportSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.service.CreateReport(c.Request.Context(), &sub)
	if err != nil {
		if apperrors.IsBadRequest(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Msg("failed to create report")
		c.String(http.StatusInternalServerError, "Could not create the report")
		return
	}

	c.JSON(http.StatusOK, detail)
}

// UpdateReport replaces the report's injuries with the submitted set and
// updates the report's own fields, all in one transaction. Injuries not
// resent are gone.
func (h *Handler) UpdateReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	var sub model.ReportSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detail, err := h.service.UpdateReport(c.Request.Context(), id, &sub)
	if err != nil {
		if apperrors.IsBadRequest(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		log.Error().Err(err).Int64("report_id", id).Msg("failed to update report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update the report"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DeleteReport removes the report and its injuries. Deleting an id that no
// longer exists still returns 200: the operation is idempotent and the list
// view re-fetches afterwards regardless.
func (h *Handler) DeleteReport(c *gin.Context) {
	id, ok := h.reportID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteReport(c.Request.Context(), id); err != nil {
		log.Error().Err(err).Int64("report_id", id).Msg("failed to delete report")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete the report"})
		return
	}

	// The misspelling is part of the wire contract clients already match on.
	c.String(http.StatusOK, "Successully deleted")
}

func (h *Handler) reportID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid report ID"})
		return 0, false
	}
	return id, true
}
