package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/liftcare/internal/aggregate"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/service"
)

func (h *Handler) registerReports(group *gin.RouterGroup) {
	group.GET("/maintenance", h.maintenanceReport)
	group.GET("/revenue", h.revenueReport)
	group.GET("/satisfaction", h.satisfactionReport)
	group.GET("/metrics", h.metricsReport)
	group.GET("/elevator-status", h.elevatorStatus)
	group.POST("/export", h.exportReport)
}

func granularityQuery(c *gin.Context) (aggregate.Granularity, bool) {
	g, ok := aggregate.ParseGranularity(c.Query("granularity"))
	if !ok {
		badRequest(c, "invalid granularity")
	}
	return g, ok
}

func (h *Handler) maintenanceReport(c *gin.Context) {
	from, to, ok := h.periodQuery(c)
	if !ok {
		return
	}
	g, ok := granularityQuery(c)
	if !ok {
		return
	}
	points, err := h.svc.Reports.Maintenance(c.Request.Context(), from, to, g)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, points)
}

func (h *Handler) revenueReport(c *gin.Context) {
	from, to, ok := h.periodQuery(c)
	if !ok {
		return
	}
	g, ok := granularityQuery(c)
	if !ok {
		return
	}
	points, err := h.svc.Reports.Revenue(c.Request.Context(), from, to, g)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, points)
}

func (h *Handler) satisfactionReport(c *gin.Context) {
	from, to, ok := h.periodQuery(c)
	if !ok {
		return
	}
	slices, err := h.svc.Reports.Satisfaction(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, slices)
}

func (h *Handler) metricsReport(c *gin.Context) {
	from, to, ok := h.periodQuery(c)
	if !ok {
		return
	}
	metrics, err := h.svc.Reports.Metrics(c.Request.Context(), from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, metrics)
}

type exportReportRequest struct {
	Type        string `json:"type" binding:"required"`
	Format      string `json:"format"`
	PeriodStart string `json:"from"`
	PeriodEnd   string `json:"to"`
	Granularity string `json:"granularity"`
}

func (h *Handler) exportReport(c *gin.Context) {
	var req exportReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	input := service.ReportRequest{
		Type:        model.ReportType(strings.ToLower(strings.TrimSpace(req.Type))),
		Format:      model.ReportFormat(strings.ToLower(strings.TrimSpace(req.Format))),
		Granularity: req.Granularity,
	}
	if req.PeriodStart != "" {
		start, err := parseDate(req.PeriodStart)
		if err != nil {
			badRequest(c, "invalid from")
			return
		}
		input.From = start
	}
	if req.PeriodEnd != "" {
		end, err := parseDate(req.PeriodEnd)
		if err != nil {
			badRequest(c, "invalid to")
			return
		}
		input.To = end
	}

	file, err := h.svc.Reports.Export(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\""+file.FileName+"\"")
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
