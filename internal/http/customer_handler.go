package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/liftcare/internal/http/middleware"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/service"
)

func (h *Handler) registerCustomer(group *gin.RouterGroup) {
	group.Use(middleware.RequireRole(model.RoleCustomer))

	group.GET("/dashboard", h.customerDashboard)
	group.GET("/contracts", h.customerContracts)
	group.GET("/maintenance", h.customerHistory)
	group.POST("/maintenance", h.requestMaintenance)
	group.POST("/maintenance/records/:id/feedback", h.rateRecord)
}

func (h *Handler) customerDashboard(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	dashboard, err := h.svc.Dashboard.Customer(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, dashboard)
}

func (h *Handler) customerContracts(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	items, count, err := h.svc.Contracts.ListForCustomer(c.Request.Context(), principal, listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) customerHistory(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	history, err := h.svc.Maintenance.History(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, history)
}

func (h *Handler) requestMaintenance(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.RequestInput
	if !bindBody(c, &input) {
		return
	}
	task, err := h.svc.Maintenance.RequestMaintenance(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

func (h *Handler) rateRecord(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input service.FeedbackInput
	if !bindBody(c, &input) {
		return
	}
	record, err := h.svc.Maintenance.RateRecord(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, record)
}
