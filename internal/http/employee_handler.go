package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/liftcare/internal/http/middleware"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
	"github.com/nurpe/liftcare/internal/service"
)

const scheduleDays = 7

func (h *Handler) registerEmployee(group *gin.RouterGroup) {
	group.Use(middleware.RequireRole(model.RoleEmployee))

	group.GET("/dashboard", h.employeeDashboard)
	group.GET("/schedule", h.employeeSchedule)
	group.GET("/tasks", h.employeeTasks)
	group.POST("/tasks/:id/start", h.startTask)
	group.POST("/tasks/:id/complete", h.completeTask)
	group.GET("/inventory", h.listParts)
	group.GET("/inventory/low-stock", h.lowStock)
}

func (h *Handler) employeeDashboard(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	dashboard, err := h.svc.Dashboard.Employee(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, dashboard)
}

// employeeSchedule lists the caller's tasks in [from, to], defaulting to
// the week starting today.
func (h *Handler) employeeSchedule(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	now := h.now().UTC()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid from")
			return
		}
		from = parsed
	}
	to := from.AddDate(0, 0, scheduleDays-1)
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid to")
			return
		}
		to = parsed
	}
	if from.After(to) {
		badRequest(c, "from must not be after to")
		return
	}

	tasks, err := h.svc.Maintenance.Schedule(c.Request.Context(), principal.UserID, from, to)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, tasks, int64(len(tasks)))
}

func (h *Handler) employeeTasks(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	scope := repository.TaskScope{AssignedTo: &principal.UserID}
	items, count, err := h.svc.Maintenance.List(c.Request.Context(), scope, listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) startTask(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.svc.Maintenance.StartTask(c.Request.Context(), principal, id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

func (h *Handler) completeTask(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var input service.CompletionInput
	if !bindBody(c, &input) {
		return
	}
	record, err := h.svc.Maintenance.CompleteTask(c.Request.Context(), principal, id, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, record)
}
