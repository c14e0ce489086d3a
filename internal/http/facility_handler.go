package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/liftcare/internal/repository"
	"github.com/nurpe/liftcare/internal/service"
)

func (h *Handler) registerFacilities(group *gin.RouterGroup) {
	buildings := group.Group("/buildings")
	buildings.GET("", h.listBuildings)
	buildings.POST("", h.createBuilding)
	buildings.GET("/:id", h.getBuilding)
	buildings.PATCH("/:id", h.updateBuilding)
	buildings.DELETE("/:id", h.deleteBuilding)

	elevators := group.Group("/elevators")
	elevators.GET("", h.listElevators)
	elevators.POST("", h.createElevator)
	elevators.GET("/status", h.elevatorStatus)
	elevators.GET("/:id", h.getElevator)
	elevators.PATCH("/:id", h.updateElevator)
	elevators.DELETE("/:id", h.deleteElevator)
}

func (h *Handler) registerAdminMaintenance(group *gin.RouterGroup) {
	group.GET("", h.listTasks)
	group.POST("", h.createTask)
	group.GET("/:id", h.getTask)
	group.POST("/:id/assign", h.assignTask)
}

func (h *Handler) listBuildings(c *gin.Context) {
	customerID, ok := optionalQueryID(c, "customer_id")
	if !ok {
		return
	}
	items, count, err := h.svc.Facilities.ListBuildings(c.Request.Context(), customerID, listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getBuilding(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	building, err := h.svc.Facilities.GetBuilding(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, building)
}

func (h *Handler) createBuilding(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.BuildingInput
	if !bindBody(c, &input) {
		return
	}
	building, err := h.svc.Facilities.CreateBuilding(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, building)
}

func (h *Handler) updateBuilding(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	partial, ok := bindPartial(c)
	if !ok {
		return
	}
	building, err := h.svc.Facilities.UpdateBuilding(c.Request.Context(), principal, id, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, building)
}

func (h *Handler) deleteBuilding(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Facilities.DeleteBuilding(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listElevators(c *gin.Context) {
	buildingID, ok := optionalQueryID(c, "building_id")
	if !ok {
		return
	}
	items, count, err := h.svc.Facilities.ListElevators(c.Request.Context(), buildingID, listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getElevator(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	elevator, err := h.svc.Facilities.GetElevator(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, elevator)
}

func (h *Handler) createElevator(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.ElevatorInput
	if !bindBody(c, &input) {
		return
	}
	elevator, err := h.svc.Facilities.CreateElevator(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, elevator)
}

func (h *Handler) updateElevator(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	partial, ok := bindPartial(c)
	if !ok {
		return
	}
	elevator, err := h.svc.Facilities.UpdateElevator(c.Request.Context(), principal, id, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, elevator)
}

func (h *Handler) deleteElevator(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Facilities.DeleteElevator(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) elevatorStatus(c *gin.Context) {
	slices, err := h.svc.Reports.ElevatorStatus(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, slices)
}

// maintenance

func (h *Handler) listTasks(c *gin.Context) {
	items, count, err := h.svc.Maintenance.List(c.Request.Context(), repository.TaskScope{}, listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getTask(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	task, err := h.svc.Maintenance.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}

func (h *Handler) createTask(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.TaskInput
	if !bindBody(c, &input) {
		return
	}
	task, err := h.svc.Maintenance.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, task)
}

type assignRequest struct {
	TechnicianID string `json:"technician_id" binding:"required"`
}

// assignTask goes through the dashboard so its workload panels refresh.
func (h *Handler) assignTask(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req assignRequest
	if !bindBody(c, &req) {
		return
	}
	technicianID, err := parseUUID(req.TechnicianID)
	if err != nil {
		badRequest(c, "invalid technician_id")
		return
	}
	task, err := h.svc.Dashboard.AssignTask(c.Request.Context(), principal, taskID, technicianID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, task)
}
