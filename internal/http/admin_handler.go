package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/liftcare/internal/http/middleware"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/service"
)

const defaultPanelLimit = 5

func (h *Handler) registerAdmin(group *gin.RouterGroup) {
	group.Use(middleware.RequireRole(model.RoleAdmin))

	group.GET("/dashboard", h.adminDashboard)
	group.GET("/activity", h.listActivity)
	group.GET("/technicians", h.listTechnicians)

	contracts := group.Group("/contracts")
	contracts.GET("", h.listContracts)
	contracts.POST("", h.createContract)
	contracts.GET("/summary", h.contractSummary)
	contracts.GET("/statuses", h.contractStatuses)
	contracts.GET("/expiring", h.expiringContracts)
	contracts.GET("/:id", h.getContract)
	contracts.PATCH("/:id", h.updateContract)
	contracts.DELETE("/:id", h.deleteContract)

	inventory := group.Group("/inventory")
	inventory.GET("", h.listParts)
	inventory.POST("", h.createPart)
	inventory.GET("/summary", h.inventorySummary)
	inventory.GET("/categories", h.partCategories)
	inventory.GET("/low-stock", h.lowStock)
	inventory.GET("/:id", h.getPart)
	inventory.PATCH("/:id", h.updatePart)
	inventory.DELETE("/:id", h.deletePart)
	inventory.POST("/:id/restock", h.restockPart)

	users := group.Group("/users")
	users.GET("", h.listUsers)
	users.POST("", h.createUser)
	users.GET("/summary", h.userSummary)
	users.GET("/roles", h.userRoles)
	users.GET("/:id", h.getUser)
	users.PATCH("/:id", h.updateUser)
	users.DELETE("/:id", h.deactivateUser)

	customers := group.Group("/customers")
	customers.GET("", h.listCustomers)
	customers.POST("", h.createCustomer)
	customers.GET("/:id", h.getCustomer)
	customers.PATCH("/:id", h.updateCustomer)
	customers.DELETE("/:id", h.deactivateCustomer)

	h.registerFacilities(group)
	h.registerAdminMaintenance(group.Group("/maintenance"))
	h.registerReports(group.Group("/reports"))
}

func (h *Handler) adminDashboard(c *gin.Context) {
	dashboard, err := h.svc.Dashboard.Admin(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, dashboard)
}

func (h *Handler) listActivity(c *gin.Context) {
	items, count, err := h.svc.Activity.List(c.Request.Context(), listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) listTechnicians(c *gin.Context) {
	items, err := h.svc.Users.Technicians(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, int64(len(items)))
}

// contracts

func (h *Handler) listContracts(c *gin.Context) {
	items, count, err := h.svc.Contracts.List(c.Request.Context(), listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getContract(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	contract, err := h.svc.Contracts.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, contract)
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.ContractInput
	if !bindBody(c, &input) {
		return
	}
	contract, err := h.svc.Contracts.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, contract)
}

func (h *Handler) updateContract(c *gin.Context) {
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
	contract, err := h.svc.Contracts.Update(c.Request.Context(), principal, id, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, contract)
}

func (h *Handler) deleteContract(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Contracts.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) contractSummary(c *gin.Context) {
	summary, err := h.svc.Contracts.Summary(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

func (h *Handler) contractStatuses(c *gin.Context) {
	statuses, err := h.svc.Contracts.Statuses(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, statuses)
}

func (h *Handler) expiringContracts(c *gin.Context) {
	items, err := h.svc.Contracts.Expiring(c.Request.Context(), queryInt(c, "limit", defaultPanelLimit))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, int64(len(items)))
}

// inventory

func (h *Handler) listParts(c *gin.Context) {
	items, count, err := h.svc.Inventory.List(c.Request.Context(), listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getPart(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	part, err := h.svc.Inventory.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, part)
}

func (h *Handler) createPart(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.SparePartInput
	if !bindBody(c, &input) {
		return
	}
	part, err := h.svc.Inventory.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, part)
}

func (h *Handler) updatePart(c *gin.Context) {
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
	part, err := h.svc.Inventory.Update(c.Request.Context(), principal, id, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, part)
}

func (h *Handler) deletePart(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Inventory.Delete(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type restockRequest struct {
	Quantity int `json:"quantity"`
}

// restockPart goes through the dashboard so its low-stock panel refreshes.
func (h *Handler) restockPart(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req restockRequest
	if !bindBody(c, &req) {
		return
	}
	part, err := h.svc.Dashboard.Restock(c.Request.Context(), principal, id, req.Quantity)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, part)
}

func (h *Handler) inventorySummary(c *gin.Context) {
	summary, err := h.svc.Inventory.Summary(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

func (h *Handler) partCategories(c *gin.Context) {
	categories, err := h.svc.Inventory.Categories(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, categories)
}

func (h *Handler) lowStock(c *gin.Context) {
	items, err := h.svc.Inventory.LowStock(c.Request.Context(), queryInt(c, "limit", defaultPanelLimit))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, int64(len(items)))
}

// users

func (h *Handler) listUsers(c *gin.Context) {
	items, count, err := h.svc.Users.List(c.Request.Context(), listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.svc.Users.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handler) createUser(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.UserInput
	if !bindBody(c, &input) {
		return
	}
	user, err := h.svc.Users.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, user)
}

func (h *Handler) updateUser(c *gin.Context) {
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
	user, err := h.svc.Users.Update(c.Request.Context(), principal, id, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

func (h *Handler) deactivateUser(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Users.Deactivate(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) userSummary(c *gin.Context) {
	summary, err := h.svc.Users.Summary(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, summary)
}

func (h *Handler) userRoles(c *gin.Context) {
	roles, err := h.svc.Users.Roles(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, roles)
}

// customers

func (h *Handler) listCustomers(c *gin.Context) {
	items, count, err := h.svc.Customers.List(c.Request.Context(), listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.svc.Customers.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

func (h *Handler) createCustomer(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	var input service.CustomerInput
	if !bindBody(c, &input) {
		return
	}
	customer, err := h.svc.Customers.Create(c.Request.Context(), principal, input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
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
	customer, err := h.svc.Customers.Update(c.Request.Context(), principal, id, partial)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, customer)
}

func (h *Handler) deactivateCustomer(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Customers.Deactivate(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
