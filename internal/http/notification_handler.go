package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) registerNotifications(group *gin.RouterGroup) {
	group.GET("", h.listNotifications)
	group.GET("/unread-count", h.unreadNotifications)
	group.POST("/:id/read", h.markNotificationRead)
}

func (h *Handler) listNotifications(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	items, count, err := h.svc.Notifications.List(c.Request.Context(), principal, listParams(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	respondList(c, items, count)
}

func (h *Handler) unreadNotifications(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	count, err := h.svc.Notifications.Unread(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"unread": count})
}

func (h *Handler) markNotificationRead(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Notifications.MarkRead(c.Request.Context(), principal, id); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
