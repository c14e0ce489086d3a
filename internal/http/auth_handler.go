package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nurpe/liftcare/internal/access"
	"github.com/nurpe/liftcare/internal/http/middleware"
	"github.com/nurpe/liftcare/internal/service"
)

func (h *Handler) login(c *gin.Context) {
	var input service.SignInInput
	if !bindBody(c, &input) {
		return
	}
	result, err := h.svc.Auth.SignIn(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"data":     result,
		"redirect": access.LandingPath(result.User.Role),
	})
}

func (h *Handler) logout(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	if err := h.svc.Auth.SignOut(c.Request.Context(), principal, middleware.Token(c)); err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"redirect": access.LoginPath})
}

func (h *Handler) me(c *gin.Context) {
	principal, ok := principalOf(c)
	if !ok {
		return
	}
	user, err := h.svc.Auth.Me(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	respond(c, http.StatusOK, user)
}

// resolveRoute answers where the application should send the caller for a path.
func (h *Handler) resolveRoute(c *gin.Context) {
	decision := access.Decide(middleware.Principal(c), c.Query("path"))
	c.JSON(http.StatusOK, decision)
}
