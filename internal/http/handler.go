package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/http/middleware"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
	"github.com/nurpe/liftcare/internal/service"
)

// Services groups everything the handlers call into.
type Services struct {
	Auth          *service.AuthService
	Contracts     *service.ContractService
	Inventory     *service.InventoryService
	Users         *service.UserService
	Customers     *service.CustomerService
	Facilities    *service.FacilityService
	Maintenance   *service.MaintenanceService
	Notifications *service.NotificationService
	Activity      *service.ActivityService
	Reports       *service.ReportService
	Dashboard     *service.DashboardService
}

type Handler struct {
	svc Services
	log zerolog.Logger
	now func() time.Time
}

func NewHandler(svc Services, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, log: log, now: time.Now}
}

// Register mounts every route. authMiddleware guards signed-in routes and
// optionalAuth only attaches the caller when a token is present.
func (h *Handler) Register(router *gin.Engine, authMiddleware, optionalAuth gin.HandlerFunc) {
	router.GET("/health", h.health)
	router.GET("/routes/resolve", optionalAuth, h.resolveRoute)

	authGroup := router.Group("/auth")
	authGroup.POST("/login", h.login)
	authGroup.POST("/logout", authMiddleware, h.logout)
	authGroup.GET("/me", authMiddleware, h.me)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	h.registerNotifications(protected.Group("/notifications"))
	h.registerAdmin(protected.Group("/admin"))
	h.registerEmployee(protected.Group("/employee"))
	h.registerCustomer(protected.Group("/customer"))
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type listEnvelope struct {
	Data  interface{} `json:"data"`
	Count int64       `json:"count"`
	Error *string     `json:"error"`
}

func respondList[T any](c *gin.Context, items []T, count int64) {
	if items == nil {
		items = []T{}
	}
	c.JSON(http.StatusOK, listEnvelope{Data: items, Count: count})
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"data": data})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "fields": validation.Fields})
	case errors.Is(err, service.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// listParams reads search, filter, page, limit, order_by and desc from the
// query string. Malformed numbers fall back to the defaults.
func listParams(c *gin.Context) repository.ListParams {
	params := repository.ListParams{
		Search:  c.Query("search"),
		Filter:  c.Query("filter"),
		OrderBy: c.Query("order_by"),
	}
	if params.Filter == "" {
		params.Filter = c.Query("status")
	}
	if page, err := strconv.Atoi(c.Query("page")); err == nil {
		params.Page = page
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		params.Limit = limit
	}
	if raw := c.Query("desc"); raw != "" {
		if desc, err := strconv.ParseBool(raw); err == nil {
			params.Desc = &desc
		}
	}
	return params.Normalize()
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		badRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// optionalQueryID parses an optional uuid query parameter.
func optionalQueryID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid "+name)
		return nil, false
	}
	return &id, true
}

func queryInt(c *gin.Context, name string, fallback int) int {
	if value, err := strconv.Atoi(c.Query(name)); err == nil && value > 0 {
		return value
	}
	return fallback
}

// bindPartial decodes a partial update body into a field map. An empty
// object is a valid update that only refreshes updated_at.
func bindPartial(c *gin.Context) (map[string]interface{}, bool) {
	var partial map[string]interface{}
	if err := c.ShouldBindJSON(&partial); err != nil {
		badRequest(c, "invalid request body")
		return nil, false
	}
	return partial, true
}

func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		badRequest(c, "invalid request body")
		return false
	}
	return true
}

// periodQuery reads the from and to query parameters. A missing to means
// now and a missing from means six months before to.
func (h *Handler) periodQuery(c *gin.Context) (time.Time, time.Time, bool) {
	to := h.now()
	if raw := c.Query("to"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid to")
			return time.Time{}, time.Time{}, false
		}
		to = parsed
	}
	from := to.AddDate(0, -6, 0)
	if raw := c.Query("from"); raw != "" {
		parsed, err := parseDate(raw)
		if err != nil {
			badRequest(c, "invalid from")
			return time.Time{}, time.Time{}, false
		}
		from = parsed
	}
	if from.After(to) {
		badRequest(c, "from must not be after to")
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func parseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, service.ErrInvalidInput
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, service.ErrInvalidInput
}

func principalOf(c *gin.Context) (model.Principal, bool) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
	}
	return principal, ok
}

func parseUUID(raw string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(raw))
}
