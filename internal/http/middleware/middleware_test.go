package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/nurpe/liftcare/internal/model"
)

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("bearer   abc "))
	assert.Equal(t, "", bearerToken("Basic abc"))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken(""))
}

func newEngine(principal *model.Principal, handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		if principal != nil {
			c.Set(principalKey, *principal)
		}
		c.Next()
	})
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	engine.GET("/", handlers...)
	return engine
}

func serve(engine *gin.Engine) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	return rec
}

func TestRequireRole(t *testing.T) {
	admin := model.Principal{UserID: uuid.New(), Role: model.RoleAdmin}
	employee := model.Principal{UserID: uuid.New(), Role: model.RoleEmployee}

	assert.Equal(t, http.StatusOK, serve(newEngine(&admin, RequireRole(model.RoleAdmin))).Code)
	assert.Equal(t, http.StatusOK, serve(newEngine(&employee, RequireRole(model.RoleAdmin, model.RoleEmployee))).Code)
	assert.Equal(t, http.StatusForbidden, serve(newEngine(&employee, RequireRole(model.RoleAdmin))).Code)
	assert.Equal(t, http.StatusUnauthorized, serve(newEngine(nil, RequireRole(model.RoleAdmin))).Code)
}

func TestMustPrincipalRejectsAnonymous(t *testing.T) {
	anonymous := model.Principal{Role: model.RoleAdmin}
	assert.Equal(t, http.StatusUnauthorized, serve(newEngine(&anonymous, RequireRole(model.RoleAdmin))).Code)
}

func TestRecovery(t *testing.T) {
	engine := newEngine(nil, Recovery(zerolog.Nop()), func(*gin.Context) { panic("boom") })
	assert.Equal(t, http.StatusInternalServerError, serve(engine).Code)
}
