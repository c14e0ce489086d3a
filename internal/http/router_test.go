package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nurpe/liftcare/internal/auth"
	"github.com/nurpe/liftcare/internal/cache"
	"github.com/nurpe/liftcare/internal/config"
	"github.com/nurpe/liftcare/internal/db"
	"github.com/nurpe/liftcare/internal/excel"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/notify"
	"github.com/nurpe/liftcare/internal/pdf"
	"github.com/nurpe/liftcare/internal/repository"
	"github.com/nurpe/liftcare/internal/service"
)

const (
	testSecret   = "router-test-secret"
	testPassword = "correct-horse"
)

type testServer struct {
	router   *gin.Engine
	users    *repository.UserRepository
	customer *model.Customer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(database))

	log := zerolog.Nop()
	contractRepo := repository.NewContractRepository(database)
	partRepo := repository.NewSparePartRepository(database)
	userRepo := repository.NewUserRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	buildingRepo := repository.NewBuildingRepository(database)
	elevatorRepo := repository.NewElevatorRepository(database)
	maintenanceRepo := repository.NewMaintenanceRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)
	activityRepo := repository.NewActivityRepository(database)
	paymentRepo := repository.NewPaymentRepository(database)

	activity := service.NewActivityService(activityRepo, log)
	notifications := service.NewNotificationService(notificationRepo, notify.Noop{}, log)
	contracts := service.NewContractService(contractRepo, activity, 30)
	inventory := service.NewInventoryService(partRepo, activity)
	users := service.NewUserService(userRepo, activity)
	customers := service.NewCustomerService(customerRepo, activity)
	facilities := service.NewFacilityService(buildingRepo, elevatorRepo, activity)
	maintenance := service.NewMaintenanceService(maintenanceRepo, buildingRepo, elevatorRepo, userRepo, notifications, activity, log)
	reports := service.NewReportService(maintenanceRepo, paymentRepo, contractRepo, elevatorRepo,
		cache.Noop{}, time.Minute, excel.NewGenerator(), pdf.NewGenerator())

	sessions := auth.NewSessions(auth.NewParser(testSecret))
	authService := service.NewAuthService(userRepo, auth.NewIssuer(testSecret, time.Hour), sessions, activity)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	dashboard := service.NewDashboardService(ctx, service.DashboardDeps{
		Contracts:    contracts,
		Inventory:    inventory,
		Activity:     activity,
		Reports:      reports,
		Maintenance:  maintenance,
		Facilities:   facilities,
		ContractRepo: contractRepo,
		CustomerRepo: customerRepo,
		ElevatorRepo: elevatorRepo,
		TaskRepo:     maintenanceRepo,
		UserRepo:     userRepo,
	}, log)

	handler := NewHandler(Services{
		Auth:          authService,
		Contracts:     contracts,
		Inventory:     inventory,
		Users:         users,
		Customers:     customers,
		Facilities:    facilities,
		Maintenance:   maintenance,
		Notifications: notifications,
		Activity:      activity,
		Reports:       reports,
		Dashboard:     dashboard,
	}, log)
	cfg := &config.Config{Environment: "test", HTTP: config.HTTPConfig{AllowedOrigins: []string{"*"}}}

	customer := &model.Customer{Name: "Acme Towers", Email: "ops@acme.test", IsActive: true}
	require.NoError(t, customerRepo.Create(context.Background(), customer))

	return &testServer{
		router:   NewRouter(handler, authService, cfg, log),
		users:    userRepo,
		customer: customer,
	}
}

func (s *testServer) addUser(t *testing.T, email string, role model.Role, customerID *uuid.UUID) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	user := &model.User{Name: email, Email: email, Role: role, CustomerID: customerID, PasswordHash: string(hash), IsActive: true}
	require.NoError(t, s.users.Create(context.Background(), user))
	return user
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var payload bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&payload).Encode(body))
	}
	req := httptest.NewRequest(method, path, &payload)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, email string) string {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": email, "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"access_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode(t, rec)["status"])
}

func TestLoginAndMe(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@liftcare.test", "password": testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/admin", decode(t, rec)["redirect"])

	token := s.login(t, "admin@liftcare.test")
	rec = s.do(t, http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	data := decode(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "admin@liftcare.test", data["email"])
	assert.NotContains(t, data, "password_hash")
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "admin@liftcare.test", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginValidation(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/login", "", gin.H{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.ElementsMatch(t, []interface{}{"email", "password"}, decode(t, rec)["fields"])
}

func TestLogoutRevokesToken(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")

	rec := s.do(t, http.MethodPost, "/auth/logout", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/login", decode(t, rec)["redirect"])

	rec = s.do(t, http.MethodGet, "/auth/me", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoleGuards(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "client@acme.test", model.RoleCustomer, &s.customer.ID)
	token := s.login(t, "client@acme.test")

	rec := s.do(t, http.MethodGet, "/admin/contracts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/contracts", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/contracts", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/customer", decode(t, rec)["redirect"])

	rec = s.do(t, http.MethodGet, "/employee/dashboard", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestResolveRoute(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "tech@liftcare.test", model.RoleEmployee, nil)
	token := s.login(t, "tech@liftcare.test")

	cases := []struct {
		name     string
		token    string
		path     string
		allow    bool
		redirect string
	}{
		{name: "root", path: "/", redirect: "/login"},
		{name: "anonymous admin", path: "/admin/reports", redirect: "/login"},
		{name: "public page", path: "/login", allow: true},
		{name: "own area", token: token, path: "/employee/schedule", allow: true},
		{name: "foreign area", token: token, path: "/admin", redirect: "/employee"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, "/routes/resolve?path="+tc.path, tc.token, nil)
			require.Equal(t, http.StatusOK, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tc.allow, body["allow"])
			if tc.redirect != "" {
				assert.Equal(t, tc.redirect, body["redirect"])
			}
		})
	}
}

func TestContractEndpoints(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")

	rec := s.do(t, http.MethodGet, "/admin/contracts", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, []interface{}{}, body["data"])
	assert.EqualValues(t, 0, body["count"])
	assert.Contains(t, body, "error")
	assert.Nil(t, body["error"])

	rec = s.do(t, http.MethodPost, "/admin/contracts", token, gin.H{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode(t, rec)["fields"], "customer_id")

	rec = s.do(t, http.MethodPost, "/admin/contracts", token, gin.H{
		"customer_id":     s.customer.ID,
		"contract_number": "LC-001",
		"contract_type":   "comprehensive",
		"start_date":      "2025-01-01",
		"end_date":        "2025-12-31",
		"total_amount":    "1200.00",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["data"].(map[string]interface{})
	id := created["id"].(string)

	rec = s.do(t, http.MethodGet, "/admin/contracts?search=lc-0&page=1&limit=5", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 1, decode(t, rec)["count"])

	rec = s.do(t, http.MethodGet, "/admin/contracts/"+id, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/contracts/not-a-uuid", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/contracts/"+uuid.NewString(), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPatch, "/admin/contracts/"+id, token, gin.H{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodDelete, "/admin/contracts/"+id, token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/contracts/"+id, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportExport(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")

	rec := s.do(t, http.MethodPost, "/admin/reports/export", token, gin.H{
		"type":   "maintenance",
		"format": "csv",
		"from":   "2025-01-01",
		"to":     "2025-02-28",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="maintenance-report-2025-02-28.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Contains(t, rec.Body.String(), "Period,Scheduled,Emergency,Total")

	rec = s.do(t, http.MethodPost, "/admin/reports/export", token, gin.H{"type": "maintenance", "format": "docx"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, []interface{}{"format"}, decode(t, rec)["fields"])

	rec = s.do(t, http.MethodPost, "/admin/reports/export", token, gin.H{"type": "maintenance", "from": "yesterday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportQueries(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")

	rec := s.do(t, http.MethodGet, "/admin/reports/maintenance?from=2025-01-01&to=2025-03-31&granularity=month", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode(t, rec)["data"], 3)

	rec = s.do(t, http.MethodGet, "/admin/reports/revenue?granularity=hour", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/reports/satisfaction?from=2025-03-01&to=2025-01-01", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationsForEveryRole(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "client@acme.test", model.RoleCustomer, &s.customer.ID)
	token := s.login(t, "client@acme.test")

	rec := s.do(t, http.MethodGet, "/notifications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 0, decode(t, rec)["count"])

	rec = s.do(t, http.MethodGet, "/notifications/unread-count", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodPost, "/notifications/"+uuid.NewString()+"/read", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEmptyPatchOnlyRefreshesTimestamp(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")

	rec := s.do(t, http.MethodPost, "/admin/inventory", token, gin.H{
		"name":              "Door roller",
		"category":          "doors",
		"quantity_in_stock": 7,
		"minimum_stock":     2,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode(t, rec)["data"].(map[string]interface{})
	id := created["id"].(string)
	createdAt, err := time.Parse(time.RFC3339Nano, created["updated_at"].(string))
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	rec = s.do(t, http.MethodPatch, "/admin/inventory/"+id, token, gin.H{})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode(t, rec)["data"].(map[string]interface{})

	assert.Equal(t, "Door roller", updated["name"])
	assert.Equal(t, "doors", updated["category"])
	assert.EqualValues(t, 7, updated["quantity_in_stock"])
	assert.EqualValues(t, 2, updated["minimum_stock"])
	updatedAt, err := time.Parse(time.RFC3339Nano, updated["updated_at"].(string))
	require.NoError(t, err)
	assert.True(t, updatedAt.After(createdAt), "updated_at %s should be after %s", updatedAt, createdAt)
}

func TestDeactivatedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	other := s.addUser(t, "second@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")
	otherToken := s.login(t, "second@liftcare.test")

	rec := s.do(t, http.MethodGet, "/admin/contracts", otherToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = s.do(t, http.MethodDelete, "/admin/users/"+other.ID.String(), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = s.do(t, http.MethodGet, "/admin/contracts", otherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	rec = s.do(t, http.MethodPost, "/admin/inventory", otherToken, gin.H{"name": "Cable", "category": "ropes", "minimum_stock": 1})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDemotedUserLosesAdminRoutes(t *testing.T) {
	s := newTestServer(t)
	s.addUser(t, "admin@liftcare.test", model.RoleAdmin, nil)
	other := s.addUser(t, "second@liftcare.test", model.RoleAdmin, nil)
	token := s.login(t, "admin@liftcare.test")
	otherToken := s.login(t, "second@liftcare.test")

	rec := s.do(t, http.MethodPatch, "/admin/users/"+other.ID.String(), token, gin.H{"role": "employee"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, http.MethodGet, "/admin/users", otherToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "/employee", decode(t, rec)["redirect"])

	rec = s.do(t, http.MethodGet, "/employee/schedule", otherToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
