package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nurpe/liftcare/internal/db"
	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

var fixedNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type published struct {
	topic   string
	payload interface{}
}

type recordingPublisher struct {
	mu       sync.Mutex
	messages []published
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, published{topic: topic, payload: payload})
	return nil
}

func (p *recordingPublisher) topics() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.messages))
	for _, m := range p.messages {
		out = append(out, m.topic)
	}
	return out
}

type fixture struct {
	db *gorm.DB

	contractRepo     *repository.ContractRepository
	partRepo         *repository.SparePartRepository
	userRepo         *repository.UserRepository
	customerRepo     *repository.CustomerRepository
	buildingRepo     *repository.BuildingRepository
	elevatorRepo     *repository.ElevatorRepository
	maintenanceRepo  *repository.MaintenanceRepository
	notificationRepo *repository.NotificationRepository
	activityRepo     *repository.ActivityRepository
	paymentRepo      *repository.PaymentRepository

	publisher     *recordingPublisher
	activity      *ActivityService
	notifications *NotificationService
	contracts     *ContractService
	inventory     *InventoryService
	users         *UserService
	customers     *CustomerService
	facilities    *FacilityService
	maintenance   *MaintenanceService

	admin model.Principal
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return fixedNow },
	})
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(database))

	f := &fixture{
		db:               database,
		contractRepo:     repository.NewContractRepository(database),
		partRepo:         repository.NewSparePartRepository(database),
		userRepo:         repository.NewUserRepository(database),
		customerRepo:     repository.NewCustomerRepository(database),
		buildingRepo:     repository.NewBuildingRepository(database),
		elevatorRepo:     repository.NewElevatorRepository(database),
		maintenanceRepo:  repository.NewMaintenanceRepository(database),
		notificationRepo: repository.NewNotificationRepository(database),
		activityRepo:     repository.NewActivityRepository(database),
		paymentRepo:      repository.NewPaymentRepository(database),
		publisher:        &recordingPublisher{},
	}
	log := zerolog.Nop()
	clock := func() time.Time { return fixedNow }

	f.activity = NewActivityService(f.activityRepo, log)
	f.activity.now = clock
	f.notifications = NewNotificationService(f.notificationRepo, f.publisher, log)
	f.notifications.now = clock
	f.contracts = NewContractService(f.contractRepo, f.activity, 30)
	f.contracts.now = clock
	f.inventory = NewInventoryService(f.partRepo, f.activity)
	f.inventory.now = clock
	f.users = NewUserService(f.userRepo, f.activity)
	f.users.now = clock
	f.customers = NewCustomerService(f.customerRepo, f.activity)
	f.customers.now = clock
	f.facilities = NewFacilityService(f.buildingRepo, f.elevatorRepo, f.activity)
	f.facilities.now = clock
	f.maintenance = NewMaintenanceService(f.maintenanceRepo, f.buildingRepo, f.elevatorRepo, f.userRepo, f.notifications, f.activity, log)
	f.maintenance.now = clock

	adminUser := f.addUser(t, "Ada Admin", "ada@liftcare.test", model.RoleAdmin, nil)
	f.admin = adminUser.Principal()
	return f
}

func (f *fixture) addUser(t *testing.T, name, email string, role model.Role, customerID *uuid.UUID) *model.User {
	t.Helper()
	user := &model.User{Name: name, Email: email, Role: role, CustomerID: customerID, IsActive: true}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *fixture) addCustomer(t *testing.T, name string) *model.Customer {
	t.Helper()
	customer := &model.Customer{Name: name, Email: name + "@example.com", IsActive: true}
	require.NoError(t, f.customerRepo.Create(context.Background(), customer))
	return customer
}

// addFleet creates a building with one elevator for customer.
func (f *fixture) addFleet(t *testing.T, customerID uuid.UUID) (*model.Building, *model.Elevator) {
	t.Helper()
	ctx := context.Background()
	building := &model.Building{CustomerID: customerID, Name: "Tower " + customerID.String()[:4], Address: "1 Main St"}
	require.NoError(t, f.buildingRepo.Create(ctx, building))
	elevator := &model.Elevator{BuildingID: building.ID, SerialNumber: "SN-" + building.ID.String()[:8], Status: model.ElevatorMaintenance}
	require.NoError(t, f.elevatorRepo.Create(ctx, elevator))
	return building, elevator
}

func (f *fixture) addContract(t *testing.T, customerID uuid.UUID, number string, start, end time.Time, status model.ContractStatus, amount int64) *model.Contract {
	t.Helper()
	contract := &model.Contract{
		CustomerID:     customerID,
		ContractNumber: number,
		ContractType:   "comprehensive",
		StartDate:      start,
		EndDate:        end,
		Status:         status,
		TotalAmount:    decimal.NewFromInt(amount),
	}
	require.NoError(t, f.contractRepo.Create(context.Background(), contract))
	return contract
}
