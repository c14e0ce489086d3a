package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/liftcare/internal/aggregate"
	"github.com/nurpe/liftcare/internal/fetch"
	"github.com/nurpe/liftcare/internal/model"
)

const (
	dashboardListLimit = 5
	metricsWindowDays  = 30
)

type AdminDashboard struct {
	Summary        model.DashboardSummary   `json:"summary"`
	ElevatorStatus []model.StatusSlice      `json:"elevator_status"`
	Technicians    []model.TechnicianStatus `json:"technicians"`
	Expiring       []model.ExpiringContract `json:"expiring_contracts"`
	LowStock       []model.LowStockItem     `json:"low_stock"`
	RecentActivity []model.ActivityLog      `json:"recent_activity"`
	KeyMetrics     []model.KeyMetric        `json:"key_metrics"`
	// Errors names the panels that failed to load. The rest are still filled.
	Errors map[string]string `json:"errors,omitempty"`
}

type EmployeeDashboard struct {
	TasksToday     []model.MaintenanceTask `json:"tasks_today"`
	CompletedToday int                     `json:"completed_today"`
	OpenToday      int                     `json:"open_today"`
	LowStock       []model.LowStockItem    `json:"low_stock"`
}

type CustomerDashboard struct {
	Contracts      []model.Contract          `json:"contracts"`
	Buildings      []model.Building          `json:"buildings"`
	Elevators      []model.Elevator          `json:"elevators"`
	ElevatorStatus []model.StatusSlice       `json:"elevator_status"`
	Tasks          []model.MaintenanceTask   `json:"tasks"`
	Records        []model.MaintenanceRecord `json:"records"`
}

type DashboardDeps struct {
	Contracts    *ContractService
	Inventory    *InventoryService
	Activity     *ActivityService
	Reports      *ReportService
	Maintenance  *MaintenanceService
	Facilities   *FacilityService
	ContractRepo ContractStore
	CustomerRepo CustomerStore
	ElevatorRepo ElevatorStore
	TaskRepo     MaintenanceStore
	UserRepo     UserStore
}

type assignment struct {
	actor        model.Principal
	taskID       uuid.UUID
	technicianID uuid.UUID
}

type restock struct {
	actor    model.Principal
	partID   uuid.UUID
	quantity int
}

// DashboardService serves the role dashboards. Admin panels are fetch queries
// keyed by the current day; writes issued through it refetch the panels they
// affect so that loads started before the write cannot win.
type DashboardService struct {
	deps DashboardDeps
	log  zerolog.Logger
	now  func() time.Time

	summary     *fetch.Query[string, model.DashboardSummary]
	status      *fetch.Query[string, []model.StatusSlice]
	technicians *fetch.Query[string, []model.TechnicianStatus]
	expiring    *fetch.Query[string, []model.ExpiringContract]
	lowStock    *fetch.Query[string, []model.LowStockItem]
	activity    *fetch.Query[string, []model.ActivityLog]
	metrics     *fetch.Query[string, []model.KeyMetric]

	assign  *fetch.Mutation[assignment, *model.MaintenanceTask]
	restock *fetch.Mutation[restock, *model.SparePart]
}

func NewDashboardService(ctx context.Context, deps DashboardDeps, log zerolog.Logger) *DashboardService {
	s := &DashboardService{deps: deps, log: log, now: utcNow}

	s.summary = fetch.NewQuery(ctx, s.loadSummary)
	s.status = fetch.NewQuery(ctx, func(ctx context.Context, _ string) ([]model.StatusSlice, int64, error) {
		data, err := deps.Reports.ElevatorStatus(ctx)
		return data, 0, err
	})
	s.technicians = fetch.NewQuery(ctx, s.loadTechnicians)
	s.expiring = fetch.NewQuery(ctx, func(ctx context.Context, _ string) ([]model.ExpiringContract, int64, error) {
		data, err := deps.Contracts.Expiring(ctx, dashboardListLimit)
		return data, int64(len(data)), err
	})
	s.lowStock = fetch.NewQuery(ctx, func(ctx context.Context, _ string) ([]model.LowStockItem, int64, error) {
		data, err := deps.Inventory.LowStock(ctx, dashboardListLimit)
		return data, int64(len(data)), err
	})
	s.activity = fetch.NewQuery(ctx, func(ctx context.Context, _ string) ([]model.ActivityLog, int64, error) {
		data, err := deps.Activity.Recent(ctx, dashboardListLimit)
		return data, int64(len(data)), err
	})
	s.metrics = fetch.NewQuery(ctx, func(ctx context.Context, _ string) ([]model.KeyMetric, int64, error) {
		to := dateOnly(s.now())
		data, err := deps.Reports.Metrics(ctx, to.AddDate(0, 0, -(metricsWindowDays-1)), to)
		return data, 0, err
	})

	s.assign = fetch.NewMutation(func(ctx context.Context, in assignment) (*model.MaintenanceTask, error) {
		return deps.Maintenance.AssignTask(ctx, in.actor, in.taskID, in.technicianID)
	}, func(*model.MaintenanceTask) {
		s.summary.Refetch()
		s.technicians.Refetch()
	})
	s.restock = fetch.NewMutation(func(ctx context.Context, in restock) (*model.SparePart, error) {
		return deps.Inventory.Restock(ctx, in.actor, in.partID, in.quantity)
	}, func(*model.SparePart) {
		s.lowStock.Refetch()
	})
	return s
}

// Admin loads every admin panel concurrently. A failing panel is reported in
// Errors and left empty.
func (s *DashboardService) Admin(ctx context.Context) (*AdminDashboard, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	day := dateOnly(s.now()).Format("2006-01-02")
	refresh(s.summary, day)
	refresh(s.status, day)
	refresh(s.technicians, day)
	refresh(s.expiring, day)
	refresh(s.lowStock, day)
	refresh(s.activity, day)
	refresh(s.metrics, day)

	errs := make(map[string]string)
	out := &AdminDashboard{
		Summary:        settle(s.log, s.summary, "summary", errs),
		ElevatorStatus: settle(s.log, s.status, "elevator_status", errs),
		Technicians:    settle(s.log, s.technicians, "technicians", errs),
		Expiring:       settle(s.log, s.expiring, "expiring_contracts", errs),
		LowStock:       settle(s.log, s.lowStock, "low_stock", errs),
		RecentActivity: settle(s.log, s.activity, "recent_activity", errs),
		KeyMetrics:     settle(s.log, s.metrics, "key_metrics", errs),
	}
	if len(errs) > 0 {
		out.Errors = errs
	}
	return out, nil
}

// AssignTask assigns a technician and refreshes the panels counting tasks.
func (s *DashboardService) AssignTask(ctx context.Context, actor model.Principal, taskID, technicianID uuid.UUID) (*model.MaintenanceTask, error) {
	return s.assign.Invoke(ctx, assignment{actor: actor, taskID: taskID, technicianID: technicianID})
}

// Restock adds stock and refreshes the low-stock panel.
func (s *DashboardService) Restock(ctx context.Context, actor model.Principal, partID uuid.UUID, quantity int) (*model.SparePart, error) {
	return s.restock.Invoke(ctx, restock{actor: actor, partID: partID, quantity: quantity})
}

func (s *DashboardService) Employee(ctx context.Context, principal model.Principal) (*EmployeeDashboard, error) {
	if !principal.IsEmployee() {
		return nil, ErrPermissionDenied
	}
	today := dateOnly(s.now())
	tasks, err := s.deps.Maintenance.Schedule(ctx, principal.UserID, today, today)
	if err != nil {
		return nil, err
	}
	lowStock, err := s.deps.Inventory.LowStock(ctx, dashboardListLimit)
	if err != nil {
		return nil, err
	}
	completed := aggregate.Count(tasks, func(t model.MaintenanceTask) bool { return t.Status == model.TaskCompleted })
	return &EmployeeDashboard{
		TasksToday:     tasks,
		CompletedToday: completed,
		OpenToday:      len(tasks) - completed,
		LowStock:       lowStock,
	}, nil
}

func (s *DashboardService) Customer(ctx context.Context, principal model.Principal) (*CustomerDashboard, error) {
	customerID, err := customerOf(principal)
	if err != nil {
		return nil, err
	}
	contracts, err := s.deps.ContractRepo.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}
	buildings, elevators, err := s.deps.Facilities.CustomerFleet(ctx, customerID)
	if err != nil {
		return nil, err
	}
	history, err := s.deps.Maintenance.History(ctx, principal)
	if err != nil {
		return nil, err
	}
	statuses := make([]model.ElevatorStatus, 0, len(elevators))
	for _, e := range elevators {
		statuses = append(statuses, e.Status)
	}
	return &CustomerDashboard{
		Contracts:      contracts,
		Buildings:      buildings,
		Elevators:      elevators,
		ElevatorStatus: aggregate.ElevatorStatusDistribution(statuses),
		Tasks:          history.Tasks,
		Records:        history.Records,
	}, nil
}

func (s *DashboardService) loadSummary(ctx context.Context, _ string) (model.DashboardSummary, int64, error) {
	var out model.DashboardSummary
	today := dateOnly(s.now())
	var err error
	if out.TotalElevators, err = s.deps.ElevatorRepo.Count(ctx); err != nil {
		return out, 0, err
	}
	if out.ActiveContracts, err = s.deps.ContractRepo.CountByStatus(ctx, model.ContractActive); err != nil {
		return out, 0, err
	}
	if out.MaintenanceToday, err = s.deps.TaskRepo.CountTasksBetween(ctx, today, today.AddDate(0, 0, 1)); err != nil {
		return out, 0, err
	}
	if out.PendingRequests, err = s.deps.TaskRepo.CountTasksByStatus(ctx, model.TaskPending); err != nil {
		return out, 0, err
	}
	if out.ActiveCustomers, err = s.deps.CustomerRepo.CountActive(ctx); err != nil {
		return out, 0, err
	}
	return out, 0, nil
}

func (s *DashboardService) loadTechnicians(ctx context.Context, _ string) ([]model.TechnicianStatus, int64, error) {
	technicians, err := s.deps.UserRepo.ListActiveByRole(ctx, model.RoleEmployee)
	if err != nil {
		return nil, 0, err
	}
	today := dateOnly(s.now())
	tasks, err := s.deps.TaskRepo.TasksBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, 0, err
	}
	load := aggregate.TechnicianLoad(technicians, tasks)
	return load, int64(len(load)), nil
}

// refresh starts a load for day, forcing one when day is already watched.
func refresh[T any](q *fetch.Query[string, T], day string) {
	if !q.Watch(day) {
		q.Refetch()
	}
}

// settle waits for q and returns its data, noting a failure under name.
func settle[T any](log zerolog.Logger, q *fetch.Query[string, T], name string, errs map[string]string) T {
	q.Wait()
	state := q.State()
	if state.Err != nil {
		log.Error().Err(state.Err).Str("panel", name).Msg("dashboard panel failed")
		errs[name] = "failed to load"
	}
	return state.Data
}
