package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nurpe/liftcare/internal/model"
	"github.com/nurpe/liftcare/internal/repository"
)

type BuildingInput struct {
	CustomerID   *uuid.UUID `json:"customer_id" validate:"required"`
	Name         string     `json:"name" validate:"required"`
	Address      string     `json:"address" validate:"required"`
	City         string     `json:"city"`
	PostalCode   string     `json:"postal_code"`
	FloorsCount  int        `json:"floors_count" validate:"gte=0"`
	BuildingType string     `json:"building_type"`
	Notes        string     `json:"notes"`
}

var buildingUpdateSchema = updateSchema{
	"customer_id":   {kind: uuidField},
	"name":          {kind: textField, required: true},
	"address":       {kind: textField, required: true},
	"city":          {kind: textField},
	"postal_code":   {kind: textField},
	"floors_count":  {kind: intField},
	"building_type": {kind: textField},
	"notes":         {kind: textField},
}

type ElevatorInput struct {
	BuildingID              *uuid.UUID `json:"building_id" validate:"required"`
	SerialNumber            string     `json:"serial_number" validate:"required"`
	Model                   string     `json:"model"`
	Manufacturer            string     `json:"manufacturer"`
	Capacity                int        `json:"capacity" validate:"gte=0"`
	FloorsServed            int        `json:"floors_served" validate:"gte=0"`
	InstallationDate        string     `json:"installation_date"`
	LastCertificationDate   string     `json:"last_certification_date"`
	CertificationExpiryDate string     `json:"certification_expiry_date"`
	Status                  string     `json:"status" validate:"omitempty,oneof=operational maintenance out_of_service"`
	Notes                   string     `json:"notes"`
}

var elevatorUpdateSchema = updateSchema{
	"building_id":               {kind: uuidField},
	"serial_number":             {kind: textField, required: true},
	"model":                     {kind: textField},
	"manufacturer":              {kind: textField},
	"capacity":                  {kind: intField},
	"floors_served":             {kind: intField},
	"installation_date":         {kind: dateField, nullable: true},
	"last_certification_date":   {kind: dateField, nullable: true},
	"certification_expiry_date": {kind: dateField, nullable: true},
	"status": {kind: textField, allowed: []string{
		string(model.ElevatorOperational), string(model.ElevatorMaintenance), string(model.ElevatorOutOfService),
	}},
	"notes": {kind: textField},
}

// FacilityService manages the buildings of customers and the elevators in them.
type FacilityService struct {
	buildings BuildingStore
	elevators ElevatorStore
	activity  ActivityRecorder
	now       func() time.Time
}

func NewFacilityService(buildings BuildingStore, elevators ElevatorStore, activity ActivityRecorder) *FacilityService {
	return &FacilityService{buildings: buildings, elevators: elevators, activity: activity, now: utcNow}
}

func (s *FacilityService) ListBuildings(ctx context.Context, customerID *uuid.UUID, params repository.ListParams) ([]model.Building, int64, error) {
	return s.buildings.List(ctx, customerID, params)
}

func (s *FacilityService) GetBuilding(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	building, err := s.buildings.Get(ctx, id)
	return building, translate(err, "building")
}

func (s *FacilityService) CreateBuilding(ctx context.Context, actor model.Principal, input BuildingInput) (*model.Building, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Address = strings.TrimSpace(input.Address)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	building := &model.Building{
		CustomerID:   *input.CustomerID,
		Name:         input.Name,
		Address:      input.Address,
		City:         input.City,
		PostalCode:   input.PostalCode,
		FloorsCount:  input.FloorsCount,
		BuildingType: input.BuildingType,
		Notes:        input.Notes,
	}
	if err := s.buildings.Create(ctx, building); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "building.created", building.Name)
	return building, nil
}

func (s *FacilityService) UpdateBuilding(ctx context.Context, actor model.Principal, id uuid.UUID, partial map[string]interface{}) (*model.Building, error) {
	fields, err := buildingUpdateSchema.build(partial, s.now())
	if err != nil {
		return nil, err
	}
	building, err := s.buildings.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "building")
	}
	record(ctx, s.activity, actor, "building.updated", building.Name)
	return building, nil
}

func (s *FacilityService) DeleteBuilding(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := s.buildings.Delete(ctx, id); err != nil {
		return translate(err, "building")
	}
	record(ctx, s.activity, actor, "building.deleted", id.String())
	return nil
}

func (s *FacilityService) ListElevators(ctx context.Context, buildingID *uuid.UUID, params repository.ListParams) ([]model.Elevator, int64, error) {
	return s.elevators.List(ctx, buildingID, params)
}

func (s *FacilityService) GetElevator(ctx context.Context, id uuid.UUID) (*model.Elevator, error) {
	elevator, err := s.elevators.Get(ctx, id)
	return elevator, translate(err, "elevator")
}

func (s *FacilityService) CreateElevator(ctx context.Context, actor model.Principal, input ElevatorInput) (*model.Elevator, error) {
	input.SerialNumber = strings.TrimSpace(input.SerialNumber)
	if err := validateStruct(input); err != nil {
		return nil, err
	}
	dates, err := dateFields(map[string]string{
		"installation_date":         input.InstallationDate,
		"last_certification_date":   input.LastCertificationDate,
		"certification_expiry_date": input.CertificationExpiryDate,
	})
	if err != nil {
		return nil, err
	}
	if _, err := s.buildings.Get(ctx, *input.BuildingID); err != nil {
		return nil, translate(err, "building")
	}

	elevator := &model.Elevator{
		BuildingID:              *input.BuildingID,
		SerialNumber:            input.SerialNumber,
		Model:                   input.Model,
		Manufacturer:            input.Manufacturer,
		Capacity:                input.Capacity,
		FloorsServed:            input.FloorsServed,
		InstallationDate:        optionalDate(dates, "installation_date"),
		LastCertificationDate:   optionalDate(dates, "last_certification_date"),
		CertificationExpiryDate: optionalDate(dates, "certification_expiry_date"),
		Status:                  model.ElevatorStatus(input.Status),
		Notes:                   input.Notes,
	}
	if err := s.elevators.Create(ctx, elevator); err != nil {
		return nil, err
	}
	record(ctx, s.activity, actor, "elevator.created", elevator.SerialNumber)
	return elevator, nil
}

func (s *FacilityService) UpdateElevator(ctx context.Context, actor model.Principal, id uuid.UUID, partial map[string]interface{}) (*model.Elevator, error) {
	fields, err := elevatorUpdateSchema.build(partial, s.now())
	if err != nil {
		return nil, err
	}
	elevator, err := s.elevators.Update(ctx, id, fields)
	if err != nil {
		return nil, translate(err, "elevator")
	}
	record(ctx, s.activity, actor, "elevator.updated", elevator.SerialNumber)
	return elevator, nil
}

func (s *FacilityService) DeleteElevator(ctx context.Context, actor model.Principal, id uuid.UUID) error {
	if err := s.elevators.Delete(ctx, id); err != nil {
		return translate(err, "elevator")
	}
	record(ctx, s.activity, actor, "elevator.deleted", id.String())
	return nil
}

// CustomerFleet returns the buildings of a customer and every elevator in them.
func (s *FacilityService) CustomerFleet(ctx context.Context, customerID uuid.UUID) ([]model.Building, []model.Elevator, error) {
	buildings, err := s.buildings.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, nil, err
	}
	ids := make([]uuid.UUID, 0, len(buildings))
	for _, b := range buildings {
		ids = append(ids, b.ID)
	}
	elevators, err := s.elevators.ListByBuildings(ctx, ids)
	if err != nil {
		return nil, nil, err
	}
	return buildings, elevators, nil
}

func optionalDate(dates map[string]time.Time, key string) *time.Time {
	t, ok := dates[key]
	if !ok {
		return nil
	}
	return &t
}
