package service

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateMachineInput struct {
	Name     string
	Category domain.MachineCategory
	Status   domain.MachineStatus // defaults to available
	Location string
}

type MachineService interface {
	CreateMachine(ctx context.Context, input CreateMachineInput) (*domain.Machine, error)
	ListMachines(ctx context.Context, filter domain.MachineFilter) ([]domain.Machine, error)
	// UpdateStatus changes a machine's status. Moving a machine to in-use
	// fails with ErrMachineInUse if it already is.
	UpdateStatus(ctx context.Context, machineID primitive.ObjectID, status domain.MachineStatus) (*domain.Machine, error)
}

type machineService struct {
	machineRepo repository.MachineRepository
}

// NewMachineService creates a new instance of machineService.
func NewMachineService(machineRepo repository.MachineRepository) MachineService {
	return &machineService{machineRepo: machineRepo}
}

func (s *machineService) CreateMachine(ctx context.Context, input CreateMachineInput) (*domain.Machine, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, Validation("machine name is required")
	}
	if !input.Category.Valid() {
		return nil, Validation("category must be cardio or strength")
	}
	if input.Status == "" {
		input.Status = domain.MachineAvailable
	}
	if !input.Status.Valid() {
		return nil, Validation("status must be available, in-use or out-of-service")
	}

	machine := &domain.Machine{
		Name:     name,
		Category: input.Category,
		Status:   input.Status,
		Location: strings.TrimSpace(input.Location),
	}
	id, err := s.machineRepo.Create(ctx, machine)
	if err != nil {
		return nil, downstream(err, "create machine")
	}
	machine.ID = id
	return machine, nil
}

func (s *machineService) ListMachines(ctx context.Context, filter domain.MachineFilter) ([]domain.Machine, error) {
	if filter.Category != "" && !filter.Category.Valid() {
		return nil, Validation("category must be cardio or strength")
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, Validation("status must be available, in-use or out-of-service")
	}
	machines, err := s.machineRepo.List(ctx, filter)
	if err != nil {
		return nil, downstream(err, "list machines")
	}
	return machines, nil
}

func (s *machineService) UpdateStatus(ctx context.Context, machineID primitive.ObjectID, status domain.MachineStatus) (*domain.Machine, error) {
	if !status.Valid() {
		return nil, Validation("status must be available, in-use or out-of-service")
	}

	exclusive := status == domain.MachineInUse
	machine, err := s.machineRepo.UpdateStatus(ctx, machineID, status, exclusive)
	if err != nil {
		if errors.Is(err, repository.ErrConditionFailed) {
			return nil, ErrMachineInUse
		}
		return nil, lookup(err, ErrMachineNotFound, "update machine status")
	}
	return machine, nil
}
