package service

import (
	"alcyxob/gym-tracker/internal/domain"
	"alcyxob/gym-tracker/internal/repository/memory"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateMachine(t *testing.T) {
	svc := NewMachineService(memory.NewStore().Machines())
	ctx := context.Background()

	m, err := svc.CreateMachine(ctx, CreateMachineInput{Name: " Rower ", Category: domain.CategoryCardio, Location: "Floor 1"})
	require.NoError(t, err)
	assert.Equal(t, "Rower", m.Name)
	assert.Equal(t, domain.MachineAvailable, m.Status)
	assert.False(t, m.ID.IsZero())

	_, err = svc.CreateMachine(ctx, CreateMachineInput{Name: "Rower", Category: "yoga"})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateMachine(ctx, CreateMachineInput{Category: domain.CategoryCardio})
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = svc.CreateMachine(ctx, CreateMachineInput{Name: "Rower", Category: domain.CategoryCardio, Status: "broken"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestListMachines(t *testing.T) {
	svc := NewMachineService(memory.NewStore().Machines())
	ctx := context.Background()

	for _, in := range []CreateMachineInput{
		{Name: "Treadmill", Category: domain.CategoryCardio},
		{Name: "Bench", Category: domain.CategoryStrength},
		{Name: "Bike", Category: domain.CategoryCardio, Status: domain.MachineOutOfService},
	} {
		_, err := svc.CreateMachine(ctx, in)
		require.NoError(t, err)
	}

	all, err := svc.ListMachines(ctx, domain.MachineFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Bench", all[0].Name)

	cardio, err := svc.ListMachines(ctx, domain.MachineFilter{Category: domain.CategoryCardio})
	require.NoError(t, err)
	assert.Len(t, cardio, 2)

	available, err := svc.ListMachines(ctx, domain.MachineFilter{Category: domain.CategoryCardio, Status: domain.MachineAvailable})
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, "Treadmill", available[0].Name)

	_, err = svc.ListMachines(ctx, domain.MachineFilter{Status: "busy"})
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestUpdateMachineStatus(t *testing.T) {
	svc := NewMachineService(memory.NewStore().Machines())
	ctx := context.Background()

	m, err := svc.CreateMachine(ctx, CreateMachineInput{Name: "Squat Rack", Category: domain.CategoryStrength})
	require.NoError(t, err)

	inUse, err := svc.UpdateStatus(ctx, m.ID, domain.MachineInUse)
	require.NoError(t, err)
	assert.Equal(t, domain.MachineInUse, inUse.Status)

	_, err = svc.UpdateStatus(ctx, m.ID, domain.MachineInUse)
	assert.ErrorIs(t, err, ErrMachineInUse)

	// Releasing is not exclusive, so repeating it is fine.
	_, err = svc.UpdateStatus(ctx, m.ID, domain.MachineAvailable)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, m.ID, domain.MachineAvailable)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(ctx, primitive.NewObjectID(), domain.MachineAvailable)
	assert.ErrorIs(t, err, ErrMachineNotFound)

	_, err = svc.UpdateStatus(ctx, m.ID, "on-fire")
	assert.Equal(t, KindValidation, KindOf(err))
}
