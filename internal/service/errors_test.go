package service

import (
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindConflict, KindOf(ErrWorkoutAlreadyEnded))
	assert.Equal(t, KindValidation, KindOf(Validation("bad")))
	assert.Equal(t, KindNotFound, KindOf(fmt.Errorf("wrapped: %w", ErrUserNotFound)))
	assert.Equal(t, KindGatewayTimeout, KindOf(context.DeadlineExceeded))
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
}

func TestDownstream(t *testing.T) {
	assert.NoError(t, downstream(nil, "x"))

	timeout := downstream(fmt.Errorf("%w: server selection", repository.ErrTimeout), "load user")
	assert.Equal(t, KindGatewayTimeout, KindOf(timeout))

	internal := downstream(errors.New("socket closed"), "load user")
	assert.Equal(t, KindInternal, KindOf(internal))
	assert.Contains(t, internal.Error(), "socket closed")

	assert.Same(t, ErrMachineInUse, downstream(ErrMachineInUse, "x"))
}

func TestLookup(t *testing.T) {
	assert.Same(t, ErrWorkoutNotFound, lookup(repository.ErrNotFound, ErrWorkoutNotFound, "load workout"))
	assert.Equal(t, KindInternal, KindOf(lookup(errors.New("boom"), ErrWorkoutNotFound, "load workout")))
}
