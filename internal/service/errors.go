package service

import (
	"alcyxob/gym-tracker/internal/repository"
	"context"
	"errors"
)

// Kind is the stable, client-visible category of a failure.
type Kind string

const (
	KindValidation     Kind = "validation_error"
	KindNotFound       Kind = "not_found"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication_error"
	KindGatewayTimeout Kind = "gateway_timeout"
	KindInternal       Kind = "internal_error"
)

// Error is the error type returned by every service method.
type Error struct {
	Kind    Kind
	Message string
	Err     error // underlying cause, never shown to clients
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// --- Error Definitions ---
var (
	ErrUserAlreadyExists    = &Error{Kind: KindConflict, Message: "a user with this username or email already exists"}
	ErrAuthenticationFailed = &Error{Kind: KindAuthentication, Message: "invalid username, email or password"}
	ErrInvalidSession       = &Error{Kind: KindAuthentication, Message: "session is invalid or has expired"}
	ErrNotOwner             = &Error{Kind: KindAuthentication, Message: "session user does not own this resource"}
	ErrUserNotFound         = &Error{Kind: KindNotFound, Message: "user not found"}
	ErrMachineNotFound      = &Error{Kind: KindNotFound, Message: "machine not found"}
	ErrWorkoutNotFound      = &Error{Kind: KindNotFound, Message: "workout not found"}
	ErrActiveWorkoutExists  = &Error{Kind: KindConflict, Message: "user already has an active workout"}
	ErrWorkoutAlreadyEnded  = &Error{Kind: KindConflict, Message: "workout has already ended"}
	ErrWorkoutNotEnded      = &Error{Kind: KindConflict, Message: "only ended workouts can be rated"}
	ErrMachineAlreadyAdded  = &Error{Kind: KindConflict, Message: "machine is already part of this workout"}
	ErrMachineInUse         = &Error{Kind: KindConflict, Message: "machine is already in use"}
	ErrImagesDisabled       = &Error{Kind: KindInternal, Message: "image storage is not configured"}
)

// Validation builds a validation error with message.
func Validation(message string) error {
	return &Error{Kind: KindValidation, Message: message}
}

// KindOf returns the kind of err. Errors that did not come from this
// package are internal, unless they were caused by a timeout.
func KindOf(err error) Kind {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind
	}
	if isTimeout(err) {
		return KindGatewayTimeout
	}
	return KindInternal
}

func isTimeout(err error) bool {
	return errors.Is(err, repository.ErrTimeout) || errors.Is(err, context.DeadlineExceeded)
}

// downstream wraps an unexpected repository or storage failure.
func downstream(err error, message string) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	if isTimeout(err) {
		return &Error{Kind: KindGatewayTimeout, Message: "downstream call timed out", Err: err}
	}
	return &Error{Kind: KindInternal, Message: message, Err: err}
}

// lookup maps repository.ErrNotFound onto notFound and everything else
// through downstream.
func lookup(err error, notFound *Error, message string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return downstream(err, message)
}
