package api

import (
	"alcyxob/gym-tracker/internal/service"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Kind    service.Kind `json:"kind"`
	Message string       `json:"message"`
}

var kindStatus = map[service.Kind]int{
	service.KindValidation:     http.StatusBadRequest,
	service.KindAuthentication: http.StatusUnauthorized,
	service.KindNotFound:       http.StatusNotFound,
	service.KindConflict:       http.StatusConflict,
	service.KindGatewayTimeout: http.StatusGatewayTimeout,
	service.KindInternal:       http.StatusInternalServerError,
}

// StatusFor returns the HTTP status used for kind.
func StatusFor(kind service.Kind) int {
	if code, ok := kindStatus[kind]; ok {
		return code
	}
	return http.StatusInternalServerError
}

// Helper to return JSON error response and abort request
func abortWithError(c *gin.Context, kind service.Kind, message string) {
	c.AbortWithStatusJSON(StatusFor(kind), ErrorResponse{Error: ErrorDetail{Kind: kind, Message: message}})
}

// respondError maps a service error onto the response. Internal causes are
// logged but never returned to the client.
func respondError(c *gin.Context, logger *zap.Logger, err error) {
	kind := service.KindOf(err)
	message := "an unexpected error occurred"

	var se *service.Error
	if errors.As(err, &se) {
		message = se.Message
	}

	switch kind {
	case service.KindInternal:
		logger.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	case service.KindGatewayTimeout:
		message = "a downstream service did not respond in time"
		logger.Warn("request timed out", zap.String("route", c.FullPath()), zap.Error(err))
	}
	abortWithError(c, kind, message)
}

// respondBindError reports a request that failed to bind or validate.
func respondBindError(c *gin.Context, err error) {
	abortWithError(c, service.KindValidation, describeBindError(err))
}

func describeBindError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Sprintf("invalid request: %v", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "objectid":
		return field + " must be a valid id"
	case "email":
		return field + " must be a valid email address"
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "required_without":
		return fmt.Sprintf("%s is required when %s is missing", field, fe.Param())
	}
	return fmt.Sprintf("%s failed the %s check", field, fe.Tag())
}
