package handler

import (
	"net/http"

	"github.com/vhvplatform/go-crm-automation-service/internal/shared/errors"
)

// statusFor maps an application error code to an HTTP status
func statusFor(err error) int {
	switch {
	case errors.IsCode(err, errors.CodeValidation):
		return http.StatusBadRequest
	case errors.IsCode(err, errors.CodeNotFound):
		return http.StatusNotFound
	case errors.IsCode(err, errors.CodeForbidden):
		return http.StatusForbidden
	case errors.IsCode(err, errors.CodeUnauthorized):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
