package controller

import (
	"errors"
	"net/http"

	"github.com/workshophq/backoffice/pkg/engine"
)

// MapError translates engine errors into an HTTP status and error envelope.
// Expected conditions (validation, not found, conflict) surface verbatim;
// anything else, including store failures, becomes a generic 500 so
// internals never leak to the caller.
func MapError(err error) (int, ErrorResponse) {
	var ve *engine.ValidationError
	if errors.As(err, &ve) {
		return http.StatusBadRequest, ErrorResponse{
			Success: false,
			Message: ve.Error(),
			Errors:  ve.Fields,
		}
	}

	var nf *engine.NotFoundError
	if errors.As(err, &nf) {
		return http.StatusNotFound, ErrorResponse{Success: false, Message: nf.Error()}
	}

	var ce *engine.ConflictError
	if errors.As(err, &ce) {
		return http.StatusConflict, ErrorResponse{Success: false, Message: ce.Error()}
	}

	return http.StatusInternalServerError, ErrorResponse{
		Success: false,
		Message: "an unexpected error occurred",
	}
}
