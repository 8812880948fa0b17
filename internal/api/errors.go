package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nerrad567/hearth-core/internal/automation"
	"github.com/nerrad567/hearth-core/internal/device"
	"github.com/nerrad567/hearth-core/internal/location"
	"github.com/nerrad567/hearth-core/internal/voice"
)

// Error represents a structured error response.
type Error struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes.
const (
	ErrCodeBadRequest = "bad_request"
	ErrCodeNotFound   = "not_found"
	ErrCodeConflict   = "conflict"
	ErrCodeInternal   = "internal_error"
	ErrCodeValidation = "validation_error"
)

var notFoundErrors = []error{
	device.ErrDeviceNotFound,
	location.ErrRoomNotFound,
	automation.ErrRuleNotFound,
	voice.ErrCommandNotFound,
}

var validationErrors = []error{
	device.ErrInvalidDevice,
	device.ErrInvalidName,
	device.ErrInvalidDeviceType,
	device.ErrInvalidStatus,
	device.ErrInvalidCapability,
	device.ErrUnsupportedAction,
	device.ErrMissingParameter,
	device.ErrInvalidParameter,
	device.ErrCapabilityNotSupported,
	location.ErrInvalidRoom,
	location.ErrInvalidName,
	location.ErrInvalidSchedule,
	automation.ErrInvalidRule,
	automation.ErrInvalidName,
	automation.ErrInvalidTrigger,
	automation.ErrInvalidCondition,
	automation.ErrInvalidAction,
	automation.ErrInvalidSchedule,
	voice.ErrInvalidCommand,
}

// writeJSON writes a JSON response with the given status code and payload.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		//nolint:errcheck // Best-effort write to response; connection may be closed
		json.NewEncoder(w).Encode(v)
	}
}

// writeError writes a structured error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, Error{
		Status:  status,
		Code:    code,
		Message: message,
	})
}

// writeBadRequest writes a 400 error response.
func writeBadRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// writeInternalError writes a 500 error response.
func writeInternalError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, ErrCodeInternal, message)
}

// writeServiceError maps a domain error to a status code. Validation
// messages are safe to echo; anything unrecognised is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusNotFound, ErrCodeNotFound, err.Error())
			return
		}
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			writeError(w, http.StatusBadRequest, ErrCodeValidation, err.Error())
			return
		}
	}
	if errors.Is(err, automation.ErrRuleDisabled) {
		writeError(w, http.StatusConflict, ErrCodeConflict, err.Error())
		return
	}
	writeInternalError(w, "internal server error")
}

// decodeJSON decodes the request body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return false
	}
	return true
}
