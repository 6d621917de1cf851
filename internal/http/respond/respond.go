// Package respond writes JSON bodies and maps domain errors to status codes.
package respond

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/MrJamesThe3rd/balancea/internal/budget"
	"github.com/MrJamesThe3rd/balancea/internal/category"
	"github.com/MrJamesThe3rd/balancea/internal/goal"
	"github.com/MrJamesThe3rd/balancea/internal/importer"
	"github.com/MrJamesThe3rd/balancea/internal/importer/cgd"
	"github.com/MrJamesThe3rd/balancea/internal/ledgercsv"
	"github.com/MrJamesThe3rd/balancea/internal/logger"
	"github.com/MrJamesThe3rd/balancea/internal/matching"
	"github.com/MrJamesThe3rd/balancea/internal/money"
	"github.com/MrJamesThe3rd/balancea/internal/transaction"
)

type errorResponse struct {
	Error string `json:"error"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to encode response")
	}
}

// Message writes a plain error message with the given status.
func Message(w http.ResponseWriter, r *http.Request, status int, msg string) {
	JSON(w, r, status, errorResponse{Error: msg})
}

// Error maps err to a status code. Server-side failures are logged and their
// detail is not sent to the client.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	status := Status(err)
	if status == http.StatusInternalServerError {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		Message(w, r, status, "internal error")

		return
	}

	Message(w, r, status, err.Error())
}

var notFound = []error{
	transaction.ErrNotFound,
	budget.ErrNotFound,
	goal.ErrNotFound,
	category.ErrNotFound,
	matching.ErrNotFound,
}

var badRequest = []error{
	money.ErrEmptyAmount,
	money.ErrInvalidAmount,
	money.ErrNonPositive,
	money.ErrAmountTooLarge,
	budget.ErrEmptyCategory,
	goal.ErrEmptyName,
	goal.ErrNameTooLong,
	goal.ErrNegativeAmount,
	goal.ErrZeroAmount,
	goal.ErrDeadlineInvalid,
	category.ErrEmptyName,
	category.ErrInvalidType,
	matching.ErrEmptyPattern,
	matching.ErrEmptyCategory,
	cgd.ErrUnknownLayout,
	importer.ErrUnknownFormat,
	ledgercsv.ErrMissingHeader,
	ledgercsv.ErrMissingColumn,
}

// Status returns the HTTP status that represents err.
func Status(err error) int {
	var verr *transaction.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}

	for _, target := range notFound {
		if errors.Is(err, target) {
			return http.StatusNotFound
		}
	}

	if errors.Is(err, category.ErrExists) {
		return http.StatusConflict
	}

	for _, target := range badRequest {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}
