package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gwind/medicoes/internal/catalog"
	"github.com/gwind/medicoes/internal/domain/consumption"
	"github.com/gwind/medicoes/internal/domain/materials"
	"github.com/gwind/medicoes/internal/infra/smartsheet"
	"github.com/gwind/medicoes/internal/syncer"
)

var errBadRequest = errors.New("bad request")

type errorJSON struct {
	Error   string `json:"error"`
	Details string `json:"detalhes,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps domain errors to HTTP status codes.
func statusOf(err error) int {
	var connErr *pgconn.ConnectError
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, consumption.ErrValidation),
		errors.Is(err, materials.ErrInvalid),
		errors.Is(err, catalog.ErrColumnsNotFound),
		errors.Is(err, catalog.ErrEmptyWorkbook):
		return http.StatusBadRequest
	case errors.Is(err, consumption.ErrMaterialNotFound),
		errors.Is(err, materials.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, syncer.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, syncer.ErrNotConfigured),
		errors.Is(err, catalog.ErrNotConfigured),
		errors.Is(err, smartsheet.ErrNotConfigured),
		errors.As(err, &connErr),
		pgconn.Timeout(err),
		errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		a.log.Error(msg, "err", err, "method", r.Method, "path", r.URL.Path, "status", status)
	} else {
		a.log.Warn(msg, "err", err, "method", r.Method, "path", r.URL.Path, "status", status)
	}
	writeJSON(w, status, errorJSON{Error: msg, Details: err.Error()})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
