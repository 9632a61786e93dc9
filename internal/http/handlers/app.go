package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"bloodbank/internal/dashboard"
	"bloodbank/internal/domain"
	"bloodbank/internal/fulfillment"
	"bloodbank/internal/inventory"
	"bloodbank/internal/ledger"
	"bloodbank/internal/middleware"
)

const maxBodyBytes = 1 << 20

// App carries the services every handler needs.
type App struct {
	Repo            domain.Repository
	Ledger          *ledger.Ledger
	Aggregator      *inventory.Aggregator
	Engine          *fulfillment.Engine
	Reporter        *dashboard.Reporter
	DefaultBranchID int64
	Logger          zerolog.Logger
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, map[string]any{
		"error": map[string]string{"code": errCode, "message": message},
	})
}

// fail renders err by its place in the domain taxonomy.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		a.error(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		a.error(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, domain.ErrDuplicateKey):
		a.error(w, http.StatusConflict, "duplicate", err.Error())
	case errors.Is(err, domain.ErrAlreadyUsed):
		a.error(w, http.StatusConflict, "already_used", err.Error())
	case errors.Is(err, domain.ErrAlreadyFulfilled):
		a.error(w, http.StatusConflict, "already_fulfilled", err.Error())
	case errors.Is(err, domain.ErrBackingStore):
		a.logger(r).Error().Err(err).Msg("backing store failure")
		a.error(w, http.StatusServiceUnavailable, "store_unavailable", "backing store unavailable")
	default:
		a.logger(r).Error().Err(err).Msg("unhandled error")
		a.error(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

func (a *App) logger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &a.Logger
}

// decode reads a JSON body into v. Malformed input is a validation error.
func (a *App) decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return domain.Invalid("body", fmt.Sprintf("invalid JSON: %v", err))
	}
	return nil
}

func (a *App) currentStaff(r *http.Request) *domain.Staff {
	return middleware.StaffFromContext(r.Context())
}

func pathInt64(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

func queryInt64(r *http.Request, name string, fallback int64) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, domain.Invalid(name, "must be a positive integer")
	}
	return v, nil
}

type listResponse[T any] struct {
	Items []T `json:"items"`
}

func list[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items}
}
