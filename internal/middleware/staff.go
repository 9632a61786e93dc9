package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"bloodbank/internal/domain"
)

const StaffHeader = "X-Staff-ID"

type staffKey struct{}

// StaffLookup resolves a staff id against reference data.
type StaffLookup func(ctx context.Context, id int64) (*domain.Staff, error)

// StaffIdentity resolves the X-Staff-ID header, stores the staff member in
// the request context and tags the request logger with staff_id. Requests
// without the header pass through anonymously. A header naming unknown staff
// is rejected.
func StaffIdentity(lookup StaffLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(StaffHeader))
			if raw == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				writeError(w, http.StatusUnauthorized, "unauthorized", "invalid "+StaffHeader)
				return
			}
			staff, err := lookup(r.Context(), id)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					writeError(w, http.StatusUnauthorized, "unauthorized", "unknown staff")
					return
				}
				writeError(w, http.StatusServiceUnavailable, "store_unavailable", "staff lookup failed")
				return
			}
			zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
				return c.Int64("staff_id", staff.ID)
			})
			next.ServeHTTP(w, r.WithContext(ContextWithStaff(r.Context(), staff)))
		})
	}
}

// RequireStaff rejects requests that carry no resolved staff identity.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if StaffFromContext(r.Context()) == nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", StaffHeader+" required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func StaffFromContext(ctx context.Context) *domain.Staff {
	if v, ok := ctx.Value(staffKey{}).(*domain.Staff); ok {
		return v
	}
	return nil
}

func ContextWithStaff(ctx context.Context, staff *domain.Staff) context.Context {
	if staff == nil {
		return ctx
	}
	return context.WithValue(ctx, staffKey{}, staff)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}
