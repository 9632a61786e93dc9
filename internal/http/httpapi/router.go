package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"bloodbank/internal/http/handlers"
	"bloodbank/internal/middleware"
)

// Options tunes the cross-cutting middleware.
type Options struct {
	Logger             zerolog.Logger
	CORSAllowedOrigins []string
	RateLimitPerMinute int
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.RealIP,
		middleware.RequestID(opts.Logger),
		middleware.AccessLog(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.CORSAllowedOrigins),
		middleware.RateLimit(opts.RateLimitPerMinute, time.Minute),
		middleware.StaffIdentity(app.Repo.GetStaffByID),
	)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/healthz", app.Health)
		r.Get("/openapi.json", app.OpenAPIJSON)
		r.Get("/docs", app.OpenAPIDocs)

		r.Route("/donors", func(r chi.Router) {
			r.Get("/", app.ListDonors)
			r.With(middleware.RequireStaff).Post("/", app.CreateDonor)
			r.Route("/{nric}", func(r chi.Router) {
				r.Get("/", app.GetDonor)
				r.Get("/donations", app.DonorDonations)
				r.With(middleware.RequireStaff).Put("/", app.UpdateDonor)
				r.With(middleware.RequireStaff).Delete("/", app.DeleteDonor)
			})
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", app.ListDonations)
			r.Get("/available", app.AvailableDonations)
			r.With(middleware.RequireStaff).Post("/", app.RecordDonation)
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", app.ListRequests)
			r.With(middleware.RequireStaff).Post("/", app.CreateRequest)
			r.Get("/{id}", app.GetRequest)
			r.With(middleware.RequireStaff).Post("/{id}/fulfill", app.FulfillRequest)
		})

		r.Route("/branches", func(r chi.Router) {
			r.Get("/", app.ListBranches)
			r.Get("/{id}/inventory", app.BranchInventory)
		})

		r.Get("/dashboard", app.Dashboard)
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":"not_found","message":"route not found"}}` + "\n"))
	})

	return r
}
