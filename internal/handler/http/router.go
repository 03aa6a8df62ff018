package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondWithJSON(w, http.StatusOK, HealthResponse{
		Status:    "success",
		Message:   "API is working",
		Timestamp: time.Now().UTC(),
	})
}

type Handlers struct {
	Equipment    *EquipmentHandler
	Users        *UserHandler
	Reservations *ReservationHandler
	Stats        *StatsHandler
}

// NewRouter mounts the API under /api. When staticDir is set, every other
// path is served from it.
func NewRouter(h Handlers, staticDir string) *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	router.Get("/health", handleHealth)

	router.Route("/api", func(api chi.Router) {
		api.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		api.Get("/test", handleHealth)

		h.Equipment.RegisterRoutes(api)
		h.Users.RegisterRoutes(api)
		h.Reservations.RegisterRoutes(api)
		h.Stats.RegisterRoutes(api)
	})

	if staticDir != "" {
		router.Handle("/*", http.FileServer(http.Dir(staticDir)))
	}

	return router
}
