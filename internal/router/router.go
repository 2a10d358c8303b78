package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/tripdeck/tripdeck/internal/api/auth"
	"github.com/tripdeck/tripdeck/internal/api/suggestion"
	"github.com/tripdeck/tripdeck/internal/api/trip"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            *auth.HandlerImpl
	TripHandler            *trip.HandlerImpl
	SuggestionHandler      *suggestion.HandlerImpl
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected
// to be applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// Public auth routes
		r.Group(func(r chi.Router) {
			r.Post("/auth/register", cfg.AuthHandler.Register)
			r.Post("/auth/login", cfg.AuthHandler.Login)
		})

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/destination-ideas", cfg.SuggestionHandler.SuggestDestinations)

			r.Route("/trips", func(r chi.Router) {
				r.Post("/", cfg.TripHandler.CreateTrip)
				r.Get("/", cfg.TripHandler.ListTrips)

				r.Route("/{tripID}", func(r chi.Router) {
					r.Get("/", cfg.TripHandler.GetTrip)
					r.Put("/", cfg.TripHandler.UpdateTrip)
					r.Delete("/", cfg.TripHandler.DeleteTrip)

					r.Post("/places", cfg.TripHandler.AddPlace)
					r.Get("/places", cfg.TripHandler.ListPlaces)
					r.Put("/places/{placeID}", cfg.TripHandler.UpdatePlace)
					r.Delete("/places/{placeID}", cfg.TripHandler.DeletePlace)

					r.Post("/suggestions", cfg.SuggestionHandler.GetSuggestions)
					r.Get("/tips", cfg.SuggestionHandler.GetTravelTips)
				})
			})
		})
	})

	return r
}
