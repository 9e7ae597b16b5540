package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/isdelr/pulse-be/internal/api/handlers"
	"github.com/isdelr/pulse-be/internal/auth"
	"github.com/isdelr/pulse-be/internal/services"
)

// Options carries the services and settings the router is built from.
type Options struct {
	UserService    services.UserServiceProvider
	TaskService    services.TaskServiceProvider
	SummaryService services.SummaryServiceProvider
	InternalAPIKey string
	AllowedOrigins []string
}

// NewRouter creates and configures a new Chi router.
func NewRouter(opts Options) *chi.Mux {
	r := chi.NewRouter()

	// Basic middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", auth.APIKeyHeader},
		MaxAge:         300,
	}))

	r.NotFound(handlers.NotFound)
	r.MethodNotAllowed(handlers.NotFound)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(opts.UserService)
	taskHandler := handlers.NewTaskHandler(opts.TaskService)
	summaryHandler := handlers.NewSummaryHandler(opts.SummaryService)
	requireUser := auth.JWTMiddleware(opts.UserService)

	r.Get("/health", handlers.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.With(requireUser).Get("/me", userHandler.GetMe)
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Use(requireUser)
			r.Get("/", taskHandler.GetAll)
			r.Post("/", taskHandler.Create)
			r.Put("/{id}", taskHandler.Update)
			r.Delete("/{id}", taskHandler.Delete)
		})

		r.Route("/summary", func(r chi.Router) {
			r.Use(auth.APIKeyMiddleware(opts.InternalAPIKey))
			r.Get("/daily", summaryHandler.GetDaily)
		})
	})

	return r
}
