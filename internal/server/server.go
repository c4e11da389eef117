package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"todo-planner/internal/config"
	"todo-planner/internal/repository"
	"todo-planner/internal/service"
)

// Server wires services into the HTTP API.
type Server struct {
	cfg         config.Config
	log         *zap.Logger
	userRepo    *repository.UserRepository
	metaRepo    *repository.MetaRepository
	taskSvc     *service.TaskService
	categorySvc *service.CategoryService
	statsSvc    *service.StatsService
	overdueSvc  *service.OverdueService
	reminderSvc *service.ReminderService
}

func New(
	cfg config.Config,
	log *zap.Logger,
	userRepo *repository.UserRepository,
	metaRepo *repository.MetaRepository,
	taskSvc *service.TaskService,
	categorySvc *service.CategoryService,
	statsSvc *service.StatsService,
	overdueSvc *service.OverdueService,
	reminderSvc *service.ReminderService,
) *Server {
	return &Server{
		cfg:         cfg,
		log:         log,
		userRepo:    userRepo,
		metaRepo:    metaRepo,
		taskSvc:     taskSvc,
		categorySvc: categorySvc,
		statsSvc:    statsSvc,
		overdueSvc:  overdueSvc,
		reminderSvc: reminderSvc,
	}
}

// Router builds the chi router with middleware and all routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(Logging(s.log))
	// The cron caller and the web client both expect JSON error bodies.
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		respondError(w, http.StatusNotFound, "not found")
	})
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{s.cfg.BaseURL},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
	}))

	r.Route("/api", func(r chi.Router) {
		// Periodic sweeps, invoked by the external cron trigger.
		r.Route("/notifications", func(r chi.Router) {
			r.Post("/overdue", s.handleOverdueSweep)
			r.Post("/reminders", s.handleReminderSweep)
		})

		r.Post("/users", s.handleRegisterUser)

		r.Route("/users/{uid}", func(r chi.Router) {
			r.Put("/timezone", s.handleSaveTimezone)
			r.Put("/push-token", s.handleSavePushToken)
			r.Get("/stats", s.handleStats)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", s.handleListTasks)
				r.Post("/", s.handleCreateTask)
				r.Put("/{id}", s.handleEditTask)
				r.Delete("/{id}", s.handleDeleteTask)
				r.Post("/{id}/toggle", s.handleToggleTask)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", s.handleListCategories)
				r.Post("/", s.handleCreateCategory)
				r.Delete("/{id}", s.handleDeleteCategory)
			})
		})
	})

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}
