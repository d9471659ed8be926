package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pribylovaa/equiptrack-gateway/internal/http/handlers"
	"github.com/pribylovaa/equiptrack-gateway/internal/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger   *slog.Logger
	Timeout  time.Duration
	BasePath string // например, "/api"; если пустой — роуты регистрируются на корне.
	// Authenticated — проверка сессии для защищённых маршрутов.
	Authenticated func(ctx context.Context) bool
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(h *handlers.Handlers, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),            // безопасно ловим паники
		middleware.RequestID(),          // формируем/прокидываем X-Request-Id (до логирования!)
		middleware.Logging(opts.Logger), // кладём request-scoped логгер в контекст и логируем
	)
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout)) // общий дедлайн запроса
	}

	authenticated := opts.Authenticated
	if authenticated == nil {
		authenticated = func(context.Context) bool { return false }
	}

	if opts.BasePath != "" {
		sub := chi.NewRouter()
		registerRoutes(sub, h, authenticated)
		root.Mount(opts.BasePath, sub)
		return root
	}

	registerRoutes(root, h, authenticated)
	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, authenticated func(ctx context.Context) bool) {
	// auth
	r.Post("/auth/login", h.Login)
	r.Post("/auth/logout", h.Logout)
	r.Get("/auth/session", h.SessionStatus)

	// саморегистрация агентов
	r.Post("/inscription", h.Register)
	r.Post("/inscription/{token}", h.Register)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireSession(authenticated))

		r.Get("/dashboard", h.GetDashboard)

		r.Get("/agents", h.ListAgents)
		r.Post("/agents", h.CreateAgent)

		r.Get("/equipements", h.ListEquipements)
		r.Post("/equipements", h.CreateEquipement)

		r.Get("/affectations", h.ListAffectations)
		r.Post("/affectations", h.CreateAffectation)
		r.Get("/affectations/{id}/pdf", h.AffectationPDF)

		r.Get("/restitutions", h.ListRestitutions)
		r.Post("/restitutions", h.CreateRestitution)

		r.Get("/incidents", h.ListIncidents)
		r.Post("/incidents", h.CreateIncident)

		r.Get("/invites", h.ListInvites)
		r.Post("/invites", h.CreateInvite)

		r.Get("/rapports", h.Reports)
		r.Get("/rapports/export", h.ExportReports)
	})
}
