package http

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/flocklink/flocklink/internal/config"
	"github.com/flocklink/flocklink/internal/http/features/audit"
	"github.com/flocklink/flocklink/internal/http/features/churches"
	"github.com/flocklink/flocklink/internal/http/features/members"
	"github.com/flocklink/flocklink/internal/http/features/requests"
	"github.com/flocklink/flocklink/internal/http/features/session"
	"github.com/flocklink/flocklink/internal/http/middleware"
	"github.com/flocklink/flocklink/internal/httputil"
	"github.com/flocklink/flocklink/pkg/auth"
	"github.com/flocklink/flocklink/pkg/domain"
	"github.com/flocklink/flocklink/pkg/repository"
	"github.com/flocklink/flocklink/pkg/workflow"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Logger           *slog.Logger
	Config           *config.Config
	DB               *sql.DB
	TokenCodec       *auth.TokenCodec
	Guard            *auth.Guard
	MembersRepo      *repository.MembersRepository
	MembershipsRepo  *repository.MembershipsRepository
	ChurchesRepo     *repository.ChurchesRepository
	RequestsRepo     *repository.RequestsRepository
	AuditRepo        *repository.AuditRepository
	DecisionWorkflow *workflow.Service
}

// NewRouter creates a new HTTP router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Recover(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeaders(cfg.Config.IsProduction())))
	r.Use(middleware.RequestSizeLimit(cfg.Config.MaxRequestBodySize))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	rateLimiters := middleware.CreateRateLimiters(cfg.Config, cfg.Logger)

	cookieConfig := httputil.DefaultCookieConfig(cfg.Config.IsProduction())

	// Session routes
	sessionHandler := session.NewHandler(
		cfg.Logger,
		cfg.MembersRepo,
		cfg.MembershipsRepo,
		cfg.TokenCodec,
		cfg.Guard,
		cookieConfig,
	)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["auth"])
		r.Post("/v1/auth/login", sessionHandler.Login)
	})
	r.Post("/v1/auth/logout", sessionHandler.Logout)
	r.With(middleware.RequireRole(cfg.Guard, domain.RoleMember)).Get("/v1/me", sessionHandler.Me)

	// Membership request routes
	requestsHandler := requests.NewHandler(cfg.Logger, cfg.RequestsRepo, cfg.MembershipsRepo, cfg.DecisionWorkflow)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["api"])
		r.With(middleware.RequireRole(cfg.Guard, domain.RoleMember)).Post("/v1/requests", requestsHandler.Create)
		r.With(middleware.RequireRole(cfg.Guard, domain.RoleMember)).Delete("/v1/requests/{id}", requestsHandler.Cancel)
		r.With(middleware.RequireRole(cfg.Guard, domain.RoleAdmin)).Get("/v1/requests", requestsHandler.List)
		r.With(middleware.RequireRoleSensitive(cfg.Guard, domain.RoleAdmin)).Post("/v1/requests/{id}/approve", requestsHandler.Approve)
		r.With(middleware.RequireRoleSensitive(cfg.Guard, domain.RoleAdmin)).Post("/v1/requests/{id}/decline", requestsHandler.Decline)
	})

	// Member management (admin and above, tenant scoped)
	membersHandler := members.NewHandler(cfg.Logger, cfg.MembersRepo, cfg.MembershipsRepo)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["api"])
		r.With(middleware.RequireRole(cfg.Guard, domain.RoleAdmin)).Get("/v1/members", membersHandler.List)
		r.With(middleware.RequireRoleSensitive(cfg.Guard, domain.RoleAdmin)).Put("/v1/members/{id}/role", membersHandler.UpdateRole)
		r.With(middleware.RequireRoleSensitive(cfg.Guard, domain.RoleAdmin)).Delete("/v1/members/{id}", membersHandler.Remove)
	})

	// Church routes. Provisioning is gated on the system administrator
	// identity inside the handler, not on a role.
	churchesHandler := churches.NewHandler(cfg.Logger, cfg.DB, cfg.ChurchesRepo, cfg.AuditRepo, cfg.Guard)
	r.Group(func(r chi.Router) {
		r.Use(rateLimiters["api"])
		r.With(middleware.RequireRoleSensitive(cfg.Guard, domain.RoleMember)).Post("/v1/churches", churchesHandler.Create)
		r.With(middleware.RequireRole(cfg.Guard, domain.RoleMember)).Get("/v1/churches/{id}", churchesHandler.Get)
	})

	// Audit log (admin and above, tenant scoped)
	auditHandler := audit.NewHandler(cfg.Logger, cfg.AuditRepo)
	r.With(rateLimiters["api"], middleware.RequireRole(cfg.Guard, domain.RoleAdmin)).Get("/v1/audit", auditHandler.List)

	return r
}
