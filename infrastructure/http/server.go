// Package http is the gateway boundary: the router, middleware chain, and
// HTTP server lifecycle.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/infrastructure/http/handler"
	"github.com/cmdgate/cmdgate/infrastructure/http/middleware"
	"github.com/cmdgate/cmdgate/infrastructure/http/response"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// UseCases bundles everything the router dispatches to.
type UseCases struct {
	Auth      inbound.AuthUseCase
	Admission inbound.AdmissionUseCase
	Rules     inbound.RuleUseCase
	Users     inbound.UserUseCase
	Audit     inbound.AuditUseCase
	RateLimit inbound.RateLimitService
}

type Server struct {
	server *http.Server
	log    logger.Logger
}

func NewServer(cfg ServerConfig, uc UseCases, log logger.Logger) *Server {
	router := NewRouter(uc, log)

	addr := cfg.Host + ":" + cfg.Port
	return &Server{
		log: log,
		server: &http.Server{
			Addr:         addr,
			Handler:      router,
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// NewRouter builds the full route table with its middleware chain. Exposed
// separately so handler tests can drive it through httptest.
func NewRouter(uc UseCases, log logger.Logger) http.Handler {
	authMW := middleware.NewAuthMiddleware(uc.Auth)

	authHandler := handler.NewAuthHandler(uc.Auth)
	commandHandler := handler.NewCommandHandler(uc.Admission)
	ruleHandler := handler.NewRuleHandler(uc.Rules)
	userHandler := handler.NewUserHandler(uc.Users)
	auditHandler := handler.NewAuditHandler(uc.Audit)

	router := mux.NewRouter()
	router.Use(middleware.CorrelationID)
	router.Use(loggingMiddleware(log))
	router.Use(recoveryMiddleware(log))
	router.Use(middleware.CORS)

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, http.StatusOK, "ok", nil)
	}).Methods(http.MethodGet)

	router.HandleFunc("/auth/token",
		authMW.Require(middleware.OpIssueToken, authHandler.IssueToken)).Methods(http.MethodPost)

	router.HandleFunc("/users/me",
		authMW.Require(middleware.OpSelfLookup, userHandler.Me)).Methods(http.MethodGet)

	router.HandleFunc("/commands",
		authMW.Require(middleware.OpListOwnCommands, commandHandler.ListOwn)).Methods(http.MethodGet)
	router.HandleFunc("/commands",
		authMW.Require(middleware.OpSubmitCommand,
			middleware.RateLimit(uc.RateLimit, commandHandler.Submit))).Methods(http.MethodPost)

	router.HandleFunc("/rules",
		authMW.Require(middleware.OpListRules, ruleHandler.List)).Methods(http.MethodGet)
	router.HandleFunc("/rules",
		authMW.Require(middleware.OpCreateRule, ruleHandler.Create)).Methods(http.MethodPost)
	router.HandleFunc("/rules/{id}",
		authMW.Require(middleware.OpDeleteRule, ruleHandler.Delete)).Methods(http.MethodDelete)

	router.HandleFunc("/users",
		authMW.Require(middleware.OpListUsers, userHandler.List)).Methods(http.MethodGet)
	router.HandleFunc("/users",
		authMW.Require(middleware.OpCreateUser, userHandler.Create)).Methods(http.MethodPost)
	router.HandleFunc("/users/{id}/credits",
		authMW.Require(middleware.OpAdjustCredits, userHandler.SetCredits)).Methods(http.MethodPut)

	router.HandleFunc("/audit-logs",
		authMW.Require(middleware.OpReadAudit, auditHandler.List)).Methods(http.MethodGet)

	return router
}

func (s *Server) Start() error {
	s.log.Info(context.Background(), "http server starting", map[string]interface{}{
		"addr": s.server.Addr,
	})
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info(ctx, "http server shutting down", nil)
	return s.server.Shutdown(ctx)
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info(r.Context(), "request handled", map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"remote":   r.RemoteAddr,
				"duration": time.Since(start).String(),
			})
		})
	}
}

func recoveryMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error(r.Context(), "panic recovered", nil, map[string]interface{}{
						"panic": rec,
						"path":  r.URL.Path,
					})
					response.InternalServerError(w, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
