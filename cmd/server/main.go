package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/cmdgate/cmdgate/application/port/inbound"
	"github.com/cmdgate/cmdgate/application/port/outbound"
	"github.com/cmdgate/cmdgate/application/usecase/admission"
	auditusecase "github.com/cmdgate/cmdgate/application/usecase/audit"
	"github.com/cmdgate/cmdgate/application/usecase/auth"
	"github.com/cmdgate/cmdgate/application/usecase/rules"
	"github.com/cmdgate/cmdgate/application/usecase/users"
	"github.com/cmdgate/cmdgate/domain/entity"
	"github.com/cmdgate/cmdgate/infrastructure/config"
	gatehttp "github.com/cmdgate/cmdgate/infrastructure/http"
	"github.com/cmdgate/cmdgate/infrastructure/persistence/memory"
	"github.com/cmdgate/cmdgate/infrastructure/persistence/postgres"
	"github.com/cmdgate/cmdgate/infrastructure/service/apikey"
	"github.com/cmdgate/cmdgate/infrastructure/service/logger"
	"github.com/cmdgate/cmdgate/infrastructure/service/ratelimit"
	"github.com/cmdgate/cmdgate/infrastructure/service/token"
)

type repositories struct {
	principals  outbound.PrincipalRepository
	ledger      outbound.LedgerRepository
	rules       outbound.RuleRepository
	submissions outbound.SubmissionRepository
	audit       outbound.AuditRepository
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	structuredLogger := logger.New(logger.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		ServiceName: "cmdgate",
	})
	structuredLogger.Info(ctx, "gateway starting", map[string]interface{}{
		"env":            cfg.Server.Environment,
		"driver":         cfg.Database.Driver,
		"default_policy": cfg.Admission.DefaultPolicy,
		"command_cost":   cfg.Admission.CommandCost,
	})

	keyService := apikey.NewService(cfg.Security.BcryptCost)

	repos, err := buildRepositories(ctx, cfg)
	if err != nil {
		structuredLogger.Error(ctx, "failed to initialize persistence", err, nil)
		log.Fatalf("failed to initialize persistence: %v", err)
	}

	if cfg.Database.Driver == "memory" {
		// Memory state does not survive restarts; seed an admin so the
		// gateway is administrable out of the box.
		seedAdmin(ctx, repos, keyService, structuredLogger)
	}

	tokenService, err := token.NewJWTService(cfg.Security.JWTSecret)
	if err != nil {
		log.Fatalf("failed to initialize token service: %v", err)
	}

	var limiter inbound.RateLimitService
	limiter, err = ratelimit.New(ratelimit.Config{
		Enabled:  cfg.RateLimit.Enabled,
		RedisURL: cfg.RateLimit.RedisURL,
		Requests: cfg.RateLimit.Requests,
		Window:   cfg.RateLimit.Window,
	}, logrus.New())
	if err != nil {
		structuredLogger.Error(ctx, "failed to initialize rate limiter", err, nil)
		log.Fatalf("failed to initialize rate limiter: %v", err)
	}

	policy := admission.PolicyReject
	if cfg.Admission.DefaultPolicy == "pending" {
		policy = admission.PolicyPending
	}

	useCases := gatehttp.UseCases{
		Auth: auth.NewUseCase(repos.principals, repos.ledger, keyService, tokenService,
			cfg.Security.TokenTTL, structuredLogger),
		Admission: admission.NewEngine(repos.rules, repos.ledger, repos.submissions, repos.audit,
			structuredLogger, cfg.Admission.CommandCost, policy),
		Rules:     rules.NewUseCase(repos.rules, repos.audit, structuredLogger),
		Users:     users.NewUseCase(repos.principals, repos.ledger, repos.audit, keyService, structuredLogger),
		Audit:     auditusecase.NewUseCase(repos.audit),
		RateLimit: limiter,
	}

	server := gatehttp.NewServer(gatehttp.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, useCases, structuredLogger)

	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			structuredLogger.Error(ctx, "server stopped", err, nil)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(shutdownCtx, "graceful shutdown failed", err, nil)
	}
}

func buildRepositories(ctx context.Context, cfg *config.Config) (*repositories, error) {
	if cfg.Database.Driver == "memory" {
		return &repositories{
			principals:  memory.NewPrincipalRepository(),
			ledger:      memory.NewLedgerRepository(),
			rules:       memory.NewRuleRepository(),
			submissions: memory.NewSubmissionRepository(),
			audit:       memory.NewAuditRepository(),
		}, nil
	}

	db, err := sql.Open("postgres", cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, err
	}

	return &repositories{
		principals:  postgres.NewPrincipalRepository(db),
		ledger:      postgres.NewLedgerRepository(db),
		rules:       postgres.NewRuleRepository(db),
		submissions: postgres.NewSubmissionRepository(db),
		audit:       postgres.NewAuditRepository(db),
	}, nil
}

func seedAdmin(ctx context.Context, repos *repositories, keys outbound.KeyService, log logger.Logger) {
	plaintext, keyID, hash, err := keys.Generate()
	if err != nil {
		log.Error(ctx, "failed to seed admin", err, nil)
		return
	}
	admin := entity.NewPrincipal("admin", keyID, hash, entity.RoleAdmin, 0)
	if err := repos.principals.Create(ctx, admin); err != nil {
		log.Error(ctx, "failed to seed admin", err, nil)
		return
	}
	if _, err := repos.ledger.Credit(ctx, admin.ID, 1000); err != nil {
		log.Error(ctx, "failed to grant seed admin credits", err, nil)
		return
	}
	// Shown once at startup; the hash is all that is retained.
	log.Info(ctx, "seeded admin principal", map[string]interface{}{
		"user_id": admin.ID,
		"api_key": plaintext,
	})
}
