package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit"
	audithandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/handler"
	auditrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/audit/repository"
	claimhandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/handler"
	claimrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/claim/repository"
	clienthandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/handler"
	clientrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/client/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/config"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/db"
	healthhandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/health/handler"
	membershiphandler "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/handler"
	membershiprepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/membership/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/obs"
	orgrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/organization/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/rbac"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/platform/routing"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/policy/engine"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/security"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/server/middleware"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/telemetry"
	telemetryotel "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/telemetry/otel"
	userrepo "github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/user/repository"
	"github.com/clearskaitechnologies-boop/skyscraper-v2-sub014/internal/web"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	logger, err := obs.NewLogger(cfg.LogLevel, cfg.Env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure, logger)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		// Let in-flight access-event emits finish before the log exporter closes.
		time.Sleep(telemetry.ShutdownDrainDuration)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer conn.Close()

	tokens, err := security.NewTokenProviderFromPEM("", cfg.SessionPublicKey, cfg.SessionIssuer, cfg.SessionAudience, cfg.SessionLifetime())
	if err != nil {
		return fmt.Errorf("session key: %w", err)
	}
	evaluator, err := engine.NewOPAEvaluator(ctx, "")
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}
	table, err := routing.LoadTable(cfg.RoutesFile)
	if err != nil {
		return fmt.Errorf("routes: %w", err)
	}

	memberships := membershiprepo.NewPostgresRepository(conn)
	orgs := orgrepo.NewPostgresRepository(conn)
	users := userrepo.NewPostgresRepository(conn)
	clients := clientrepo.NewPostgresRepository(conn)
	claims := claimrepo.NewPostgresRepository(conn)
	auditRepo := auditrepo.NewPostgresRepository(conn)
	auditLogger := audit.NewLogger(auditRepo, middleware.ClientIPFromContext, logger.Named("audit"))

	metrics := obs.NewMetrics()
	recorder := telemetry.NewRecorder(telemetryotel.NewEventEmitter(providers.LoggerProvider), logger.Named("telemetry"))

	guard := rbac.NewGuard(rbac.GuardDeps{
		Memberships: memberships,
		Orgs:        orgs,
		Provisioner: orgs,
		Users:       users,
		Clients:     clients,
		Grants:      clients,
		Permissions: evaluator,
		Audit:       auditLogger,
		Events:      recorder,
		Metrics:     metrics,
	}, rbac.GuardConfig{AutoProvisionOrg: cfg.AutoProvisionOrg})

	pages, err := web.NewPages(guard, claims, web.SignInPaths{Pro: table.SignIn, Client: table.ClientSignIn}, logger.Named("web"))
	if err != nil {
		return err
	}

	handler := server.NewRouter(server.Deps{
		Logger:        logger,
		Metrics:       metrics,
		Tokens:        tokens,
		SessionCookie: cfg.SessionCookieName,
		Routes:        table,
		Routing: routing.Options{
			UserTypeCookie: cfg.UserTypeCookieName,
			Metrics:        metrics,
			Recorder:       recorder,
			Logger:         logger.Named("routing"),
		},
		RateLimitRPS:   cfg.RateLimitRPS,
		RateLimitBurst: cfg.RateLimitBurst,
		Health:         healthhandler.NewHandler(conn, evaluator, logger),
		Claims:         claimhandler.NewHandler(guard, claims, auditLogger, logger),
		Members:        membershiphandler.NewHandler(guard, memberships, auditLogger, logger),
		Audit:          audithandler.NewHandler(guard, auditRepo, logger),
		Portal:         clienthandler.NewHandler(guard, claims, logger),
		Pages:          pages,
	})

	return server.New(cfg.HTTPAddr, handler, cfg.ShutdownTimeout(), logger).Run(ctx)
}
