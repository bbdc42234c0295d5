// Package app wires the application together: config, logging,
// database, repositories, the rule engine, and the services.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/siftlab/companysift/config"
	"github.com/siftlab/companysift/engine"
	"github.com/siftlab/companysift/middleware"
	"github.com/siftlab/companysift/oracle"
	"github.com/siftlab/companysift/repositories"
	"github.com/siftlab/companysift/repositories/postgres"
	"github.com/siftlab/companysift/services/importer"
	"github.com/siftlab/companysift/services/rules"
)

// Dependencies is the central wiring point for dependency injection
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Persistence
	RepoFactory *postgres.RepositoryFactory
	Repos       *repositories.Repositories
	TxManager   repositories.TransactionManager

	// Domain
	Oracle *oracle.Client
	Engine *engine.Engine

	// Services
	RuleService   *rules.Service
	ImportService *importer.Service

	// Middleware (nil when auth is disabled)
	AuthMiddleware *middleware.AuthMiddleware
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx, cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initEngine(cfg)
	deps.initServices()
	deps.initAuth(cfg)

	logger.Info("all dependencies initialized")
	return deps, nil
}

// initDatabase initializes the connection pool, factory, and repositories
func (d *Dependencies) initDatabase(ctx context.Context, cfg *config.Config) error {
	factory, err := postgres.NewRepositoryFactory(cfg, d.Logger)
	if err != nil {
		return fmt.Errorf("failed to create repository factory: %w", err)
	}

	d.RepoFactory = factory
	d.DB = factory.GetDB()
	d.Repos = factory.NewRepositories()
	d.TxManager = factory.GetTransactionManager()

	if err := d.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	return nil
}

// initEngine initializes the semantic oracle and the rule engine
func (d *Dependencies) initEngine(cfg *config.Config) {
	d.Oracle = oracle.NewClient(cfg.Oracle, d.Logger)
	d.Engine = engine.New(d.Oracle, d.Logger)
}

// initServices initializes the application services
func (d *Dependencies) initServices() {
	d.RuleService = rules.NewService(d.Repos, d.TxManager, d.Engine, d.Logger)
	d.ImportService = importer.NewService(d.Repos, d.TxManager, d.Logger)
}

// initAuth initializes bearer-token auth when a secret is configured
func (d *Dependencies) initAuth(cfg *config.Config) {
	if !cfg.Auth.Enabled() {
		d.Logger.Warn("authentication disabled: AUTH_SECRET not set")
		return
	}
	d.AuthMiddleware = middleware.NewAuthMiddleware(cfg.Auth.Secret, d.Logger)
}

// Close releases held resources
func (d *Dependencies) Close() error {
	if d.RepoFactory != nil {
		return d.RepoFactory.Close()
	}
	return nil
}

// NewLogger builds a zap logger from the observability configuration
func NewLogger(cfg config.ObservabilityConfig, production bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}

	var zapCfg zap.Config
	if production || cfg.LogFormat == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
