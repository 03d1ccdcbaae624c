package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/kendall-kelly/box-erp-api/config"
	"github.com/kendall-kelly/box-erp-api/controllers"
	"github.com/kendall-kelly/box-erp-api/logger"
	"github.com/kendall-kelly/box-erp-api/migrations"
	"github.com/kendall-kelly/box-erp-api/router"
	"github.com/kendall-kelly/box-erp-api/services"
	"github.com/kendall-kelly/box-erp-api/workflow"
)

// Module wires storage, runtime components and lifecycle hooks.
var Module = fx.Options(
	fx.Provide(
		newDatabase,
		newWorkflowEngine,
		newObjectStore,
		newRestarter,
		newBackupService,
		newHTTPServer,
	),
	fx.Invoke(registerLifecycle),
)

// Options composes the whole application graph. Extra options such as fx.Replace
// are appended last.
func Options(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		services.Module,
		controllers.Module,
		router.Module,
		Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

type databaseParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

// newDatabase connects, migrates and seeds the mold catalog before anything else uses the database.
func newDatabase(p databaseParams) (*gorm.DB, error) {
	db, err := config.ConnectDatabase(p.Config, p.Logger)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	if _, err := migrations.Default(db, p.Logger).Run(ctx); err != nil {
		_ = config.CloseDatabase(db)
		return nil, err
	}
	if _, err := migrations.SeedMolds(ctx, db, p.Logger, migrations.MoldCatalog); err != nil {
		_ = config.CloseDatabase(db)
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return config.CloseDatabase(db)
		},
	})
	return db, nil
}

func newWorkflowEngine(cfg *config.Config, log *slog.Logger) (*workflow.Engine, error) {
	engine, err := workflow.Default(cfg.StrictTransitions)
	if err != nil {
		return nil, err
	}
	log.Info("workflow loaded", slog.Bool("strict_transitions", engine.Strict()))
	return engine, nil
}

// newObjectStore returns nil when no bucket is configured, which disables off-site backups.
func newObjectStore(cfg *config.Config) (services.ObjectStore, error) {
	if !cfg.OffsiteBackupEnabled() {
		return nil, nil
	}
	store, err := services.NewS3Service(context.Background(), services.S3Settings{
		Region:          cfg.AWSRegion,
		Bucket:          cfg.AWSS3Bucket,
		AccessKeyID:     cfg.AWSAccessKeyID,
		SecretAccessKey: cfg.AWSSecretAccessKey,
	})
	if err != nil {
		return nil, err
	}
	return store, nil
}

func newRestarter(shutdowner fx.Shutdowner, cfg *config.Config, log *slog.Logger) services.Restarter {
	return services.NewShutdownRestarter(shutdowner, cfg.RestartDelay, cfg.RestartExitCode, log)
}

type backupParams struct {
	fx.In

	DB        *gorm.DB
	Config    *config.Config
	Restarter services.Restarter
	Logger    *slog.Logger
}

func newBackupService(p backupParams) *services.BackupService {
	cfg := services.BackupConfig{
		DatabasePath: p.Config.DatabasePath,
		UploadDir:    p.Config.UploadDir,
		Postgres:     p.Config.UsesPostgres(),
	}
	closeDB := func() error { return config.CloseDatabase(p.DB) }
	return services.NewBackupService(p.DB, cfg, closeDB, p.Restarter, p.Logger)
}

func newHTTPServer(cfg *config.Config, handler *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type lifecycleParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *slog.Logger
	Server     *http.Server
	Config     *config.Config
}

func registerLifecycle(p lifecycleParams) {
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			p.Logger.Info("starting box erp api",
				slog.String("addr", p.Server.Addr),
				slog.String("env", p.Config.GoEnv),
			)
			go func() {
				if err := p.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					p.Logger.Error("http server terminated", slog.String("error", err.Error()))
					_ = p.Shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx := ctx
			cancel := func() {}
			if _, ok := ctx.Deadline(); !ok {
				shutdownCtx, cancel = context.WithTimeout(ctx, p.Config.ShutdownTimeout)
			}
			defer cancel()

			if err := p.Server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("failed to stop http server: %w", err)
			}
			p.Logger.Info("box erp api stopped")
			return nil
		},
	})
}
