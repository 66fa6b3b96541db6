package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/scaffold-api/internal/cache"
	"github.com/phrazzld/scaffold-api/internal/config"
	"github.com/phrazzld/scaffold-api/internal/email"
	"github.com/phrazzld/scaffold-api/internal/metrics"
	"github.com/phrazzld/scaffold-api/internal/service"
	"github.com/phrazzld/scaffold-api/internal/service/auth"
	"github.com/phrazzld/scaffold-api/internal/store"
	"github.com/phrazzld/scaffold-api/internal/task"
)

// application holds the wired dependencies shared by the commands.
type application struct {
	config  *config.Config
	logger  *slog.Logger
	db      *sql.DB
	metrics *metrics.Metrics

	cache      cache.Client
	mailer     *email.Mailer
	jwtService auth.JWTService
	tasks      *task.TaskRunner

	userService  *service.UserServiceImpl
	itemService  *service.ItemServiceImpl
	recovery     *service.PasswordRecovery
	taskRegistry *task.Registry
}

// newApplication wires the services around an open database. The caller
// keeps ownership of db; cleanup releases everything else.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB, dialect store.Dialect) (*application, error) {
	app := &application{
		config:  cfg,
		logger:  logger,
		db:      db,
		metrics: metrics.New(),
	}

	if err := app.metrics.RegisterDB(db, cfg.Database.Driver); err != nil {
		return nil, fmt.Errorf("failed to register database metrics: %w", err)
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	app.cache, err = cache.New(cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	app.mailer, err = email.NewMailer(cfg, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create mailer: %w", err)
	}

	app.taskRegistry = task.NewRegistry()
	task.RegisterDefaults(app.taskRegistry)
	app.tasks, err = task.NewTaskRunner(cfg.Tasks, app.taskRegistry, logger)
	if err != nil {
		app.cleanup()
		return nil, fmt.Errorf("failed to create task runner: %w", err)
	}

	app.userService = service.NewUserService(db,
		store.NewUserRepository(dialect, logger),
		auth.NewBcryptHasher(cfg.Auth.BCryptCost),
		logger)
	app.itemService = service.NewItemService(db, store.NewItemRepository(dialect, logger), logger)
	app.recovery = service.NewPasswordRecovery(app.userService, app.jwtService, app.mailer, app.cache, logger)

	return app, nil
}

// cleanup releases the resources owned by the application.
func (app *application) cleanup() {
	var errs []error
	if app.tasks != nil {
		errs = append(errs, app.tasks.Close())
	}
	if app.cache != nil {
		errs = append(errs, app.cache.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Warn("cleanup finished with errors", "error", err)
	}
}
