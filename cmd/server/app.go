package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/cdandre/dealmemo-api/internal/config"
	"github.com/cdandre/dealmemo-api/internal/domain"
	"github.com/cdandre/dealmemo-api/internal/events"
	"github.com/cdandre/dealmemo-api/internal/platform/gemini"
	"github.com/cdandre/dealmemo-api/internal/platform/postgres"
	"github.com/cdandre/dealmemo-api/internal/service"
	"github.com/cdandre/dealmemo-api/internal/service/auth"
	"github.com/cdandre/dealmemo-api/internal/store"
	"github.com/cdandre/dealmemo-api/internal/task"
)

// application holds the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	dealStore store.DealStore
	jobStore  store.MemoJobStore

	// Services
	jwtService  auth.JWTService
	dealService service.DealService
	memoService service.MemoService

	// Generation pipeline, present in embedded worker mode only
	taskFactory  task.TaskFactory
	taskRunner   *task.TaskRunner
	janitor      *task.Janitor
	eventEmitter *events.InMemoryEventEmitter
}

// dealReaderAdapter exposes the deal store to the task package under its
// narrower read interface.
type dealReaderAdapter struct {
	deals store.DealStore
}

func (a dealReaderAdapter) GetDeal(ctx context.Context, dealID uuid.UUID) (*domain.Deal, error) {
	return a.deals.GetByID(ctx, dealID)
}

// newApplication creates an application instance with all dependencies
// initialized. In embedded worker mode it also starts the task runner and
// the stuck-job janitor.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	app.dealStore = postgres.NewPostgresDealStore(db, logger)
	app.jobStore = postgres.NewPostgresMemoJobStore(db, logger)

	var invoker service.WorkerInvoker
	switch cfg.Worker.Mode {
	case "embedded":
		invoker, err = app.setupEmbeddedWorker(ctx)
		if err != nil {
			return nil, err
		}
	case "remote":
		invoker = service.NewRemoteInvoker(cfg.Worker.RemoteURL, cfg.Worker.RemoteToken, logger)
		logger.Info("using remote generation worker", "url", cfg.Worker.RemoteURL)
	default:
		return nil, fmt.Errorf("unknown worker mode: %q", cfg.Worker.Mode)
	}

	app.dealService, err = service.NewDealService(app.dealStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create deal service: %w", err)
	}

	app.memoService, err = service.NewMemoService(
		app.dealStore,
		app.jobStore,
		invoker,
		cfg.Worker.LaunchTimeout,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create memo service: %w", err)
	}

	logger.Info("application initialized")
	return app, nil
}

// setupEmbeddedWorker wires the in-process generation pipeline: the section
// generator, the task runner with startup recovery, the event path from the
// service into the runner, and the janitor.
func (app *application) setupEmbeddedWorker(ctx context.Context) (service.WorkerInvoker, error) {
	generator, err := gemini.NewGenerator(
		ctx,
		app.logger.With("component", "llm_generator"),
		app.config.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}

	app.taskFactory = task.NewMemoGenerationTaskFactory(
		dealReaderAdapter{deals: app.dealStore},
		app.jobStore,
		generator,
		app.logger,
	)

	app.taskRunner = task.NewTaskRunner(app.jobStore, app.taskFactory, task.TaskRunnerConfig{
		WorkerCount: app.config.Worker.Count,
		QueueSize:   app.config.Worker.QueueSize,
	}, app.logger)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	app.eventEmitter = events.NewInMemoryEventEmitter(app.logger)
	app.eventEmitter.RegisterHandler(
		task.NewTaskFactoryEventHandler(app.taskFactory, app.taskRunner, app.logger),
	)

	app.janitor = task.NewJanitor(
		app.jobStore,
		app.config.Worker.JanitorSchedule,
		app.config.Worker.StuckJobAge,
		app.logger,
	)
	if err := app.janitor.Start(); err != nil {
		return nil, fmt.Errorf("failed to start janitor: %w", err)
	}

	return service.NewEmbeddedInvoker(app.eventEmitter, app.jobStore, app.logger), nil
}

// ExecuteJob runs one generation job to completion. It backs the internal
// worker endpoint used by remote-mode API instances.
func (app *application) ExecuteJob(ctx context.Context, jobID uuid.UUID) (domain.JobStatus, error) {
	t, err := app.taskFactory.CreateTask(jobID)
	if err != nil {
		return "", fmt.Errorf("failed to create generation task: %w", err)
	}

	// A returned error here means the job settled as failed; the outcome is
	// already recorded on the job row.
	if err := t.Execute(ctx); err != nil {
		app.logger.Warn("generation job finished with failures", "job_id", jobID, "error", err)
	}

	job, err := app.jobStore.GetByID(ctx, jobID)
	if err != nil {
		return "", err
	}
	return job.Status, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.janitor != nil {
		app.janitor.Stop()
	}

	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
