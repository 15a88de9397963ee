package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/buildtrack/internal/audit"
	"github.com/alexanderramin/buildtrack/internal/cli"
	"github.com/alexanderramin/buildtrack/internal/cli/formatter"
	"github.com/alexanderramin/buildtrack/internal/config"
	"github.com/alexanderramin/buildtrack/internal/db"
	"github.com/alexanderramin/buildtrack/internal/logger"
	"github.com/alexanderramin/buildtrack/internal/notify"
	"github.com/alexanderramin/buildtrack/internal/repository"
	"github.com/alexanderramin/buildtrack/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	dialect, err := db.ParseDialect(cfg.DB.Driver)
	if err != nil {
		return err
	}
	database, err := db.Open(dialect, cfg.DB.DSN)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	log.Debug().Str("driver", string(dialect)).Msg("database ready")

	// Wire repositories
	conn := db.Bind(database, dialect)
	projectRepo := repository.NewSQLProjectRepo(conn)
	taskRepo := repository.NewSQLTaskRepo(conn)
	notificationRepo := repository.NewSQLNotificationRepo(conn)

	// Wire unit of work for transactional operations
	uow := db.NewUnitOfWork(database, dialect)

	dispatcher := notify.NewDispatcher(notify.NewLogDeliverer(log), log,
		notify.WithDelay(cfg.Notify.Delay),
		notify.WithWorkers(cfg.Notify.Workers),
	)
	auditLog := audit.NewFileLog(cfg.AuditPath)
	observer := service.NewLogUseCaseObserver(log)

	app := &cli.App{
		Projects:      service.NewProjectService(projectRepo, taskRepo, uow, dispatcher, auditLog, log, observer),
		Lifecycle:     service.NewLifecycleService(uow, dispatcher, auditLog, log, observer),
		Spend:         service.NewSpendService(projectRepo, auditLog, log, observer),
		Notifications: service.NewNotificationService(notificationRepo),
		Audit:         auditLog,
	}

	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		formatter.DisableColor()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
