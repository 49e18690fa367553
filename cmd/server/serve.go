package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/lab-equipment-booking/internal/config"
	"github.com/iliyamo/lab-equipment-booking/internal/database"
	"github.com/iliyamo/lab-equipment-booking/internal/handler"
	"github.com/iliyamo/lab-equipment-booking/internal/logger"
	"github.com/iliyamo/lab-equipment-booking/internal/queue"
	"github.com/iliyamo/lab-equipment-booking/internal/repository"
	"github.com/iliyamo/lab-equipment-booking/internal/router"
	"github.com/iliyamo/lab-equipment-booking/internal/service"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and the event consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

// bootstrap loads the configuration and opens the database shared by all
// commands.
func bootstrap(ctx context.Context, name string) (*config.Config, *database.DB, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log := logger.NewLogger(cfg.Log, name)
	db, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "open database")
	}
	return cfg, db, log, nil
}

func runServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, db, log, err := bootstrap(ctx, "lab-booking")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer db.Close()

	if cfg.Database.Migrate {
		if err := db.MigrateUp(ctx); err != nil {
			log.Error("migrate", zap.Error(err))
			return err
		}
	}

	users := repository.NewUserRepo(db)
	equipment := repository.NewEquipmentRepo(db)
	bookings := repository.NewBookingRepo(db)
	notifications := repository.NewNotificationRepo(db)

	notifSvc := service.NewNotificationService(notifications, log)
	publisher, consumer, err := queue.New(cfg.Events, notifSvc.HandleBookingEvent, log)
	if err != nil {
		log.Error("events", zap.Error(err))
		return err
	}
	defer func() { _ = publisher.Close() }()

	authSvc := service.NewAuthService(users, cfg.Auth, log)
	equipSvc := service.NewEquipmentService(equipment, log)
	bookingSvc := service.NewBookingService(bookings, publisher, log)

	rdb := config.NewRedisClient(cfg.Redis)
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	} else {
		log.Info("redis unavailable, response cache off and rate limits kept in memory")
	}

	h := handler.New(authSvc, equipSvc, bookingSvc, notifSvc, db, log)
	e := router.New(cfg, h, rdb, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.Info("http server start",
			zap.String("addr", addr), zap.String("env", cfg.Env),
			zap.String("db", cfg.Database.Driver), zap.String("events", cfg.Events.Broker))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "http server")
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("graceful shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})
	if consumer != nil {
		g.Go(func() error {
			return consumer.Run(gctx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}
	log.Info("graceful shutdown finished")
	return nil
}
