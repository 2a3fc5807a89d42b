package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"wpfeed/internal/config"
	"wpfeed/internal/logger"
	"wpfeed/internal/publisher"
	"wpfeed/internal/scheduler"
	"wpfeed/internal/service"
	"wpfeed/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	log := logger.New("info")

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log = logger.New(cfg.LogLevel)

	projections, err := postgres.ProjectionsFromNames(cfg.Content.PostColumns, cfg.Content.UserColumns)
	if err != nil {
		log.Error("invalid content columns", "error", err)
		os.Exit(1)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("connected to database", "table_prefix", cfg.Database.TablePrefix)

	rabbitMQ, err := publisher.NewRabbitMQ(publisher.Config{
		URL:        cfg.RabbitMQ.URL,
		Exchange:   cfg.RabbitMQ.Exchange,
		RoutingKey: cfg.RabbitMQ.RoutingKey,
		QueueName:  cfg.RabbitMQ.QueueName,
	}, log)
	if err != nil {
		log.Error("failed to connect to rabbitmq", "error", err)
		os.Exit(1)
	}
	defer rabbitMQ.Close()

	repo := postgres.NewContentRepository(db,
		postgres.WithTablePrefix(cfg.Database.TablePrefix),
		postgres.WithProjections(projections),
	)

	feedService := service.NewFeedService(
		postgres.NewFeedReader(repo),
		postgres.NewFeedStateStore(db),
		postgres.NewTransactionManager(db),
		rabbitMQ,
		log,
		cfg.Feed,
	)

	sched := scheduler.NewScheduler(feedService, cfg.Feed.Interval, cfg.Feed.RunTimeout, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		log.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	log.Info("starting feeder",
		"feed", cfg.Feed.ID,
		"interval", cfg.Feed.Interval,
		"batch_size", cfg.Feed.BatchSize,
	)

	if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("scheduler error", "error", err)
		os.Exit(1)
	}
}
