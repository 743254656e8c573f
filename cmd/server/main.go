package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/ogurasousui/employee-directory/internal/adapters/graphql"
	"github.com/ogurasousui/employee-directory/internal/adapters/metrics"
	"github.com/ogurasousui/employee-directory/internal/adapters/repository/postgres"
	"github.com/ogurasousui/employee-directory/internal/core/employee"
	"github.com/ogurasousui/employee-directory/internal/platform/config"
	pg "github.com/ogurasousui/employee-directory/internal/platform/db/postgres"
	"github.com/ogurasousui/employee-directory/internal/platform/httpserver"
	"github.com/ogurasousui/employee-directory/internal/platform/logging"
	"github.com/ogurasousui/employee-directory/internal/platform/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "", "path to config file (defaults to CONFIG_PATH env or assets/local.yaml)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("server stopped with error: %v", err)
	}
}

func run(ctx context.Context, configPath string) error {
	if _, err := config.LoadEnvFiles(config.DefaultEnvFiles...); err != nil {
		return err
	}

	cfg, err := config.Load(config.ResolvePath(configPath))
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return errors.Wrap(err, "build logger")
	}

	dbPool, err := pg.NewPool(ctx, cfg.Database, logging.Component(logger, "postgres"))
	if err != nil {
		return errors.Wrap(err, "initialize database pool")
	}
	defer dbPool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	employeeRepo := postgres.NewEmployeeRepository(dbPool)
	var employeeSvc employee.UseCase = employee.NewService(employeeRepo, nil)
	employeeSvc = metrics.NewInstrumentedUseCase(employeeSvc, reg)

	schema, err := graphql.LoadSchema()
	if err != nil {
		return err
	}
	gqlLogger := logging.Component(logger, "graphql")
	gqlHandler := graphql.NewHandler(graphql.NewExecutableSchema(schema, employeeSvc, gqlLogger))

	httpOpts := httpserver.Options{
		ListenAddr:        cfg.HTTP.ListenAddr,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.HTTP.ShutdownTimeout,
		GraphQL:           gqlHandler,
		Gatherer:          reg,
		Database:          dbPool,
		Logger:            logging.Component(logger, "http"),
	}
	if cfg.HTTP.EnablePlayground {
		httpOpts.Playground = graphql.PlaygroundHandler(httpserver.GraphQLPath)
	}
	httpServer := httpserver.New(httpOpts)
	grpcServer := server.New(cfg.Server.ListenAddr, employeeSvc, logging.Component(logger, "grpc"))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpServer.Run(gctx)
	})
	g.Go(func() error {
		return grpcServer.Run(gctx)
	})

	logger.WithFields(logrus.Fields{
		"http": cfg.HTTP.ListenAddr,
		"grpc": cfg.Server.ListenAddr,
	}).Info("employee directory started")

	return g.Wait()
}
