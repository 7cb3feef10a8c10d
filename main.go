package main

import (
	"context"
	"errors"
	"fmt"
	"kodikas-backend/controller"
	"kodikas-backend/dal"
	"kodikas-backend/middelware"
	"kodikas-backend/models"
	"kodikas-backend/repository"
	"kodikas-backend/services"
	"kodikas-backend/utils"
	"kodikas-backend/utils/logger"
	"kodikas-backend/worker"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// @title Kodikas Backend API
// @version 1.0
// @description Organizations, members, projects and applications with soft-delete lifecycle rules.
// @description Deactivated records are hidden from reads; an organization can only be deactivated once no member or project links to it.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api/v1
func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCommand() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, log)
		},
	}

	root := &cobra.Command{
		Use:           "kodikas",
		Short:         "Kodikas backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          serveCmd.RunE,
	}

	root.AddCommand(
		serveCmd,
		&cobra.Command{
			Use:   "migrate",
			Short: "Apply the postgres schema migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				if cfg.StoreDriver != utils.StorePostgres {
					return fmt.Errorf("migrate requires store_driver %q, got %q", utils.StorePostgres, cfg.StoreDriver)
				}
				return repository.Migrate(cmd.Context(), cfg.PostgresDSN, log)
			},
		},
		&cobra.Command{
			Use:   "provision",
			Short: "Create missing DynamoDB tables once",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, log, err := loadConfig()
				if err != nil {
					return err
				}
				w, err := newProvisioningWorker(cmd.Context(), cfg, log)
				if err != nil {
					return err
				}
				result, err := w.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				log.Infof("Provisioning finished: %s", utils.PrintPrettyJSON(result.TablesCreated))
				return nil
			},
		},
	)
	return root
}

func loadConfig() (*models.Config, logger.Logger, error) {
	cfg, err := utils.GetConfig()
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger.NewLogger(cfg.LogLevel, cfg.LogFormat), nil
}

func newProvisioningWorker(ctx context.Context, cfg *models.Config, log logger.Logger) (*worker.Worker, error) {
	db, err := dal.NewDynamoDBClient(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return worker.NewWorker(cfg, db, log)
}

// newRouter builds the gin engine with the middleware chain and all routes
func newRouter(cfg *models.Config, svc services.ServiceContainerInterface, log logger.Logger) *gin.Engine {
	logging := middelware.NewLoggingMiddleware(log)

	r := gin.New()
	r.Use(
		logging.Recovery(),
		logging.StructuredLogger(cfg.BasePath+"/health", "/metrics"),
		middelware.NewCORSMiddleware(cfg).CORS(),
		middelware.NewRateLimitMiddleware(cfg.RateLimitRequestsPerMinute).RateLimit(),
		middelware.Metrics(),
	)

	controller.NewController(cfg, svc, log).RegisterRoutes(r, cfg.BasePath)
	return r
}

func serve(ctx context.Context, cfg *models.Config, log logger.Logger) error {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := repository.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	srv := &http.Server{
		Addr:              cfg.AppHost + ":" + cfg.AppPort,
		Handler:           newRouter(cfg, services.NewService(store, log, cfg), log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	var provisioner *worker.Worker
	if cfg.StoreDriver == utils.StoreDynamoDB {
		if provisioner, err = newProvisioningWorker(ctx, cfg, log); err != nil {
			return fmt.Errorf("create provisioning worker: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s (store=%s)", srv.Addr, cfg.StoreDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if provisioner != nil {
		g.Go(func() error {
			return provisioner.Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
