package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/giftchoice/storefront/internal/cache"
	"github.com/giftchoice/storefront/internal/config"
	"github.com/giftchoice/storefront/internal/hub"
	"github.com/giftchoice/storefront/internal/logging"
	"github.com/giftchoice/storefront/internal/policy"
	"github.com/giftchoice/storefront/internal/repository"
	"github.com/giftchoice/storefront/internal/service"
	internalhttp "github.com/giftchoice/storefront/internal/transport/http"
	"github.com/giftchoice/storefront/internal/transport/ws"
)

func main() {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "GIFT CHOICE storefront API and chat assistant",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}
	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and serve the API",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or upgrade the database schema",
			RunE:  runMigrate,
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Insert a demo catalog into an empty database",
			RunE:  runSeed,
		},
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore opens and migrates the configured database.
func openStore(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*repository.SQLStore, error) {
	db, err := repository.Open(cfg.DatabaseDriver, cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize store")
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to migrate store")
	}
	log.WithField("driver", cfg.DatabaseDriver).Info("database ready")
	return db, nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.Production())
	db, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	return db.Close()
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.Production())
	db, err := openStore(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	seeded, err := db.SeedCatalog(cmd.Context())
	if err != nil {
		return errors.Wrap(err, "failed to seed catalog")
	}
	if seeded {
		log.Info("demo catalog inserted")
	} else {
		log.Info("catalog already has products, nothing seeded")
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.Production())
	log.WithFields(logrus.Fields{
		"port":        cfg.HTTPPort,
		"environment": cfg.Environment,
		"store":       cfg.StoreName,
	}).Info("starting storefront")

	ctx, cancel := context.WithCancel(logging.WithLogger(context.Background(), log))
	defer cancel()

	// Initialize store
	db, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer db.Close()

	// Product cache is optional
	var productCache cache.ProductCache = cache.NopCache{}
	if cfg.RedisAddr != "" {
		redisCache := cache.NewRedisProductCache(
			cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), cfg.ProductCacheTTL)
		if err := redisCache.Ping(ctx); err != nil {
			log.WithError(err).Warn("redis unavailable, product cache disabled")
			redisCache.Close()
		} else {
			productCache = redisCache
			log.WithField("addr", cfg.RedisAddr).Info("product cache enabled")
		}
	}
	defer productCache.Close()

	// Initialize policy engine
	policyEngine, err := policy.LoadEngine(ctx, cfg.OrderPolicyFile)
	if err != nil {
		return errors.Wrap(err, "failed to initialize order policy")
	}

	svc := service.New(db, productCache, policyEngine, cfg)

	// Chat sockets
	connectionHub := hub.NewHub()
	go connectionHub.Run(ctx)
	svc.SetCartNotifier(connectionHub)

	wsServer := ws.NewServer(cfg, connectionHub, svc)
	go wsServer.RunIdleMonitor(ctx)

	e := internalhttp.NewServer(cfg, svc, log)
	e.GET("/ws/chat", wsServer.HandleWebSocket)

	errCh := make(chan error, 1)
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	log.WithField("port", cfg.HTTPPort).Info("storefront started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-errCh:
		return errors.Wrap(err, "failed to start server")
	}

	log.Info("shutting down storefront")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("failed to shutdown server gracefully")
	}
	cancel()

	log.Info("storefront stopped")
	return nil
}
