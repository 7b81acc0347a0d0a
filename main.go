package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"food-truck/config"
	"food-truck/db"
	applog "food-truck/log"
	"food-truck/notify"
	"food-truck/services"
	"food-truck/web"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var addr, logLevel string

	runServe := func(cmd *cobra.Command, _ []string) error {
		cfg, err := loadConfig(addr, logLevel)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg)
	}

	cmd := &cobra.Command{
		Use:           "food-truck",
		Short:         "Food ordering web app: restaurants, baskets, orders and a live dashboard",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runServe,
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides LOG_LEVEL")
	cmd.PersistentFlags().StringVar(&addr, "addr", "", "HTTP listen address; overrides HTTP_ADDR")

	cmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded SQL migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig("", logLevel)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cfg)
		},
	})
	return cmd
}

func loadConfig(addr, logLevel string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if addr != "" {
		cfg.HTTP.Addr = addr
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	applog.Configure(applog.Config{Level: cfg.Log.Level, Service: "food-truck"})
	return cfg, nil
}

func runMigrate(ctx context.Context, cfg *config.Config) error {
	if err := db.Init(cfg.DB); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()
	return applyMigrations(ctx, true)
}

func serve(parent context.Context, cfg *config.Config) error {
	logger := applog.WithComponent("main")
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := db.Init(cfg.DB); err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer db.Close()

	if config.AutoMigrate() {
		if err := applyMigrations(ctx, false); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	baskets, closeBaskets, err := openBasketStore(ctx, cfg.Basket)
	if err != nil {
		return err
	}
	defer closeBaskets()

	var notifier *notify.Notifier
	if cfg.Telegram.Token != "" {
		sender, err := notify.NewTelegramSender(cfg.Telegram.Token)
		if err != nil {
			return err
		}
		notifier = notify.New(sender, cfg.Telegram.ChatID, services.SaveOutboundMessage, applog.WithComponent("notify"))
		notifier.Start(context.WithoutCancel(ctx))
		logger.Info().Int64("chat_id", cfg.Telegram.ChatID).Msg("order notifications enabled")
	}

	srv, err := web.NewServer(cfg.HTTP, web.ServicesBackend{}, baskets, notifier, applog.WithComponent("web"))
	if err != nil {
		return err
	}
	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.HTTP.Addr).Str("basket_store", cfg.Basket.Store).Msg("server started")
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("http shutdown")
		}
	}
	if notifier != nil {
		notifier.Close()
	}
	return nil
}

// openBasketStore returns the configured basket store and a func releasing it.
func openBasketStore(ctx context.Context, cfg config.BasketConfig) (services.BasketStore, func(), error) {
	switch cfg.Store {
	case config.BasketStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
		}
		return services.NewRedisBasketStore(client, cfg.TTL), func() { _ = client.Close() }, nil
	case config.BasketStorePostgres, "":
		return services.PostgresBasketStore{}, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("unknown BASKET_STORE %q", cfg.Store)
	}
}
