package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Wezyi/Ecommerce-Website-Test/internal/account"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/api/handlers"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/cache"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/cart"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/checkout"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/config"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/database"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/fulfillment"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/notify"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/orders"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/payment"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/repository"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/review"
	"github.com/Wezyi/Ecommerce-Website-Test/internal/session"
)

const shutdownTimeout = 15 * time.Second

func main() {
	rootCmd := &cobra.Command{
		Use:          "storefront",
		Short:        "online shop backend",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		createAdminCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", level, err)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	return cfg.Build()
}

// setup loads the configuration and a logger for it.
func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			return database.Migrate(cfg.DatabaseURL(), logger)
		},
	}
}

func createAdminCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "create-admin",
		Short: "create the staff account from ADMIN_* settings if it does not exist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			pool, err := database.ConnectDB(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer pool.Close()

			accounts := account.NewService(repository.NewUserRepository(pool), logger)
			created, err := accounts.EnsureAdmin(cmd.Context(), cfg.AdminUsername, cfg.AdminEmail, cfg.AdminPassword)
			if err != nil {
				return err
			}
			if created {
				fmt.Println("Created admin user:", cfg.AdminUsername)
			} else {
				fmt.Println("Admin user already exists:", cfg.AdminUsername)
			}
			return nil
		},
	}
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "run the storefront HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	if cfg.StripeSecretKey == "" || cfg.StripeWebhookSecret == "" {
		logger.Warn("stripe keys are not set, payments will fail")
	}

	pool, err := database.ConnectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	rdb, err := cache.ConnectRedis(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer rdb.Close()

	productRepo := repository.NewProductRepository(pool)
	cachedProducts := cache.NewCachedProductRepository(productRepo, rdb, logger)
	userRepo := repository.NewUserRepository(pool)
	couponRepo := repository.NewCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	store := session.NewRedisStore(rdb, cfg.SessionTTL)

	dispatcher := notify.NewDispatcher(notify.NewSMTPSender(notify.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	}), cfg.OperatorEmail, logger)

	// stock checks read the database, not the cache
	payments := payment.NewAdapter(
		productRepo,
		payment.NewStripeGateway(cfg.StripeSecretKey, cfg.StripeWebhookSecret),
		store,
		payment.Options{
			Currency:       cfg.Currency,
			PaymentMethods: cfg.PaymentMethods,
			BaseURL:        cfg.BaseURL,
		},
		logger,
	)

	server := handlers.NewServer(handlers.Deps{
		Store:       store,
		Products:    cachedProducts,
		Operations:  repository.NewOperationRepository(pool),
		Coupons:     couponRepo,
		Cart:        cart.NewManager(productRepo, logger),
		Checkout:    checkout.NewCalculator(couponRepo, cfg.ShippingCost, logger),
		Payments:    payments,
		Fulfillment: fulfillment.NewWriter(store, orderRepo, userRepo, dispatcher, cachedProducts, logger),
		Orders:      orders.NewService(orderRepo, userRepo, dispatcher, logger),
		Accounts:    account.NewService(userRepo, logger),
		Reviews:     review.NewService(repository.NewReviewRepository(pool), cachedProducts, logger),
		Contact:     dispatcher,
		Logger:      logger,

		SessionTTL:    cfg.SessionTTL,
		SecureCookies: strings.HasPrefix(cfg.BaseURL, "https://"),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", zap.String("addr", cfg.HTTPAddr), zap.String("base_url", cfg.BaseURL))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
