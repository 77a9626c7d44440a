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

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lostluggage/handlers"
	"lostluggage/services"
	"lostluggage/utils"
)

var (
	cfgFile string

	adminName     string
	adminEmail    string
	adminPassword string
)

var rootCmd = &cobra.Command{
	Use:   "lostluggage",
	Short: "Lost and found luggage desk",
	Long: `lostluggage serves the lost and found luggage web application.

Passengers register, file lost luggage reports and track them by ID. Anyone can
hand in a found item. Admins update report status and match found items to
lost reports.

Run without a subcommand to start the web server.`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	RunE:  runServe,
}

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Creates an admin account. Admins cannot be created through the web
registration form, which only ever creates passengers.

Example:
  lostluggage create-admin --name "Desk Lead" --email lead@example.com --password 'S3cure!pass'`,
	RunE: runCreateAdmin,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file")

	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	createAdminCmd.Flags().StringVar(&adminEmail, "email", "", "login email")
	createAdminCmd.Flags().StringVar(&adminPassword, "password", "", "password (8+ chars, upper, lower, digit, special)")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(serveCmd, createAdminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// bootstrap loads configuration and opens the logger and database shared by
// every subcommand.
func bootstrap(ctx context.Context) (utils.Config, *zap.Logger, *utils.DB, error) {
	cfg, err := utils.LoadConfig(cfgFile)
	if err != nil {
		return cfg, nil, nil, err
	}
	logger, err := utils.NewLogger(cfg)
	if err != nil {
		return cfg, nil, nil, err
	}
	db, err := utils.OpenDB(ctx, cfg.DatabaseURL)
	if err != nil {
		_ = logger.Sync()
		return cfg, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	logger.Info("database ready", zap.String("dialect", string(db.Dialect)))
	return cfg, logger, db, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, logger, db, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = logger.Sync() }()

	g, gctx := errgroup.WithContext(ctx)

	var sessions utils.SessionStore
	if cfg.RedisURL != "" {
		client, err := utils.OpenRedisPool(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer client.Close()
		sessions = utils.NewRedisSessionStore(client)
		logger.Info("sessions stored in redis")
	} else {
		mem := utils.NewMemorySessionStore()
		sessions = mem
		g.Go(func() error { return sweepSessions(gctx, mem, logger) })
		logger.Info("sessions stored in memory")
	}

	svc := services.New(db, utils.NewNotifier(cfg, logger), logger)
	if cfg.AdminEmail != "" && cfg.AdminPassword != "" {
		created, err := svc.EnsureAdmin(ctx, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", zap.String("email", cfg.AdminEmail))
		}
	}

	app, err := handlers.New(svc, sessions, logger, handlers.Options{
		SessionTTL:    cfg.SessionTTL,
		SecureCookies: cfg.SecureCookies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorLog:          zap.NewStdLog(logger),
	}

	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func sweepSessions(ctx context.Context, store *utils.MemorySessionStore, logger *zap.Logger) error {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				logger.Debug("expired sessions removed", zap.Int("count", n))
			}
		}
	}
}

func runCreateAdmin(cmd *cobra.Command, _ []string) error {
	cfg, logger, db, err := bootstrap(cmd.Context())
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = logger.Sync() }()

	svc := services.New(db, utils.NewNotifier(cfg, logger), logger)
	u, err := svc.CreateAdmin(cmd.Context(), adminName, adminEmail, adminPassword)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "admin %s created with id %d\n", u.Email, u.ID)
	return nil
}
