package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"realty_backend/internal/model"
	"realty_backend/internal/repository"
	"realty_backend/internal/server"
	"realty_backend/pkg/config"
	"realty_backend/pkg/cron"
	"realty_backend/pkg/database"
	"realty_backend/pkg/email"
	"realty_backend/pkg/logger"
	"realty_backend/pkg/media"
	"realty_backend/pkg/seed"
	"realty_backend/pkg/utils/cloudflare"
	"realty_backend/pkg/utils/storage"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap holds what every subcommand starts from.
type bootstrap struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

func setup() (*bootstrap, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.IsDevelopment())
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	db, err := database.Open(cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	return &bootstrap{cfg: cfg, log: log, db: db}, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "realty-api",
		Short:         "Real-estate listings API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return serve(cmd.Context())
		},
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Migrate the database and start the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database tables",
			RunE: func(_ *cobra.Command, _ []string) error {
				rt, err := setup()
				if err != nil {
					return err
				}
				defer rt.log.Sync() //nolint:errcheck
				return database.Migrate(rt.db, rt.log, model.All()...)
			},
		},
		newSeedAdminCmd(),
		&cobra.Command{
			Use:   "activate-drafts",
			Short: "Publish every Draft listing",
			RunE: func(cmd *cobra.Command, _ []string) error {
				rt, err := setup()
				if err != nil {
					return err
				}
				defer rt.log.Sync() //nolint:errcheck
				n, err := repository.NewListingRepository(rt.db).ActivateDrafts(cmd.Context())
				if err != nil {
					return err
				}
				rt.log.Info("drafts activated", zap.Int64("listings", n))
				return nil
			},
		},
	)
	return root
}

func newSeedAdminCmd() *cobra.Command {
	var adminEmail, password string
	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create the admin account, or promote an existing user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := setup()
			if err != nil {
				return err
			}
			defer rt.log.Sync() //nolint:errcheck
			if adminEmail == "" {
				adminEmail = rt.cfg.Admin.Email
			}
			if password == "" {
				password = rt.cfg.Admin.Password
			}
			_, err = seed.SeedAdmin(cmd.Context(), repository.NewUserRepository(rt.db), adminEmail, password, rt.log)
			return err
		},
	}
	cmd.Flags().StringVar(&adminEmail, "email", "", "admin email (defaults to ADMIN_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "admin password (defaults to ADMIN_PASSWORD)")
	return cmd
}

func serve(ctx context.Context) error {
	rt, err := setup()
	if err != nil {
		return err
	}
	cfg, log := rt.cfg, rt.log
	defer log.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.Migrate(rt.db, log, model.All()...); err != nil {
		return err
	}

	store, err := newMediaStore(ctx, cfg.Media)
	if err != nil {
		return fmt.Errorf("init media store: %w", err)
	}
	notifier, err := email.NewNotifier(cfg.Mail, log)
	if err != nil {
		return fmt.Errorf("init mail: %w", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password})
		defer rdb.Close()
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		if err := rdb.Ping(pingCtx).Err(); err != nil {
			log.Warn("redis unreachable, lead rate limit will fail open", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cancel()
	}

	digest := cron.NewLeadDigest(repository.NewLeadRepository(rt.db), notifier, log)
	scheduler, err := digest.Start(cfg.Leads.DigestSchedule)
	if err != nil {
		return fmt.Errorf("schedule lead digest: %w", err)
	}
	if scheduler != nil {
		defer scheduler.Stop()
	}

	app, err := server.NewApp(server.Deps{
		Config:   cfg,
		DB:       rt.db,
		Media:    store,
		Notifier: notifier,
		Redis:    rdb,
		Logger:   log,
	})
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("port", cfg.Server.Port), zap.String("env", cfg.Environment))
		errCh <- app.Listen(":" + cfg.Server.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}

func newMediaStore(ctx context.Context, cfg config.MediaConfig) (media.Store, error) {
	switch cfg.Driver {
	case config.MediaDriverR2:
		return cloudflare.NewStore(ctx, cfg)
	case config.MediaDriverLocal:
		return storage.NewLocalStore(cfg.LocalDir, cfg.LocalURL)
	}
	return nil, fmt.Errorf("unknown media driver %q", cfg.Driver)
}
