package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	_ "conferencecentral/docs"
	"conferencecentral/internal/adapters/auth"
	"conferencecentral/internal/adapters/cache"
	"conferencecentral/internal/adapters/email"
	"conferencecentral/internal/adapters/tasks"
	httpdelivery "conferencecentral/internal/delivery/http"
	"conferencecentral/internal/delivery/http/controllers"
	"conferencecentral/internal/delivery/http/middleware"
	"conferencecentral/internal/repository/postgres"
	"conferencecentral/internal/scheduler"
	"conferencecentral/internal/services"
)

const shutdownTimeout = 30 * time.Second

var migrateOnStart bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().BoolVar(&migrateOnStart, "migrate", false, "apply pending migrations before serving")
	rootCmd.AddCommand(serveCmd)
}

// @title Conference Central API
// @version 1.0
// @description Conferences, sessions, speakers and registrations.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer db.Close()
	if migrateOnStart {
		if err := postgres.MigrateUp(db); err != nil {
			return err
		}
	}

	// Repositories
	conferenceRepo := postgres.NewConferenceRepository(db)
	profileRepo := postgres.NewProfileRepository(db)
	sessionRepo := postgres.NewSessionRepository(db)
	speakerRepo := postgres.NewSpeakerRepository(db)
	txManager := postgres.NewTxManager(db)

	// Infrastructure
	store, closeCache, err := cache.New(ctx, cache.Config{
		Provider:  cfg.CacheProvider,
		RedisAddr: cfg.RedisAddr,
	}, logger)
	if err != nil {
		return fmt.Errorf("creating cache: %w", err)
	}
	defer func() {
		if err := closeCache(); err != nil {
			logger.Error("closing cache", "error", err)
		}
	}()

	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.Mail.Provider,
		FromAddress: cfg.Mail.FromAddress,
		FromName:    cfg.Mail.FromName,
		SES: email.SESConfig{
			Region:             cfg.Mail.AWSRegion,
			AccessKeyID:        cfg.Mail.AWSAccessKeyID,
			SecretAccessKey:    cfg.Mail.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.Mail.InsecureSkipVerify,
		},
	}, logger)
	if err != nil {
		return fmt.Errorf("creating mailer: %w", err)
	}

	queue := tasks.NewQueue(tasks.Config{
		Workers:   cfg.TaskWorkers,
		QueueSize: cfg.TaskQueueSize,
	}, logger)

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer(), logger)
	announcementService := services.NewAnnouncementService(conferenceRepo, store, logger, cfg.ContextTimeout)
	conferenceService := services.NewConferenceService(profileRepo, conferenceRepo, txManager, queue, logger, cfg.ContextTimeout)
	profileService := services.NewProfileService(profileRepo, txManager, cfg.ContextTimeout)
	registrationService := services.NewRegistrationService(profileRepo, conferenceRepo, sessionRepo, speakerRepo, txManager, queue, cfg.ContextTimeout)
	sessionService := services.NewSessionService(conferenceRepo, sessionRepo, speakerRepo, queue, logger, cfg.ContextTimeout)

	tasks.RegisterHandlers(queue, emailService, announcementService)
	queueDone := make(chan error, 1)
	go func() {
		queueDone <- queue.Run(context.WithoutCancel(ctx))
	}()

	if _, err := announcementService.RefreshAnnouncement(ctx); err != nil {
		logger.Warn("initial announcement refresh failed", "error", err)
	}
	jobs := scheduler.New(logger)
	if err := jobs.Add("refresh_announcement", cfg.AnnouncementSchedule, func(ctx context.Context) error {
		_, err := announcementService.RefreshAnnouncement(ctx)
		return err
	}); err != nil {
		return err
	}
	jobs.Start()

	// HTTP
	router := httpdelivery.NewRouter(httpdelivery.Controllers{
		Conference:   controllers.NewConferenceController(logger, conferenceService, announcementService),
		Profile:      controllers.NewProfileController(logger, profileService),
		Registration: controllers.NewRegistrationController(logger, registrationService),
		Session:      controllers.NewSessionController(logger, sessionService, announcementService),
	}, middleware.RequireAuth(auth.NewJWTVerifier(cfg.JWTSecret), logger))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(cfg.AllowedOrigins, middleware.LoggingMiddleware(logger, router)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("stopping http server", "error", err)
	}
	if err := jobs.Stop(shutdownCtx); err != nil {
		logger.Error("stopping scheduler", "error", err)
	}
	queue.Close()
	select {
	case err := <-queueDone:
		if err != nil {
			logger.Error("task queue", "error", err)
		}
	case <-shutdownCtx.Done():
		logger.Warn("task queue did not drain before shutdown deadline")
	}

	logger.Info("server stopped")
	return nil
}
