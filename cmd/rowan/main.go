package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/rowanhealth/rowan/internal/archiver"
	"github.com/rowanhealth/rowan/internal/billing"
	"github.com/rowanhealth/rowan/internal/config"
	"github.com/rowanhealth/rowan/internal/database"
	"github.com/rowanhealth/rowan/internal/email"
	"github.com/rowanhealth/rowan/internal/logging"
	"github.com/rowanhealth/rowan/internal/push"
	"github.com/rowanhealth/rowan/internal/report"
	"github.com/rowanhealth/rowan/internal/server"
	"github.com/rowanhealth/rowan/internal/store"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	emailClient := email.NewClient(cfg.PostmarkToken, cfg.FromEmail, cfg.BaseURL)

	var generator *report.Generator
	if cfg.OpenAIKey != "" {
		generator = report.NewGenerator(openai.NewClient(cfg.OpenAIKey), cfg.ReportModel, logger.With("component", "report"))
	}

	var pushService *push.Service
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		pushService = push.NewService(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubject)
	}

	srv := server.New(db, server.Config{
		Stripe: billing.Config{
			SecretKey:      cfg.StripeSecretKey,
			WebhookSecret:  cfg.StripeWebhookSecret,
			MonthlyPriceID: cfg.MonthlyPriceID,
			AnnualPriceID:  cfg.AnnualPriceID,
			SuccessURL:     cfg.BaseURL + "/account?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:      cfg.BaseURL + "/pricing",
		},
		BaseURL:     cfg.BaseURL,
		EmailClient: emailClient,
		Generator:   generator,
		PushService: pushService,
	}, logger)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	sweeper := archiver.New(
		store.NewAccountStore(db),
		store.NewAckStore(db),
		emailClient,
		srv.Collector(),
		logger.With("component", "archiver"),
	)

	// Background maintenance: expired sessions, rate limiter buckets,
	// and the trial sweep.
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				srv.RateLimiter().Cleanup()
				if n := sweeper.Sweep(time.Now()); n > 0 {
					slog.Info("archived unpaid accounts", "count", n)
				}
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("rowan starting", "addr", ":"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
