package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rowanhealth/rowan/internal/billing"
	"github.com/rowanhealth/rowan/internal/email"
	"github.com/rowanhealth/rowan/internal/handler"
	"github.com/rowanhealth/rowan/internal/metrics"
	"github.com/rowanhealth/rowan/internal/middleware"
	"github.com/rowanhealth/rowan/internal/notify"
	"github.com/rowanhealth/rowan/internal/push"
	"github.com/rowanhealth/rowan/internal/report"
	"github.com/rowanhealth/rowan/internal/store"
)

type Server struct {
	db           *sql.DB
	accountStore *store.AccountStore
	sessionStore *store.SessionStore
	hub          *notify.Hub
	rateLimiter  *middleware.RateLimiter
	collector    *metrics.Collector
	logger       *slog.Logger

	authH       *handler.AuthHandler
	accountH    *handler.AccountHandler
	checkoutH   *handler.CheckoutHandler
	webhookH    *handler.WebhookHandler
	quizH       *handler.QuizHandler
	intakeH     *handler.IntakeHandler
	dailyLogH   *handler.DailyLogHandler
	reportH     *handler.ReportHandler
	moduleH     *handler.ModuleHandler
	onboardingH *handler.OnboardingHandler
	pushH       *handler.PushHandler
}

type Config struct {
	Stripe      billing.Config
	BaseURL     string
	EmailClient *email.Client
	Generator   *report.Generator
	PushService *push.Service
}

func New(db *sql.DB, cfg Config, logger *slog.Logger) *Server {
	accountStore := store.NewAccountStore(db)
	sessionStore := store.NewSessionStore(db)
	subscriptionStore := store.NewSubscriptionStore(db)
	quizStore := store.NewQuizStore(db)
	intakeStore := store.NewIntakeStore(db)
	dailyLogStore := store.NewDailyLogStore(db)
	reportStore := store.NewReportStore(db)
	ackStore := store.NewAckStore(db)
	pushStore := store.NewPushStore(db)

	collector := metrics.NewCollector()
	hub := notify.NewHub(logger.With("component", "notify"))

	var stripeClient *billing.Client
	if cfg.Stripe.SecretKey != "" {
		stripeClient = billing.NewClient(cfg.Stripe)
	}

	var checkoutH *handler.CheckoutHandler
	var webhookH *handler.WebhookHandler
	if stripeClient != nil {
		checkoutH = handler.NewCheckoutHandler(stripeClient, accountStore, collector, cfg.BaseURL, logger.With("component", "checkout"))
		webhookH = handler.NewWebhookHandler(stripeClient, accountStore, subscriptionStore, collector, logger.With("component", "webhook"))
	}

	return &Server{
		db:           db,
		accountStore: accountStore,
		sessionStore: sessionStore,
		hub:          hub,
		rateLimiter:  middleware.NewRateLimiter(),
		collector:    collector,
		logger:       logger,

		authH:       handler.NewAuthHandler(accountStore, sessionStore, quizStore, cfg.EmailClient, collector, logger.With("component", "auth")),
		accountH:    handler.NewAccountHandler(ackStore, logger.With("component", "account")),
		checkoutH:   checkoutH,
		webhookH:    webhookH,
		quizH:       handler.NewQuizHandler(quizStore, collector, logger.With("component", "quiz")),
		intakeH:     handler.NewIntakeHandler(intakeStore, logger.With("component", "intake")),
		dailyLogH:   handler.NewDailyLogHandler(dailyLogStore, logger.With("component", "dailylog")),
		reportH:     handler.NewReportHandler(reportStore, intakeStore, dailyLogStore, cfg.Generator, cfg.EmailClient, collector, logger.With("component", "report")),
		moduleH:     handler.NewModuleHandler(accountStore, intakeStore, pushStore, hub, cfg.PushService, collector, logger.With("component", "modules")),
		onboardingH: handler.NewOnboardingHandler(intakeStore, dailyLogStore, reportStore, ackStore, logger.With("component", "onboarding")),
		pushH:       handler.NewPushHandler(pushStore, cfg.PushService, logger.With("component", "push")),
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// Collector returns the metrics collector so background jobs record
// into the same registry /metrics serves.
func (s *Server) Collector() *metrics.Collector {
	return s.collector
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthCheck)
	mux.Handle("GET /metrics", s.collector.Handler())

	// Public funnel routes, rate-limited per IP.
	public := middleware.RateLimit(s.rateLimiter, 10, time.Minute)
	mux.Handle("POST /api/quiz", public(http.HandlerFunc(s.quizH.Submit)))
	mux.Handle("POST /api/signup", public(http.HandlerFunc(s.authH.Signup)))
	mux.Handle("POST /api/login", public(http.HandlerFunc(s.authH.Login)))

	// Shared report links carry an unguessable ID and need no session.
	mux.HandleFunc("GET /api/reports/shared/{publicID}", s.reportH.GetShared)

	if s.webhookH != nil {
		mux.HandleFunc("POST /webhooks/stripe", s.webhookH.HandleStripeWebhook)
	}

	// Authenticated routes: session first, then the access window.
	authMw := middleware.RequireAuth(s.sessionStore)
	loadMw := middleware.LoadAccount(s.accountStore, s.logger)
	protected := func(h http.Handler) http.Handler { return authMw(loadMw(h)) }
	writable := func(h http.Handler) http.Handler {
		return authMw(loadMw(middleware.RequireWritable(h)))
	}

	mux.Handle("POST /api/logout", authMw(http.HandlerFunc(s.authH.Logout)))

	mux.Handle("GET /api/account", protected(http.HandlerFunc(s.accountH.Get)))
	mux.Handle("POST /api/acknowledgments", protected(http.HandlerFunc(s.accountH.Acknowledge)))
	mux.Handle("GET /api/onboarding", protected(http.HandlerFunc(s.onboardingH.Get)))

	mux.Handle("GET /api/modules", protected(http.HandlerFunc(s.moduleH.List)))
	mux.Handle("GET /api/modules/{module}", protected(http.HandlerFunc(s.moduleH.Get)))

	mux.Handle("POST /api/intake", writable(http.HandlerFunc(s.intakeH.Submit)))
	mux.Handle("GET /api/intake", protected(http.HandlerFunc(s.intakeH.Get)))
	mux.Handle("POST /api/daily-logs", writable(http.HandlerFunc(s.dailyLogH.Submit)))
	mux.Handle("GET /api/daily-logs", protected(http.HandlerFunc(s.dailyLogH.List)))

	mux.Handle("POST /api/reports", writable(http.HandlerFunc(s.reportH.Generate)))
	mux.Handle("GET /api/reports", protected(http.HandlerFunc(s.reportH.List)))

	mux.Handle("GET /api/push/vapid-key", protected(http.HandlerFunc(s.pushH.VAPIDKey)))
	mux.Handle("POST /api/push/subscribe", protected(http.HandlerFunc(s.pushH.Subscribe)))
	mux.Handle("POST /api/push/unsubscribe", protected(http.HandlerFunc(s.pushH.Unsubscribe)))

	// Session only, no window gate: closed-window accounts check out to
	// get back in.
	if s.checkoutH != nil {
		mux.Handle("POST /api/checkout", authMw(http.HandlerFunc(s.checkoutH.CreateCheckoutSession)))
		mux.Handle("POST /api/billing-portal", authMw(http.HandlerFunc(s.checkoutH.BillingPortal)))
	}

	wsHandler := notify.Handler(s.hub, func(r *http.Request) int64 {
		return handler.AccountIDFromContext(r.Context())
	}, s.logger.With("component", "ws"))
	mux.Handle("GET /ws", authMw(wsHandler))

	return middleware.RequestLogger(s.logger)(mux)
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
