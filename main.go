package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/audit"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/auth"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/gmaoapi"
	interventionsapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/interventions/application"
	interventionshttp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/interventions/interfaces/http"
	monitorapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/application"
	monitorhttp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/monitor/interfaces/http"
	notifapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/application"
	notifmemory "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/infrastructure/memory"
	notifpostgres "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/infrastructure/postgres"
	notifhttp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/notifications/interfaces/http"
	"github.com/Hossam-Nazih/gestion-de-maintenance/internal/observability/metrics"
	reportsapp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/application"
	reportsmemory "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/infrastructure/memory"
	reportspostgres "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/infrastructure/postgres"
	reportshttp "github.com/Hossam-Nazih/gestion-de-maintenance/internal/reports/interfaces/http"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	monitorCfg, err := monitorapp.LoadConfig()
	if err != nil {
		logger.Fatalf("monitor config error: %v", err)
	}

	var db *sql.DB
	if cfg.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			logger.Fatalf("db open error: %v", err)
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatalf("db ping error: %v", err)
		}
	}
	metrics.Init(db, logger)

	client, err := gmaoapi.NewClient(cfg.GMAOBaseURL, cfg.GMAOToken,
		gmaoapi.WithTimeout(monitorCfg.RequestTimeout))
	if err != nil {
		logger.Fatalf("gmao client error: %v", err)
	}
	if cfg.GMAOUsername != "" {
		ctx, cancel := context.WithTimeout(context.Background(), monitorCfg.RequestTimeout)
		user, err := client.Login(ctx, cfg.GMAOUsername, cfg.GMAOPassword)
		cancel()
		if err != nil {
			logger.Fatalf("gmao login error: %v", err)
		}
		logger.Printf("gmao login ok: user=%s role=%s", user.Username, user.Role)
	}

	ctx := context.Background()

	var notifRepo notifapp.Repository
	var historyRepo reportsapp.HistoryRepository
	var interventionOpts []interventionsapp.Option
	if db != nil {
		auditRepo := audit.NewRepository(db)
		if err := auditRepo.EnsureSchema(ctx); err != nil {
			logger.Fatalf("audit schema error: %v", err)
		}
		interventionOpts = append(interventionOpts, interventionsapp.WithAudit(auditRepo))
		pgNotif := notifpostgres.NewNotificationRepository(db)
		if err := pgNotif.EnsureSchema(ctx); err != nil {
			logger.Fatalf("notifications schema error: %v", err)
		}
		pgHistory := reportspostgres.NewHistoryRepository(db)
		if err := pgHistory.EnsureSchema(ctx); err != nil {
			logger.Fatalf("status history schema error: %v", err)
		}
		notifRepo = pgNotif
		historyRepo = pgHistory
	} else {
		logger.Printf("no database configured, using in-memory journals")
		notifRepo = notifmemory.NewNotificationRepository()
		historyRepo = reportsmemory.NewHistoryRepository()
	}

	notifService, err := notifapp.NewService(notifRepo, logger)
	if err != nil {
		logger.Fatalf("notifications service error: %v", err)
	}
	reportsService, err := reportsapp.NewService(historyRepo, logger)
	if err != nil {
		logger.Fatalf("reports service error: %v", err)
	}

	broker := monitorhttp.NewSSEBroker()
	manager := monitorapp.NewAlertManager(
		monitorapp.WithExpiry(monitorCfg.ExpiryBase, monitorCfg.ExpiryStep),
		monitorapp.WithNotifier(monitorapp.NewMultiNotifier(broker)),
		monitorapp.WithManagerLogger(logger),
	)
	defer manager.Stop()

	source := statusSource(client, monitorCfg.Source)
	poller, err := monitorapp.NewPoller(source, manager, logger,
		monitorapp.WithInterval(monitorCfg.PollInterval),
		monitorapp.WithSinks(notifService, reportsService),
		monitorapp.WithSnapshotPublisher(broker),
	)
	if err != nil {
		logger.Fatalf("poller error: %v", err)
	}
	go poller.Start(ctx)

	monitorHandler, err := monitorhttp.NewHandler(poller, manager)
	if err != nil {
		logger.Fatalf("monitor handler error: %v", err)
	}
	notifHandler, err := notifhttp.NewHandler(notifService)
	if err != nil {
		logger.Fatalf("notifications handler error: %v", err)
	}
	interventionService, err := interventionsapp.NewService(client, logger, interventionOpts...)
	if err != nil {
		logger.Fatalf("interventions service error: %v", err)
	}
	interventionHandler, err := interventionshttp.NewHandler(interventionService)
	if err != nil {
		logger.Fatalf("interventions handler error: %v", err)
	}
	reportsHandler, err := reportshttp.NewHandler(reportsService)
	if err != nil {
		logger.Fatalf("reports handler error: %v", err)
	}

	// The alert stream stays open so EventSource clients can attach
	// without a token, matching the health and metrics endpoints.
	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics", "/api/v1/alerts/stream"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.JWTSecret), policy)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/status", monitorHandler)
	mux.Handle("/api/v1/status/bar", monitorHandler)
	mux.Handle("/api/v1/refresh", monitorHandler)
	mux.Handle("/api/v1/alerts", monitorHandler)
	mux.Handle("/api/v1/alerts/", monitorHandler)
	mux.Handle("/api/v1/alerts/stream", monitorhttp.NewStreamHandler(broker))
	mux.Handle("/api/v1/notifications", notifHandler)
	mux.Handle("/api/v1/notifications/", notifHandler)
	mux.Handle("/api/v1/interventions", interventionHandler)
	mux.Handle("/api/v1/traitements", interventionHandler)
	mux.Handle("/api/v1/traitements/", interventionHandler)
	mux.Handle("/api/v1/reports/summary", reportsHandler)
	mux.Handle("/api/v1/exports/maintenance.xlsx", reportsHandler)
	mux.Handle("/api/v1/exports/maintenance.pdf", reportsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(authMiddleware.Wrap(mux), logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

func statusSource(client *gmaoapi.Client, source string) monitorapp.StatusSource {
	switch source {
	case monitorapp.SourceInterventions:
		return monitorapp.SourceFunc(client.InterventionsStatus)
	case monitorapp.SourceInterventionsSimple:
		return monitorapp.SourceFunc(client.InterventionsStatusSimple)
	default:
		return monitorapp.SourceFunc(client.EquipmentsStatus)
	}
}

type config struct {
	GMAOBaseURL  string
	GMAOToken    string
	GMAOUsername string
	GMAOPassword string
	DatabaseURL  string
	HTTPAddr     string
	JWTSecret    string
}

func loadConfig() config {
	cfg := config{
		GMAOBaseURL:  getenvDefault("GMAO_BASE_URL", ""),
		GMAOToken:    getenvDefault("GMAO_TOKEN", ""),
		GMAOUsername: getenvDefault("GMAO_USERNAME", ""),
		GMAOPassword: getenvDefault("GMAO_PASSWORD", ""),
		DatabaseURL:  getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		HTTPAddr:     getenvDefault("HTTP_ADDR", ":8080"),
		JWTSecret:    getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
	}
	if cfg.GMAOBaseURL == "" {
		log.Fatal("GMAO_BASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		log.Fatal("AUTH_JWT_SECRET is required")
	}
	return cfg
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Flush keeps SSE streaming working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
