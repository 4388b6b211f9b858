package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/2beens/fitlife/internal/auth"
	"github.com/2beens/fitlife/internal/config"
	"github.com/2beens/fitlife/internal/dashboard"
	"github.com/2beens/fitlife/internal/db"
	"github.com/2beens/fitlife/internal/diets"
	"github.com/2beens/fitlife/internal/evolution"
	"github.com/2beens/fitlife/internal/habits"
	"github.com/2beens/fitlife/internal/middleware"
	"github.com/2beens/fitlife/internal/profile"
	"github.com/2beens/fitlife/internal/rowstore"
	"github.com/2beens/fitlife/internal/snapshot"
	"github.com/2beens/fitlife/internal/telemetry/metrics"
	"github.com/2beens/fitlife/internal/telemetry/tracing"
	"github.com/2beens/fitlife/internal/workouts"
	"github.com/2beens/fitlife/internal/workouts/session"
	"github.com/2beens/fitlife/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/multierr"
)

const healthPath = "/health"

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	rowStore    rowstore.Store
	redisClient *redis.Client
	checker     auth.Checker

	snapshots      snapshot.Store
	closeSnapshots func() error
	sessions       *session.Manager

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config
	s := &Server{
		config:       cfg,
		versionInfo:  params.VersionInfo,
		otelShutdown: func() {},
	}

	var extraCollectors []prometheus.Collector
	switch cfg.RowStore {
	case config.RowStorePostgres:
		dbParams := db.NewDBPoolParams{
			DBHost:         cfg.PostgresHost,
			DBPort:         cfg.PostgresPort,
			DBName:         cfg.PostgresDBName,
			DBUser:         cfg.PostgresUser,
			DBPassword:     params.PostgresPassword,
			TracingEnabled: params.HoneycombTracingEnabled,
		}
		if cfg.RunMigrations {
			if err := db.MigrateUp(dbParams); err != nil {
				return nil, fmt.Errorf("run migrations: %w", err)
			}
		}

		dbPool, err := db.NewDBPool(ctx, dbParams)
		if err != nil {
			return nil, fmt.Errorf("new db pool: %w", err)
		}
		if err := dbPool.Ping(ctx); err != nil {
			log.Warnf("failed to ping db: %s", err)
		}

		s.dbPool = dbPool
		s.rowStore = rowstore.NewPgStore(dbPool)
		extraCollectors = append(extraCollectors, pgxpoolprometheus.NewCollector(
			dbPool,
			map[string]string{"db_name": cfg.PostgresDBName},
		))
	case config.RowStoreMemory:
		log.Warnln("using in-memory row store, data is lost on restart")
		s.rowStore = NewMemoryRowStore()
	default:
		return nil, fmt.Errorf("unknown row store: %q", cfg.RowStore)
	}

	s.promRegistry = metrics.SetupPrometheus(extraCollectors...)
	s.metricsManager = metrics.NewManager("fitlife", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	if cfg.RedisEnabled() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
			Password: params.RedisPassword,
			DB:       0, // use default DB
		})
		rdbStatus := rdb.Ping(ctx)
		if err := rdbStatus.Err(); err != nil {
			log.Errorf("--> failed to ping redis: %s", err)
		} else {
			log.Debugf("redis ping: %s", rdbStatus.Val())
		}
		s.redisClient = rdb
		s.checker = auth.NewLoginChecker(auth.DefaultTTL, rdb)
	} else {
		log.Warnf("redis not configured, using %d static tokens", len(cfg.StaticTokens))
		checker := auth.NewStaticChecker()
		for token, userID := range cfg.StaticTokens {
			checker.Sessions[token] = userID
		}
		s.checker = checker
	}

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "fitlife-service", s.redisClient)
	if err != nil {
		return nil, err
	}
	s.otelShutdown = otelShutdown

	snapshots, closeSnapshots, err := snapshot.Open(cfg, s.redisClient)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	s.snapshots = snapshots
	s.closeSnapshots = closeSnapshots

	s.sessions = session.NewManager(session.ManagerParams{
		Plans:        workouts.NewRepo(s.rowStore),
		History:      workouts.NewHistoryRepo(s.rowStore),
		Snapshots:    s.snapshots,
		Metrics:      s.metricsManager,
		TickInterval: session.DefaultTickInterval,
	})

	return s, nil
}

// NewMemoryRowStore returns a MemStore with the unique keys the SQL schema
// declares for upserts.
func NewMemoryRowStore() *rowstore.MemStore {
	return rowstore.NewMemStore(
		rowstore.WithUniqueKey("meal_status", "user_id", "meal_id", "date"),
		rowstore.WithUniqueKey("habit_status", "user_id", "habit_id", "date"),
		rowstore.WithUniqueKey("profiles", "user_id"),
	)
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	var limiter middleware.RequestRateLimiter
	if s.redisClient != nil && s.config.WriteRateLimitPerMinute > 0 {
		limiter = redis_rate.NewLimiter(s.redisClient)
	}
	limited := func(routerName string, h http.HandlerFunc) http.Handler {
		if limiter == nil {
			return h
		}
		return middleware.RateLimit(limiter, s.metricsManager, routerName, s.config.WriteRateLimitPerMinute)(h)
	}

	r.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		pkg.WriteJSON(w, map[string]string{"status": "ok", "version": s.versionInfo}, http.StatusOK)
	}).Methods("GET")

	workoutsRepo := workouts.NewRepo(s.rowStore)
	historyRepo := workouts.NewHistoryRepo(s.rowStore)
	workoutsHandler := workouts.NewHandler(workoutsRepo, historyRepo)
	r.HandleFunc("/workouts", workoutsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-workouts")
	r.HandleFunc("/workouts", workoutsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-workout")
	r.HandleFunc("/workouts/today", workoutsHandler.HandleToday).Methods("GET", "OPTIONS").Name("today-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-workout")
	r.HandleFunc("/workouts/{id}/active", workoutsHandler.HandleSetActive).Methods("PATCH", "OPTIONS").Name("activate-workout")
	r.HandleFunc("/workouts/{id}", workoutsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-workout")
	r.HandleFunc("/history", workoutsHandler.HandleHistory).Methods("GET", "OPTIONS").Name("history")

	sessionHandler := session.NewHandler(
		s.sessions,
		session.NewQuickLogger(workoutsRepo, historyRepo, s.metricsManager),
	)
	r.HandleFunc("/sessions/{workoutId}", sessionHandler.HandleStart).Methods("POST", "OPTIONS").Name("start-session")
	r.HandleFunc("/sessions/{workoutId}", sessionHandler.HandleView).Methods("GET", "OPTIONS").Name("view-session")
	r.HandleFunc("/sessions/{workoutId}", sessionHandler.HandleDiscard).Methods("DELETE", "OPTIONS").Name("discard-session")
	r.Handle("/sessions/{workoutId}/actions", limited("session-actions", sessionHandler.HandleAction)).Methods("POST", "OPTIONS").Name("session-action")
	r.Handle("/sessions/{workoutId}/finish", limited("session-finish", sessionHandler.HandleFinish)).Methods("POST", "OPTIONS").Name("finish-session")
	r.HandleFunc("/sessions/{workoutId}/unsaved", sessionHandler.HandleUnsaved).Methods("GET", "OPTIONS").Name("unsaved-session")
	r.HandleFunc("/quick-log/{workoutId}", sessionHandler.HandleQuickLogPlan).Methods("GET", "OPTIONS").Name("quick-log-plan")
	r.Handle("/quick-log/{workoutId}", limited("quick-log", sessionHandler.HandleQuickLog)).Methods("POST", "OPTIONS").Name("quick-log")

	dietsHandler := diets.NewHandler(diets.NewRepo(s.rowStore))
	r.HandleFunc("/diets", dietsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-diets")
	r.HandleFunc("/diets", dietsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-diet")
	r.HandleFunc("/diets/active", dietsHandler.HandleActive).Methods("GET", "OPTIONS").Name("active-diet")
	r.HandleFunc("/diets/{id}", dietsHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-diet")
	r.HandleFunc("/diets/{id}", dietsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-diet")
	r.HandleFunc("/diets/{id}/active", dietsHandler.HandleSetActive).Methods("PATCH", "OPTIONS").Name("activate-diet")
	r.HandleFunc("/diets/{id}", dietsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-diet")
	r.HandleFunc("/meals/{id}/toggle", dietsHandler.HandleToggleMeal).Methods("POST", "OPTIONS").Name("toggle-meal")
	r.HandleFunc("/meals/{id}/status", dietsHandler.HandleSetMealStatus).Methods("PUT", "OPTIONS").Name("meal-status")

	habitsRepo := habits.NewRepo(s.rowStore)
	habitsHandler := habits.NewHandler(habitsRepo)
	r.HandleFunc("/habits", habitsHandler.HandleList).Methods("GET", "OPTIONS").Name("list-habits")
	r.HandleFunc("/habits", habitsHandler.HandleCreate).Methods("POST", "OPTIONS").Name("new-habit")
	r.HandleFunc("/habits/{id}/toggle", habitsHandler.HandleToggle).Methods("POST", "OPTIONS").Name("toggle-habit")
	r.HandleFunc("/habits/{id}", habitsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("delete-habit")

	profileRepo := profile.NewRepo(s.rowStore)
	profileHandler := profile.NewHandler(profileRepo)
	r.HandleFunc("/profile", profileHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-profile")
	r.HandleFunc("/profile", profileHandler.HandleSave).Methods("PUT", "OPTIONS").Name("save-profile")
	r.HandleFunc("/profile/weights", profileHandler.HandleWeightHistory).Methods("GET", "OPTIONS").Name("weight-history")

	evolutionHandler := evolution.NewHandler(evolution.NewAnalyzer(historyRepo, profileRepo))
	r.HandleFunc("/evolution", evolutionHandler.HandleReport).Methods("GET", "OPTIONS").Name("evolution")

	dashboardHandler := dashboard.NewHandler(dashboard.NewService(dashboard.Params{
		Workouts: workoutsRepo,
		Diets:    diets.NewRepo(s.rowStore),
		Habits:   habitsRepo,
		Profiles: profileRepo,
		Sessions: s.sessions,
	}))
	r.HandleFunc("/dashboard", dashboardHandler.HandleToday).Methods("GET", "OPTIONS").Name("dashboard")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.checker, healthPath)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.AllowedOrigins))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest(s.config.MaxRequestBodyBytes))

	return r
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      otelhttp.NewHandler(router, "fitlife-http"),
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:              metricsAddr,
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown http server: %s", err)
		}
		log.Warnln("server shut down")
	}

	if err := s.closeComponents(); err != nil {
		log.Errorf("shutdown: %s", err)
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Errorf(" >>> failed to gracefully shutdown metrics http server: %s", err)
		}
		log.Warnln("metrics server shut down")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

// closeComponents stops the live sessions first, their last snapshots are
// already written, then releases the stores.
func (s *Server) closeComponents() error {
	var errs error

	if s.sessions != nil {
		s.sessions.Close()
		log.Debugln("workout sessions closed")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.closeSnapshots != nil {
		errs = multierr.Append(errs, s.closeSnapshots())
	}

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("close redis client: %w", err))
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	return errs
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
