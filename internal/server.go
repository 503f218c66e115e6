package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/extra/redisotel/v8"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"

	"github.com/2beens/gymcycle/internal/config"
	"github.com/2beens/gymcycle/internal/cycle"
	"github.com/2beens/gymcycle/internal/db"
	"github.com/2beens/gymcycle/internal/gymcycle"
	"github.com/2beens/gymcycle/internal/history"
	"github.com/2beens/gymcycle/internal/kv"
	"github.com/2beens/gymcycle/internal/middleware"
	"github.com/2beens/gymcycle/internal/recommendation"
	"github.com/2beens/gymcycle/internal/telemetry/metrics"
	"github.com/2beens/gymcycle/internal/telemetry/tracing"
	"github.com/2beens/gymcycle/pkg"
)

type workoutHistory interface {
	SaveWorkout(ctx context.Context, entry history.Entry) (*history.Entry, error)
	Get(ctx context.Context, id int) (*history.Entry, error)
	GetHistory(ctx context.Context) ([]history.Entry, error)
	GetHistoryForList(ctx context.Context) ([]history.ListItem, error)
}

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	listenAddr        net.Addr
	metricsAddr       net.Addr
	appSecret         string // shared with the mobile app
	versionInfo       string

	config      *config.Config
	dbPool      *pgxpool.Pool
	redisClient *redis.Client

	historyRepo workoutHistory
	cycleStore  *cycle.Store
	engine      *recommendation.Engine

	// telemetry
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	AppSecret               string
	VersionInfo             string
	PostgresUser            string
	PostgresPassword        string
	RedisPassword           string
	HoneycombTracingEnabled bool
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "gymcycle-backend")
	if err != nil {
		return nil, fmt.Errorf("honeycomb setup: %w", err)
	}

	s := &Server{
		config:       cfg,
		appSecret:    params.AppSecret,
		versionInfo:  params.VersionInfo,
		otelShutdown: otelShutdown,
	}

	var kvStore kv.Store
	switch cfg.Storage {
	case config.StorageMemory:
		log.Warnln("using in-memory storage, nothing will survive a restart")
		kvStore = kv.NewMemoryStore()
		s.historyRepo = history.NewMemoryRepo()
		s.promRegistry = metrics.SetupPrometheus()
	default:
		if err := s.setupPersistentStorage(ctx, params); err != nil {
			otelShutdown()
			return nil, err
		}
		kvStore = kv.NewRedisStore(s.redisClient)
	}

	s.metricsManager = metrics.NewManager("gymcycle", "main", s.promRegistry)
	s.metricsManager.GaugeLifeSignal.Set(0)

	s.cycleStore = cycle.NewStore(
		kvStore,
		s.historyRepo,
		cycle.WithStateKey(cfg.CycleStateKey),
		cycle.WithCacheTTL(cfg.CycleCacheTTL()),
		cycle.WithMetrics(s.metricsManager),
	)
	s.engine = recommendation.NewEngine(
		s.cycleStore,
		recommendation.WithLocation(cfg.Location()),
		recommendation.WithMetrics(s.metricsManager),
	)

	return s, nil
}

// setupPersistentStorage connects postgres (workout history) and redis (cycle state).
func (s *Server) setupPersistentStorage(ctx context.Context, params NewServerParams) error {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDBName,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return fmt.Errorf("new db pool: %w", err)
	}
	s.dbPool = dbPool

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	historyRepo := history.NewRepo(dbPool)
	if err := historyRepo.EnsureSchema(ctx); err != nil {
		dbPool.Close()
		return fmt.Errorf("ensure workout history schema: %w", err)
	}
	s.historyRepo = historyRepo

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDBName},
	)
	s.promRegistry = metrics.SetupPrometheus(pgxpoolCollector)

	s.redisClient = redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})
	s.redisClient.AddHook(redisotel.NewTracingHook())

	rdbStatus := s.redisClient.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	return nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("gymcycle-router"))

	r.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteResponseBytes(w, pkg.ContentType.Text, []byte("I'm OK, thanks ;)"), http.StatusOK)
	}).Methods("GET").Name("root")
	r.HandleFunc("/version", func(w http.ResponseWriter, _ *http.Request) {
		pkg.WriteResponseBytes(w, pkg.ContentType.Text, []byte(s.versionInfo), http.StatusOK)
	}).Methods("GET").Name("version")

	var rateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		rateLimiter = redis_rate.NewLimiter(s.redisClient)
	}

	gymcycleHandler := gymcycle.NewHandler(s.cycleStore, s.engine, s.historyRepo, s.metricsManager)
	gymcycleHandler.SetupRoutes(r, rateLimiter, s.config.CompletionRateLimitPerMin)

	// all the rest - unhandled paths
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Tracef("unhandled path: [%s] %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.appSecret)

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest(middleware.DefaultMaxBodyBytes))

	return r
}

// Serve starts the main and the metrics http servers in the background.
func (s *Server) Serve(host string, port int) error {
	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	listener, err := net.Listen("tcp", ipAndPort)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", ipAndPort, err)
	}

	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	metricsListener, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		_ = listener.Close()
		return fmt.Errorf("metrics listen on %s: %w", metricsAddr, err)
	}
	s.listenAddr = listener.Addr()
	s.metricsAddr = metricsListener.Addr()

	s.httpServer = &http.Server{
		Handler:      s.routerSetup(),
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.InstrumentMetricHandler(
		s.promRegistry,
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
	))
	s.metricsHttpServer = &http.Server{
		Handler:           metricsRouter,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", s.listenAddr)
		err := s.httpServer.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", s.metricsAddr)
		err := s.metricsHttpServer.Serve(metricsListener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, serve: %s", err)
		}
	}()

	s.metricsManager.GaugeLifeSignal.Set(1)
	return nil
}

func (s *Server) GracefulShutdown(ctx context.Context) error {
	log.Debug("graceful shutdown initiated ...")
	s.metricsManager.GaugeLifeSignal.Set(0)

	var errs error
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutdown http server: %w", err))
		}
		log.Warnln("server shut down")
	}
	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("shutdown metrics http server: %w", err))
		}
		log.Warnln("metrics server shut down")
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

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

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	return errs
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed, http.StateHijacked:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
