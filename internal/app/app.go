package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/exaring/otelpgx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"github.com/riandyrn/otelchi"
	"go.opentelemetry.io/contrib/bridges/otelslog"

	"github.com/lmoretti/event-seat-reservation/internal/domain"
	"github.com/lmoretti/event-seat-reservation/internal/queue"
	"github.com/lmoretti/event-seat-reservation/internal/repository"
	"github.com/lmoretti/event-seat-reservation/internal/reservation"
	"github.com/lmoretti/event-seat-reservation/internal/store"
	appvalidator "github.com/lmoretti/event-seat-reservation/internal/validator"
	"github.com/lmoretti/event-seat-reservation/internal/vcs"
)

const serviceName = "event-seat-reservation-api"

var (
	version = vcs.Version()
)

type Application struct {
	config         Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	redis          redis.UniversalClient
	validator      *validator.Validate
	sessionManager *scs.SessionManager

	eventRepo domain.EventRepository
	saleRepo  domain.SaleRepository
	seatStore domain.SeatStore
	holdStore domain.HoldStore

	holdManager     domain.HoldManager
	saleCoordinator domain.SaleCoordinator
	sweeper         *reservation.Sweeper
}

type Config struct {
	Port             int
	Env              string
	HoldTTL          time.Duration
	SweepInterval    time.Duration
	AmqpURL          string
	OtelCollectorUrl string

	DB    DBConfig
	Redis RedisConfig
}

type DBConfig struct {
	DSN          string
	MaxOpenConns int
	MaxIdleTime  time.Duration
}

type RedisConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  time.Duration
}

func Run() error {
	var cfg Config

	flag.IntVar(&cfg.Port, "port", 3000, "server port")
	flag.StringVar(&cfg.Env, "env", "dev", "Environment (dev|staging|prod)")

	flag.DurationVar(&cfg.HoldTTL, "hold-ttl", 5*time.Minute, "Seat hold time-to-live")
	flag.DurationVar(&cfg.SweepInterval, "sweep-interval", 5*time.Second, "Interval between expired hold sweeps")

	flag.StringVar(&cfg.DB.DSN, "db-dsn", "", "PostgreSQL DSN")
	flag.IntVar(&cfg.DB.MaxOpenConns, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.DurationVar(&cfg.DB.MaxIdleTime, "db-max-idle-time", 15*time.Minute, "PostgreSQL max idle time for connections")

	flag.StringVar(&cfg.Redis.URL, "redis-url", "", "Redis URL")
	flag.IntVar(&cfg.Redis.MaxOpenConns, "redis-max-open-conns", 25, "Redis max open connections")
	flag.IntVar(&cfg.Redis.MaxIdleConns, "redis-max-idle-conns", 10, "Redis max idle connections")
	flag.DurationVar(&cfg.Redis.MaxIdleTime, "redis-max-idle-time", 2*time.Minute, "Redis max idle time for connections")

	flag.StringVar(&cfg.AmqpURL, "amqp-url", "", "RabbitMQ URL for sale confirmation events (empty disables publishing)")
	flag.StringVar(&cfg.OtelCollectorUrl, "otel-collector-url", "", "OpenTelemetry collector URL")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	validator := appvalidator.NewValidator()

	db, err := NewDatabasePool(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	redisClient, err := NewRedisClient(cfg)
	if err != nil {
		return err
	}
	defer redisClient.Close()

	eventRepo := repository.NewPostgresEventRepository(db)
	saleRepo := repository.NewPostgresSaleRepository(db)

	seatStore := store.NewRedisSeatStore(redisClient)
	holdStore := store.NewRedisHoldStore(redisClient)

	var publisher domain.SalePublisher
	if cfg.AmqpURL != "" {
		publisher = queue.NewPublisher(cfg.AmqpURL, logger)
	}

	app := NewApp(cfg, logger, db, redisClient, validator, NewSessionManager(redisClient),
		eventRepo, saleRepo, seatStore, holdStore, publisher)

	return app.run()
}

// NewApp wires the repositories and stores into the reservation services and
// returns an Application ready to serve requests.
func NewApp(
	cfg Config,
	logger *slog.Logger,
	db *pgxpool.Pool,
	redisClient redis.UniversalClient,
	validator *validator.Validate,
	sessionManager *scs.SessionManager,
	eventRepo domain.EventRepository,
	saleRepo domain.SaleRepository,
	seatStore domain.SeatStore,
	holdStore domain.HoldStore,
	publisher domain.SalePublisher,
) *Application {
	holdManager := reservation.NewHoldManager(eventRepo, seatStore, holdStore, logger, cfg.HoldTTL)
	saleCoordinator := reservation.NewSaleCoordinator(eventRepo, seatStore, holdManager, holdStore, saleRepo, publisher, logger)
	sweeper := reservation.NewSweeper(holdStore, logger, cfg.SweepInterval)

	return &Application{
		config:          cfg,
		logger:          logger,
		db:              db,
		redis:           redisClient,
		validator:       validator,
		sessionManager:  sessionManager,
		eventRepo:       eventRepo,
		saleRepo:        saleRepo,
		seatStore:       seatStore,
		holdStore:       holdStore,
		holdManager:     holdManager,
		saleCoordinator: saleCoordinator,
		sweeper:         sweeper,
	}
}

func NewSessionManager(client *redis.Client) *scs.SessionManager {
	sessionManager := scs.New()

	sessionManager.Store = goredisstore.New(client)
	sessionManager.IdleTimeout = 20 * time.Minute
	sessionManager.Cookie.Name = "session_id"

	return sessionManager
}

func NewRedisClient(cfg Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Redis.URL,
		MaxIdleConns:    cfg.Redis.MaxIdleConns,
		MaxActiveConns:  cfg.Redis.MaxOpenConns,
		ConnMaxIdleTime: cfg.Redis.MaxIdleTime,
	})

	if err := redisotel.InstrumentTracing(rdb); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err := rdb.Ping(ctx).Err()
	if err != nil {
		return nil, err
	}

	return rdb, nil
}

func NewDatabasePool(cfg Config) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(cfg.DB.DSN)
	if err != nil {
		return nil, err
	}

	config.MaxConnIdleTime = cfg.DB.MaxIdleTime
	config.MaxConns = int32(cfg.DB.MaxOpenConns)
	config.ConnConfig.Tracer = otelpgx.NewTracer()

	db, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	err = db.Ping(ctx)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func (app *Application) run() error {
	shutdownTelemetry, err := app.InitTelemetry()
	if err != nil {
		return err
	}

	if app.config.OtelCollectorUrl != "" {
		app.logger = slog.New(NewMultiHandler(
			slog.NewTextHandler(os.Stdout, nil),
			otelslog.NewHandler(serviceName),
		))
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf("0.0.0.0:%d", app.config.Port),
		Handler:      app.Routes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		ErrorLog:     slog.NewLogLogger(app.logger.Handler(), slog.LevelDebug),
	}

	sweepCtx, stopSweeper := context.WithCancel(context.Background())
	sweeperDone := make(chan struct{})

	go func() {
		defer close(sweeperDone)
		app.sweeper.Run(sweepCtx)
	}()

	shutdownError := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		app.logger.Info("shutting down server", "signal", s.String())

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		err := srv.Shutdown(ctx)
		if err != nil {
			shutdownError <- err
		}

		stopSweeper()
		<-sweeperDone
		shutdownTelemetry(ctx)

		shutdownError <- nil
	}()

	app.logger.Info("starting server", "addr", srv.Addr, "env", app.config.Env)

	err = srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdownError
	if err != nil {
		return err
	}

	app.logger.Info("stopped server", "addr", srv.Addr)

	return nil
}

func (app *Application) Routes() http.Handler {
	r := chi.NewRouter()

	r.NotFound(app.notFoundResponse)

	r.Use(middleware.Logger)
	r.Use(middleware.RequestID)
	r.Use(otelchi.Middleware(serviceName, otelchi.WithChiRoutes(r)))
	r.Use(app.recoverPanic)
	r.Use(app.requestLogger)
	r.Use(app.sessionManager.LoadAndSave)
	r.Use(app.ensureGuestSession)

	r.Get("/healthcheck", app.GetHealth)
	r.Get("/events", app.ListEventsHandler)

	r.Route("/events/{eventId}", func(r chi.Router) {
		r.Get("/seats", app.withEventID(app.GetSeatMapHandler))
		r.Post("/holds", app.withEventID(app.CreateHoldHandler))
		r.Delete("/holds", app.withEventID(app.ReleaseHoldHandler))
		r.Post("/sales", app.withEventID(app.ConfirmSaleHandler))
	})

	return r
}

// withEventID parses the eventId route parameter before invoking the handler.
func (app *Application) withEventID(fn func(http.ResponseWriter, *http.Request, int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		eventIdStr := chi.URLParam(r, "eventId")

		eventId, err := strconv.ParseInt(eventIdStr, 10, 64)
		if err != nil || eventId < 1 {
			app.badRequestResponse(w, r, fmt.Errorf("event ID must be a positive integer"))
			return
		}

		fn(w, r, eventId)
	}
}
