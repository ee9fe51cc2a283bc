package integration_test

import (
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/lmoretti/event-seat-reservation/internal/app"
	"github.com/lmoretti/event-seat-reservation/internal/mocks"
	"github.com/lmoretti/event-seat-reservation/internal/repository"
	"github.com/lmoretti/event-seat-reservation/internal/store"
	appvalidator "github.com/lmoretti/event-seat-reservation/internal/validator"
)

type TestApp struct {
	App         *app.Application
	DB          *pgxpool.Pool
	RedisClient *redis.Client
	Publisher   *mocks.MockSalePublisher
}

func newTestApp(cfg app.Config) (*TestApp, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	validator := appvalidator.NewValidator()
	publisher := &mocks.MockSalePublisher{}

	db, err := app.NewDatabasePool(cfg)
	if err != nil {
		return nil, err
	}

	redisClient, err := app.NewRedisClient(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	sessionManager := app.NewSessionManager(redisClient)

	eventRepo := repository.NewPostgresEventRepository(db)
	saleRepo := repository.NewPostgresSaleRepository(db)
	seatStore := store.NewRedisSeatStore(redisClient)
	holdStore := store.NewRedisHoldStore(redisClient)

	application := app.NewApp(
		cfg,
		logger,
		db,
		redisClient,
		validator,
		sessionManager,
		eventRepo,
		saleRepo,
		seatStore,
		holdStore,
		publisher,
	)

	return &TestApp{
		App:         application,
		DB:          db,
		RedisClient: redisClient,
		Publisher:   publisher,
	}, nil
}
