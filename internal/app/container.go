package app

import (
	"context"
	"log"
	"time"

	"locum-match/internal/config"
	"locum-match/internal/database"
	dbpostgres "locum-match/internal/database/postgres"
	"locum-match/internal/infrastructure/cache"
	"locum-match/internal/repository"
	"locum-match/internal/usecase"
	"locum-match/internal/ws"
)

// Container owns every long-lived dependency: the pool, the cache, the hub
// and the fully wired usecases.
type Container struct {
	Config config.Config
	Logger *log.Logger

	DB    database.DB
	Cache *cache.Redis
	Hub   *ws.Hub

	ShortTerm usecase.ShortTermMatchUsecase
	Digest    usecase.WeeklyDigestUsecase
	Queries   usecase.RunQueryUsecase
	Reports   usecase.ReportUsecase
}

func NewContainer(cfg config.Config, logger *log.Logger) (*Container, error) {
	if logger == nil {
		logger = log.Default()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	redisCache := cache.NewRedis(logger)
	hub := ws.NewHub(logger)
	notifier := ws.NewNotifier(hub)

	jobs := repository.NewPostgresJobRepository(db)
	physicians := repository.NewPostgresPhysicianRepository(db)
	runs := repository.NewPostgresMatchRunRepository(db)
	results := repository.NewPostgresMatchRunResultRepository(db)
	outboxRepo := repository.NewPostgresNotificationOutboxRepository(db)

	return &Container{
		Config: cfg,
		Logger: logger,
		DB:     db,
		Cache:  redisCache,
		Hub:    hub,

		ShortTerm: usecase.NewShortTermMatchUsecase(jobs, physicians, runs, results, outboxRepo, redisCache, notifier, cfg, logger),
		Digest:    usecase.NewWeeklyDigestUsecase(jobs, physicians, runs, results, outboxRepo, redisCache, notifier, cfg, logger),
		Queries:   usecase.NewRunQueryUsecase(runs, results, outboxRepo),
		Reports:   usecase.NewReportUsecase(runs, results, jobs, cfg.Report),
	}, nil
}

func (c *Container) Close() error {
	if c == nil || c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
