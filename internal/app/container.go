package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"talent-ledger/internal/config"
	"talent-ledger/internal/database"
	"talent-ledger/internal/database/migration"
	dbpostgres "talent-ledger/internal/database/postgres"
	"talent-ledger/internal/database/seeder"
	"talent-ledger/internal/domain/escrow"
	"talent-ledger/internal/infrastructure/cache"
	"talent-ledger/internal/oracle"
	"talent-ledger/internal/pkg/jwt"
	"talent-ledger/internal/repository"
	"talent-ledger/internal/scheduler"
	"talent-ledger/internal/usecase"
	"talent-ledger/internal/ws"
)

// Container owns every long-lived dependency of the service.
type Container struct {
	Config config.Config
	Logger *zap.Logger
	DB     database.DB
	Cache  *cache.Redis
	Hub    *ws.Hub

	JWT jwt.Service

	Auth        usecase.AuthUsecase
	Credentials usecase.CredentialUsecase
	Pools       usecase.PoolUsecase
	Platform    usecase.PlatformUsecase

	Sweeper *scheduler.ExpirySweeper
}

func NewContainer(cfg config.Config, logger *zap.Logger) (*Container, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	db, err := dbpostgres.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := migration.Embedded().Run(ctx, db.SQLDB()); err != nil {
		_ = db.Close()
		return nil, err
	}

	seed := seeder.Runner{Seeders: seeder.Defaults(cfg.Ledger.FeeCollector)}
	if err := seed.Run(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	redisCache := cache.NewRedis(logger)

	hub := ws.NewHub(logger)
	ws.SetDefaultHub(hub)
	go hub.Run()

	accountRepo := repository.NewPostgresAccountRepository(db)
	credRepo := repository.NewPostgresCredentialRepository(db)
	poolRepo := repository.NewPostgresPoolRepository(db)
	configRepo := repository.NewPostgresPlatformConfigRepository(db)
	eventRepo := newPublishingEventRepository(repository.NewPostgresEventRepository(db))

	jwtSvc := jwt.NewHMACService(
		cfg.Auth.AccessSecret,
		cfg.Auth.RefreshSecret,
		cfg.Auth.AccessExpiresIn,
		cfg.Auth.RefreshExpiresIn,
	)

	var rep oracle.Client = oracle.Disabled{}
	if cfg.Ledger.OracleBaseURL != "" {
		rep = oracle.NewHTTPClient(cfg.Ledger.OracleBaseURL, logger)
	}

	stakePolicy, err := escrow.ParseStakePolicy(cfg.Ledger.SelectedStakePolicy)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	poolUC := usecase.NewPoolUsecase(
		poolRepo, credRepo, configRepo, eventRepo,
		rep, redisCache,
		cfg.Ledger.FeeCollector, stakePolicy, logger,
	)

	c := &Container{
		Config:      cfg,
		Logger:      logger,
		DB:          db,
		Cache:       redisCache,
		Hub:         hub,
		JWT:         jwtSvc,
		Auth:        usecase.NewAuthUsecase(accountRepo, jwtSvc),
		Credentials: usecase.NewCredentialUsecase(credRepo, accountRepo, eventRepo, logger),
		Pools:       poolUC,
		Platform:    usecase.NewPlatformUsecase(configRepo, accountRepo, eventRepo, logger),
		Sweeper:     scheduler.NewExpirySweeper(poolUC, redisCache, cfg.Ledger.ExpirySweepSpec, logger),
	}
	return c, nil
}

func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	if c.Sweeper != nil {
		c.Sweeper.Stop()
	}
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
