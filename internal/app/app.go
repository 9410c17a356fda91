package app

import (
	"context"
	"database/sql"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"chargenet/internal/auth"
	"chargenet/internal/authorizer"
	"chargenet/internal/config"
	"chargenet/internal/httpapi"
	"chargenet/internal/httpapi/handlers"
	"chargenet/internal/notifier"
	"chargenet/internal/redisstore"
	"chargenet/internal/remoteop"
	"chargenet/internal/repository"
	"chargenet/internal/station"
	"chargenet/internal/types"
	"chargenet/internal/ws"
	libdb "chargenet/libs/db"
	libredis "chargenet/libs/redis"
)

// multiSink fans a settled CDR out to every configured sink.
type multiSink []authorizer.CDRSink

func (m multiSink) Forward(ctx context.Context, cdr authorizer.ChargeDetailRecord) error {
	var firstErr error
	for _, sink := range m {
		if err := sink.Forward(ctx, cdr); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// App wires the chargenet dependency graph.
type App struct {
	server      *httpapi.Server
	wsManager   *ws.Manager
	sweeper     *station.ReservationSweeper
	db          *sql.DB
	redisClient *redis.Client
	events      *notifier.NatsNotifier
	logger      *zap.Logger

	// Facade is exposed so external control backends can subscribe.
	Facade *remoteop.Facade
	// Registry is exposed for seeding stations at startup.
	Registry *station.Registry
}

// New constructs the application graph. Postgres, redis and NATS are
// optional collaborators; leaving their config empty disables them.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	registry := station.NewRegistry(logger)
	facade := remoteop.NewFacade(logger)

	var (
		sqlDB       *sql.DB
		redisClient *redis.Client
		events      *notifier.NatsNotifier
		sinks       multiSink
		engineOpts  []authorizer.Option
		err         error
	)

	if cfg.Database.DSN != "" {
		sqlDB, err = libdb.NewPostgresDB(context.Background(), cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, repository.NewCDRRepository(sqlDB))
	}

	if cfg.Redis.Addr != "" {
		redisClient, err = libredis.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			closeAll(sqlDB, nil, nil, logger)
			return nil, err
		}
		engineOpts = append(engineOpts, authorizer.WithActiveSessionStore(
			redisstore.NewStore(redisClient, cfg.ActiveSessionTTL())))
	}

	if cfg.Nats.URL != "" {
		events, err = notifier.NewNatsNotifier(cfg.Nats.URL, logger)
		if err != nil {
			closeAll(sqlDB, redisClient, nil, logger)
			return nil, err
		}
		sinks = append(sinks, events)
	}

	if len(sinks) > 0 {
		engineOpts = append(engineOpts, authorizer.WithCDRSink(sinks))
	}

	engine := authorizer.NewEngine(types.ProviderID(cfg.ProviderID), logger, engineOpts...)

	// Station-operator backend answers facade dispatches directly from
	// the local registry; external backends subscribe at runtime.
	facade.SubscribeEVSEStart(func(ctx context.Context, req station.RemoteStartRequest) types.RemoteStartResult {
		for _, st := range registry.List() {
			if _, ok := st.EVSE(req.EVSEID); ok {
				return st.RemoteStart(req)
			}
		}
		return types.RemoteStartResult{Outcome: types.StartUnspecified}
	})

	wsManager := ws.NewManager(registry, cfg.WSPingInterval(), logger)
	wsServer := ws.NewServer(wsManager, 0, logger)

	tokenService := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())
	handlerSet := handlers.NewSet(registry, engine, facade, logger)

	router := httpapi.NewRouter(httpapi.RouterDeps{
		Tokens:    tokenService,
		Handlers:  handlerSet,
		StationWS: wsServer.HandleAttach,
	})
	server := httpapi.NewServer(cfg.HTTPAddress(), router, logger)

	app := &App{
		server:      server,
		wsManager:   wsManager,
		sweeper:     station.NewReservationSweeper(registry, cfg.ReservationSweepInterval(), logger),
		db:          sqlDB,
		redisClient: redisClient,
		events:      events,
		logger:      logger,
		Facade:      facade,
		Registry:    registry,
	}

	if events != nil {
		// Every station created from now on announces EVSE additions.
		registry.RegisterAddHook(events)
	}

	return app, nil
}

// Run starts the HTTP server, websocket keepalive and reservation
// sweeper, blocking until ctx is canceled.
func (a *App) Run(ctx context.Context) error {
	go a.wsManager.Start(ctx)
	go a.sweeper.Start(ctx)
	return a.server.Run(ctx)
}

// Close releases resources.
func (a *App) Close() {
	closeAll(a.db, a.redisClient, a.events, a.logger)
}

func closeAll(db *sql.DB, redisClient *redis.Client, events *notifier.NatsNotifier, logger *zap.Logger) {
	if db != nil {
		if err := db.Close(); err != nil {
			logger.Warn("failed to close db", zap.Error(err))
		}
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if events != nil {
		events.Close()
	}
}
