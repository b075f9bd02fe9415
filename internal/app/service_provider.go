package app

import (
	"context"
	"net/http"
	"time"

	adminAPI "powerrush_backend/internal/api/admin"
	authAPI "powerrush_backend/internal/api/auth"
	roundAPI "powerrush_backend/internal/api/round"
	"powerrush_backend/internal/config"
	"powerrush_backend/internal/config/env"
	"powerrush_backend/internal/engine/sampler"
	"powerrush_backend/internal/logger"
	"powerrush_backend/internal/metrics"
	"powerrush_backend/internal/middleware"
	"powerrush_backend/internal/repository"
	"powerrush_backend/internal/repository/admin_repo"
	"powerrush_backend/internal/repository/gamelog_repo"
	"powerrush_backend/internal/repository/prize_repo"
	"powerrush_backend/internal/repository/session_repo"
	"powerrush_backend/internal/repository/settings_repo"
	"powerrush_backend/internal/scheduler"
	"powerrush_backend/internal/service"
	"powerrush_backend/internal/service/admin"
	"powerrush_backend/internal/service/auth"
	"powerrush_backend/internal/service/game"
	"powerrush_backend/pkg/resp"

	trmpgx "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2"
	"github.com/avito-tech/go-transaction-manager/trm/v2/manager"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

const (
	prizeGaugeInterval   = 30 * time.Second
	limiterIdleTTL       = 10 * time.Minute
	limiterSweepInterval = 5 * time.Minute
)

type ServiceProvider struct {
	//TXManager
	txManager trm.Manager

	// Ambient
	loggerCfg config.LoggerConfig
	logger    *zap.Logger
	metrics   *metrics.Metrics
	clock     clockwork.Clock
	random    sampler.Source

	// Database
	pgConfig config.PGConfig
	dbClient *pgxpool.Pool

	// Game bits
	gameCfg      config.GameConfig
	settingsRepo repository.SettingsRepository
	prizeRepo    repository.PrizeRepository
	gameLogRepo  repository.GameLogRepository
	sessionRepo  repository.SessionRepository
	gameServ     service.GameService
	roundHand    *roundAPI.Handler

	// Admin bits
	jwtCfg    config.JWTConfig
	adminRepo repository.AdminRepository
	adminServ service.AdminService
	authServ  service.AuthService
	adminHand *adminAPI.Handler
	authHand  *authAPI.Handler

	// Background jobs
	rateLimitCfg config.RateLimitConfig
	rateLimiter  *middleware.RateLimiter
	scheduler    *scheduler.Scheduler

	// Router and HTTP config
	httpCfg config.HTTPConfig
	router  chi.Router
}

func newServiceProvider() *ServiceProvider {
	return &ServiceProvider{}
}

func (sp *ServiceProvider) LoggerCfg() config.LoggerConfig {
	if sp.loggerCfg == nil {
		cfg, err := env.NewLoggerConfig()
		if err != nil {
			panic("failed to get logger config: " + err.Error())
		}
		sp.loggerCfg = cfg
	}
	return sp.loggerCfg
}

func (sp *ServiceProvider) Logger() *zap.Logger {
	if sp.logger == nil {
		l, err := logger.New(sp.LoggerCfg().Level(), sp.LoggerCfg().Development())
		if err != nil {
			panic("failed to create logger: " + err.Error())
		}
		zap.ReplaceGlobals(l)
		sp.logger = l
	}
	return sp.logger
}

func (sp *ServiceProvider) Metrics() *metrics.Metrics {
	if sp.metrics == nil {
		sp.metrics = metrics.New()
	}
	return sp.metrics
}

func (sp *ServiceProvider) Clock() clockwork.Clock {
	if sp.clock == nil {
		sp.clock = clockwork.NewRealClock()
	}
	return sp.clock
}

func (sp *ServiceProvider) Random() sampler.Source {
	if sp.random == nil {
		sp.random = sampler.NewRandom()
	}
	return sp.random
}

func (sp *ServiceProvider) PgConfig() config.PGConfig {
	if sp.pgConfig == nil {
		cfg, err := env.NewPGConfig()
		if err != nil {
			panic("failed to get database config: " + err.Error())
		}
		sp.pgConfig = cfg
	}
	return sp.pgConfig
}

func (sp *ServiceProvider) DBClient(ctx context.Context) *pgxpool.Pool {
	if sp.dbClient == nil {
		poolCfg, err := pgxpool.ParseConfig(sp.PgConfig().DSN())
		if err != nil {
			panic("failed to parse db dsn: " + err.Error())
		}
		poolCfg.MaxConns = sp.PgConfig().MaxConns()
		poolCfg.ConnConfig.ConnectTimeout = sp.PgConfig().ConnectTimeout()

		dbc, err := pgxpool.NewWithConfig(ctx, poolCfg)
		if err != nil {
			panic("failed to create db pool: " + err.Error())
		}
		err = dbc.Ping(ctx)
		if err != nil {
			panic("failed to ping db: " + err.Error())
		}
		sp.dbClient = dbc
	}
	return sp.dbClient
}

func (sp *ServiceProvider) TXManager(ctx context.Context) trm.Manager {
	if sp.txManager == nil {
		m, err := manager.New(trmpgx.NewDefaultFactory(sp.DBClient(ctx)))
		if err != nil {
			panic("failed to create tx manager: " + err.Error())
		}

		sp.txManager = m
	}

	return sp.txManager
}

func (sp *ServiceProvider) GameCfg() config.GameConfig {
	if sp.gameCfg == nil {
		cfg, err := env.NewGameConfig()
		if err != nil {
			panic("failed to get game config: " + err.Error())
		}
		sp.gameCfg = cfg
	}
	return sp.gameCfg
}

func (sp *ServiceProvider) SettingsRepository(ctx context.Context) repository.SettingsRepository {
	if sp.settingsRepo == nil {
		sp.settingsRepo = settings_repo.NewSettingsRepository(sp.DBClient(ctx))
	}
	return sp.settingsRepo
}

func (sp *ServiceProvider) PrizeRepository(ctx context.Context) repository.PrizeRepository {
	if sp.prizeRepo == nil {
		sp.prizeRepo = prize_repo.NewPrizeRepository(sp.DBClient(ctx))
	}
	return sp.prizeRepo
}

func (sp *ServiceProvider) GameLogRepository(ctx context.Context) repository.GameLogRepository {
	if sp.gameLogRepo == nil {
		sp.gameLogRepo = gamelog_repo.NewGameLogRepository(sp.DBClient(ctx))
	}
	return sp.gameLogRepo
}

func (sp *ServiceProvider) SessionRepository() repository.SessionRepository {
	if sp.sessionRepo == nil {
		sp.sessionRepo = session_repo.NewSessionRepository()
	}
	return sp.sessionRepo
}

func (sp *ServiceProvider) AdminRepository(ctx context.Context) repository.AdminRepository {
	if sp.adminRepo == nil {
		sp.adminRepo = admin_repo.NewAdminRepository(sp.DBClient(ctx))
	}
	return sp.adminRepo
}

func (sp *ServiceProvider) GameService(ctx context.Context) service.GameService {
	if sp.gameServ == nil {
		sp.gameServ = game.NewGameService(
			sp.SettingsRepository(ctx),
			sp.PrizeRepository(ctx),
			sp.GameLogRepository(ctx),
			sp.SessionRepository(),
			sp.TXManager(ctx),
			sp.GameCfg(),
			sp.Clock(),
			sp.Random(),
			sp.Metrics(),
			sp.Logger().Named("game"),
		)
	}
	return sp.gameServ
}

func (sp *ServiceProvider) AdminService(ctx context.Context) service.AdminService {
	if sp.adminServ == nil {
		sp.adminServ = admin.NewAdminService(
			sp.SettingsRepository(ctx),
			sp.PrizeRepository(ctx),
			sp.GameLogRepository(ctx),
			sp.TXManager(ctx),
			sp.GameCfg(),
			sp.Clock(),
			sp.Random(),
			sp.Metrics(),
			sp.Logger().Named("admin"),
		)
	}
	return sp.adminServ
}

func (sp *ServiceProvider) JWTCfg() config.JWTConfig {
	if sp.jwtCfg == nil {
		cfg, err := env.NewJWTConfig()
		if err != nil {
			panic("failed to get jwt config: " + err.Error())
		}
		sp.jwtCfg = cfg
	}
	return sp.jwtCfg
}

func (sp *ServiceProvider) AuthService(ctx context.Context) service.AuthService {
	if sp.authServ == nil {
		sp.authServ = auth.NewAuthService(
			sp.AdminRepository(ctx),
			sp.JWTCfg(),
			sp.GameCfg(),
			sp.Clock(),
			sp.Logger().Named("auth"),
		)
	}
	return sp.authServ
}

func (sp *ServiceProvider) RoundHandler(ctx context.Context) *roundAPI.Handler {
	if sp.roundHand == nil {
		sp.roundHand = roundAPI.NewHandler(roundAPI.HandlerDeps{
			Serv:   sp.GameService(ctx),
			Logger: sp.Logger().Named("round_api"),
		})
	}
	return sp.roundHand
}

func (sp *ServiceProvider) AdminHandler(ctx context.Context) *adminAPI.Handler {
	if sp.adminHand == nil {
		sp.adminHand = adminAPI.NewHandler(adminAPI.HandlerDeps{
			Serv:    sp.AdminService(ctx),
			GameCfg: sp.GameCfg(),
			Clock:   sp.Clock(),
			Logger:  sp.Logger().Named("admin_api"),
		})
	}
	return sp.adminHand
}

func (sp *ServiceProvider) AuthHandler(ctx context.Context) *authAPI.Handler {
	if sp.authHand == nil {
		sp.authHand = authAPI.NewHandler(authAPI.HandlerDeps{
			Serv:   sp.AuthService(ctx),
			Logger: sp.Logger().Named("auth_api"),
		})
	}
	return sp.authHand
}

func (sp *ServiceProvider) RateLimitCfg() config.RateLimitConfig {
	if sp.rateLimitCfg == nil {
		cfg, err := env.NewRateLimitConfig()
		if err != nil {
			panic("failed to get rate limit config: " + err.Error())
		}
		sp.rateLimitCfg = cfg
	}
	return sp.rateLimitCfg
}

func (sp *ServiceProvider) RateLimiter() *middleware.RateLimiter {
	if sp.rateLimiter == nil {
		sp.rateLimiter = middleware.NewRateLimiter(
			sp.RateLimitCfg().RPS(),
			sp.RateLimitCfg().Burst(),
			sp.Clock(),
			sp.Logger().Named("ratelimit"),
		)
	}
	return sp.rateLimiter
}

// Scheduler фоновые задачи: выгрузка простаивающих сессий,
// синхронизация метрики остатка призов и очистка лимитера
func (sp *ServiceProvider) Scheduler(ctx context.Context) *scheduler.Scheduler {
	if sp.scheduler == nil {
		s, err := scheduler.New(sp.Clock(), sp.Logger().Named("scheduler"))
		if err != nil {
			panic("failed to create scheduler: " + err.Error())
		}

		gameServ := sp.GameService(ctx)
		idleTTL := sp.GameCfg().SessionIdleTTL()

		err = s.Every("session-sweep", sp.GameCfg().SweepInterval(), func(context.Context) error {
			gameServ.SweepSessions(idleTTL)
			return nil
		})
		if err != nil {
			panic("failed to schedule session sweep: " + err.Error())
		}

		err = s.Every("prize-gauge", prizeGaugeInterval, gameServ.SyncPrizeGauge)
		if err != nil {
			panic("failed to schedule prize gauge: " + err.Error())
		}

		limiter := sp.RateLimiter()
		err = s.Every("ratelimit-cleanup", limiterSweepInterval, func(context.Context) error {
			limiter.Cleanup(limiterIdleTTL)
			return nil
		})
		if err != nil {
			panic("failed to schedule rate limiter cleanup: " + err.Error())
		}

		sp.scheduler = s
	}
	return sp.scheduler
}

func (sp *ServiceProvider) HTTPCfg() config.HTTPConfig {
	if sp.httpCfg == nil {
		cfg, err := env.NewHTTPConfig()
		if err != nil {
			panic("failed to get http config: " + err.Error())
		}
		sp.httpCfg = cfg
	}

	return sp.httpCfg
}

func (sp *ServiceProvider) Router(ctx context.Context) chi.Router {
	if sp.router == nil {
		r := chi.NewRouter()

		// CORS middleware
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   []string{"*"},
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token", middleware.DeviceIDHeader},
			ExposedHeaders:   []string{"Link", "Content-Disposition", "Retry-After"},
			AllowCredentials: false,
			MaxAge:           60 * 15,
		}))
		r.Use(middleware.Logging(sp.Logger().Named("http")))
		r.Use(middleware.Metrics(sp.Metrics()))

		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			resp.WriteJSONResponse(w, http.StatusOK, map[string]string{"status": "ok"})
		})
		r.Method(http.MethodGet, "/metrics", sp.Metrics().Handler())

		// Round endpoints
		roundHandler := sp.RoundHandler(ctx)
		r.Group(func(rr chi.Router) {
			rr.Use(middleware.DeviceID)
			rr.Use(sp.RateLimiter().Handler)

			rr.Route("/round", func(rr chi.Router) {
				rr.Post("/start", roundHandler.Start)
				rr.Post("/tap", roundHandler.Tap)
				rr.Post("/key", roundHandler.Key)
				rr.Post("/continue", roundHandler.Continue)
				rr.Post("/retry", roundHandler.Retry)
				rr.Get("/state", roundHandler.State)
			})
			rr.Get("/device/stats", roundHandler.DeviceStats)
		})

		// Admin endpoints
		authHandler := sp.AuthHandler(ctx)
		adminHandler := sp.AdminHandler(ctx)
		r.Route("/admin", func(rr chi.Router) {
			rr.With(sp.RateLimiter().Handler).Post("/login", authHandler.Login)

			rr.Group(func(ar chi.Router) {
				ar.Use(middleware.AdminAuth(sp.JWTCfg().AccessTokenSecretKey(), sp.Logger().Named("admin_auth")))

				ar.Post("/password", authHandler.ChangePassword)

				ar.Get("/settings", adminHandler.GetSettings)
				ar.Put("/settings", adminHandler.UpdateSettings)
				ar.Get("/settings/difficulty", adminHandler.Difficulty)
				ar.Post("/settings/import", adminHandler.Import)

				ar.Post("/prizes", adminHandler.AddPrize)
				ar.Put("/prizes/{number}", adminHandler.EditPrize)
				ar.Delete("/prizes/{number}", adminHandler.RemovePrize)
				ar.Post("/prizes/reset", adminHandler.ResetPrizes)
				ar.Post("/prizes/simulate", adminHandler.SimulateDraw)

				ar.Post("/whitelist", adminHandler.Whitelist)
				ar.Delete("/whitelist/{deviceID}", adminHandler.Unwhitelist)
				ar.Post("/names", adminHandler.AddName)
				ar.Delete("/names/{name}", adminHandler.RemoveName)

				ar.Get("/logs", adminHandler.Logs)
				ar.Delete("/logs", adminHandler.ClearLogs)
				ar.Get("/logs/export", adminHandler.ExportLogs)
				ar.Get("/analytics", adminHandler.Analytics)
				ar.Get("/devices/{deviceID}", adminHandler.Device)
			})
		})

		sp.router = r
	}

	return sp.router
}
