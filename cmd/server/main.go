// Package main - точка входа API-сервера Pomodoro Focus Hub.
//
// Сервер отвечает за:
// - Регистрацию и вход пользователей
// - Приём завершённых фокус-сессий (XP, уровни, серии, достижения)
// - Дашборд: статистика, графики, лидерборд
//
// Хранилище выбирается конфигурацией: PostgreSQL при наличии
// DATABASE_URL, иначе in-memory (для разработки и тестов).
// Redis опционален: при его недоступности сервер деградирует
// до чтения напрямую из хранилища.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/focushub/pomodoro-hub/config"
	"github.com/focushub/pomodoro-hub/internal/application/command"
	"github.com/focushub/pomodoro-hub/internal/application/eventhandler"
	"github.com/focushub/pomodoro-hub/internal/application/query"
	"github.com/focushub/pomodoro-hub/internal/domain/progress"
	"github.com/focushub/pomodoro-hub/internal/domain/user"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/auth"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/messaging"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/persistence/memory"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/persistence/postgres"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/persistence/redis"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/scheduler"
	"github.com/focushub/pomodoro-hub/internal/infrastructure/scheduler/jobs"
	httpapi "github.com/focushub/pomodoro-hub/internal/interface/http"
	"github.com/focushub/pomodoro-hub/pkg/logger"
	"github.com/focushub/pomodoro-hub/pkg/timeutil"
	"github.com/focushub/pomodoro-hub/pkg/userlock"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cmd, err := commandForArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	if cmd == cmdServe {
		err = run(ctx)
	} else {
		err = runMigrationCommand(ctx, cmd)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

// Подкоманды процесса. Без аргументов процесс поднимает API-сервер;
// миграционные подкоманды выполняют операцию и завершаются.
const (
	cmdServe           = "serve"
	cmdMigrate         = "migrate"
	cmdMigrateStatus   = "migrate:status"
	cmdMigrateRollback = "migrate:rollback"
)

// commandForArgs разбирает аргументы командной строки в подкоманду.
func commandForArgs(args []string) (string, error) {
	if len(args) == 0 {
		return cmdServe, nil
	}
	if len(args) > 1 {
		return "", fmt.Errorf("unexpected arguments: %v", args[1:])
	}
	switch args[0] {
	case cmdServe, cmdMigrate, cmdMigrateStatus, cmdMigrateRollback:
		return args[0], nil
	default:
		return "", fmt.Errorf("unknown command %q (expected %s, %s, %s or %s)",
			args[0], cmdServe, cmdMigrate, cmdMigrateStatus, cmdMigrateRollback)
	}
}

// runMigrationCommand выполняет миграционную подкоманду против базы
// из конфигурации и завершается.
func runMigrationCommand(ctx context.Context, cmd string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("%s requires DATABASE_URL", cmd)
	}

	logOpts := logger.DefaultOptions()
	logOpts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(logOpts)

	conn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)

	switch cmd {
	case cmdMigrate:
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		log.Info("migrations applied")
	case cmdMigrateStatus:
		migrations, err := migrator.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read migration status: %w", err)
		}
		for _, m := range migrations {
			state := "pending"
			if m.IsApplied {
				state = "applied " + m.AppliedAt.Format(time.RFC3339)
			}
			fmt.Printf("%03d %-30s %s\n", m.Version, m.Name, state)
		}
	case cmdMigrateRollback:
		if err := migrator.Rollback(ctx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		log.Info("last migration rolled back")
	}
	return nil
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	logOpts := logger.DefaultOptions()
	logOpts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	log := logger.New(logOpts)

	log.Info("starting Pomodoro Focus Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	clock := timeutil.SystemClock{}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ХРАНИЛИЩЕ: POSTGRESQL ИЛИ IN-MEMORY
	// ─────────────────────────────────────────────────────────────────────────
	var (
		store  progress.Store
		users  user.Repository
		dbConn *postgres.Connection
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			dbConn.Close()
		}()

		if err := dbConn.Ping(ctx); err != nil {
			return fmt.Errorf("database ping failed: %w", err)
		}

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(dbConn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		store = postgres.NewProgressStore(dbConn)
		users = postgres.NewUserRepository(dbConn)
		log.Info("database storage initialized")
	} else {
		store = memory.NewProgressStore()
		users = memory.NewUserRepository()
		log.Warn("DATABASE_URL not set, using in-memory storage")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REDIS (ОПЦИОНАЛЬНО)
	// ─────────────────────────────────────────────────────────────────────────
	var (
		redisCache  *redis.Cache
		leaderboard progress.LeaderboardCache
		statsCache  progress.StatsCache
	)

	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer func() {
				log.Info("closing Redis connection...")
				_ = redisCache.Close()
			}()
			leaderboard = redis.NewLeaderboardCache(redisCache, log)
			statsCache = redis.NewStatsCache(redisCache, log)
			log.Info("Redis connection established", logger.String("addr", redisCfg.Addr()))
		}
	} else {
		log.Info("Redis disabled by configuration")
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. EVENT BUS И ОБРАБОТЧИКИ СОБЫТИЙ
	// ─────────────────────────────────────────────────────────────────────────
	busCfg := messaging.DefaultInMemoryEventBusConfig()
	busCfg.Logger = log
	eventBus := messaging.NewInMemoryEventBus(busCfg)
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	if leaderboard != nil || statsCache != nil {
		completionHandler := eventhandler.NewCompletionHandler(leaderboard, statsCache, log)
		if err := completionHandler.Register(eventBus); err != nil {
			return fmt.Errorf("failed to register event handlers: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. АУТЕНТИФИКАЦИЯ
	// ─────────────────────────────────────────────────────────────────────────
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, clock)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ОБРАБОТЧИКИ КОМАНД И ЗАПРОСОВ
	// ─────────────────────────────────────────────────────────────────────────
	locks := userlock.New()

	recordCompletion := command.NewRecordCompletionHandler(store, locks, clock, eventBus, log)
	registerUser := command.NewRegisterUserHandler(users, clock, eventBus, log)
	loginUser := command.NewLoginUserHandler(users, tokens, clock, log)

	getStats := query.NewGetStatsHandler(store, statsCache, log)
	getXPProgress := query.NewGetXPProgressHandler(store, log)
	getChartData := query.NewGetChartDataHandler(store, statsCache, clock, log)
	getLeaderboard := query.NewGetLeaderboardHandler(leaderboard, store, users, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ПЛАНИРОВЩИК ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	if cfg.Scheduler.Enabled && leaderboard != nil {
		sched := scheduler.New(log)
		rebuildJob := jobs.NewRebuildLeaderboardJob(store, leaderboard, eventBus, log)
		if err := sched.Register(rebuildJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RebuildLeaderboardInterval)); err != nil {
			return fmt.Errorf("failed to register rebuild job: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()

		// Первичное наполнение лидерборда, не дожидаясь первого тика.
		if err := sched.RunNow(ctx, rebuildJob.Name()); err != nil {
			log.Warn("initial leaderboard rebuild failed", logger.Err(err))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 9. HTTP-СЕРВЕР
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpapi.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.EnableCORS = cfg.HTTP.EnableCORS
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	server := httpapi.NewServer(serverCfg, httpapi.Dependencies{
		RecordCompletionHandler: recordCompletion,
		RegisterUserHandler:     registerUser,
		LoginUserHandler:        loginUser,
		GetStatsHandler:         getStats,
		GetXPProgressHandler:    getXPProgress,
		GetChartDataHandler:     getChartData,
		GetLeaderboardHandler:   getLeaderboard,
		Tokens:                  tokens,
		Logger:                  log,
		HealthChecker:           &healthChecker{db: dbConn, cache: redisCache},
	})

	serverErr := server.StartAsync()
	log.Info("Pomodoro Focus Hub is running", logger.String("address", serverCfg.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 10. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown completed successfully")
	return nil
}

// healthChecker checks the backing services the server depends on.
// A nil database connection means in-memory mode, which is always healthy.
type healthChecker struct {
	db    *postgres.Connection
	cache *redis.Cache
}

func (h *healthChecker) Check(ctx context.Context) httpapi.HealthStatus {
	status := httpapi.HealthStatus{Healthy: true, Ready: true}

	if h.db != nil {
		db, err := h.db.Health(ctx)
		if err != nil || !db.Healthy {
			status.Healthy = false
			status.Ready = false
			status.Message = "database unreachable"
			return status
		}
	}

	// Degraded cache is not fatal: reads fall back to the store.
	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			status.Message = "cache unreachable, serving from store"
		}
	}

	return status
}
