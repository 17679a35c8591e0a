// Точка входа ADL Module — сервис реестра ADL-файлов отделения психиатрии.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// создаёт сервисный слой и API handlers, запускает topologymetrics
// и HTTP-сервер с JWT middleware и graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/api/handlers"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/api/middleware"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/config"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/database"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/server"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/service"
)

func main() {
	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("ADL Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("ADL_DEPHEALTH_GROUP") == "" {
		logger.Warn("ADL_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL идёт через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Services
	lifecycleSvc := service.NewLifecycleService(pool, logger)
	reportingSvc := service.NewReportingService(pool, cfg.OverdueThreshold, logger)

	// 6. Readiness checkers (PostgreSQL + IdP)
	pgChecker := database.NewReadinessChecker(pool)
	idpChecker, err := middleware.NewIdPReadinessChecker(cfg.JWTJWKSURL, cfg.IdPCACertPath, cfg.JWKSClientTimeout)
	if err != nil {
		logger.Error("Ошибка создания IdP readiness checker", slog.String("error", err.Error()))
		os.Exit(1)
	}
	healthHandler := handlers.NewHealthHandler(pgChecker, idpChecker)

	// 7. API handler (реализует generated.ServerInterface)
	apiHandler := handlers.NewAPIHandler(
		healthHandler,
		lifecycleSvc,
		reportingSvc,
		logger,
	)

	// 8. JWT middleware
	jwtAuth, err := middleware.NewJWTAuth(
		cfg.JWTJWKSURL,
		cfg.IdPCACertPath,
		cfg.JWTIssuer,
		cfg.RoleClinicianGroups,
		cfg.RoleReadonlyGroups,
		cfg.JWKSClientTimeout,
		cfg.JWKSRefreshInterval,
		cfg.JWTLeeway,
		logger,
	)
	if err != nil {
		logger.Error("Ошибка создания JWT middleware", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer jwtAuth.Close()
	logger.Info("JWT middleware инициализирован",
		slog.String("jwks_url", cfg.JWTJWKSURL),
		slog.String("issuer", cfg.JWTIssuer),
	)

	// 9. topologymetrics — мониторинг зависимостей (PostgreSQL + IdP)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"adl-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.JWTJWKSURL,
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 10. Создание и запуск HTTP-сервера.
	// Health probes и /metrics доступны без JWT.
	srv := server.New(cfg, logger, apiHandler,
		middleware.MetricsMiddleware,
		middleware.RequestLogger(logger),
		server.WithExclusions(jwtAuth.Middleware(), "/health/", "/metrics"),
	)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 11. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("ADL Module остановлен")
}
