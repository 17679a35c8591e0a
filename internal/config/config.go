// Пакет config — загрузка и валидация конфигурации ADL Module
// из переменных окружения.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Config содержит все параметры конфигурации ADL Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string
	// Таймаут чтения HTTP-запроса
	HTTPReadTimeout time.Duration
	// Таймаут записи HTTP-ответа
	HTTPWriteTimeout time.Duration
	// Таймаут простоя keep-alive соединений
	HTTPIdleTimeout time.Duration

	// --- PostgreSQL ---

	// Хост PostgreSQL
	DBHost string
	// Порт PostgreSQL
	DBPort int
	// Имя базы данных
	DBName string
	// Имя пользователя PostgreSQL
	DBUser string
	// Пароль пользователя PostgreSQL
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// --- IdP / JWT ---

	// URL IdP больницы (Keycloak)
	IdPURL string
	// Имя realm в IdP
	IdPRealm string
	// Issuer JWT (авто-вычисляется из IdPURL, если не задан)
	JWTIssuer string
	// URL JWKS endpoint (авто-вычисляется из IdPURL, если не задан)
	JWTJWKSURL string
	// Интервал обновления JWKS-ключей
	JWKSRefreshInterval time.Duration
	// Таймаут HTTP-клиента JWKS
	JWKSClientTimeout time.Duration
	// Допустимое отклонение времени при проверке JWT
	JWTLeeway time.Duration
	// Путь к CA-сертификату для TLS-соединений с IdP (опционально)
	IdPCACertPath string

	// --- Маппинг групп → ролей ---

	// Группы IdP, дающие роль clinician (через запятую)
	RoleClinicianGroups []string
	// Группы IdP, дающие роль readonly (через запятую)
	RoleReadonlyGroups []string

	// --- Отчёты ---

	// Порог просрочки выданных папок (для отчёта overdue-retrievals)
	OverdueThreshold time.Duration

	// --- Мониторинг зависимостей ---

	// Имя группы topologymetrics
	DephealthGroup string
	// Интервал проверки зависимостей topologymetrics
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown HTTP-сервера
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения, валидирует
// обязательные поля и возвращает Config или ошибку.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// ADL_PORT — порт HTTP-сервера (по умолчанию 8080)
	cfg.Port, err = getEnvInt("ADL_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("ADL_PORT: %w", err)
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("ADL_PORT: значение %d вне допустимого диапазона 1-65535", cfg.Port)
	}

	// ADL_LOG_LEVEL — уровень логирования (по умолчанию info)
	cfg.LogLevel, err = parseLogLevel(getEnvDefault("ADL_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("ADL_LOG_LEVEL: %w", err)
	}

	// ADL_LOG_FORMAT — формат логов (по умолчанию json)
	cfg.LogFormat = getEnvDefault("ADL_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("ADL_LOG_FORMAT: недопустимое значение %q, допустимые: json, text", cfg.LogFormat)
	}

	// ADL_HTTP_READ_TIMEOUT — таймаут чтения запроса (по умолчанию 30s)
	cfg.HTTPReadTimeout, err = getEnvDuration("ADL_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_HTTP_READ_TIMEOUT: %w", err)
	}

	// ADL_HTTP_WRITE_TIMEOUT — таймаут записи ответа (по умолчанию 60s)
	cfg.HTTPWriteTimeout, err = getEnvDuration("ADL_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_HTTP_WRITE_TIMEOUT: %w", err)
	}

	// ADL_HTTP_IDLE_TIMEOUT — таймаут keep-alive (по умолчанию 120s)
	cfg.HTTPIdleTimeout, err = getEnvDuration("ADL_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- PostgreSQL ---

	// ADL_DB_HOST — обязательный
	cfg.DBHost, err = getEnvRequired("ADL_DB_HOST")
	if err != nil {
		return nil, err
	}

	// ADL_DB_PORT — порт PostgreSQL (по умолчанию 5432)
	cfg.DBPort, err = getEnvInt("ADL_DB_PORT", 5432)
	if err != nil {
		return nil, fmt.Errorf("ADL_DB_PORT: %w", err)
	}

	// ADL_DB_NAME — обязательный
	cfg.DBName, err = getEnvRequired("ADL_DB_NAME")
	if err != nil {
		return nil, err
	}

	// ADL_DB_USER — обязательный
	cfg.DBUser, err = getEnvRequired("ADL_DB_USER")
	if err != nil {
		return nil, err
	}

	// ADL_DB_PASSWORD — обязательный
	cfg.DBPassword, err = getEnvRequired("ADL_DB_PASSWORD")
	if err != nil {
		return nil, err
	}

	// ADL_DB_SSL_MODE — режим SSL (по умолчанию disable)
	cfg.DBSSLMode = getEnvDefault("ADL_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return nil, fmt.Errorf("ADL_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	// --- IdP / JWT ---

	// ADL_IDP_URL — обязательный
	cfg.IdPURL, err = getEnvRequired("ADL_IDP_URL")
	if err != nil {
		return nil, err
	}
	// Убираем trailing slash
	cfg.IdPURL = strings.TrimRight(cfg.IdPURL, "/")

	// ADL_IDP_REALM — realm (по умолчанию emrs)
	cfg.IdPRealm = getEnvDefault("ADL_IDP_REALM", "emrs")

	// ADL_JWT_ISSUER — авто-вычисляется из IdPURL, если не задан
	cfg.JWTIssuer = getEnvDefault("ADL_JWT_ISSUER",
		fmt.Sprintf("%s/realms/%s", cfg.IdPURL, cfg.IdPRealm))

	// ADL_JWT_JWKS_URL — авто-вычисляется из IdPURL, если не задан
	cfg.JWTJWKSURL = getEnvDefault("ADL_JWT_JWKS_URL",
		fmt.Sprintf("%s/realms/%s/protocol/openid-connect/certs", cfg.IdPURL, cfg.IdPRealm))

	// ADL_JWKS_REFRESH_INTERVAL — интервал обновления JWKS (по умолчанию 5m)
	cfg.JWKSRefreshInterval, err = getEnvDuration("ADL_JWKS_REFRESH_INTERVAL", 5*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("ADL_JWKS_REFRESH_INTERVAL: %w", err)
	}

	// ADL_JWKS_CLIENT_TIMEOUT — таймаут HTTP-клиента JWKS (по умолчанию 10s)
	cfg.JWKSClientTimeout, err = getEnvDuration("ADL_JWKS_CLIENT_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_JWKS_CLIENT_TIMEOUT: %w", err)
	}

	// ADL_JWT_LEEWAY — допустимое отклонение времени JWT (по умолчанию 30s)
	cfg.JWTLeeway, err = getEnvDuration("ADL_JWT_LEEWAY", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_JWT_LEEWAY: %w", err)
	}

	// ADL_IDP_CA_CERT_PATH — путь к CA-сертификату IdP (опционально)
	cfg.IdPCACertPath = getEnvDefault("ADL_IDP_CA_CERT_PATH", "")

	// --- Маппинг групп → ролей ---

	// ADL_ROLE_CLINICIAN_GROUPS — группы для роли clinician
	cfg.RoleClinicianGroups = parseCSV(getEnvDefault("ADL_ROLE_CLINICIAN_GROUPS", "emrs-psychiatry-staff"))

	// ADL_ROLE_READONLY_GROUPS — группы для роли readonly
	cfg.RoleReadonlyGroups = parseCSV(getEnvDefault("ADL_ROLE_READONLY_GROUPS", "emrs-viewers"))

	// --- Отчёты ---

	// ADL_OVERDUE_THRESHOLD — порог просрочки выданных папок (по умолчанию 72h)
	cfg.OverdueThreshold, err = getEnvDuration("ADL_OVERDUE_THRESHOLD", 72*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("ADL_OVERDUE_THRESHOLD: %w", err)
	}

	// --- Мониторинг зависимостей ---

	// ADL_DEPHEALTH_GROUP — имя группы topologymetrics (по умолчанию emrs)
	cfg.DephealthGroup = getEnvDefault("ADL_DEPHEALTH_GROUP", "emrs")

	// ADL_DEPHEALTH_CHECK_INTERVAL — интервал проверки зависимостей (по умолчанию 15s)
	cfg.DephealthCheckInterval, err = getEnvDuration("ADL_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	// ADL_SHUTDOWN_TIMEOUT — таймаут graceful shutdown (по умолчанию 5s)
	cfg.ShutdownTimeout, err = getEnvDuration("ADL_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("ADL_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL подключения к PostgreSQL (для topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
func SetupLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}

// parseCSV разбирает строку, разделённую запятыми, на срез строк.
// Пробелы вокруг элементов убираются, пустые элементы игнорируются.
func parseCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
