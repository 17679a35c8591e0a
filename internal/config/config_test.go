package config

import (
	"log/slog"
	"testing"
	"time"
)

// setEnvs устанавливает переменные окружения на время теста.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

// minimalEnvs возвращает минимальный набор обязательных переменных.
func minimalEnvs() map[string]string {
	return map[string]string{
		"ADL_DB_HOST":     "localhost",
		"ADL_DB_NAME":     "emrs_adl",
		"ADL_DB_USER":     "emrs",
		"ADL_DB_PASSWORD": "secret",
		"ADL_IDP_URL":     "https://idp.pgi.local",
	}
}

func TestLoad_MinimalConfig(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	// Проверяем значения по умолчанию
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, ожидается 8080", cfg.Port)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, ожидается Info", cfg.LogLevel)
	}
	if cfg.LogFormat != "json" {
		t.Errorf("LogFormat = %q, ожидается json", cfg.LogFormat)
	}
	if cfg.DBPort != 5432 {
		t.Errorf("DBPort = %d, ожидается 5432", cfg.DBPort)
	}
	if cfg.DBSSLMode != "disable" {
		t.Errorf("DBSSLMode = %q, ожидается disable", cfg.DBSSLMode)
	}
	if cfg.IdPRealm != "emrs" {
		t.Errorf("IdPRealm = %q, ожидается emrs", cfg.IdPRealm)
	}
	if cfg.JWTIssuer != "https://idp.pgi.local/realms/emrs" {
		t.Errorf("JWTIssuer = %q, не совпадает с авто-вычисленным", cfg.JWTIssuer)
	}
	if cfg.JWTJWKSURL != "https://idp.pgi.local/realms/emrs/protocol/openid-connect/certs" {
		t.Errorf("JWTJWKSURL = %q, не совпадает с авто-вычисленным", cfg.JWTJWKSURL)
	}
	if cfg.OverdueThreshold != 72*time.Hour {
		t.Errorf("OverdueThreshold = %v, ожидается 72h", cfg.OverdueThreshold)
	}
	if cfg.DephealthCheckInterval != 15*time.Second {
		t.Errorf("DephealthCheckInterval = %v, ожидается 15s", cfg.DephealthCheckInterval)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("ShutdownTimeout = %v, ожидается 5s", cfg.ShutdownTimeout)
	}
	if len(cfg.RoleClinicianGroups) != 1 || cfg.RoleClinicianGroups[0] != "emrs-psychiatry-staff" {
		t.Errorf("RoleClinicianGroups = %v, ожидается [emrs-psychiatry-staff]", cfg.RoleClinicianGroups)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	envs := minimalEnvs()
	delete(envs, "ADL_DB_HOST")
	setEnvs(t, envs)

	if _, err := Load(); err == nil {
		t.Error("Load() без ADL_DB_HOST не вернул ошибку")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		value string
	}{
		{"некорректный порт", "ADL_PORT", "not-a-number"},
		{"порт вне диапазона", "ADL_PORT", "70000"},
		{"некорректный уровень логирования", "ADL_LOG_LEVEL", "verbose"},
		{"некорректный формат логов", "ADL_LOG_FORMAT", "xml"},
		{"некорректный SSL-режим", "ADL_DB_SSL_MODE", "prefer"},
		{"некорректная длительность", "ADL_OVERDUE_THRESHOLD", "3 days"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			setEnvs(t, minimalEnvs())
			t.Setenv(c.key, c.value)

			if _, err := Load(); err == nil {
				t.Errorf("Load() с %s=%q не вернул ошибку", c.key, c.value)
			}
		})
	}
}

func TestLoad_TrailingSlashTrimmed(t *testing.T) {
	envs := minimalEnvs()
	envs["ADL_IDP_URL"] = "https://idp.pgi.local/"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if cfg.IdPURL != "https://idp.pgi.local" {
		t.Errorf("IdPURL = %q, trailing slash не убран", cfg.IdPURL)
	}
}

func TestLoad_GroupsCSV(t *testing.T) {
	envs := minimalEnvs()
	envs["ADL_ROLE_CLINICIAN_GROUPS"] = "psy-residents, psy-consultants ,"
	setEnvs(t, envs)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}
	if len(cfg.RoleClinicianGroups) != 2 {
		t.Fatalf("RoleClinicianGroups = %v, ожидается 2 элемента", cfg.RoleClinicianGroups)
	}
	if cfg.RoleClinicianGroups[0] != "psy-residents" || cfg.RoleClinicianGroups[1] != "psy-consultants" {
		t.Errorf("RoleClinicianGroups = %v, пробелы/пустые элементы не обработаны", cfg.RoleClinicianGroups)
	}
}

func TestDatabaseDSN(t *testing.T) {
	setEnvs(t, minimalEnvs())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	want := "host=localhost port=5432 dbname=emrs_adl user=emrs password=secret sslmode=disable"
	if got := cfg.DatabaseDSN(); got != want {
		t.Errorf("DatabaseDSN() = %q, ожидается %q", got, want)
	}
}
