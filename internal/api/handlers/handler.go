// handler.go — основной обработчик API, реализующий generated.ServerInterface.
// Объединяет доменные обработчики и делегирует запросы в сервисный слой.
package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	apierrors "github.com/ihubInv/pgi-emrs/adl-module/internal/api/errors"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/api/middleware"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/service"
)

// APIHandler — основной обработчик API ADL Module.
// Реализует generated.ServerInterface, делегируя запросы в сервисный слой.
type APIHandler struct {
	health    *HealthHandler
	lifecycle *service.LifecycleService
	reporting *service.ReportingService
	logger    *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
func NewAPIHandler(
	health *HealthHandler,
	lifecycle *service.LifecycleService,
	reporting *service.ReportingService,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		health:    health,
		lifecycle: lifecycle,
		reporting: reporting,
		logger:    logger.With(slog.String("component", "api_handler")),
	}
}

// HealthLive — liveness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthLive(w http.ResponseWriter, r *http.Request) {
	h.health.HealthLive(w, r)
}

// HealthReady — readiness probe (делегируется в HealthHandler).
func (h *APIHandler) HealthReady(w http.ResponseWriter, r *http.Request) {
	h.health.HealthReady(w, r)
}

// GetMetrics — Prometheus метрики (делегируется в HealthHandler).
func (h *APIHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.health.GetMetrics(w, r)
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// paginationDefaults нормализует параметры пагинации.
// Возвращает корректные limit и offset.
func paginationDefaults(limit *int, offset *int) (int, int) {
	l := 100
	o := 0

	if limit != nil {
		l = *limit
		if l < 1 {
			l = 1
		}
		if l > 1000 {
			l = 1000
		}
	}

	if offset != nil {
		o = *offset
		if o < 0 {
			o = 0
		}
	}

	return l, o
}

// requireRead проверяет права на чтение реестра:
// сотрудник с ролью clinician/readonly или SA со scope adl:read.
// При отказе пишет ответ ошибки и возвращает nil.
func requireRead(w http.ResponseWriter, r *http.Request) *middleware.AuthClaims {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return nil
	}

	switch claims.SubjectType {
	case middleware.SubjectTypeUser:
		if !claims.HasAnyRole("clinician", "readonly") {
			apierrors.Forbidden(w, "Недостаточно прав: требуется роль clinician или readonly")
			return nil
		}
	case middleware.SubjectTypeSA:
		if !claims.HasScope("adl:read") {
			apierrors.Forbidden(w, "Недостаточно прав: требуется scope adl:read")
			return nil
		}
	default:
		apierrors.Forbidden(w, "Неизвестный тип субъекта")
		return nil
	}

	return claims
}

// requireWrite проверяет права на изменение реестра:
// сотрудник с ролью clinician или SA со scope adl:write.
// При отказе пишет ответ ошибки и возвращает nil.
func requireWrite(w http.ResponseWriter, r *http.Request) *middleware.AuthClaims {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		apierrors.Unauthorized(w, "Отсутствуют claims")
		return nil
	}

	switch claims.SubjectType {
	case middleware.SubjectTypeUser:
		if !claims.HasRole("clinician") {
			apierrors.Forbidden(w, "Недостаточно прав: требуется роль clinician")
			return nil
		}
	case middleware.SubjectTypeSA:
		if !claims.HasScope("adl:write") {
			apierrors.Forbidden(w, "Недостаточно прав: требуется scope adl:write")
			return nil
		}
	default:
		apierrors.Forbidden(w, "Неизвестный тип субъекта")
		return nil
	}

	return claims
}
