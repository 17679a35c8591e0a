// Пакет errors — конструкторы стандартных ошибок в формате EMRS.
// Единый формат: {"error": {"code": "...", "message": "..."}}.
// Все HTTP-ответы с ошибками должны использовать WriteError.
package errors

import (
	"encoding/json"
	"net/http"
)

// Коды ошибок, определённые в OpenAPI контракте.
const (
	CodeValidationError     = "VALIDATION_ERROR"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeForbidden           = "FORBIDDEN"
	CodeConflict            = "CONFLICT"
	CodeInvalidTransition   = "INVALID_TRANSITION"
	CodeDuplicateProforma   = "DUPLICATE_PROFORMA"
	CodeIdempotencyMismatch = "IDEMPOTENCY_MISMATCH"
	CodeInternalError       = "INTERNAL_ERROR"
)

// errorBody — структура тела ответа ошибки.
type errorBody struct {
	Error errorDetail `json:"error"`
}

// errorDetail — детали ошибки.
type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Details — дополнительные машиночитаемые поля (опционально)
	Details any `json:"details,omitempty"`
}

// WriteError записывает ответ ошибки в стандартном формате EMRS.
// statusCode — HTTP статус-код, code — машиночитаемый код, message — описание.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	writeError(w, statusCode, code, message, nil)
}

// WriteErrorDetails записывает ответ ошибки с дополнительными полями details.
func WriteErrorDetails(w http.ResponseWriter, statusCode int, code, message string, details any) {
	writeError(w, statusCode, code, message, details)
}

func writeError(w http.ResponseWriter, statusCode int, code, message string, details any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// --- Конструкторы для типичных ошибок ---

// ValidationError — 400 некорректные входные данные.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, CodeValidationError, message)
}

// NotFound — 404 ресурс не найден.
func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, CodeNotFound, message)
}

// Unauthorized — 401 требуется аутентификация.
func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, CodeUnauthorized, message)
}

// Forbidden — 403 недостаточно прав.
func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, CodeForbidden, message)
}

// Conflict — 409 конкурентное изменение, запрос нужно повторить.
func Conflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeConflict, message)
}

// InvalidTransition — 409 недопустимый переход статуса.
// details содержит текущий статус и список допустимых действий.
func InvalidTransition(w http.ResponseWriter, message string, details any) {
	WriteErrorDetails(w, http.StatusConflict, CodeInvalidTransition, message, details)
}

// DuplicateProforma — 409 для проформы уже заведён ADL-файл.
func DuplicateProforma(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, CodeDuplicateProforma, message)
}

// IdempotencyMismatch — 422 ключ идемпотентности применён к другому переходу.
func IdempotencyMismatch(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnprocessableEntity, CodeIdempotencyMismatch, message)
}

// InternalError — 500 внутренняя ошибка.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, CodeInternalError, message)
}
