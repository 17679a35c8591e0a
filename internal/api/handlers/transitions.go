// transitions.go — обработчики переходов статусов и журнала перемещений.
// POST /api/v1/adl-files/{file_id}/transitions — применение действия
// GET  /api/v1/adl-files/{file_id}/movements — журнал перемещений
// GET  /api/v1/adl-files/{file_id}/replay — сверка статуса с журналом
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/ihubInv/pgi-emrs/adl-module/internal/api/errors"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/api/generated"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/lifecycle"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/service"
)

// mapMovement преобразует запись журнала в API-представление.
func mapMovement(m *model.MovementEntry) generated.Movement {
	return generated.Movement{
		MovementId:      uuid.MustParse(m.ID),
		FileId:          uuid.MustParse(m.FileID),
		ActorId:         m.ActorID,
		Action:          generated.MovementAction(m.Action),
		ResultingStatus: generated.AdlFileStatus(m.ResultingStatus),
		OccurredAt:      m.OccurredAt,
		Note:            m.Note,
	}
}

// ApplyTransition — POST /api/v1/adl-files/{file_id}/transitions.
// Применение действия жизненного цикла к файлу. Повтор запроса с тем же
// Idempotency-Key возвращает результат первого выполнения.
// Доступ: clinician или SA с scope adl:write.
func (h *APIHandler) ApplyTransition(w http.ResponseWriter, r *http.Request, fileID generated.FileId, params generated.ApplyTransitionParams) {
	claims := requireWrite(w, r)
	if claims == nil {
		return
	}

	var req generated.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if req.Action == "" {
		apierrors.ValidationError(w, "Действие (action) обязательно")
		return
	}

	var idempotencyKey string
	if params.IdempotencyKey != nil {
		idempotencyKey = *params.IdempotencyKey
	}

	res, err := h.lifecycle.ApplyTransition(r.Context(), service.TransitionRequest{
		FileID:         fileID.String(),
		Action:         model.MovementAction(req.Action),
		ActorID:        claims.ActorID(),
		Note:           req.Note,
		NewLocation:    req.PhysicalLocation,
		IdempotencyKey: idempotencyKey,
	})
	if err != nil {
		var invalid *lifecycle.InvalidTransitionError
		switch {
		case errors.As(err, &invalid):
			apierrors.InvalidTransition(w, invalid.Error(), map[string]any{
				"current_status": invalid.CurrentStatus,
				"legal_actions":  invalid.LegalActions,
			})
		case errors.Is(err, service.ErrNotFound):
			apierrors.NotFound(w, "ADL-файл не найден")
		case errors.Is(err, service.ErrValidation):
			apierrors.ValidationError(w, err.Error())
		case errors.Is(err, service.ErrConflict):
			apierrors.Conflict(w, err.Error())
		case errors.Is(err, service.ErrIdempotencyMismatch):
			apierrors.IdempotencyMismatch(w, err.Error())
		default:
			h.logger.Error("Ошибка применения перехода",
				"file_id", fileID, "action", req.Action, "error", err)
			apierrors.InternalError(w, "Ошибка применения перехода")
		}
		return
	}

	status := http.StatusCreated
	if res.Idempotent {
		status = http.StatusOK
	}
	writeJSON(w, status, generated.TransitionResponse{
		File:       mapAdlFile(res.File),
		Movement:   mapMovement(res.Movement),
		Idempotent: res.Idempotent,
	})
}

// ListMovements — GET /api/v1/adl-files/{file_id}/movements.
// Полный журнал перемещений файла по возрастанию времени.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) ListMovements(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	if requireRead(w, r) == nil {
		return
	}

	entries, err := h.reporting.MovementHistory(r.Context(), fileID.String())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "ADL-файл не найден")
			return
		}
		h.logger.Error("Ошибка чтения журнала перемещений", "file_id", fileID, "error", err)
		apierrors.InternalError(w, "Ошибка чтения журнала перемещений")
		return
	}

	items := make([]generated.Movement, 0, len(entries))
	for _, m := range entries {
		items = append(items, mapMovement(m))
	}

	writeJSON(w, http.StatusOK, generated.MovementListResponse{
		Items: items,
		Total: len(items),
	})
}

// ReplayAdlFile — GET /api/v1/adl-files/{file_id}/replay.
// Сверка кэшированного статуса файла со свёрткой журнала перемещений.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) ReplayAdlFile(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	if requireRead(w, r) == nil {
		return
	}

	report, err := h.lifecycle.ReplayStatus(r.Context(), fileID.String())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "ADL-файл не найден")
			return
		}
		if errors.Is(err, service.ErrLedgerCorrupted) {
			h.logger.Error("Журнал перемещений повреждён", "file_id", fileID, "error", err)
			apierrors.InternalError(w, "Журнал перемещений файла повреждён")
			return
		}
		h.logger.Error("Ошибка сверки статуса", "file_id", fileID, "error", err)
		apierrors.InternalError(w, "Ошибка сверки статуса")
		return
	}

	writeJSON(w, http.StatusOK, generated.ConsistencyReport{
		FileId:         uuid.MustParse(report.FileID),
		StoredStatus:   generated.AdlFileStatus(report.StoredStatus),
		ReplayedStatus: generated.AdlFileStatus(report.ReplayedStatus),
		Consistent:     report.Consistent,
		Entries:        report.Entries,
	})
}
