// reports.go — обработчики оперативных отчётов регистратуры.
// GET /api/v1/reports/active-files — неархивированные файлы
// GET /api/v1/reports/files-to-retrieve — файлы в архиве, готовые к выдаче
// GET /api/v1/reports/overdue-retrievals — папки, выданные дольше порога
// GET /api/v1/reports/status-histogram — распределение по статусам
package handlers

import (
	"net/http"

	apierrors "github.com/ihubInv/pgi-emrs/adl-module/internal/api/errors"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/api/generated"
)

// ListActiveFiles — GET /api/v1/reports/active-files.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) ListActiveFiles(w http.ResponseWriter, r *http.Request, params generated.ListActiveFilesParams) {
	if requireRead(w, r) == nil {
		return
	}

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	files, total, err := h.reporting.ActiveFiles(r.Context(), params.PatientId, limit, offset)
	if err != nil {
		h.logger.Error("Ошибка отчёта по активным файлам", "error", err)
		apierrors.InternalError(w, "Ошибка получения отчёта")
		return
	}

	writeJSON(w, http.StatusOK, mapAdlFileList(files, total, limit, offset))
}

// ListFilesToRetrieve — GET /api/v1/reports/files-to-retrieve.
// Файлы со статусом stored: их папки находятся в архиве и могут быть выданы.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) ListFilesToRetrieve(w http.ResponseWriter, r *http.Request, params generated.ListFilesToRetrieveParams) {
	if requireRead(w, r) == nil {
		return
	}

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	files, total, err := h.reporting.FilesToRetrieve(r.Context(), params.PatientId, limit, offset)
	if err != nil {
		h.logger.Error("Ошибка отчёта по файлам к выдаче", "error", err)
		apierrors.InternalError(w, "Ошибка получения отчёта")
		return
	}

	writeJSON(w, http.StatusOK, mapAdlFileList(files, total, limit, offset))
}

// ListOverdueRetrievals — GET /api/v1/reports/overdue-retrievals.
// Папки, выданные на руки дольше порогового времени (ADL_OVERDUE_THRESHOLD).
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) ListOverdueRetrievals(w http.ResponseWriter, r *http.Request) {
	if requireRead(w, r) == nil {
		return
	}

	overdue, threshold, err := h.reporting.OverdueRetrievals(r.Context())
	if err != nil {
		h.logger.Error("Ошибка отчёта по просроченным выдачам", "error", err)
		apierrors.InternalError(w, "Ошибка получения отчёта")
		return
	}

	items := make([]generated.OverdueRetrieval, 0, len(overdue))
	for _, o := range overdue {
		items = append(items, generated.OverdueRetrieval{
			File:        mapAdlFile(o.File),
			RetrievedBy: o.RetrievedBy,
			RetrievedAt: o.RetrievedAt,
		})
	}

	writeJSON(w, http.StatusOK, generated.OverdueRetrievalsResponse{
		Items:            items,
		Total:            len(items),
		ThresholdSeconds: int64(threshold.Seconds()),
	})
}

// GetStatusHistogram — GET /api/v1/reports/status-histogram.
// Распределение файлов по статусам плюс количество выданных папок.
// Статусы без файлов присутствуют с нулём.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) GetStatusHistogram(w http.ResponseWriter, r *http.Request) {
	if requireRead(w, r) == nil {
		return
	}

	histogram, err := h.reporting.StatusHistogram(r.Context())
	if err != nil {
		h.logger.Error("Ошибка отчёта по статусам", "error", err)
		apierrors.InternalError(w, "Ошибка получения отчёта")
		return
	}

	filesOut, err := h.reporting.FilesOut(r.Context())
	if err != nil {
		h.logger.Error("Ошибка подсчёта выданных папок", "error", err)
		apierrors.InternalError(w, "Ошибка получения отчёта")
		return
	}

	counts := make(map[string]int, len(histogram.Counts))
	for st, n := range histogram.Counts {
		counts[string(st)] = n
	}

	writeJSON(w, http.StatusOK, generated.StatusHistogramResponse{
		Counts:   counts,
		Total:    histogram.Total,
		FilesOut: filesOut,
	})
}
