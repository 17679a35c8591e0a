// files.go — обработчики /api/v1/adl-files endpoints.
// Реестр ADL-файлов: заведение, список, получение, изменение карточки.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"

	apierrors "github.com/ihubInv/pgi-emrs/adl-module/internal/api/errors"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/api/generated"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/service"
)

// mapAdlFile преобразует доменную модель в API-представление.
func mapAdlFile(f *model.ADLFile) generated.AdlFile {
	return generated.AdlFile{
		FileId:           uuid.MustParse(f.ID),
		FileNumber:       f.FileNumber,
		PatientId:        f.PatientID,
		ProformaId:       f.ProformaID,
		Status:           generated.AdlFileStatus(f.Status),
		Active:           f.IsActive(),
		PhysicalLocation: f.PhysicalLocation,
		ClinicalSections: f.ClinicalSections,
		CreatedAt:        f.CreatedAt,
		UpdatedAt:        f.UpdatedAt,
	}
}

// mapAdlFileList преобразует список файлов в ответ с пагинацией.
func mapAdlFileList(files []*model.ADLFile, total, limit, offset int) generated.AdlFileListResponse {
	items := make([]generated.AdlFile, 0, len(files))
	for _, f := range files {
		items = append(items, mapAdlFile(f))
	}
	return generated.AdlFileListResponse{
		Items:   items,
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		HasMore: offset+len(items) < total,
	}
}

// CreateAdlFile — POST /api/v1/adl-files.
// Заведение нового ADL-файла в статусе created.
// Доступ: clinician или SA с scope adl:write.
func (h *APIHandler) CreateAdlFile(w http.ResponseWriter, r *http.Request) {
	claims := requireWrite(w, r)
	if claims == nil {
		return
	}

	var req generated.AdlFileCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	if req.PatientId == "" {
		apierrors.ValidationError(w, "Идентификатор пациента (patient_id) обязателен")
		return
	}

	f, err := h.lifecycle.CreateFile(r.Context(), service.CreateFileRequest{
		PatientID:        req.PatientId,
		ProformaID:       req.ProformaId,
		ClinicalSections: req.ClinicalSections,
		ActorID:          claims.ActorID(),
		Note:             req.Note,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		if errors.Is(err, service.ErrDuplicateProforma) {
			apierrors.DuplicateProforma(w, err.Error())
			return
		}
		h.logger.Error("Ошибка заведения ADL-файла", "patient_id", req.PatientId, "error", err)
		apierrors.InternalError(w, "Ошибка заведения ADL-файла")
		return
	}

	writeJSON(w, http.StatusCreated, mapAdlFile(f))
}

// ListAdlFiles — GET /api/v1/adl-files.
// Список файлов с фильтрацией по статусу, пациенту и активности.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) ListAdlFiles(w http.ResponseWriter, r *http.Request, params generated.ListAdlFilesParams) {
	if requireRead(w, r) == nil {
		return
	}

	limit, offset := paginationDefaults(params.Limit, params.Offset)

	filters := model.FileListFilters{PatientID: params.PatientId}
	if params.Status != nil {
		s := string(*params.Status)
		if !model.IsValidStatus(s) {
			apierrors.ValidationError(w, "Недопустимый статус: "+s)
			return
		}
		st := model.FileStatus(s)
		filters.Status = &st
	}
	if params.Active != nil && *params.Active {
		filters.ActiveOnly = true
	}

	files, total, err := h.reporting.ListFiles(r.Context(), filters, limit, offset)
	if err != nil {
		h.logger.Error("Ошибка получения списка файлов", "error", err)
		apierrors.InternalError(w, "Ошибка получения списка файлов")
		return
	}

	writeJSON(w, http.StatusOK, mapAdlFileList(files, total, limit, offset))
}

// GetAdlFile — GET /api/v1/adl-files/{file_id}.
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) GetAdlFile(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	if requireRead(w, r) == nil {
		return
	}

	f, err := h.reporting.GetFile(r.Context(), fileID.String())
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "ADL-файл не найден")
			return
		}
		h.logger.Error("Ошибка получения файла", "file_id", fileID, "error", err)
		apierrors.InternalError(w, "Ошибка получения файла")
		return
	}

	writeJSON(w, http.StatusOK, mapAdlFile(f))
}

// GetAdlFileByNumber — GET /api/v1/adl-files/number/{file_number}.
// Поиск по человекочитаемому регистрационному номеру (PSY-ADL-000042).
// Доступ: clinician, readonly или SA с scope adl:read.
func (h *APIHandler) GetAdlFileByNumber(w http.ResponseWriter, r *http.Request, fileNumber generated.FileNumber) {
	if requireRead(w, r) == nil {
		return
	}

	f, err := h.reporting.GetFileByNumber(r.Context(), fileNumber)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "ADL-файл не найден")
			return
		}
		h.logger.Error("Ошибка получения файла по номеру", "file_number", fileNumber, "error", err)
		apierrors.InternalError(w, "Ошибка получения файла")
		return
	}

	writeJSON(w, http.StatusOK, mapAdlFile(f))
}

// UpdateAdlFile — PATCH /api/v1/adl-files/{file_id}.
// Изменение клинических разделов и/или полки хранения.
// Статус через PATCH не меняется — только через /transitions.
// Доступ: clinician или SA с scope adl:write.
func (h *APIHandler) UpdateAdlFile(w http.ResponseWriter, r *http.Request, fileID generated.FileId) {
	if requireWrite(w, r) == nil {
		return
	}

	// raw-декодирование: отличаем отсутствующий physical_location от null
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		apierrors.ValidationError(w, "Некорректный JSON: "+err.Error())
		return
	}

	req := service.UpdateFileRequest{}
	if sections, ok := raw["clinical_sections"]; ok {
		req.ClinicalSections = json.RawMessage(sections)
	}
	if loc, ok := raw["physical_location"]; ok {
		req.PhysicalLocationSet = true
		if string(loc) != "null" {
			var s string
			if err := json.Unmarshal(loc, &s); err != nil {
				apierrors.ValidationError(w, "Поле physical_location должно быть строкой или null")
				return
			}
			req.PhysicalLocation = &s
		}
	}

	f, err := h.lifecycle.UpdateFile(r.Context(), fileID.String(), req)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierrors.NotFound(w, "ADL-файл не найден")
			return
		}
		if errors.Is(err, service.ErrValidation) {
			apierrors.ValidationError(w, err.Error())
			return
		}
		h.logger.Error("Ошибка изменения карточки файла", "file_id", fileID, "error", err)
		apierrors.InternalError(w, "Ошибка изменения карточки файла")
		return
	}

	writeJSON(w, http.StatusOK, mapAdlFile(f))
}
