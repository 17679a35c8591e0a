// reporting.go — сервис чтения реестра и оперативных отчётов регистратуры.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
	"github.com/ihubInv/pgi-emrs/adl-module/internal/repository"
)

// ReportingService — сервис чтения реестра и отчётов.
type ReportingService struct {
	files     repository.ADLFileRepository
	movements repository.MovementRepository
	// overdueThreshold — через сколько выданная папка считается просроченной
	overdueThreshold time.Duration
	logger           *slog.Logger
	now              func() time.Time
}

// NewReportingService создаёт сервис отчётов.
func NewReportingService(pool *pgxpool.Pool, overdueThreshold time.Duration, logger *slog.Logger) *ReportingService {
	return &ReportingService{
		files:            repository.NewADLFileRepository(pool),
		movements:        repository.NewMovementRepository(pool),
		overdueThreshold: overdueThreshold,
		logger:           logger.With(slog.String("component", "reporting_service")),
		now:              time.Now,
	}
}

// GetFile возвращает файл по UUID.
func (s *ReportingService) GetFile(ctx context.Context, fileID string) (*model.ADLFile, error) {
	f, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}
	return f, nil
}

// GetFileByNumber возвращает файл по регистрационному номеру.
func (s *ReportingService) GetFileByNumber(ctx context.Context, fileNumber string) (*model.ADLFile, error) {
	f, err := s.files.GetByFileNumber(ctx, fileNumber)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла по номеру: %w", err)
	}
	return f, nil
}

// ListFiles возвращает список файлов с фильтрацией и пагинацией.
func (s *ReportingService) ListFiles(ctx context.Context, filters model.FileListFilters, limit, offset int) ([]*model.ADLFile, int, error) {
	files, err := s.files.List(ctx, filters, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("получение списка файлов: %w", err)
	}

	total, err := s.files.Count(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("подсчёт файлов: %w", err)
	}

	return files, total, nil
}

// MovementHistory возвращает журнал перемещений файла по возрастанию времени.
func (s *ReportingService) MovementHistory(ctx context.Context, fileID string) ([]*model.MovementEntry, error) {
	// Несуществующий файл и файл без записей различимы
	if _, err := s.files.GetByID(ctx, fileID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("получение файла: %w", err)
	}

	entries, err := s.movements.History(ctx, fileID)
	if err != nil {
		return nil, fmt.Errorf("чтение журнала перемещений: %w", err)
	}
	return entries, nil
}

// FilesToRetrieve — отчёт регистратуры: файлы в архиве с известной полкой,
// готовые к выдаче.
func (s *ReportingService) FilesToRetrieve(ctx context.Context, patientID *string, limit, offset int) ([]*model.ADLFile, int, error) {
	stored := model.StatusStored
	filters := model.FileListFilters{Status: &stored, PatientID: patientID, WithLocation: true}
	return s.ListFiles(ctx, filters, limit, offset)
}

// ActiveFiles — отчёт: все неархивированные файлы.
func (s *ReportingService) ActiveFiles(ctx context.Context, patientID *string, limit, offset int) ([]*model.ADLFile, int, error) {
	filters := model.FileListFilters{ActiveOnly: true, PatientID: patientID}
	return s.ListFiles(ctx, filters, limit, offset)
}

// StatusHistogram — распределение файлов по статусам.
// Статусы без файлов присутствуют в распределении с нулём.
func (s *ReportingService) StatusHistogram(ctx context.Context) (*model.StatusHistogram, error) {
	counts, err := s.files.StatusCounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("подсчёт файлов по статусам: %w", err)
	}

	h := &model.StatusHistogram{Counts: make(map[model.FileStatus]int, 5)}
	for _, st := range []model.FileStatus{
		model.StatusCreated, model.StatusStored, model.StatusRetrieved,
		model.StatusActive, model.StatusArchived,
	} {
		h.Counts[st] = counts[st]
		h.Total += counts[st]
	}
	return h, nil
}

// FilesOut — количество папок, выданных на руки (статус retrieved).
func (s *ReportingService) FilesOut(ctx context.Context) (int, error) {
	retrieved := model.StatusRetrieved
	count, err := s.files.Count(ctx, model.FileListFilters{Status: &retrieved})
	if err != nil {
		return 0, fmt.Errorf("подсчёт выданных папок: %w", err)
	}
	return count, nil
}

// OverdueRetrievals — отчёт: папки, выданные дольше порогового времени.
func (s *ReportingService) OverdueRetrievals(ctx context.Context) ([]*model.OverdueRetrieval, time.Duration, error) {
	cutoff := s.now().UTC().Add(-s.overdueThreshold)

	overdue, err := s.movements.ListOverdueRetrievals(ctx, cutoff)
	if err != nil {
		return nil, 0, fmt.Errorf("получение просроченных выдач: %w", err)
	}
	return overdue, s.overdueThreshold, nil
}
