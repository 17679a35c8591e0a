// Пакет model — доменные модели ADL Module.
package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// FileNumberPrefix — префикс регистрационных номеров ADL-файлов отделения.
const FileNumberPrefix = "PSY-ADL"

// FormatFileNumber форматирует порядковый номер последовательности
// в регистрационный номер файла (PSY-ADL-000042).
func FormatFileNumber(n int64) string {
	return fmt.Sprintf("%s-%06d", FileNumberPrefix, n)
}

// FileStatus — статус ADL-файла в жизненном цикле.
// Закрытый набор значений, переходы между ними определяет пакет lifecycle.
type FileStatus string

// Статусы жизненного цикла ADL-файла.
const (
	// StatusCreated — файл заведён, физическая папка ещё не размещена в архиве.
	StatusCreated FileStatus = "created"
	// StatusStored — физическая папка находится в архиве (physical_location).
	StatusStored FileStatus = "stored"
	// StatusRetrieved — папка выдана сотруднику на руки.
	StatusRetrieved FileStatus = "retrieved"
	// StatusActive — файл в непрерывном клиническом использовании (ведение случая).
	StatusActive FileStatus = "active"
	// StatusArchived — файл закрыт. Терминальный статус, переходов из него нет.
	StatusArchived FileStatus = "archived"
)

// IsValidStatus проверяет, является ли строка допустимым статусом файла.
func IsValidStatus(s string) bool {
	switch FileStatus(s) {
	case StatusCreated, StatusStored, StatusRetrieved, StatusActive, StatusArchived:
		return true
	}
	return false
}

// ADLFile — файл дополнительных сведений (Additional Detail File)
// для сложных психиатрических случаев.
// Хранится в таблице adl_files.
type ADLFile struct {
	// ID — UUID файла (суррогатный ключ)
	ID string
	// FileNumber — человекочитаемый номер файла (PSY-ADL-000042).
	// Выделяется из последовательности при создании, неизменяем.
	FileNumber string
	// PatientID — идентификатор пациента-владельца (внешний, непрозрачный)
	PatientID string
	// ProformaID — идентификатор клинической проформы (опционально,
	// не более одного ADL-файла на проформу)
	ProformaID *string
	// Status — текущий статус жизненного цикла
	Status FileStatus
	// PhysicalLocation — где находится физическая папка.
	// Содержательно только при статусе stored.
	PhysicalLocation *string
	// ClinicalSections — клинические разделы (анамнез, семейный анамнез, MSE и т.д.).
	// Непрозрачный JSON: ядро жизненного цикла его не интерпретирует.
	ClinicalSections json.RawMessage
	// CreatedAt — время создания записи (неизменяемо)
	CreatedAt time.Time
	// UpdatedAt — время последнего изменения
	UpdatedAt time.Time
}

// IsActive — производный флаг: файл активен, пока не архивирован.
// Никогда не хранится отдельно, всегда вычисляется из Status.
func (f *ADLFile) IsActive() bool {
	return f.Status != StatusArchived
}

// FileListFilters — фильтры для списка ADL-файлов.
// Все поля — указатели/флаги, нулевое значение = фильтр не применяется.
type FileListFilters struct {
	// Status — фильтр по статусу
	Status *FileStatus
	// PatientID — фильтр по пациенту
	PatientID *string
	// ActiveOnly — только неархивированные файлы
	ActiveOnly bool
	// WithLocation — только файлы с заполненной полкой хранения
	WithLocation bool
}
