// Пакет lifecycle — машина состояний ADL-файла.
// Единственное место, где определена допустимость переходов:
// ни репозитории, ни обработчики не меняют статус в обход этой таблицы.
package lifecycle

import (
	"errors"
	"fmt"
	"sort"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
)

// ErrInvalidTransition — действие недопустимо из текущего статуса.
var ErrInvalidTransition = errors.New("недопустимый переход статуса")

// transitions — таблица допустимых переходов: статус → действие → новый статус.
// archived отсутствует в таблице: терминальный статус, переходов из него нет.
var transitions = map[model.FileStatus]map[model.MovementAction]model.FileStatus{
	model.StatusCreated: {
		model.ActionStore: model.StatusStored,
	},
	model.StatusStored: {
		model.ActionRetrieve: model.StatusRetrieved,
		model.ActionArchive:  model.StatusArchived,
	},
	model.StatusRetrieved: {
		model.ActionReturn:   model.StatusStored,
		model.ActionActivate: model.StatusActive,
		model.ActionArchive:  model.StatusArchived,
	},
	model.StatusActive: {
		model.ActionArchive: model.StatusArchived,
	},
}

// InvalidTransitionError — отказ в переходе с деталями для вызывающего:
// какое действие запрошено, каков текущий статус и какие действия допустимы.
type InvalidTransitionError struct {
	// Action — запрошенное действие
	Action model.MovementAction
	// CurrentStatus — текущий статус файла
	CurrentStatus model.FileStatus
	// LegalActions — действия, допустимые из текущего статуса
	LegalActions []model.MovementAction
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("действие %q недопустимо из статуса %q (допустимые: %v)",
		e.Action, e.CurrentStatus, e.LegalActions)
}

// Unwrap позволяет проверять ошибку через errors.Is(err, ErrInvalidTransition).
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Next возвращает статус, в который файл перейдёт из current при действии action.
// Если переход недопустим — *InvalidTransitionError.
func Next(current model.FileStatus, action model.MovementAction) (model.FileStatus, error) {
	next, ok := transitions[current][action]
	if !ok {
		return "", &InvalidTransitionError{
			Action:        action,
			CurrentStatus: current,
			LegalActions:  LegalActions(current),
		}
	}
	return next, nil
}

// LegalActions возвращает отсортированный список действий,
// допустимых из указанного статуса. Для archived — пустой список.
func LegalActions(status model.FileStatus) []model.MovementAction {
	row := transitions[status]
	actions := make([]model.MovementAction, 0, len(row))
	for a := range row {
		actions = append(actions, a)
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// Replay сворачивает журнал перемещений в текущий статус файла.
// Первая запись обязана быть действием create; остальные проходят
// через ту же таблицу переходов, что и живые запросы.
// Используется для сверки кэшированного статуса с журналом.
func Replay(entries []*model.MovementEntry) (model.FileStatus, error) {
	if len(entries) == 0 {
		return "", errors.New("журнал пуст: нет записи о создании файла")
	}
	if entries[0].Action != model.ActionCreate {
		return "", fmt.Errorf("первая запись журнала — %q, ожидалось create", entries[0].Action)
	}

	status := model.StatusCreated
	for _, e := range entries[1:] {
		next, err := Next(status, e.Action)
		if err != nil {
			return "", fmt.Errorf("запись %s: %w", e.ID, err)
		}
		status = next
	}
	return status, nil
}
