package lifecycle

import (
	"errors"
	"testing"

	"github.com/ihubInv/pgi-emrs/adl-module/internal/domain/model"
)

// TestNext_LegalTransitions проверяет все допустимые переходы таблицы.
func TestNext_LegalTransitions(t *testing.T) {
	cases := []struct {
		from   model.FileStatus
		action model.MovementAction
		want   model.FileStatus
	}{
		{model.StatusCreated, model.ActionStore, model.StatusStored},
		{model.StatusStored, model.ActionRetrieve, model.StatusRetrieved},
		{model.StatusStored, model.ActionArchive, model.StatusArchived},
		{model.StatusRetrieved, model.ActionReturn, model.StatusStored},
		{model.StatusRetrieved, model.ActionActivate, model.StatusActive},
		{model.StatusRetrieved, model.ActionArchive, model.StatusArchived},
		{model.StatusActive, model.ActionArchive, model.StatusArchived},
	}

	for _, c := range cases {
		got, err := Next(c.from, c.action)
		if err != nil {
			t.Errorf("Next(%s, %s) ошибка: %v", c.from, c.action, err)
			continue
		}
		if got != c.want {
			t.Errorf("Next(%s, %s) = %s, ожидается %s", c.from, c.action, got, c.want)
		}
	}
}

// TestNext_IllegalTransitions проверяет отказ для недопустимых пар.
func TestNext_IllegalTransitions(t *testing.T) {
	cases := []struct {
		from   model.FileStatus
		action model.MovementAction
	}{
		{model.StatusCreated, model.ActionRetrieve},
		{model.StatusCreated, model.ActionReturn},
		{model.StatusCreated, model.ActionArchive}, // archive допустим только из stored/retrieved/active
		{model.StatusStored, model.ActionStore},
		{model.StatusStored, model.ActionReturn},
		{model.StatusRetrieved, model.ActionRetrieve},
		{model.StatusActive, model.ActionRetrieve},
		{model.StatusActive, model.ActionReturn},
	}

	for _, c := range cases {
		_, err := Next(c.from, c.action)
		if err == nil {
			t.Errorf("Next(%s, %s) не вернул ошибку", c.from, c.action)
			continue
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Next(%s, %s): ожидался ErrInvalidTransition, получили %v", c.from, c.action, err)
		}
	}
}

// TestNext_ArchivedIsTerminal проверяет, что из archived нет ни одного перехода.
func TestNext_ArchivedIsTerminal(t *testing.T) {
	actions := []model.MovementAction{
		model.ActionStore, model.ActionRetrieve, model.ActionReturn,
		model.ActionActivate, model.ActionArchive,
	}
	for _, a := range actions {
		if _, err := Next(model.StatusArchived, a); !errors.Is(err, ErrInvalidTransition) {
			t.Errorf("Next(archived, %s): ожидался ErrInvalidTransition, получили %v", a, err)
		}
	}
	if got := LegalActions(model.StatusArchived); len(got) != 0 {
		t.Errorf("LegalActions(archived) = %v, ожидается пустой список", got)
	}
}

// TestNext_ErrorDetails проверяет детали InvalidTransitionError.
func TestNext_ErrorDetails(t *testing.T) {
	_, err := Next(model.StatusRetrieved, model.ActionRetrieve)
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}

	var itErr *InvalidTransitionError
	if !errors.As(err, &itErr) {
		t.Fatalf("ожидался *InvalidTransitionError, получили %T", err)
	}
	if itErr.Action != model.ActionRetrieve {
		t.Errorf("Action = %s, ожидается retrieve", itErr.Action)
	}
	if itErr.CurrentStatus != model.StatusRetrieved {
		t.Errorf("CurrentStatus = %s, ожидается retrieved", itErr.CurrentStatus)
	}
	// Из retrieved допустимы activate, archive, return (в алфавитном порядке)
	want := []model.MovementAction{model.ActionActivate, model.ActionArchive, model.ActionReturn}
	if len(itErr.LegalActions) != len(want) {
		t.Fatalf("LegalActions = %v, ожидается %v", itErr.LegalActions, want)
	}
	for i, a := range want {
		if itErr.LegalActions[i] != a {
			t.Errorf("LegalActions[%d] = %s, ожидается %s", i, itErr.LegalActions[i], a)
		}
	}
}

// TestReplay проверяет свёртку журнала в текущий статус.
func TestReplay(t *testing.T) {
	entries := []*model.MovementEntry{
		{ID: "1", Action: model.ActionCreate, ResultingStatus: model.StatusCreated},
		{ID: "2", Action: model.ActionStore, ResultingStatus: model.StatusStored},
		{ID: "3", Action: model.ActionRetrieve, ResultingStatus: model.StatusRetrieved},
		{ID: "4", Action: model.ActionReturn, ResultingStatus: model.StatusStored},
		{ID: "5", Action: model.ActionRetrieve, ResultingStatus: model.StatusRetrieved},
		{ID: "6", Action: model.ActionActivate, ResultingStatus: model.StatusActive},
		{ID: "7", Action: model.ActionArchive, ResultingStatus: model.StatusArchived},
	}

	status, err := Replay(entries)
	if err != nil {
		t.Fatalf("Replay ошибка: %v", err)
	}
	if status != model.StatusArchived {
		t.Errorf("Replay = %s, ожидается archived", status)
	}

	// Каждый промежуточный префикс тоже должен сходиться с resulting_status
	for i := 1; i <= len(entries); i++ {
		st, err := Replay(entries[:i])
		if err != nil {
			t.Fatalf("Replay(префикс %d) ошибка: %v", i, err)
		}
		if st != entries[i-1].ResultingStatus {
			t.Errorf("Replay(префикс %d) = %s, ожидается %s", i, st, entries[i-1].ResultingStatus)
		}
	}
}

// TestReplay_Errors проверяет отказ на пустом и некорректном журнале.
func TestReplay_Errors(t *testing.T) {
	if _, err := Replay(nil); err == nil {
		t.Error("Replay(nil) не вернул ошибку")
	}

	// Первая запись не create
	bad := []*model.MovementEntry{{ID: "1", Action: model.ActionStore}}
	if _, err := Replay(bad); err == nil {
		t.Error("Replay без записи create не вернул ошибку")
	}

	// Недопустимая последовательность
	broken := []*model.MovementEntry{
		{ID: "1", Action: model.ActionCreate},
		{ID: "2", Action: model.ActionRetrieve}, // из created нельзя retrieve
	}
	if _, err := Replay(broken); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Replay с недопустимым переходом: ожидался ErrInvalidTransition, получили %v", err)
	}
}
