package manager

import (
	"errors"
	"fmt"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
)

// ActionType enumerates the actions Reduce understands.
type ActionType string

const (
	ActionSort   ActionType = "sort"
	ActionPayees ActionType = "payees"
)

// Action is a state transition request. SortField is read by sort actions,
// Payees by payees actions.
type Action struct {
	Type      ActionType    `json:"type"`
	SortField string        `json:"sortField,omitempty"`
	Payees    []payee.Payee `json:"payees,omitempty"`
}

// Sort selects field as the sort field.
func Sort(field string) Action {
	return Action{Type: ActionSort, SortField: field}
}

// SetPayees replaces the payee list.
func SetPayees(list []payee.Payee) Action {
	return Action{Type: ActionPayees, Payees: list}
}

// ErrUnknownAction is returned by Reduce for action types outside the
// enumerated set. Dispatching one is a programming error.
var ErrUnknownAction = errors.New("could not understand type")

// Reduce returns the state that results from applying action to state. It
// never mutates state.
func Reduce(state State, action Action) (State, error) {
	switch action.Type {
	case ActionSort:
		direction := SortAscending
		if state.SortField == action.SortField && state.SortDirection == SortAscending {
			direction = SortDescending
		}

		columns := make([]Column, len(state.Columns))
		for i, column := range state.Columns {
			column.SortIndicator = ""
			if column.Field == action.SortField {
				column.SortIndicator = indicator(direction)
			}
			columns[i] = column
		}

		next := state
		next.SortField = action.SortField
		next.SortDirection = direction
		next.Columns = columns
		return next, nil

	case ActionPayees:
		next := state
		next.Payees = action.Payees
		return next, nil

	default:
		return state, fmt.Errorf("%w: %s", ErrUnknownAction, action.Type)
	}
}

// MustReduce is Reduce for callers that treat an unknown action as fatal.
func MustReduce(state State, action Action) State {
	next, err := Reduce(state, action)
	if err != nil {
		panic(err)
	}
	return next
}

func indicator(direction SortDirection) string {
	if direction == SortDescending {
		return IndicatorDescending
	}
	return IndicatorAscending
}
