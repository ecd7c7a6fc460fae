package manager

import (
	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
)

// SortDirection is the ordering applied to the active sort field.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// Sort indicator glyphs shown on the active column.
const (
	IndicatorAscending  = "⏫"
	IndicatorDescending = "⏬"
)

// Column describes one sortable column. SortIndicator is derived by Reduce.
type Column struct {
	Field         string `json:"field"`
	Label         string `json:"label"`
	SortIndicator string `json:"sortIndicator"`
}

// State is the manager store's state.
type State struct {
	Payees        []payee.Payee `json:"payees"`
	SortField     string        `json:"sortField"`
	SortDirection SortDirection `json:"sortDirection"`
	Columns       []Column      `json:"columns"`
}

// DefaultColumns returns the payee name, city and state columns.
func DefaultColumns() []Column {
	return []Column{
		{Field: "payeeName", Label: "Payee Name"},
		{Field: "address.city", Label: "City"},
		{Field: "address.state", Label: "State"},
	}
}

// InitialState is the state of a freshly mounted session: no payees, no
// active sort field, ascending direction and the default columns.
func InitialState() State {
	return State{
		Payees:        []payee.Payee{},
		SortField:     "",
		SortDirection: SortAscending,
		Columns:       DefaultColumns(),
	}
}

// Clone returns a copy that shares no slices with s.
func (s State) Clone() State {
	out := s
	if s.Payees != nil {
		out.Payees = append([]payee.Payee(nil), s.Payees...)
	}
	if s.Columns != nil {
		out.Columns = append([]Column(nil), s.Columns...)
	}
	return out
}

// Column returns the column for field, if any.
func (s State) Column(field string) (Column, bool) {
	for _, c := range s.Columns {
		if c.Field == field {
			return c, true
		}
	}
	return Column{}, false
}
