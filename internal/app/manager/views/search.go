package views

import (
	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/manager"
)

// SearchModel is the rendered search result.
type SearchModel struct {
	Criteria payee.Criteria `json:"criteria"`
	Results  []payee.Payee  `json:"results"`
	Total    int            `json:"total"`
}

// SearchView filters the session's payees.
type SearchView struct {
	store *manager.Store
}

func NewSearchView(store *manager.Store) *SearchView {
	return &SearchView{store: store}
}

// Render returns the payees matching criteria in the order of the active
// sort column.
func (v *SearchView) Render(criteria payee.Criteria) SearchModel {
	s := v.store.State()
	results := manager.Filter(manager.Sorted(s.Payees, s.SortField, s.SortDirection), criteria)
	return SearchModel{Criteria: criteria, Results: results, Total: len(s.Payees)}
}
