// Package views renders the manager's search, browse and add screens from a
// session store. Every view is constructed with the store it reads from.
package views

import (
	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/manager"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
)

// BrowseModel is the rendered payee table.
type BrowseModel struct {
	SortField     string                `json:"sortField"`
	SortDirection manager.SortDirection `json:"sortDirection"`
	Columns       []manager.Column      `json:"columns"`
	Rows          []payee.Payee         `json:"rows"`
}

// BrowseView lists every payee in the store, ordered by the active sort
// column.
type BrowseView struct {
	store *manager.Store
}

// NewBrowseView binds a browse view to store.
func NewBrowseView(store *manager.Store) *BrowseView {
	return &BrowseView{store: store}
}

// Render builds the table from the current state.
func (v *BrowseView) Render() BrowseModel {
	return browseModel(v.store.State())
}

// Sort handles a click on the header of field.
func (v *BrowseView) Sort(field string) (BrowseModel, error) {
	if _, ok := v.store.State().Column(field); !ok {
		return BrowseModel{}, svcerrors.InvalidInput("unknown sort column").WithDetails("field", field)
	}
	return browseModel(v.store.Dispatch(manager.Sort(field))), nil
}

// Watch calls fn with a fresh model after every dispatch until stop is
// called.
func (v *BrowseView) Watch(fn func(BrowseModel)) (stop func()) {
	return v.store.Subscribe(func(s manager.State) {
		fn(browseModel(s))
	})
}

func browseModel(s manager.State) BrowseModel {
	return BrowseModel{
		SortField:     s.SortField,
		SortDirection: s.SortDirection,
		Columns:       s.Columns,
		Rows:          manager.Sorted(s.Payees, s.SortField, s.SortDirection),
	}
}
