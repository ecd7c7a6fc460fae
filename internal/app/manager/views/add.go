package views

import (
	"context"
	"strings"

	"github.com/R3E-Network/payee_manager/internal/app/dao"
	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/manager"
	"github.com/R3E-Network/payee_manager/internal/app/services/payees"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// AddForm is the add-payee form.
type AddForm struct {
	PayeeName string `json:"payeeName"`
	Street    string `json:"street"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	Category  string `json:"category"`
}

func (f AddForm) payee() payee.Payee {
	return payee.Payee{
		PayeeName: strings.TrimSpace(f.PayeeName),
		Category:  strings.TrimSpace(f.Category),
		Address: payee.Address{
			Street: strings.TrimSpace(f.Street),
			City:   strings.TrimSpace(f.City),
			State:  strings.TrimSpace(f.State),
			Zip:    strings.TrimSpace(f.Zip),
		},
	}
}

// AddView submits new payees through the data-access collaborator and
// appends them to the session's list.
type AddView struct {
	store *manager.Store
	data  dao.DataAccess
	log   *logger.Logger
}

func NewAddView(store *manager.Store, data dao.DataAccess, log *logger.Logger) *AddView {
	if log == nil {
		log = logger.NewDefault("manager-add")
	}
	return &AddView{store: store, data: data, log: log}
}

// Submit validates form, creates the payee and dispatches the extended list.
func (v *AddView) Submit(ctx context.Context, form AddForm) (payee.Payee, error) {
	candidate := form.payee()
	if err := payees.Validate(candidate); err != nil {
		return payee.Payee{}, err
	}

	created, err := v.data.AddPayee(ctx, candidate)
	if err != nil {
		v.log.WithError(err).WithField("payee_name", candidate.PayeeName).Warn("add payee failed")
		return payee.Payee{}, err
	}

	v.store.Update(func(s manager.State) (manager.Action, bool) {
		return manager.SetPayees(append(s.Payees, created)), true
	})
	v.log.WithField("payee_id", created.ID).Info("payee added")
	return created, nil
}
