package storage

import (
	"context"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
)

// PayeeStore persists payee records. Get returns an error satisfying
// errors.IsNotFound when the id is unknown.
type PayeeStore interface {
	CreatePayee(ctx context.Context, p payee.Payee) (payee.Payee, error)
	UpdatePayee(ctx context.Context, p payee.Payee) (payee.Payee, error)
	GetPayee(ctx context.Context, id string) (payee.Payee, error)
	ListPayees(ctx context.Context) ([]payee.Payee, error)
	SearchPayees(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error)
	DeletePayee(ctx context.Context, id string) error
}
