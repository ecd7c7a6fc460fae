package payees

import (
	"context"
	"strings"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/storage"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Service manages payee records.
type Service struct {
	store storage.PayeeStore
	log   *logger.Logger
}

// New constructs a payee service.
func New(store storage.PayeeStore, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewDefault("payees")
	}
	return &Service{store: store, log: log}
}

// Create validates and stores a new payee. Name, city and state are
// required; new payees are active.
func (s *Service) Create(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	p.ID = ""
	p.PayeeName = strings.TrimSpace(p.PayeeName)
	p.Address.Street = strings.TrimSpace(p.Address.Street)
	p.Address.City = strings.TrimSpace(p.Address.City)
	p.Address.State = strings.ToUpper(strings.TrimSpace(p.Address.State))
	p.Address.Zip = strings.TrimSpace(p.Address.Zip)
	p.Category = strings.TrimSpace(p.Category)

	if err := Validate(p); err != nil {
		return payee.Payee{}, err
	}
	p.Active = true

	existing, err := s.store.SearchPayees(ctx, payee.Criteria{Query: p.PayeeName})
	if err != nil {
		return payee.Payee{}, err
	}
	for _, other := range existing {
		if strings.EqualFold(other.PayeeName, p.PayeeName) &&
			strings.EqualFold(other.Address.City, p.Address.City) &&
			strings.EqualFold(other.Address.State, p.Address.State) {
			return payee.Payee{}, svcerrors.Conflict("payee " + p.PayeeName + " already exists at this address")
		}
	}

	created, err := s.store.CreatePayee(ctx, p)
	if err != nil {
		return payee.Payee{}, err
	}
	s.log.WithField("payee_id", created.ID).
		WithField("payee_name", created.PayeeName).
		Info("payee created")
	return created, nil
}

// Validate reports the first missing required field.
func Validate(p payee.Payee) error {
	switch {
	case strings.TrimSpace(p.PayeeName) == "":
		return svcerrors.InvalidInput("payeeName is required").WithDetails("field", "payeeName")
	case strings.TrimSpace(p.Address.City) == "":
		return svcerrors.InvalidInput("address.city is required").WithDetails("field", "address.city")
	case strings.TrimSpace(p.Address.State) == "":
		return svcerrors.InvalidInput("address.state is required").WithDetails("field", "address.state")
	}
	return nil
}

// SetActive toggles the active flag.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (payee.Payee, error) {
	p, err := s.store.GetPayee(ctx, id)
	if err != nil {
		return payee.Payee{}, err
	}
	if p.Active == active {
		return p, nil
	}

	p.Active = active
	p, err = s.store.UpdatePayee(ctx, p)
	if err != nil {
		return payee.Payee{}, err
	}
	s.log.WithField("payee_id", p.ID).
		WithField("active", active).
		Info("payee state changed")
	return p, nil
}

// Get retrieves a single payee by identifier.
func (s *Service) Get(ctx context.Context, id string) (payee.Payee, error) {
	return s.store.GetPayee(ctx, id)
}

// List returns every payee in creation order.
func (s *Service) List(ctx context.Context) ([]payee.Payee, error) {
	return s.store.ListPayees(ctx)
}

// Search returns payees matching criteria; zero criteria lists everything.
func (s *Service) Search(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error) {
	if criteria.IsZero() {
		return s.store.ListPayees(ctx)
	}
	return s.store.SearchPayees(ctx, criteria)
}

// Delete removes a payee.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.store.DeletePayee(ctx, id); err != nil {
		return err
	}
	s.log.WithField("payee_id", id).Info("payee deleted")
	return nil
}
