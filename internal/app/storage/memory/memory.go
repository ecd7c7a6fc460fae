package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/storage"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
)

// Store is an in-memory implementation of the storage interfaces. It is safe
// for concurrent use and is primarily intended for tests and local development.
type Store struct {
	mu     sync.RWMutex
	payees map[string]payee.Payee
}

var _ storage.PayeeStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{payees: make(map[string]payee.Payee)}
}

// PayeeStore implementation ---------------------------------------------------

func (s *Store) CreatePayee(_ context.Context, p payee.Payee) (payee.Payee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	} else if _, exists := s.payees[p.ID]; exists {
		return payee.Payee{}, svcerrors.Conflict("payee " + p.ID + " already exists")
	}

	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	s.payees[p.ID] = p
	return p, nil
}

func (s *Store) UpdatePayee(_ context.Context, p payee.Payee) (payee.Payee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, ok := s.payees[p.ID]
	if !ok {
		return payee.Payee{}, svcerrors.NotFound("payee", p.ID)
	}

	p.CreatedAt = original.CreatedAt
	p.UpdatedAt = time.Now().UTC()

	s.payees[p.ID] = p
	return p, nil
}

func (s *Store) GetPayee(_ context.Context, id string) (payee.Payee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.payees[id]
	if !ok {
		return payee.Payee{}, svcerrors.NotFound("payee", id)
	}
	return p, nil
}

func (s *Store) ListPayees(ctx context.Context) ([]payee.Payee, error) {
	return s.SearchPayees(ctx, payee.Criteria{})
}

func (s *Store) SearchPayees(_ context.Context, criteria payee.Criteria) ([]payee.Payee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]payee.Payee, 0, len(s.payees))
	for _, p := range s.payees {
		if criteria.Matches(p) {
			result = append(result, p)
		}
	}
	// Insertion order, matching the postgres store's ORDER BY created_at.
	sort.SliceStable(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (s *Store) DeletePayee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.payees[id]; !ok {
		return svcerrors.NotFound("payee", id)
	}
	delete(s.payees, id)
	return nil
}
