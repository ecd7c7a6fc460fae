// Package testutil provides common testing utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/R3E-Network/payee_manager/internal/app/dao"
	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// QuietLogger returns a logger that discards its output.
func QuietLogger(component string) *logger.Logger {
	log := logger.NewDefault(component)
	log.SetOutput(io.Discard)
	return log
}

// SamplePayees returns three payees whose names, cities and states sort in
// different orders.
func SamplePayees() []payee.Payee {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []payee.Payee{
		{ID: "1", PayeeName: "Bolt Energy", Address: payee.Address{City: "Austin", State: "TX"}, Active: true, CreatedAt: created},
		{ID: "2", PayeeName: "Acme Water", Address: payee.Address{City: "Denver", State: "CO"}, Active: true, CreatedAt: created.Add(time.Hour)},
		{ID: "3", PayeeName: "City Gas", Address: payee.Address{City: "Boston", State: "MA"}, Active: true, CreatedAt: created.Add(2 * time.Hour)},
	}
}

// MockDataAccess is an in-memory dao.DataAccess that records calls. Setting
// Err makes every call fail with it.
type MockDataAccess struct {
	mu     sync.Mutex
	payees []payee.Payee
	calls  map[string]int

	Err error
}

var _ dao.DataAccess = (*MockDataAccess)(nil)

// NewMockDataAccess seeds the mock with list.
func NewMockDataAccess(list ...payee.Payee) *MockDataAccess {
	return &MockDataAccess{payees: append([]payee.Payee(nil), list...), calls: make(map[string]int)}
}

// Calls reports how many times method was invoked.
func (m *MockDataAccess) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

func (m *MockDataAccess) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[method]++
	return m.Err
}

func (m *MockDataAccess) GetPayees(ctx context.Context) ([]payee.Payee, error) {
	if err := m.record("GetPayees"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]payee.Payee{}, m.payees...), nil
}

func (m *MockDataAccess) GetPayeesAsync(ctx context.Context) <-chan dao.Result {
	out := make(chan dao.Result, 1)
	list, err := m.GetPayees(ctx)
	out <- dao.Result{Payees: list, Err: err}
	close(out)
	return out
}

func (m *MockDataAccess) SearchPayees(ctx context.Context, criteria payee.Criteria) ([]payee.Payee, error) {
	if err := m.record("SearchPayees"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []payee.Payee{}
	for _, p := range m.payees {
		if criteria.Matches(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *MockDataAccess) AddPayee(ctx context.Context, p payee.Payee) (payee.Payee, error) {
	if err := m.record("AddPayee"); err != nil {
		return payee.Payee{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for _, existing := range m.payees {
		if existing.ID == p.ID {
			return payee.Payee{}, fmt.Errorf("payee %s already exists", p.ID)
		}
	}
	p.Active = true
	m.payees = append(m.payees, p)
	return p, nil
}
