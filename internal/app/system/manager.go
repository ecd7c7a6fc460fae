package system

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager starts registered services in registration order and stops them in
// reverse order.
type Manager struct {
	mu       sync.Mutex
	services []Service
	names    map[string]bool
	started  []Service
}

// NewManager returns an empty manager.
func NewManager() *Manager {
	return &Manager{names: make(map[string]bool)}
}

// Register adds a service. Names must be unique and registration must happen
// before Start.
func (m *Manager) Register(svc Service) error {
	if svc == nil {
		return fmt.Errorf("service is nil")
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	name := svc.Name()
	if name == "" {
		return fmt.Errorf("service name is required")
	}
	if m.names[name] {
		return fmt.Errorf("service %s already registered", name)
	}
	if len(m.started) > 0 {
		return fmt.Errorf("cannot register %s after start", name)
	}
	m.names[name] = true
	m.services = append(m.services, svc)
	return nil
}

// Start starts every service. If one fails, those already started are stopped
// and the error is returned.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.started) > 0 {
		return nil
	}
	for _, svc := range m.services {
		if err := svc.Start(ctx); err != nil {
			startErr := fmt.Errorf("start %s: %w", svc.Name(), err)
			return errors.Join(startErr, m.stopLocked(ctx))
		}
		m.started = append(m.started, svc)
	}
	return nil
}

// Stop stops started services in reverse order, collecting errors.
func (m *Manager) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopLocked(ctx)
}

func (m *Manager) stopLocked(ctx context.Context) error {
	var errs []error
	for i := len(m.started) - 1; i >= 0; i-- {
		svc := m.started[i]
		if err := svc.Stop(ctx); err != nil {
			errs = append(errs, fmt.Errorf("stop %s: %w", svc.Name(), err))
		}
	}
	m.started = nil
	return errors.Join(errs...)
}

// NoopService is a placeholder service with no lifecycle work.
type NoopService struct {
	ServiceName string
}

func (n NoopService) Name() string                    { return n.ServiceName }
func (n NoopService) Start(ctx context.Context) error { return nil }
func (n NoopService) Stop(ctx context.Context) error  { return nil }
