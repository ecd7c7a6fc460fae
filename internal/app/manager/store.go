package manager

import (
	"sync"

	"github.com/R3E-Network/payee_manager/internal/app/metrics"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Listener receives a snapshot of the state after each dispatch.
type Listener func(State)

type subscription struct {
	id int
	fn Listener
}

// Store holds one session's state and serialises dispatches through Reduce.
// Listeners run synchronously after the state is updated, in subscription
// order, and must not dispatch to the same store.
type Store struct {
	notifyMu sync.Mutex

	mu        sync.Mutex
	state     State
	listeners []subscription
	nextID    int
	log       *logger.Logger

	done      chan struct{}
	closeOnce sync.Once
}

// NewStore creates a store holding initial.
func NewStore(initial State, log *logger.Logger) *Store {
	if log == nil {
		log = logger.NewDefault("manager-store")
	}
	return &Store{state: initial.Clone(), log: log, done: make(chan struct{})}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Dispatch applies action and notifies listeners. An action type Reduce does
// not understand is a programming error and panics.
func (s *Store) Dispatch(action Action) State {
	return s.Update(func(State) (Action, bool) { return action, true })
}

// Update builds an action from the current state and applies it without
// letting another dispatch run in between. When build reports false nothing
// is dispatched and the current state is returned. build runs with the store
// locked and must not call back into the store.
func (s *Store) Update(build func(State) (Action, bool)) State {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	action, ok := build(s.state.Clone())
	if !ok {
		current := s.state.Clone()
		s.mu.Unlock()
		return current
	}
	next, err := Reduce(s.state, action)
	if err != nil {
		s.mu.Unlock()
		s.log.WithError(err).WithField("action", action.Type).Error("fatal dispatch")
		panic(err)
	}
	s.state = next.Clone()
	listeners := append([]subscription(nil), s.listeners...)
	s.mu.Unlock()

	metrics.RecordDispatch(string(action.Type))
	for _, l := range listeners {
		l.fn(next.Clone())
	}
	return next.Clone()
}

// Subscribe registers fn and returns a function that removes it. The
// returned function is safe to call more than once.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Subscribers reports how many listeners are registered.
func (s *Store) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

// Done is closed when the store is closed.
func (s *Store) Done() <-chan struct{} {
	return s.done
}

// Close removes every listener and closes Done.
func (s *Store) Close() {
	s.mu.Lock()
	s.listeners = nil
	s.mu.Unlock()
	s.closeOnce.Do(func() { close(s.done) })
}
