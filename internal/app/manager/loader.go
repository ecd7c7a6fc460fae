package manager

import (
	"context"
	"sync"
	"time"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
	"github.com/R3E-Network/payee_manager/internal/app/metrics"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

// Source retrieves the payee list for a session.
type Source interface {
	GetPayees(ctx context.Context) ([]payee.Payee, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context) ([]payee.Payee, error)

func (f SourceFunc) GetPayees(ctx context.Context) ([]payee.Payee, error) {
	return f(ctx)
}

// LoadStatus describes the most recent retrieval.
type LoadStatus string

const (
	LoadIdle    LoadStatus = "idle"
	LoadPending LoadStatus = "loading"
	LoadReady   LoadStatus = "ready"
	LoadFailed  LoadStatus = "failed"
	LoadClosed  LoadStatus = "closed"
)

// Loader runs a session's payee retrieval and dispatches the result into its
// store. Each Load gets a generation number; a result is applied only if its
// generation is still current and the loader has not been closed.
type Loader struct {
	store  *Store
	source Source
	log    *logger.Logger

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	closed     bool
	status     LoadStatus
	err        error
}

// NewLoader creates an idle loader.
func NewLoader(store *Store, source Source, log *logger.Logger) *Loader {
	if log == nil {
		log = logger.NewDefault("manager-loader")
	}
	return &Loader{store: store, source: source, log: log, status: LoadIdle}
}

// Load starts a retrieval, cancelling any retrieval still in flight. The
// returned channel is closed once the result has been applied or discarded.
func (l *Loader) Load(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		close(done)
		return done
	}
	if l.cancel != nil {
		l.cancel()
	}
	l.generation++
	gen := l.generation
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.status = LoadPending
	l.err = nil
	l.mu.Unlock()

	go func() {
		defer close(done)
		defer cancel()

		start := time.Now()
		list, err := l.source.GetPayees(runCtx)
		l.finish(gen, list, err, time.Since(start))
	}()
	return done
}

func (l *Loader) finish(gen uint64, list []payee.Payee, err error, elapsed time.Duration) {
	l.mu.Lock()
	if l.closed || gen != l.generation {
		l.mu.Unlock()
		l.discard(gen, elapsed)
		return
	}
	l.cancel = nil

	if err != nil {
		l.status = LoadFailed
		l.err = err
		l.mu.Unlock()
		metrics.RecordFetch(metrics.FetchFailed, elapsed)
		l.log.WithError(err).WithField("generation", gen).Warn("payee retrieval failed")
		return
	}
	l.status = LoadReady
	l.mu.Unlock()

	if list == nil {
		list = []payee.Payee{}
	}
	// Listeners may read the loader, so the result is applied without l.mu;
	// the generation is checked again under the store lock.
	applied := false
	l.store.Update(func(State) (Action, bool) {
		if !l.current(gen) {
			return Action{}, false
		}
		applied = true
		return SetPayees(list), true
	})
	if !applied {
		l.discard(gen, elapsed)
		return
	}
	metrics.RecordFetch(metrics.FetchSucceeded, elapsed)
	l.log.WithField("generation", gen).WithField("count", len(list)).Debug("payees loaded")
}

func (l *Loader) current(gen uint64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.closed && gen == l.generation
}

func (l *Loader) discard(gen uint64, elapsed time.Duration) {
	metrics.RecordFetch(metrics.FetchDiscarded, elapsed)
	l.log.WithField("generation", gen).Debug("discarding payee result for superseded load")
}

// Status returns the state of the latest retrieval and its error, if any.
func (l *Loader) Status() (LoadStatus, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status, l.err
}

// Err returns the error of the latest failed retrieval.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Close cancels any in-flight retrieval; results arriving afterwards are
// discarded. Further Loads are no-ops.
func (l *Loader) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.generation++
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.status = LoadClosed
}
