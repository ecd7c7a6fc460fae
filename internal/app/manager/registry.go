package manager

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/R3E-Network/payee_manager/internal/app/metrics"
	"github.com/R3E-Network/payee_manager/internal/app/system"
	svcerrors "github.com/R3E-Network/payee_manager/internal/errors"
	"github.com/R3E-Network/payee_manager/pkg/logger"
)

const (
	defaultSessionTTL      = 30 * time.Minute
	defaultJanitorSchedule = "@every 1m"
)

// Session is one mounted manager: a store and the loader feeding it.
type Session struct {
	ID        string
	Store     *Store
	Loader    *Loader
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen reports when the session was last accessed.
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) close() {
	s.Loader.Close()
	s.Store.Close()
}

// RegistryOptions tunes session expiry.
type RegistryOptions struct {
	TTL      time.Duration
	Schedule string
	Now      func() time.Time
}

// Registry owns the mounted sessions. Open mounts, Close unmounts, and a cron
// janitor started by Start closes sessions idle for longer than the TTL.
type Registry struct {
	source   Source
	log      *logger.Logger
	ttl      time.Duration
	schedule string
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
	janitor  *cron.Cron
}

var _ system.Service = (*Registry)(nil)

// NewRegistry creates a registry whose sessions load from source.
func NewRegistry(source Source, opts RegistryOptions, log *logger.Logger) *Registry {
	if log == nil {
		log = logger.NewDefault("manager")
	}
	if opts.TTL <= 0 {
		opts.TTL = defaultSessionTTL
	}
	if opts.Schedule == "" {
		opts.Schedule = defaultJanitorSchedule
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Registry{
		source:   source,
		log:      log,
		ttl:      opts.TTL,
		schedule: opts.Schedule,
		now:      opts.Now,
		sessions: make(map[string]*Session),
	}
}

// Open mounts a new session and starts its payee retrieval. The retrieval
// is not bound to ctx beyond its values; it ends when the session closes.
func (r *Registry) Open(ctx context.Context) *Session {
	now := r.now()
	store := NewStore(InitialState(), r.log)
	sess := &Session{
		ID:        uuid.NewString(),
		Store:     store,
		Loader:    NewLoader(store, r.source, r.log),
		CreatedAt: now,
		lastSeen:  now,
	}

	r.mu.Lock()
	r.sessions[sess.ID] = sess
	r.mu.Unlock()

	metrics.SessionOpened()
	r.log.WithField("session_id", sess.ID).Info("session opened")

	sess.Loader.Load(context.WithoutCancel(ctx))
	return sess
}

// Get returns the session with id and marks it as seen.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, svcerrors.NotFound("session", id)
	}
	sess.touch(r.now())
	return sess, nil
}

// Close unmounts the session with id.
func (r *Registry) Close(id string) error {
	r.mu.Lock()
	sess, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if !ok {
		return svcerrors.NotFound("session", id)
	}

	sess.close()
	metrics.SessionClosed()
	r.log.WithField("session_id", id).Info("session closed")
	return nil
}

// IDs lists the mounted session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len reports how many sessions are mounted.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep closes sessions idle for longer than the TTL and returns how many it
// closed.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	var expired []*Session
	for id, sess := range r.sessions {
		if sess.LastSeen().Before(cutoff) {
			expired = append(expired, sess)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, sess := range expired {
		sess.close()
		metrics.SessionClosed()
		r.log.WithField("session_id", sess.ID).Info("session expired")
	}
	return len(expired)
}

// Name implements system.Service.
func (r *Registry) Name() string { return "manager-sessions" }

// Start schedules the idle-session janitor.
func (r *Registry) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.janitor != nil {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(r.schedule, func() { r.Sweep() }); err != nil {
		return svcerrors.InvalidInput("invalid janitor schedule " + r.schedule)
	}
	c.Start()
	r.janitor = c
	r.log.WithField("schedule", r.schedule).WithField("ttl", r.ttl.String()).Info("session janitor started")
	return nil
}

// Stop halts the janitor and closes every session.
func (r *Registry) Stop(ctx context.Context) error {
	r.mu.Lock()
	c := r.janitor
	r.janitor = nil
	sessions := r.sessions
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	if c != nil {
		select {
		case <-c.Stop().Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	for _, sess := range sessions {
		sess.close()
		metrics.SessionClosed()
	}
	return nil
}
