package httpapi

import (
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/R3E-Network/payee_manager/internal/middleware"
)

// AuditEntry records one write request.
type AuditEntry struct {
	Time       time.Time `json:"time"`
	TraceID    string    `json:"traceId,omitempty"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Status     int       `json:"status"`
	RemoteAddr string    `json:"remoteAddr,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
}

// AuditSink persists audit entries.
type AuditSink interface {
	Write(entry AuditEntry) error
}

// AuditLog keeps the most recent write requests in memory and forwards each
// to an optional sink.
type AuditLog struct {
	mu      sync.Mutex
	entries []AuditEntry
	max     int
	sink    AuditSink
}

// NewAuditLog keeps up to max entries (200 when max <= 0).
func NewAuditLog(max int, sink AuditSink) *AuditLog {
	if max <= 0 {
		max = 200
	}
	return &AuditLog{max: max, sink: sink}
}

func (l *AuditLog) add(entry AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	if len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
	if l.sink != nil {
		_ = l.sink.Write(entry)
	}
}

// List returns up to limit of the newest entries, oldest first.
func (l *AuditLog) List(limit int) []AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit <= 0 || limit > len(l.entries) {
		limit = len(l.entries)
	}
	out := make([]AuditEntry, limit)
	copy(out, l.entries[len(l.entries)-limit:])
	return out
}

// Middleware records every request that is not a GET, HEAD or OPTIONS.
func (l *AuditLog) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			next.ServeHTTP(w, r)
			return
		}
		rec := &auditRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		l.add(AuditEntry{
			Time:       time.Now().UTC(),
			TraceID:    middleware.TraceID(r.Context()),
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rec.status,
			RemoteAddr: r.RemoteAddr,
			UserAgent:  r.UserAgent(),
		})
	})
}

type auditRecorder struct {
	http.ResponseWriter
	status int
}

func (r *auditRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (h *handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.audit.List(limit))
}

// FileAuditSink appends audit entries as JSONL.
type FileAuditSink struct {
	mu   sync.Mutex
	file *os.File
}

// NewFileAuditSink opens path for appending.
func NewFileAuditSink(path string) (*FileAuditSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	return &FileAuditSink{file: f}, nil
}

func (s *FileAuditSink) Write(entry AuditEntry) error {
	b, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.file.Write(append(b, '\n'))
	return err
}

// Close closes the underlying file.
func (s *FileAuditSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
