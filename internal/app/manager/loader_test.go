package manager

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/R3E-Network/payee_manager/internal/app/domain/payee"
)

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("load did not finish")
	}
}

func TestLoader_DispatchesResult(t *testing.T) {
	store := NewStore(InitialState(), quietLogger())
	loader := NewLoader(store, SourceFunc(func(context.Context) ([]payee.Payee, error) {
		return samplePayees(), nil
	}), quietLogger())

	if status, _ := loader.Status(); status != LoadIdle {
		t.Fatalf("expected idle, got %s", status)
	}
	waitDone(t, loader.Load(context.Background()))

	if diff := cmp.Diff(samplePayees(), store.State().Payees); diff != "" {
		t.Fatalf("payees (-want +got):\n%s", diff)
	}
	if status, err := loader.Status(); status != LoadReady || err != nil {
		t.Fatalf("status = %s, %v", status, err)
	}
}

func TestLoader_DiscardsResultAfterClose(t *testing.T) {
	release := make(chan struct{})
	store := NewStore(InitialState(), quietLogger())
	loader := NewLoader(store, SourceFunc(func(context.Context) ([]payee.Payee, error) {
		<-release
		return samplePayees(), nil
	}), quietLogger())

	done := loader.Load(context.Background())
	loader.Close()
	close(release)
	waitDone(t, done)

	if got := store.State().Payees; len(got) != 0 {
		t.Fatalf("late result applied: %v", got)
	}
	if status, _ := loader.Status(); status != LoadClosed {
		t.Fatalf("expected closed, got %s", status)
	}
	waitDone(t, loader.Load(context.Background()))
}

func TestLoader_CloseCancelsContext(t *testing.T) {
	store := NewStore(InitialState(), quietLogger())
	cancelled := make(chan struct{})
	loader := NewLoader(store, SourceFunc(func(ctx context.Context) ([]payee.Payee, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	}), quietLogger())

	done := loader.Load(context.Background())
	loader.Close()
	waitDone(t, done)

	select {
	case <-cancelled:
	default:
		t.Fatalf("source context was not cancelled")
	}
	if loader.Err() != nil {
		t.Fatalf("discarded failure should not be recorded: %v", loader.Err())
	}
}

func TestLoader_DiscardsSupersededGeneration(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int32
	stale := []payee.Payee{{ID: "old"}}
	fresh := []payee.Payee{{ID: "new"}}

	store := NewStore(InitialState(), quietLogger())
	loader := NewLoader(store, SourceFunc(func(context.Context) ([]payee.Payee, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			started <- struct{}{}
			<-release
			return stale, nil
		}
		return fresh, nil
	}), quietLogger())

	first := loader.Load(context.Background())
	<-started
	second := loader.Load(context.Background())
	waitDone(t, second)
	close(release)
	waitDone(t, first)

	if got := ids(store.State().Payees); !cmp.Equal([]string{"new"}, got) {
		t.Fatalf("expected fresh result to win, got %v", got)
	}
}

func TestLoader_RecordsFailure(t *testing.T) {
	boom := errors.New("upstream down")
	store := NewStore(InitialState(), quietLogger())
	notified := 0
	store.Subscribe(func(State) { notified++ })

	loader := NewLoader(store, SourceFunc(func(context.Context) ([]payee.Payee, error) {
		return nil, boom
	}), quietLogger())
	waitDone(t, loader.Load(context.Background()))

	status, err := loader.Status()
	if status != LoadFailed || !errors.Is(err, boom) {
		t.Fatalf("status = %s, %v", status, err)
	}
	if notified != 0 {
		t.Fatalf("failed load should not dispatch")
	}
}

func TestLoader_ListenerMayReadStatus(t *testing.T) {
	store := NewStore(InitialState(), quietLogger())
	loader := NewLoader(store, SourceFunc(func(context.Context) ([]payee.Payee, error) {
		return samplePayees(), nil
	}), quietLogger())

	seen := make(chan LoadStatus, 1)
	store.Subscribe(func(State) {
		status, _ := loader.Status()
		seen <- status
	})

	waitDone(t, loader.Load(context.Background()))
	if got := <-seen; got != LoadReady {
		t.Fatalf("listener saw status %s, want %s", got, LoadReady)
	}
	if len(store.State().Payees) != len(samplePayees()) {
		t.Fatalf("payees not applied")
	}
}
