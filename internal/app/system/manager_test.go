package system

import (
	"context"
	"errors"
	"testing"
)

type recordingService struct {
	name     string
	startErr error
	events   *[]string
}

func (s recordingService) Name() string { return s.name }

func (s recordingService) Start(ctx context.Context) error {
	*s.events = append(*s.events, "start:"+s.name)
	return s.startErr
}

func (s recordingService) Stop(ctx context.Context) error {
	*s.events = append(*s.events, "stop:"+s.name)
	return nil
}

func TestManagerOrdering(t *testing.T) {
	var events []string
	m := NewManager()
	for _, name := range []string{"a", "b"} {
		if err := m.Register(recordingService{name: name, events: &events}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	if err := m.Register(recordingService{name: "a", events: &events}); err == nil {
		t.Fatalf("expected duplicate name error")
	}

	if err := m.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := m.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}

	want := []string{"start:a", "start:b", "stop:b", "stop:a"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("events = %v, want %v", events, want)
		}
	}
}

func TestManagerRollsBackOnStartFailure(t *testing.T) {
	var events []string
	m := NewManager()
	_ = m.Register(recordingService{name: "a", events: &events})
	_ = m.Register(recordingService{name: "b", startErr: errors.New("boom"), events: &events})

	if err := m.Start(context.Background()); err == nil {
		t.Fatalf("expected start error")
	}
	want := []string{"start:a", "start:b", "stop:a"}
	if len(events) != len(want) || events[2] != "stop:a" {
		t.Fatalf("events = %v, want %v", events, want)
	}
}
