package cron

import (
	"context"
	"testing"
	"time"
)

type stubJob struct {
	name string
}

func (s *stubJob) Name() string              { return s.name }
func (s *stubJob) Run(context.Context) error { return nil }

func TestRegistryStoresJobs(t *testing.T) {
	registry := NewRegistry()
	jobA := &stubJob{name: "a"}
	jobB := &stubJob{name: "b"}
	registry.Register(jobA, time.Minute)
	registry.Register(jobB, time.Hour)
	jobs := registry.Jobs()
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0] != jobA || jobs[1] != jobB {
		t.Fatalf("jobs returned out of order")
	}
}

func TestRegistryDueHonorsCadence(t *testing.T) {
	registry := NewRegistry()
	fast := &stubJob{name: "fast"}
	slow := &stubJob{name: "slow"}
	registry.Register(fast, time.Minute)
	registry.Register(slow, time.Hour)

	start := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

	due := registry.due(start)
	if len(due) != 2 {
		t.Fatalf("expected both jobs due on first cycle, got %d", len(due))
	}
	for _, entry := range due {
		entry.lastRun = start
	}

	due = registry.due(start.Add(30 * time.Second))
	if len(due) != 0 {
		t.Fatalf("expected nothing due after 30s, got %d", len(due))
	}

	due = registry.due(start.Add(time.Minute))
	if len(due) != 1 || due[0].job != fast {
		t.Fatalf("expected only the fast job due after a minute")
	}

	due = registry.due(start.Add(time.Hour))
	if len(due) != 2 {
		t.Fatalf("expected both jobs due after an hour, got %d", len(due))
	}
}

func TestRegistryZeroIntervalAlwaysDue(t *testing.T) {
	registry := NewRegistry()
	registry.Register(&stubJob{name: "every-cycle"}, 0)

	now := time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)
	due := registry.due(now)
	if len(due) != 1 {
		t.Fatalf("expected job due, got %d", len(due))
	}
	due[0].lastRun = now

	due = registry.due(now.Add(time.Second))
	if len(due) != 1 {
		t.Fatalf("expected zero-interval job due on the next cycle, got %d", len(due))
	}
}

func TestRegistryIgnoresNilJob(t *testing.T) {
	registry := NewRegistry()
	registry.Register(nil, time.Minute)
	if len(registry.Jobs()) != 0 {
		t.Fatal("nil job should not register")
	}
}
