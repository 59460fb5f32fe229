package cron

import (
	"context"
	"time"
)

// Job represents a scheduled task that runs inside the cron worker.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Registry tracks registered cron jobs and how often each runs.
type Registry struct {
	entries []*registryEntry
}

type registryEntry struct {
	job     Job
	every   time.Duration
	lastRun time.Time
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a job that runs at most once per the given interval. A zero
// or negative interval runs the job on every cycle.
func (r *Registry) Register(job Job, every time.Duration) {
	if job == nil {
		return
	}
	r.entries = append(r.entries, &registryEntry{job: job, every: every})
}

// Jobs returns the registered jobs in registration order.
func (r *Registry) Jobs() []Job {
	jobs := make([]Job, len(r.entries))
	for i, entry := range r.entries {
		jobs[i] = entry.job
	}
	return jobs
}

// due returns the entries whose interval has elapsed since their last run.
func (r *Registry) due(now time.Time) []*registryEntry {
	var out []*registryEntry
	for _, entry := range r.entries {
		if entry.lastRun.IsZero() || now.Sub(entry.lastRun) >= entry.every {
			out = append(out, entry)
		}
	}
	return out
}
