package cron

import (
	"context"
	"fmt"
	"strings"
)

// Job is one audit the worker runs every cycle.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// Auditor is a Job that reports how many problems its last run found.
type Auditor interface {
	Job
	Findings() int
}

// Registry holds the jobs of a cycle in run order. Names are unique.
type Registry struct {
	jobs []Job
}

func NewRegistry(jobs ...Job) *Registry {
	r := &Registry{}
	for _, job := range jobs {
		r.Register(job)
	}
	return r
}

// Register appends job unless it is nil or its name is taken, and reports
// whether it was added.
func (r *Registry) Register(job Job) bool {
	if job == nil || r.lookup(job.Name()) != nil {
		return false
	}
	r.jobs = append(r.jobs, job)
	return true
}

// Jobs returns a copy in registration order.
func (r *Registry) Jobs() []Job {
	return append([]Job(nil), r.jobs...)
}

// Select narrows the registry to the named jobs, keeping registration order.
// No names selects everything.
func (r *Registry) Select(names ...string) (*Registry, error) {
	if len(names) == 0 {
		return NewRegistry(r.jobs...), nil
	}
	wanted := make(map[string]bool, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if r.lookup(name) == nil {
			return nil, fmt.Errorf("unknown job %q (have %s)", name, strings.Join(r.names(), ", "))
		}
		wanted[name] = true
	}
	selected := &Registry{}
	for _, job := range r.jobs {
		if wanted[job.Name()] {
			selected.jobs = append(selected.jobs, job)
		}
	}
	return selected, nil
}

func (r *Registry) lookup(name string) Job {
	for _, job := range r.jobs {
		if job.Name() == name {
			return job
		}
	}
	return nil
}

func (r *Registry) names() []string {
	out := make([]string, 0, len(r.jobs))
	for _, job := range r.jobs {
		out = append(out, job.Name())
	}
	return out
}
