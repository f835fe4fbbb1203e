// Package jobmgr runs named background jobs and stops them on demand.
//
// Typical usage:
//
//	jm := jobmgr.NewManager()
//	_ = jm.Start("janitor", func(ctx context.Context) error {
//	    store.RunJanitor(ctx, time.Minute)
//	    return nil
//	})
//	defer jm.StopAll()
package jobmgr

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
)

type job struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Manager tracks running jobs. It is safe for concurrent use.
type Manager struct {
	mu   sync.Mutex
	jobs map[string]*job
}

func NewManager() *Manager {
	return &Manager{jobs: make(map[string]*job)}
}

// Start runs fn in its own goroutine. A job with the same name must not be
// running already. Jobs remove themselves when fn returns.
func (m *Manager) Start(name string, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.jobs[name]; exists {
		return fmt.Errorf("job %q is already running", name)
	}

	ctx, cancel := context.WithCancel(context.Background())
	j := &job{cancel: cancel, done: make(chan struct{})}
	m.jobs[name] = j

	go func() {
		defer close(j.done)
		log.Debug().Str("job", name).Msg("job started")
		if err := fn(ctx); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("job", name).Msg("job failed")
		} else {
			log.Debug().Str("job", name).Msg("job done")
		}

		m.mu.Lock()
		if m.jobs[name] == j {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()
	return nil
}

// Stop cancels a job and waits for it to return.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	j, ok := m.jobs[name]
	if ok {
		delete(m.jobs, name)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("job %q not running", name)
	}
	j.cancel()
	<-j.done
	return nil
}

// StopAll cancels every job and waits for all of them.
func (m *Manager) StopAll() {
	m.mu.Lock()
	jobs := m.jobs
	m.jobs = make(map[string]*job)
	m.mu.Unlock()

	for _, j := range jobs {
		j.cancel()
	}
	for _, j := range jobs {
		<-j.done
	}
}

// List returns the names of running jobs, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
