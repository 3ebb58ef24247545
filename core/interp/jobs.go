package interp

import (
	"context"
	"sync"
)

// job is one asynchronous command list running in its own goroutine.
type job struct {
	id     int
	done   chan struct{}
	status int
}

// jobTable tracks asynchronous jobs. It is shared between a shell and its
// subshells so wait can see jobs started anywhere in the session.
type jobTable struct {
	mu   sync.Mutex
	next int
	jobs map[int]*job
}

func newJobTable() *jobTable {
	return &jobTable{next: 1, jobs: make(map[int]*job)}
}

func (t *jobTable) add() *job {
	t.mu.Lock()
	defer t.mu.Unlock()
	j := &job{id: t.next, done: make(chan struct{})}
	t.next++
	t.jobs[j.id] = j
	return j
}

func (t *jobTable) finish(j *job, status int) {
	j.status = status
	close(j.done)
}

func (t *jobTable) get(id int) (*job, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	j, ok := t.jobs[id]
	return j, ok
}

func (t *jobTable) take() []*job {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*job, 0, len(t.jobs))
	for _, j := range t.jobs {
		out = append(out, j)
	}
	t.jobs = make(map[int]*job)
	return out
}

func (t *jobTable) remove(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.jobs, id)
}

// WaitAll blocks until every pending asynchronous job finishes and returns
// zero, the wait builtin's status with no operands.
func (s *Shell) WaitAll(ctx context.Context) int {
	for _, j := range s.jobs.take() {
		select {
		case <-j.done:
		case <-ctx.Done():
			return 128
		}
	}
	return 0
}

// WaitJob blocks until the job named by id finishes and returns its exit
// status. An unknown id yields 127, like waiting for a process that is not
// a child.
func (s *Shell) WaitJob(ctx context.Context, id int) int {
	j, ok := s.jobs.get(id)
	if !ok {
		return 127
	}
	select {
	case <-j.done:
	case <-ctx.Done():
		return 128
	}
	s.jobs.remove(id)
	return j.status
}
