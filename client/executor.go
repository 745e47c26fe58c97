package client

import (
	"sync"
)

// executor is the client's fixed-size worker pool. Parallel fan-out calls
// (multi-get groups) run on it instead of spawning a goroutine per call, so
// the thread pool size option bounds client-side concurrency.
type executor struct {
	tasks  chan func()
	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool
}

func newExecutor(workers int) *executor {
	if workers < 1 {
		workers = 1
	}
	e := &executor{
		tasks: make(chan func(), workers*2),
	}
	e.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer e.wg.Done()
			for task := range e.tasks {
				task()
			}
		}()
	}
	return e
}

// submit enqueues a task. Returns false if the pool is already closed, in
// which case the task did not run.
func (e *executor) submit(task func()) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return false
	}
	e.tasks <- task
	return true
}

// close drains the pool. Tasks already submitted still run, close waits for
// them. Idempotent.
func (e *executor) close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	close(e.tasks)
	e.mu.Unlock()

	e.wg.Wait()
}
