// Package workerpool provides a bounded goroutine pool with backpressure.
//
// A Pool caps concurrent work; when the queue is full, Submit fails fast
// with ErrPoolFull so the caller chooses what to do. The report exporter
// uses it to cap parallel downloads when exporting a range of dates.
package workerpool

import (
	"errors"
	"sync"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once

	// mu orders every send on tasks before the close in Shutdown, so a
	// submit can never hit a closed channel.
	mu     sync.Mutex
	closed bool
}

// New creates a Pool with the given number of workers and a queue of twice
// that size.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		tasks: make(chan func(), size*2),
	}
	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit enqueues task without blocking. Returns ErrPoolFull when the queue
// is at capacity and ErrPoolClosed after Shutdown.
func (p *Pool) Submit(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until a queue slot frees up. Returns ErrPoolClosed after
// Shutdown.
func (p *Pool) SubmitWait(task func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}

	// The workers keep draining until Shutdown closes the channel, and
	// Shutdown waits on mu, so this send always completes.
	p.tasks <- task
	return nil
}

// Shutdown stops accepting tasks and waits for in-flight work. Safe to call
// more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		run(task)
	}
}

// run executes task, recovering panics so one bad task cannot kill a worker.
func run(task func()) {
	defer func() { _ = recover() }()
	task()
}
