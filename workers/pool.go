// Package workers provides a fixed size pool of goroutines fed from a FIFO task queue.
package workers

import (
	"bytes"
	"fmt"
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// ErrClosed is returned by Enqueue once Close has been called.
var ErrClosed = errors.New("pool is closed")

// Task is a unit of work. A returned error, or a panic, is collected by the
// pool and handed back by Wait.
type Task func() error

// Pool runs tasks on a fixed set of workers.
type Pool struct {
	sync.Mutex
	work *sync.Cond // queue became non-empty, or the pool is stopping
	idle *sync.Cond // queue became empty, or a task finished

	queue  []Task
	active int
	stop   bool
	errs   manyErr

	n  int
	wg sync.WaitGroup
}

// New starts a pool of n workers. If n is not positive, runtime.NumCPU() workers are started.
func New(n int) *Pool {
	if n <= 0 {
		n = runtime.NumCPU()
	}
	p := &Pool{n: n}
	p.work = sync.NewCond(&p.Mutex)
	p.idle = sync.NewCond(&p.Mutex)
	p.wg.Add(n)
	for i := 0; i < n; i++ {
		go p.loop()
	}
	return p
}

// Workers returns the number of workers.
func (p *Pool) Workers() int { return p.n }

// Enqueue appends t to the queue and wakes one worker. It never blocks on running tasks.
func (p *Pool) Enqueue(t Task) error {
	p.Lock()
	if p.stop {
		p.Unlock()
		return errors.WithStack(ErrClosed)
	}
	p.queue = append(p.queue, t)
	p.Unlock()
	p.work.Signal()
	return nil
}

// Drain blocks until the queue is empty. Tasks already taken off the queue
// may still be running when Drain returns; use Wait to wait for them too.
func (p *Pool) Drain() {
	p.Lock()
	for len(p.queue) > 0 {
		p.idle.Wait()
	}
	p.Unlock()
}

// Wait blocks until the queue is empty and no task is running, then returns
// the errors collected since the previous Wait.
func (p *Pool) Wait() error {
	p.Lock()
	defer p.Unlock()
	for len(p.queue) > 0 || p.active > 0 {
		p.idle.Wait()
	}
	if len(p.errs) == 0 {
		return nil
	}
	errs := p.errs
	p.errs = nil
	return errs
}

// Close stops the pool once the queue is empty and waits for every worker to exit.
func (p *Pool) Close() error {
	p.Lock()
	p.stop = true
	p.Unlock()
	p.work.Broadcast()
	p.wg.Wait()

	p.Lock()
	defer p.Unlock()
	if len(p.errs) == 0 {
		return nil
	}
	return p.errs
}

func (p *Pool) loop() {
	defer p.wg.Done()
	for {
		p.Lock()
		for len(p.queue) == 0 && !p.stop {
			p.work.Wait()
		}
		if len(p.queue) == 0 {
			// stopping
			p.Unlock()
			return
		}
		t := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.active++
		if len(p.queue) == 0 {
			p.idle.Broadcast()
		}
		p.Unlock()

		err := run(t)

		p.Lock()
		p.active--
		if err != nil {
			p.errs = append(p.errs, err)
		}
		if len(p.queue) == 0 {
			p.idle.Broadcast()
		}
		p.Unlock()
	}
}

func run(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("task panicked: %v", r)
		}
	}()
	return t()
}

type manyErr []error

func (err manyErr) Error() string {
	var buf bytes.Buffer
	for _, e := range err {
		fmt.Fprintln(&buf, e.Error())
	}
	return buf.String()
}

// Errors returns the individual errors held by an error returned from Wait or Close.
func Errors(err error) []error {
	if me, ok := err.(manyErr); ok {
		return []error(me)
	}
	if err == nil {
		return nil
	}
	return []error{err}
}
