package pool

import (
	"context"
	"fmt"
	"sync"
)

// workerPool is a lazily started fixed-size pool. Workers spin up on the
// first submit so unused backends cost nothing.
type workerPool struct {
	name  string
	size  int
	tasks chan func()

	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup
	closed    chan struct{}
}

func newWorkerPool(name string, size int) *workerPool {
	if size < 1 {
		size = 1
	}
	return &workerPool{
		name:   name,
		size:   size,
		tasks:  make(chan func(), size*2),
		closed: make(chan struct{}),
	}
}

func (p *workerPool) start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.size; i++ {
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				for task := range p.tasks {
					task()
				}
			}()
		}
	})
}

// submit enqueues a task and blocks until a worker accepts it or the
// context is done
func (p *workerPool) submit(ctx context.Context, task func()) error {
	p.start()
	select {
	case <-p.closed:
		return fmt.Errorf("%s pool is shut down", p.name)
	default:
	}

	select {
	case p.tasks <- task:
		return nil
	case <-p.closed:
		return fmt.Errorf("%s pool is shut down", p.name)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// shutdown stops accepting tasks; when wait is true it blocks until
// queued tasks finish
func (p *workerPool) shutdown(wait bool) {
	p.closeOnce.Do(func() {
		close(p.closed)
		p.start() // drain even if never used
		close(p.tasks)
	})
	if wait {
		p.wg.Wait()
	}
}
