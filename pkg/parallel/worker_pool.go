// Package parallel runs independent pipeline tasks on a bounded set of
// goroutines.
package parallel

import (
	"fmt"
	"sync"

	"github.com/dd0wney/cluso-relations/pkg/logging"
)

// MaxWorkers bounds the pool size. There are only a handful of record
// categories; anything far beyond that is a configuration mistake.
const MaxWorkers = 256

// ErrTooManyWorkers is returned when the worker count exceeds MaxWorkers.
var ErrTooManyWorkers = fmt.Errorf("worker count exceeds maximum")

// Task is one unit of work. A panicking task is reported as a PanicError.
type Task func() error

// PanicError wraps a value recovered from a panicking task.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panicked: %v", e.Value)
}

// WorkerPool manages a pool of worker goroutines
type WorkerPool struct {
	workers   int
	taskQueue chan func()
	wg        sync.WaitGroup
	once      sync.Once
	mu        sync.RWMutex // Protects taskQueue from concurrent close during send
	closed    bool         // Protected by mu
	logger    logging.Logger
}

// NewWorkerPool creates a pool with the given number of workers. Zero or
// negative counts mean one worker.
func NewWorkerPool(workers int, logger logging.Logger) (*WorkerPool, error) {
	if workers <= 0 {
		workers = 1
	}
	if workers > MaxWorkers {
		return nil, fmt.Errorf("%w: %d exceeds %d", ErrTooManyWorkers, workers, MaxWorkers)
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	pool := &WorkerPool{
		workers:   workers,
		taskQueue: make(chan func(), workers*2),
		logger:    logger.With(logging.Component("worker_pool")),
	}

	pool.start()
	return pool, nil
}

// Workers returns the pool size.
func (wp *WorkerPool) Workers() int {
	return wp.workers
}

func (wp *WorkerPool) start() {
	for i := 0; i < wp.workers; i++ {
		wp.wg.Add(1)
		go wp.worker()
	}
}

func (wp *WorkerPool) worker() {
	defer wp.wg.Done()

	for task := range wp.taskQueue {
		task()
	}
}

// Submit queues a task. Its error, or the PanicError it raised, is passed to
// done when done is non-nil. Submit returns false if the pool is closed.
func (wp *WorkerPool) Submit(task Task, done func(error)) bool {
	wp.mu.RLock()
	defer wp.mu.RUnlock()

	if wp.closed {
		return false
	}

	wp.taskQueue <- func() {
		err := wp.run(task)
		if done != nil {
			done(err)
		}
	}
	return true
}

func (wp *WorkerPool) run(task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			wp.logger.Error("worker panic recovered", logging.Any("panic", fmt.Sprint(r)))
			err = &PanicError{Value: r}
		}
	}()
	return task()
}

// Close stops accepting tasks and waits for the queued ones to finish.
func (wp *WorkerPool) Close() {
	wp.once.Do(func() {
		wp.mu.Lock()
		wp.closed = true
		close(wp.taskQueue)
		wp.mu.Unlock()
	})
	wp.wg.Wait()
}

// Run executes every task on a fresh pool and returns their errors indexed
// like tasks.
func Run(workers int, logger logging.Logger, tasks []Task) ([]error, error) {
	pool, err := NewWorkerPool(workers, logger)
	if err != nil {
		return nil, err
	}

	errs := make([]error, len(tasks))
	for i, task := range tasks {
		i := i
		pool.Submit(task, func(err error) { errs[i] = err })
	}
	pool.Close()
	return errs, nil
}
