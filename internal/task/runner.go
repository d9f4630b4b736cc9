package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by the Runner
var (
	ErrQueueClosed = errors.New("task queue is closed")
	ErrQueueFull   = errors.New("task queue is full")
)

// RunnerConfig holds configuration for the task runner
type RunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks.
	// If zero or negative, defaults to 1.
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int
}

// DefaultRunnerConfig returns a RunnerConfig with reasonable defaults
func DefaultRunnerConfig() RunnerConfig {
	return RunnerConfig{
		WorkerCount: 2,
		QueueSize:   16,
	}
}

// Runner manages background task processing. Tasks are held in a
// bounded in-memory queue; Submit fails fast when the queue is full
// rather than blocking a request handler.
type Runner struct {
	taskChan   chan Task
	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	config     RunnerConfig
	logger     *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewRunner creates a new Runner
func NewRunner(config RunnerConfig, logger *slog.Logger) *Runner {
	if config.WorkerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
		config.WorkerCount = 1
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultRunnerConfig().QueueSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Runner{
		taskChan:   make(chan Task, config.QueueSize),
		ctx:        ctx,
		cancelFunc: cancel,
		config:     config,
		logger:     logger,
	}
}

// Submit adds a task to the queue for processing. Returns ErrQueueFull
// when the buffer is at capacity and ErrQueueClosed after Stop.
func (r *Runner) Submit(task Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrQueueClosed
	}

	select {
	case r.taskChan <- task:
		r.logger.Debug("task enqueued",
			"task_id", task.ID(),
			"task_type", task.Type(),
			"queue_len", len(r.taskChan),
			"queue_cap", cap(r.taskChan))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrQueueFull, cap(r.taskChan))
	}
}

// Start launches the worker goroutines.
func (r *Runner) Start() {
	for i := 0; i < r.config.WorkerCount; i++ {
		r.wg.Add(1)
		go r.worker(i)
	}
	r.logger.Info("task runner started", "worker_count", r.config.WorkerCount)
}

// Stop gracefully shuts down the runner. Queued tasks are drained
// before the workers exit.
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.taskChan)
	r.mu.Unlock()

	r.wg.Wait()
	r.cancelFunc()
	r.logger.Info("task runner stopped")
}

// worker processes tasks from the queue
func (r *Runner) worker(id int) {
	defer r.wg.Done()

	r.logger.Debug("starting worker", "worker_id", id)

	for task := range r.taskChan {
		r.processTask(task, id)
	}

	r.logger.Debug("task channel closed, stopping worker", "worker_id", id)
}

// processTask handles execution of a single task
func (r *Runner) processTask(task Task, workerID int) {
	logger := r.logger.With(
		"task_id", task.ID(),
		"task_type", task.Type(),
		"worker_id", workerID,
	)
	logger.Info("processing task")

	if err := task.Execute(r.ctx); err != nil {
		logger.Error("task execution failed", "error", err)
		return
	}
	logger.Info("task completed successfully")
}
