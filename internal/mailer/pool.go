package mailer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("mail queue is full")
	ErrClosed    = errors.New("mail pool is shut down")
)

type Job struct {
	Message  Message
	Enqueued time.Time
}

type Worker struct {
	ID         int
	WorkerPool chan chan Job
	JobChannel chan Job
	Logger     *slog.Logger
}

func NewWorker(id int, workerPool chan chan Job, logger *slog.Logger) *Worker {
	return &Worker{
		ID:         id,
		WorkerPool: workerPool,
		JobChannel: make(chan Job),
		Logger:     logger,
	}
}

func (w *Worker) Start(ctx context.Context, wg *sync.WaitGroup, processFunc func(Job)) {
	wg.Add(1)
	go func() {
		defer wg.Done()

		for {
			w.WorkerPool <- w.JobChannel

			select {
			case job := <-w.JobChannel:
				w.Logger.Debug("worker sending mail", "worker_id", w.ID, "subject", job.Message.Subject)
				processFunc(job)
			case <-ctx.Done():
				w.Logger.Debug("worker shutting down", "worker_id", w.ID)
				return
			}
		}
	}()
}

type Config struct {
	MaxWorkers   int
	JobQueueSize int
	SendTimeout  time.Duration
	MaxAttempts  int
	RetryBackoff time.Duration
}

// Pool queues messages and hands them to a fixed set of workers. Enqueue
// never blocks: a full queue drops the message.
type Pool struct {
	sender Sender
	logger *slog.Logger
	cfg    Config

	jobQueue   chan Job
	workerPool chan chan Job
	ctx        context.Context
	cancel     context.CancelFunc
	sendCtx    context.Context
	abort      context.CancelFunc
	wg         sync.WaitGroup
	dispatched chan struct{}

	mu     sync.RWMutex
	closed bool
}

func NewPool(sender Sender, cfg Config, logger *slog.Logger) *Pool {
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 4
	}
	if cfg.JobQueueSize <= 0 {
		cfg.JobQueueSize = 100
	}
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	sendCtx, abort := context.WithCancel(context.Background())
	p := &Pool{
		sender:     sender,
		logger:     logger,
		cfg:        cfg,
		jobQueue:   make(chan Job, cfg.JobQueueSize),
		workerPool: make(chan chan Job, cfg.MaxWorkers),
		ctx:        ctx,
		cancel:     cancel,
		sendCtx:    sendCtx,
		abort:      abort,
		dispatched: make(chan struct{}),
	}

	for i := 0; i < cfg.MaxWorkers; i++ {
		NewWorker(i, p.workerPool, logger).Start(ctx, &p.wg, p.process)
	}
	go p.dispatch()

	logger.Info("mail worker pool started", "max_workers", cfg.MaxWorkers, "queue_size", cfg.JobQueueSize)
	return p
}

func (p *Pool) Enqueue(msg Message) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	select {
	case p.jobQueue <- Job{Message: msg, Enqueued: time.Now()}:
		return nil
	default:
		p.logger.Warn("mail queue full, dropping message", "to", msg.To, "subject", msg.Subject)
		return ErrQueueFull
	}
}

// Queued reports how many messages wait for a worker.
func (p *Pool) Queued() int {
	return len(p.jobQueue)
}

// dispatch runs until the queue is closed and empty.
func (p *Pool) dispatch() {
	defer close(p.dispatched)

	for job := range p.jobQueue {
		select {
		case jobChannel := <-p.workerPool:
			select {
			case jobChannel <- job:
			case <-p.ctx.Done():
				return
			}
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(job Job) {
	var err error
	for attempt := 1; attempt <= p.cfg.MaxAttempts; attempt++ {
		ctx, cancel := context.WithTimeout(p.sendCtx, p.cfg.SendTimeout)
		err = p.sender.Send(ctx, job.Message)
		cancel()
		if err == nil {
			p.logger.Info("mail sent", "to", job.Message.To, "subject", job.Message.Subject, "attempt", attempt)
			return
		}
		p.logger.Warn("mail send failed", "to", job.Message.To, "attempt", attempt, "error", err)

		if attempt < p.cfg.MaxAttempts {
			select {
			case <-time.After(p.cfg.RetryBackoff * time.Duration(attempt)):
			case <-p.sendCtx.Done():
				return
			}
		}
	}
	p.logger.Error("giving up on mail", "to", job.Message.To, "subject", job.Message.Subject, "error", err)
}

// Shutdown stops accepting messages and waits for queued ones to be sent.
// When ctx expires first the remaining messages are abandoned.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobQueue)
	p.mu.Unlock()

	p.logger.Info("shutting down mail pool", "queued", len(p.jobQueue))

	select {
	case <-p.dispatched:
	case <-ctx.Done():
		p.abort()
	}
	// workers finish the job in hand, then see the cancellation
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		p.abort()
		p.logger.Info("mail pool shutdown complete")
		return ctx.Err()
	case <-ctx.Done():
		p.abort()
		return ctx.Err()
	}
}
