package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"alfredoptarigan/cv-matcher/internal/logger"
)

// ErrPoolStopped is returned by Submit once Stop has been called.
var ErrPoolStopped = errors.New("worker pool stopped")

// Task receives the context it was submitted with.
type Task func(ctx context.Context)

// WorkerPool is the process-wide executor for AI calls. It runs core workers
// permanently and adds burst workers up to the maximum while the queue backs up.
type WorkerPool interface {
	Start(ctx context.Context)
	Stop()
	// Submit queues task, blocking while the queue is full. It gives up when
	// ctx is done or the pool stops.
	Submit(ctx context.Context, task Task) error
	Stats() PoolStats
}

type PoolOptions struct {
	CoreWorkers int
	MaxWorkers  int
	QueueSize   int
	// BurstIdle is how long a burst worker waits for work before exiting.
	BurstIdle time.Duration
}

type PoolStats struct {
	Workers int `json:"workers"`
	Queued  int `json:"queued"`
	Running int `json:"running"`
}

type job struct {
	ctx  context.Context
	task Task
}

type workerPool struct {
	opts     PoolOptions
	jobQueue chan job
	stopChan chan struct{}
	wg       sync.WaitGroup
	log      *zap.Logger

	workers   atomic.Int32
	running   atomic.Int32
	nextID    atomic.Int32
	started   atomic.Bool
	startOnce sync.Once
	stopOnce  sync.Once
	baseCtx   context.Context
}

func NewWorkerPool(opts PoolOptions, log *zap.Logger) WorkerPool {
	if opts.CoreWorkers < 1 {
		opts.CoreWorkers = 1
	}
	if opts.MaxWorkers < opts.CoreWorkers {
		opts.MaxWorkers = opts.CoreWorkers
	}
	if opts.QueueSize < 0 {
		opts.QueueSize = 0
	}
	if opts.BurstIdle <= 0 {
		opts.BurstIdle = 30 * time.Second
	}

	return &workerPool{
		opts:     opts,
		jobQueue: make(chan job, opts.QueueSize),
		stopChan: make(chan struct{}),
		log:      logger.OrNop(log),
		baseCtx:  context.Background(),
	}
}

// Start implements WorkerPool.
func (p *workerPool) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		p.baseCtx = ctx

		p.log.Info("🚀 Starting worker pool",
			zap.Int("core", p.opts.CoreWorkers),
			zap.Int("max", p.opts.MaxWorkers),
			zap.Int("queue", p.opts.QueueSize),
		)

		for i := 0; i < p.opts.CoreWorkers; i++ {
			p.spawn(false)
		}
		p.started.Store(true)
	})
}

// Stop implements WorkerPool. Queued tasks that never started are dropped;
// their submitters observe their own context deadline.
func (p *workerPool) Stop() {
	p.stopOnce.Do(func() {
		p.log.Info("🛑 Stopping worker pool...")
		close(p.stopChan)
		p.wg.Wait()
		p.log.Info("✅ Worker pool stopped")
	})
}

// Submit implements WorkerPool.
func (p *workerPool) Submit(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.stopChan:
		return ErrPoolStopped
	default:
	}

	j := job{ctx: ctx, task: task}

	select {
	case p.jobQueue <- j:
		if len(p.jobQueue) > 0 && p.running.Load() >= p.workers.Load() {
			p.tryBurst()
		}
		return nil
	default:
	}

	// queue full: grow if allowed, then wait for room
	p.tryBurst()

	select {
	case p.jobQueue <- j:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("submit: %w", ctx.Err())
	case <-p.stopChan:
		return ErrPoolStopped
	}
}

// Stats implements WorkerPool.
func (p *workerPool) Stats() PoolStats {
	return PoolStats{
		Workers: int(p.workers.Load()),
		Queued:  len(p.jobQueue),
		Running: int(p.running.Load()),
	}
}

func (p *workerPool) tryBurst() {
	if !p.started.Load() {
		return
	}
	select {
	case <-p.stopChan:
		return
	default:
	}
	for {
		n := p.workers.Load()
		if int(n) >= p.opts.MaxWorkers {
			return
		}
		if p.workers.CompareAndSwap(n, n+1) {
			p.start(true)
			return
		}
	}
}

func (p *workerPool) spawn(burst bool) {
	p.workers.Add(1)
	p.start(burst)
}

// start launches a goroutine for a worker slot already counted in p.workers.
func (p *workerPool) start(burst bool) {
	id := int(p.nextID.Add(1))
	p.wg.Add(1)
	go p.processJobs(id, burst)
}

func (p *workerPool) processJobs(workerID int, burst bool) {
	defer p.wg.Done()
	defer p.workers.Add(-1)

	var idle <-chan time.Time
	var timer *time.Timer
	if burst {
		timer = time.NewTimer(p.opts.BurstIdle)
		defer timer.Stop()
		idle = timer.C
		p.log.Debug("burst worker started", zap.Int("worker", workerID))
	}

	for {
		select {
		case <-p.stopChan:
			return
		case <-p.baseCtx.Done():
			return
		case <-idle:
			p.log.Debug("burst worker idle, exiting", zap.Int("worker", workerID))
			return
		case j := <-p.jobQueue:
			p.run(workerID, j)
			if timer != nil {
				timer.Reset(p.opts.BurstIdle)
			}
		}
	}
}

func (p *workerPool) run(workerID int, j job) {
	if j.ctx.Err() != nil {
		p.log.Debug("skipping task whose context is done", zap.Int("worker", workerID), zap.Error(j.ctx.Err()))
		return
	}

	p.running.Add(1)
	defer p.running.Add(-1)
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("❌ task panicked", zap.Int("worker", workerID), zap.Any("panic", r))
		}
	}()

	j.task(j.ctx)
}
