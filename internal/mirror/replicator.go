package mirror

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type replicationOp string

const (
	opSet    replicationOp = "set"
	opDelete replicationOp = "delete"
)

// replicationJob is one pending remote write. Attempt counts deliveries
// already tried, not the one in flight.
type replicationJob struct {
	op      replicationOp
	path    string
	value   interface{}
	attempt int
}

// ReplicatorConfig tunes the background replication workers.
type ReplicatorConfig struct {
	Workers     int
	MaxRetries  int
	RetryDelay  time.Duration
	CallTimeout time.Duration
}

// Replicator applies local writes to the remote mirror asynchronously. The
// caller commits to the local store first and then hands the change here, so
// a slow or absent remote never blocks a request. A failed write is retried
// with a fixed delay; past MaxRetries the change is dropped and the next
// write to the same path repairs the remote.
type Replicator struct {
	mirror      Mirror
	logger      *zap.Logger
	workers     int
	maxRetries  int
	retryDelay  time.Duration
	callTimeout time.Duration

	jobs chan replicationJob

	mu      sync.Mutex
	started bool
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewReplicator builds a replicator over m. A nil mirror yields a disabled
// replicator whose methods are no-ops.
func NewReplicator(m Mirror, cfg ReplicatorConfig, logger *zap.Logger) *Replicator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 5 * time.Second
	}

	r := &Replicator{
		mirror:      m,
		logger:      logger,
		workers:     cfg.Workers,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  cfg.RetryDelay,
		callTimeout: cfg.CallTimeout,
	}
	if m == nil {
		return r
	}

	r.jobs = make(chan replicationJob, cfg.Workers*8)
	return r
}

// Enabled reports whether a remote mirror is wired in.
func (r *Replicator) Enabled() bool {
	return r.mirror != nil
}

// Online reports remote reachability, false when replication is disabled.
func (r *Replicator) Online() bool {
	return r.mirror != nil && r.mirror.Online()
}

// Start launches the replication workers. Safe to call once.
func (r *Replicator) Start(ctx context.Context) {
	if r.jobs == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.ctx, r.cancel = context.WithCancel(ctx)
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker()
	}
	r.started = true
	r.logger.Info("mirror replication started", zap.Int("workers", r.workers))
}

// Stop cancels the workers and waits for in-flight writes.
func (r *Replicator) Stop() {
	r.mu.Lock()
	if !r.started {
		r.mu.Unlock()
		return
	}
	r.cancel()
	r.mu.Unlock()
	r.wg.Wait()
	r.logger.Info("mirror replication stopped")
}

// Set schedules value to be written at path on the remote.
func (r *Replicator) Set(path string, value interface{}) {
	r.enqueue(replicationJob{op: opSet, path: path, value: value})
}

// Delete schedules removal of path on the remote.
func (r *Replicator) Delete(path string) {
	r.enqueue(replicationJob{op: opDelete, path: path})
}

func (r *Replicator) enqueue(job replicationJob) {
	if r.jobs == nil {
		return
	}

	r.mu.Lock()
	started := r.started
	ctx := r.ctx
	r.mu.Unlock()
	if !started {
		r.logger.Warn("replication dropped, workers not running", zap.String("path", job.path))
		return
	}

	select {
	case <-ctx.Done():
		r.logger.Warn("replication dropped, replicator stopped", zap.String("path", job.path))
	case r.jobs <- job:
	}
}

func (r *Replicator) worker() {
	defer r.wg.Done()
	for {
		select {
		case <-r.ctx.Done():
			return
		case job := <-r.jobs:
			if err := r.apply(job); err != nil {
				r.retry(job, err)
			}
		}
	}
}

func (r *Replicator) apply(job replicationJob) error {
	ctx, cancel := context.WithTimeout(r.ctx, r.callTimeout)
	defer cancel()

	switch job.op {
	case opSet:
		return r.mirror.Set(ctx, job.path, job.value)
	case opDelete:
		return r.mirror.Delete(ctx, job.path)
	default:
		r.logger.Error("unknown replication op", zap.String("op", string(job.op)))
		return nil
	}
}

// retry requeues job after the retry delay. The delay runs on its own
// goroutine so a flaky remote cannot stall the worker pool.
func (r *Replicator) retry(job replicationJob, err error) {
	job.attempt++
	if job.attempt > r.maxRetries {
		r.logger.Error("replication abandoned",
			zap.String("op", string(job.op)),
			zap.String("path", job.path),
			zap.Int("attempts", job.attempt),
			zap.Error(err))
		return
	}
	r.logger.Warn("replication failed, retrying",
		zap.String("path", job.path),
		zap.Int("attempt", job.attempt),
		zap.Error(err))

	r.wg.Add(1)
	go func(j replicationJob) {
		defer r.wg.Done()
		timer := time.NewTimer(r.retryDelay)
		defer timer.Stop()
		select {
		case <-r.ctx.Done():
		case <-timer.C:
			select {
			case <-r.ctx.Done():
			case r.jobs <- j:
			}
		}
	}(job)
}
