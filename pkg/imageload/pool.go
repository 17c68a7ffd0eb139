package imageload

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"
)

var (
	defaultNumWorkers   uint = 3
	defaultJobQueueSize uint = 256
	defaultJobTimeout        = 30 * time.Second
)

var (
	// ErrPoolClosed is reported to a job enqueued after Close.
	ErrPoolClosed = errors.New("imageload: pool closed")

	// ErrQueueFull is reported to a job dropped because the queue is full.
	ErrQueueFull = errors.New("imageload: queue full")
)

// Result is the outcome of a single load. Exactly one of Image or Err is
// meaningful.
type Result struct {
	Image Image
	Err   error
}

// Job is an image load for the pool to execute. Complete is called exactly
// once from a worker goroutine.
type Job struct {
	URL      string
	Complete func(Result)
}

// Config is the configuration options for the loader pool.
type Config struct {
	// Loader performs the fetch and decode.
	Loader Loader

	// NumWorkers is the number of background workers in the pool.
	NumWorkers uint

	// QueueSize is the capacity of the buffered job channel (defaults to 256).
	QueueSize uint

	// Timeout bounds a single load (defaults to 30s).
	Timeout time.Duration

	Logger *slog.Logger
}

// Pool loads images asynchronously so that editing sessions never wait on
// the network.
type Pool struct {
	config *Config
	queue  chan Job
	wg     sync.WaitGroup
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewPool creates a new Pool and starts its worker goroutines.
func NewPool(c *Config) (*Pool, error) {
	if c.Loader == nil {
		return nil, errors.New("imageload: pool requires a Loader")
	}

	if c.NumWorkers == 0 {
		c.NumWorkers = defaultNumWorkers
	}

	if c.QueueSize == 0 {
		c.QueueSize = defaultJobQueueSize
	}

	if c.Timeout == 0 {
		c.Timeout = defaultJobTimeout
	}

	if c.Logger == nil {
		c.Logger = slog.New(slog.DiscardHandler)
	}

	if c.NumWorkers > uint(math.MaxInt) {
		return nil, fmt.Errorf("NumWorkers %d exceeds max int", c.NumWorkers)
	}

	p := &Pool{
		config: c,
		queue:  make(chan Job, c.QueueSize),
		logger: c.Logger,
	}

	p.wg.Add(int(c.NumWorkers))
	for i := range c.NumWorkers {
		go p.worker(i)
	}

	return p, nil
}

// Enqueue submits a job to the pool. Returns false if the queue is full or
// the pool is closed; the job's Complete is then called with an error on a
// separate goroutine, so callers may hold their own locks while enqueueing.
func (p *Pool) Enqueue(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		p.logger.Warn("image load rejected, pool closed", "url", job.URL)
		go job.complete(Result{Err: ErrPoolClosed})
		return false
	}

	select {
	case p.queue <- job:
		p.logger.Debug("image load queued", "url", job.URL)
		return true
	default:
		p.logger.Error("image load not queued, queue full, job dropped", "url", job.URL)
		go job.complete(Result{Err: ErrQueueFull})
		return false
	}
}

// Close signals workers to stop and waits for in-flight loads to drain.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(id uint) {
	defer p.wg.Done()
	p.logger.Debug("image worker started", "worker_id", id)

	for job := range p.queue {
		p.processJob(job)
	}

	p.logger.Debug("image worker stopped", "worker_id", id)
}

func (p *Pool) processJob(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), p.config.Timeout)
	defer cancel()

	img, err := p.config.Loader.Load(ctx, job.URL)
	if err != nil {
		p.logger.Warn("image load failed", "url", job.URL, "error", err)
		job.complete(Result{Err: err})
		return
	}

	p.logger.Debug("image loaded",
		"url", job.URL,
		"width", img.Width,
		"height", img.Height,
	)
	job.complete(Result{Image: img})
}

func (j Job) complete(r Result) {
	if j.Complete != nil {
		j.Complete(r)
	}
}
