// Package genworker provides a sharded worker pool for summary generation
// jobs. Jobs for the same document always land on the same worker, so
// generation attempts for one note never interleave.
package genworker

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Job is a unit of generation work bound to a document.
type Job struct {
	DocumentID string
	Handler    func(ctx context.Context) error
}

// PoolStats holds realtime metrics of the pool.
type PoolStats struct {
	NumWorkers      int   `json:"num_workers"`
	QueueSize       int   `json:"queue_size"`
	ActiveWorkers   int   `json:"active_workers"`
	TotalDispatched int64 `json:"total_dispatched"`
	TotalProcessed  int64 `json:"total_processed"`
	TotalDropped    int64 `json:"total_dropped"`
	TotalErrors     int64 `json:"total_errors"`
}

// Pool runs generation jobs on a fixed set of workers, sharded by document id.
type Pool struct {
	numWorkers int
	queueSize  int
	workers    []*worker
	wg         sync.WaitGroup
	stopOnce   sync.Once
	stopped    int32

	totalDispatched int64
	totalProcessed  int64
	totalDropped    int64
	totalErrors     int64
}

type worker struct {
	id           int
	jobQueue     chan Job
	ctx          context.Context
	cancel       context.CancelFunc
	isProcessing int32
	pool         *Pool
}

// NewPool creates a pool with the given worker count and per-worker queue size.
func NewPool(numWorkers, queueSize int) *Pool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Pool{
		numWorkers: numWorkers,
		queueSize:  queueSize,
		workers:    make([]*worker, numWorkers),
	}
}

// Start launches all workers. Jobs dispatched before Start are rejected.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.numWorkers; i++ {
		workerCtx, cancel := context.WithCancel(ctx)
		w := &worker{
			id:       i,
			jobQueue: make(chan Job, p.queueSize),
			ctx:      workerCtx,
			cancel:   cancel,
			pool:     p,
		}
		p.workers[i] = w

		p.wg.Add(1)
		go w.run(&p.wg)
	}

	logrus.Infof("[GEN_WORKER_POOL] Started with %d workers, queue size: %d", p.numWorkers, p.queueSize)
}

// TryDispatch enqueues a job on its document's worker without blocking.
// Returns false when the pool is stopped or the worker queue is full.
func (p *Pool) TryDispatch(job Job) bool {
	if atomic.LoadInt32(&p.stopped) == 1 || p.workers[0] == nil {
		atomic.AddInt64(&p.totalDropped, 1)
		return false
	}

	shard := p.shardForDocument(job.DocumentID)
	atomic.AddInt64(&p.totalDispatched, 1)

	sent := func() (ok bool) {
		defer func() {
			if r := recover(); r != nil {
				ok = false
			}
		}()
		select {
		case p.workers[shard].jobQueue <- job:
			return true
		default:
			return false
		}
	}()

	if !sent {
		atomic.AddInt64(&p.totalDropped, 1)
		logrus.Warnf("[GEN_WORKER_POOL] Worker %d queue full (or stopped), dropping job for %s", shard, job.DocumentID)
	}
	return sent
}

// Dispatch enqueues a job, silently dropping it under backpressure.
func (p *Pool) Dispatch(job Job) {
	_ = p.TryDispatch(job)
}

// Stop shuts the pool down gracefully, waiting for in-flight jobs.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		atomic.StoreInt32(&p.stopped, 1)

		for _, w := range p.workers {
			if w == nil {
				continue
			}
			w.cancel()
			close(w.jobQueue)
		}

		p.wg.Wait()
		logrus.Info("[GEN_WORKER_POOL] All workers stopped")
	})
}

// GetStats returns realtime pool metrics.
func (p *Pool) GetStats() PoolStats {
	active := 0
	for _, w := range p.workers {
		if w != nil && atomic.LoadInt32(&w.isProcessing) == 1 {
			active++
		}
	}
	return PoolStats{
		NumWorkers:      p.numWorkers,
		QueueSize:       p.queueSize,
		ActiveWorkers:   active,
		TotalDispatched: atomic.LoadInt64(&p.totalDispatched),
		TotalProcessed:  atomic.LoadInt64(&p.totalProcessed),
		TotalDropped:    atomic.LoadInt64(&p.totalDropped),
		TotalErrors:     atomic.LoadInt64(&p.totalErrors),
	}
}

// shardForDocument maps a document id to a worker via consistent hashing.
func (p *Pool) shardForDocument(documentID string) int {
	h := fnv.New32a()
	h.Write([]byte(documentID))
	return int(h.Sum32() % uint32(p.numWorkers))
}

func (w *worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}

			func() {
				atomic.StoreInt32(&w.isProcessing, 1)
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
						logrus.Errorf("[GEN_WORKER_POOL] Worker %d panic for %s: %v", w.id, job.DocumentID, r)
					}
					atomic.StoreInt32(&w.isProcessing, 0)
					atomic.AddInt64(&w.pool.totalProcessed, 1)
				}()

				if err := job.Handler(w.ctx); err != nil {
					atomic.AddInt64(&w.pool.totalErrors, 1)
					logrus.WithError(err).Errorf("[GEN_WORKER_POOL] Worker %d job failed for %s", w.id, job.DocumentID)
				}
			}()

		case <-w.ctx.Done():
			w.drainQueue()
			return
		}
	}
}

// drainQueue processes remaining jobs before shutdown.
func (w *worker) drainQueue() {
	for {
		select {
		case job, ok := <-w.jobQueue:
			if !ok {
				return
			}
			func() {
				defer func() {
					if r := recover(); r != nil {
						atomic.AddInt64(&w.pool.totalErrors, 1)
					}
				}()
				if err := job.Handler(w.ctx); err != nil {
					logrus.WithError(err).Errorf("[GEN_WORKER_POOL] Worker %d drain job failed", w.id)
				}
			}()
		default:
			return
		}
	}
}
