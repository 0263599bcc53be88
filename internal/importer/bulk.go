package importer

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dropflow/product-extractor/internal/models"
)

var (
	ErrQueueClosed = errors.New("import queue is closed")
	ErrQueueFull   = errors.New("import queue is full")
)

// Job is one URL waiting to be extracted and imported.
type Job struct {
	ID        uuid.UUID
	URL       string
	Options   Options
	Priority  int
	CreatedAt time.Time
}

// Queue is an in-memory prioritized job queue feeding the bulk workers.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	jobs    []*Job
	maxSize int
	closed  bool
}

func NewQueue(maxSize int) *Queue {
	q := &Queue{maxSize: maxSize}
	q.cond = sync.NewCond(&q.mu)
	return q
}

func (q *Queue) Push(job *Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	if q.maxSize > 0 && len(q.jobs) >= q.maxSize {
		return ErrQueueFull
	}

	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
	}

	q.jobs = append(q.jobs, job)
	sort.SliceStable(q.jobs, func(i, j int) bool {
		return q.jobs[i].Priority > q.jobs[j].Priority
	})
	q.cond.Signal()
	return nil
}

// Pop blocks until a job is available, the queue is closed and drained,
// or ctx is cancelled.
func (q *Queue) Pop(ctx context.Context) (*Job, error) {
	// Wake the cond loop when the context fires.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		q.cond.Broadcast()
		q.mu.Unlock()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.jobs) == 0 && !q.closed && ctx.Err() == nil {
		q.cond.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(q.jobs) == 0 {
		return nil, ErrQueueClosed
	}

	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	return job, nil
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}

// Extractor is the pipeline entry point the bulk importer drives.
type Extractor interface {
	ExtractProduct(ctx context.Context, url string) (*models.CanonicalProduct, error)
}

// BulkImporter drains the queue through the extraction pipeline and the
// importer with a fixed worker count. Per-job failures are logged and
// skipped; one bad URL never stalls the batch.
type BulkImporter struct {
	queue     *Queue
	extractor Extractor
	importer  *Importer
	logger    *slog.Logger
}

func NewBulkImporter(queue *Queue, extractor Extractor, imp *Importer) *BulkImporter {
	return &BulkImporter{
		queue:     queue,
		extractor: extractor,
		importer:  imp,
		logger:    slog.Default().With("component", "bulk_importer"),
	}
}

// Enqueue adds a URL to the batch and returns its job id.
func (b *BulkImporter) Enqueue(url string, opts Options, priority int) (uuid.UUID, error) {
	job := &Job{URL: url, Options: opts, Priority: priority}
	if err := b.queue.Push(job); err != nil {
		return uuid.Nil, err
	}
	return job.ID, nil
}

// Run processes jobs until the context is cancelled or the queue is
// closed and drained.
func (b *BulkImporter) Run(ctx context.Context, workers int) {
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			b.work(ctx, worker)
		}(w)
	}
	wg.Wait()
}

func (b *BulkImporter) work(ctx context.Context, worker int) {
	for {
		job, err := b.queue.Pop(ctx)
		if err != nil {
			return
		}

		rec, err := b.extractor.ExtractProduct(ctx, job.URL)
		if err != nil {
			b.logger.Error("skipping job with invalid URL",
				"worker", worker, "job_id", job.ID, "url", job.URL, "error", err)
			continue
		}

		if _, err := b.importer.Import(ctx, rec, job.Options); err != nil {
			b.logger.Error("failed to import product",
				"worker", worker, "job_id", job.ID, "url", job.URL, "error", err)
			continue
		}

		b.logger.Info("job completed",
			"worker", worker, "job_id", job.ID, "needs_review", rec.NeedsManualReview)
	}
}
