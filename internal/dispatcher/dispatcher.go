package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/jaevor/go-nanoid"
)

// Handler executes one job. A nil return completes the job; the fault
// class of a returned error decides between requeue and DEAD.
type Handler func(ctx context.Context, job *domain.Job) error

// LanePolicy is the explicit, per-lane retry contract: disbursement
// correctness depends on bounded, observable retry behavior.
type LanePolicy struct {
	Concurrency  int
	MaxAttempts  int
	BackoffBase  time.Duration
	BackoffCap   time.Duration
	PollInterval time.Duration
	JobTimeout   time.Duration
}

type Dispatcher struct {
	jobs     domain.JobRepository
	handlers map[domain.JobType]Handler
	policies map[domain.Lane]LanePolicy
	logger   *slog.Logger
	metrics  *metrics.ReferralMetrics
	idgen    func() string
}

func NewDispatcher(
	jobs domain.JobRepository,
	policies map[domain.Lane]LanePolicy,
	referralMetrics *metrics.ReferralMetrics,
	logger *slog.Logger) (*Dispatcher, error) {

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		jobs:     jobs,
		handlers: make(map[domain.JobType]Handler),
		policies: policies,
		logger:   logger,
		metrics:  referralMetrics,
		idgen:    idGenerator,
	}, nil
}

func (d *Dispatcher) RegisterHandler(jobType domain.JobType, handler Handler) {
	d.handlers[jobType] = handler
	d.logger.Info("registered job handler", "type", jobType)
}

// Enqueue creates a QUEUED job on the lane. Scan jobs pass a nil
// payload.
func (d *Dispatcher) Enqueue(ctx context.Context, lane domain.Lane, jobType domain.JobType, payload any) (*domain.Job, error) {
	var raw []byte
	if payload != nil {
		var err error
		raw, err = json.Marshal(payload)
		if err != nil {
			return nil, domain.Validation(fmt.Errorf("marshal payload for %s: %w", jobType, err))
		}
	}

	job := &domain.Job{
		ID:      d.idgen(),
		Lane:    lane,
		Type:    jobType,
		Payload: raw,
		Status:  domain.JobQueued,
		RunAt:   time.Now(),
	}

	if err := d.jobs.EnqueueJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// CancelJob cancels a job that no worker has claimed yet. Claimed jobs
// run to completion: a half-applied financial mutation must never be
// abandoned silently.
func (d *Dispatcher) CancelJob(ctx context.Context, jobID string) error {
	return d.jobs.CancelJob(ctx, jobID)
}

// Drain cancels every queued job of the lane without processing it.
// The critical lane carries pending financial work and is refused
// unless the caller forces it.
func (d *Dispatcher) Drain(ctx context.Context, lane domain.Lane, force bool) (int64, error) {
	if lane == domain.LaneCritical && !force {
		return 0, domain.ErrDrainCriticalLane
	}
	drained, err := d.jobs.CancelQueuedJobs(ctx, lane)
	if err != nil {
		return 0, err
	}
	d.logger.Warn("lane drained", "lane", lane, "jobs", drained, "forced", force)
	return drained, nil
}

func (d *Dispatcher) DeadJobs(ctx context.Context, lane domain.Lane) ([]*domain.Job, error) {
	return d.jobs.ListDeadJobs(ctx, lane)
}

const queueDepthInterval = 15 * time.Second

// Start spawns each lane's worker pool and blocks until ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	for lane, policy := range d.policies {
		for i := 0; i < policy.Concurrency; i++ {
			go d.runWorker(ctx, lane, policy)
		}
	}
	go d.watchQueueDepth(ctx)
	d.logger.Info("dispatcher started", "lanes", len(d.policies))
	<-ctx.Done()
}

func (d *Dispatcher) watchQueueDepth(ctx context.Context) {
	ticker := time.NewTicker(queueDepthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.observeQueueDepth(ctx)
		}
	}
}

// observeQueueDepth samples the queued backlog of every lane for the
// depth gauge.
func (d *Dispatcher) observeQueueDepth(ctx context.Context) map[domain.Lane]int64 {
	depths := make(map[domain.Lane]int64, len(d.policies))
	for lane := range d.policies {
		depth, err := d.jobs.CountQueuedJobs(ctx, lane)
		if err != nil {
			d.logger.Error("queue depth sample failed", "lane", lane, "error", err)
			continue
		}
		depths[lane] = depth
		d.metrics.RecordQueueDepth(string(lane), float64(depth))
	}
	return depths
}

func (d *Dispatcher) runWorker(ctx context.Context, lane domain.Lane, policy LanePolicy) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if d.processNext(ctx, lane, policy) {
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(policy.PollInterval):
		}
	}
}

// processNext claims and executes at most one job; it reports whether a
// job was claimed so the worker can poll immediately for the next one.
func (d *Dispatcher) processNext(ctx context.Context, lane domain.Lane, policy LanePolicy) bool {
	job, err := d.jobs.ClaimNextJob(ctx, lane)
	if err != nil {
		d.logger.Error("claim failed", "lane", lane, "error", err)
		return false
	}
	if job == nil {
		return false
	}

	d.execute(ctx, job, policy)
	return true
}

func (d *Dispatcher) execute(ctx context.Context, job *domain.Job, policy LanePolicy) {
	handler, ok := d.handlers[job.Type]
	if !ok {
		// A deploy mismatch, not a transient fault: never retried.
		d.logger.Error("unknown job type", "job_id", job.ID, "type", job.Type)
		d.markDead(ctx, job, fmt.Sprintf("%v: %s", domain.ErrUnknownJobType, job.Type))
		return
	}

	// Every store call under the handler inherits this deadline, so a
	// hung backend surfaces as context.DeadlineExceeded — unclassified,
	// therefore transient — instead of pinning the worker forever.
	jobCtx := ctx
	if policy.JobTimeout > 0 {
		var cancel context.CancelFunc
		jobCtx, cancel = context.WithTimeout(ctx, policy.JobTimeout)
		defer cancel()
	}

	start := time.Now()
	err := handler(jobCtx, job)
	elapsed := time.Since(start).Seconds()

	if err == nil {
		if completeErr := d.jobs.CompleteJob(ctx, job.ID); completeErr != nil {
			d.logger.Error("failed to complete job", "job_id", job.ID, "error", completeErr)
		}
		d.metrics.RecordJobProcessed(string(job.Lane), string(job.Type), "completed", elapsed)
		return
	}

	switch domain.ClassOf(err) {
	case domain.FaultTransient:
		if job.AttemptCount >= policy.MaxAttempts {
			d.logger.Error("job exhausted retries", "job_id", job.ID, "type", job.Type, "attempts", job.AttemptCount, "error", err)
			d.markDead(ctx, job, err.Error())
			return
		}
		delay := backoff(policy, job.AttemptCount)
		d.logger.Warn("job requeued", "job_id", job.ID, "type", job.Type, "attempt", job.AttemptCount, "delay", delay, "error", err)
		if requeueErr := d.jobs.RequeueJob(ctx, job.ID, time.Now().Add(delay), err.Error()); requeueErr != nil {
			d.logger.Error("failed to requeue job", "job_id", job.ID, "error", requeueErr)
		}
		d.metrics.RecordJobRetry(string(job.Lane), string(job.Type))

	default:
		// Integrity and validation faults indicate corrupted data or a
		// malformed payload; retrying cannot fix either.
		d.logger.Error("job failed fatally", "job_id", job.ID, "type", job.Type, "class", domain.ClassOf(err), "error", err)
		d.markDead(ctx, job, err.Error())
	}

	d.metrics.RecordJobProcessed(string(job.Lane), string(job.Type), "failed", elapsed)
}

func (d *Dispatcher) markDead(ctx context.Context, job *domain.Job, lastError string) {
	if err := d.jobs.MarkJobDead(ctx, job.ID, lastError); err != nil {
		d.logger.Error("failed to mark job dead", "job_id", job.ID, "error", err)
		return
	}
	d.metrics.RecordDeadJob(string(job.Lane), string(job.Type))
}

// backoff grows exponentially with the attempt number and is capped so
// a long outage cannot push retries out indefinitely.
func backoff(policy LanePolicy, attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := policy.BackoffBase
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= policy.BackoffCap {
			return policy.BackoffCap
		}
	}
	if delay > policy.BackoffCap {
		return policy.BackoffCap
	}
	return delay
}
