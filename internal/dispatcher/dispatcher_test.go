package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryJobRepo struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{jobs: make(map[string]*domain.Job)}
}

func (r *memoryJobRepo) EnqueueJob(ctx context.Context, job *domain.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *job
	copied.CreatedAt = time.Now()
	r.jobs[job.ID] = &copied
	return nil
}

func (r *memoryJobRepo) ClaimNextJob(ctx context.Context, lane domain.Lane) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var oldest *domain.Job
	now := time.Now()
	for _, job := range r.jobs {
		if job.Lane != lane || job.Status != domain.JobQueued || job.RunAt.After(now) {
			continue
		}
		if oldest == nil || job.RunAt.Before(oldest.RunAt) {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, nil
	}
	oldest.Status = domain.JobRunning
	oldest.AttemptCount++
	claimed := *oldest
	return &claimed, nil
}

func (r *memoryJobRepo) CompleteJob(ctx context.Context, jobID string) error {
	return r.setStatus(jobID, domain.JobCompleted, "")
}

func (r *memoryJobRepo) RequeueJob(ctx context.Context, jobID string, runAt time.Time, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = domain.JobQueued
	job.RunAt = runAt
	job.LastError = lastError
	return nil
}

func (r *memoryJobRepo) MarkJobDead(ctx context.Context, jobID string, lastError string) error {
	return r.setStatus(jobID, domain.JobDead, lastError)
}

func (r *memoryJobRepo) CancelJob(ctx context.Context, jobID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok || job.Status != domain.JobQueued {
		return domain.ErrJobNotCancelable
	}
	job.Status = domain.JobCanceled
	return nil
}

func (r *memoryJobRepo) CancelQueuedJobs(ctx context.Context, lane domain.Lane) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var drained int64
	for _, job := range r.jobs {
		if job.Lane == lane && job.Status == domain.JobQueued {
			job.Status = domain.JobCanceled
			drained++
		}
	}
	return drained, nil
}

func (r *memoryJobRepo) CountQueuedJobs(ctx context.Context, lane domain.Lane) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var depth int64
	for _, job := range r.jobs {
		if job.Lane == lane && job.Status == domain.JobQueued {
			depth++
		}
	}
	return depth, nil
}

func (r *memoryJobRepo) ListDeadJobs(ctx context.Context, lane domain.Lane) ([]*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.Job
	for _, job := range r.jobs {
		if job.Lane == lane && job.Status == domain.JobDead {
			out = append(out, job)
		}
	}
	return out, nil
}

func (r *memoryJobRepo) setStatus(jobID string, status domain.JobStatus, lastError string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	job, ok := r.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	job.Status = status
	if lastError != "" {
		job.LastError = lastError
	}
	return nil
}

func (r *memoryJobRepo) status(jobID string) domain.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.jobs[jobID].Status
}

func testPolicy() LanePolicy {
	return LanePolicy{
		Concurrency:  1,
		MaxAttempts:  3,
		BackoffBase:  0,
		BackoffCap:   0,
		PollInterval: time.Millisecond,
		JobTimeout:   time.Second,
	}
}

func newTestDispatcher(t *testing.T, repo *memoryJobRepo) *Dispatcher {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	policies := map[domain.Lane]LanePolicy{
		domain.LaneCritical: testPolicy(),
		domain.LaneBatch:    testPolicy(),
		domain.LaneDefault:  testPolicy(),
	}
	d, err := NewDispatcher(repo, policies, nil, logger)
	require.NoError(t, err)
	return d
}

func TestDispatcher_CompletesJob(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	handled := 0
	d.RegisterHandler(domain.JobRankSnapshot, func(ctx context.Context, job *domain.Job) error {
		handled++
		return nil
	})

	job, err := d.Enqueue(context.Background(), domain.LaneDefault, domain.JobRankSnapshot, domain.SnapshotPayload{Period: "2026-W35"})
	require.NoError(t, err)

	claimed := d.processNext(context.Background(), domain.LaneDefault, testPolicy())
	assert.True(t, claimed)
	assert.Equal(t, 1, handled)
	assert.Equal(t, domain.JobCompleted, repo.status(job.ID))

	// Nothing left on the lane.
	assert.False(t, d.processNext(context.Background(), domain.LaneDefault, testPolicy()))
}

func TestDispatcher_TransientFailureRetriesThenDies(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	attempts := 0
	d.RegisterHandler(domain.JobUnreleasedCommission, func(ctx context.Context, job *domain.Job) error {
		attempts++
		return domain.Transient(errors.New("store unavailable"))
	})

	job, err := d.Enqueue(context.Background(), domain.LaneCritical, domain.JobUnreleasedCommission, nil)
	require.NoError(t, err)

	policy := testPolicy()
	for i := 0; i < policy.MaxAttempts; i++ {
		require.True(t, d.processNext(context.Background(), domain.LaneCritical, policy))
	}

	assert.Equal(t, policy.MaxAttempts, attempts)
	assert.Equal(t, domain.JobDead, repo.status(job.ID))

	dead, err := d.DeadJobs(context.Background(), domain.LaneCritical)
	require.NoError(t, err)
	require.Len(t, dead, 1)
	assert.Contains(t, dead[0].LastError, "store unavailable")
}

func TestDispatcher_PartialWorkSurvivesRetry(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	// The handler pays one record per attempt and fails transiently
	// until all three are paid; paid work must never be repeated.
	paid := map[string]bool{}
	pending := []string{"r1", "r2", "r3"}
	d.RegisterHandler(domain.JobUnreleasedCommission, func(ctx context.Context, job *domain.Job) error {
		for _, id := range pending {
			if !paid[id] {
				paid[id] = true
				break
			}
		}
		if len(paid) < len(pending) {
			return domain.Transient(errors.New("broker timeout"))
		}
		return nil
	})

	job, err := d.Enqueue(context.Background(), domain.LaneCritical, domain.JobUnreleasedCommission, nil)
	require.NoError(t, err)

	policy := testPolicy()
	for i := 0; i < 3; i++ {
		require.True(t, d.processNext(context.Background(), domain.LaneCritical, policy))
	}

	assert.Equal(t, domain.JobCompleted, repo.status(job.ID))
	assert.Len(t, paid, 3)
}

func TestDispatcher_HungHandlerTimesOutAndRequeues(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	// The handler simulates a hung store call by blocking on the job
	// context; the lane timeout must cut it loose.
	d.RegisterHandler(domain.JobUnreleasedCommission, func(ctx context.Context, job *domain.Job) error {
		<-ctx.Done()
		return ctx.Err()
	})

	job, err := d.Enqueue(context.Background(), domain.LaneCritical, domain.JobUnreleasedCommission, nil)
	require.NoError(t, err)

	policy := testPolicy()
	policy.JobTimeout = 5 * time.Millisecond

	done := make(chan struct{})
	go func() {
		d.processNext(context.Background(), domain.LaneCritical, policy)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker stayed blocked past the job timeout")
	}

	// Deadline exceeded is unclassified, so it rides the transient
	// retry path instead of killing the job.
	assert.Equal(t, domain.JobQueued, repo.status(job.ID))
	assert.Contains(t, repo.jobs[job.ID].LastError, "deadline")
}

func TestDispatcher_ObservesQueueDepthPerLane(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	d.RegisterHandler(domain.JobRankSnapshot, func(ctx context.Context, job *domain.Job) error {
		return nil
	})

	_, err := d.Enqueue(context.Background(), domain.LaneBatch, domain.JobWeeklyCommissionSweep, domain.SweepPayload{Period: "2026-W35"})
	require.NoError(t, err)
	_, err = d.Enqueue(context.Background(), domain.LaneBatch, domain.JobWeeklyCommissionSweep, domain.SweepPayload{Period: "2026-W36"})
	require.NoError(t, err)
	_, err = d.Enqueue(context.Background(), domain.LaneDefault, domain.JobRankSnapshot, domain.SnapshotPayload{Period: "2026-W35"})
	require.NoError(t, err)

	// Completing the default-lane job empties that lane's backlog.
	require.True(t, d.processNext(context.Background(), domain.LaneDefault, testPolicy()))

	depths := d.observeQueueDepth(context.Background())
	assert.Equal(t, int64(0), depths[domain.LaneCritical])
	assert.Equal(t, int64(2), depths[domain.LaneBatch])
	assert.Equal(t, int64(0), depths[domain.LaneDefault])
}

func TestDispatcher_ValidationFailureDiesImmediately(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	attempts := 0
	d.RegisterHandler(domain.JobBonus, func(ctx context.Context, job *domain.Job) error {
		attempts++
		return domain.Validation(errors.New("empty payload"))
	})

	job, err := d.Enqueue(context.Background(), domain.LaneCritical, domain.JobBonus, nil)
	require.NoError(t, err)

	require.True(t, d.processNext(context.Background(), domain.LaneCritical, testPolicy()))
	assert.Equal(t, 1, attempts)
	assert.Equal(t, domain.JobDead, repo.status(job.ID))
}

func TestDispatcher_UnknownJobTypeDies(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	job, err := d.Enqueue(context.Background(), domain.LaneDefault, domain.JobType("stale-type"), nil)
	require.NoError(t, err)

	require.True(t, d.processNext(context.Background(), domain.LaneDefault, testPolicy()))
	assert.Equal(t, domain.JobDead, repo.status(job.ID))
}

func TestDispatcher_DrainRefusesCriticalLane(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	job, err := d.Enqueue(context.Background(), domain.LaneCritical, domain.JobUnreleasedCommission, nil)
	require.NoError(t, err)

	_, err = d.Drain(context.Background(), domain.LaneCritical, false)
	require.ErrorIs(t, err, domain.ErrDrainCriticalLane)
	assert.Equal(t, domain.JobQueued, repo.status(job.ID))

	drained, err := d.Drain(context.Background(), domain.LaneCritical, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), drained)
	assert.Equal(t, domain.JobCanceled, repo.status(job.ID))
}

func TestDispatcher_CancelOnlyQueuedJobs(t *testing.T) {
	repo := newMemoryJobRepo()
	d := newTestDispatcher(t, repo)

	d.RegisterHandler(domain.JobRankSnapshot, func(ctx context.Context, job *domain.Job) error {
		return nil
	})

	job, err := d.Enqueue(context.Background(), domain.LaneDefault, domain.JobRankSnapshot, domain.SnapshotPayload{Period: "2026-W35"})
	require.NoError(t, err)
	require.NoError(t, d.CancelJob(context.Background(), job.ID))
	assert.Equal(t, domain.JobCanceled, repo.status(job.ID))

	// A finished job cannot be canceled.
	job2, err := d.Enqueue(context.Background(), domain.LaneDefault, domain.JobRankSnapshot, domain.SnapshotPayload{Period: "2026-W35"})
	require.NoError(t, err)
	require.True(t, d.processNext(context.Background(), domain.LaneDefault, testPolicy()))
	require.ErrorIs(t, d.CancelJob(context.Background(), job2.ID), domain.ErrJobNotCancelable)
}

func TestBackoff_DoublesAndCaps(t *testing.T) {
	policy := LanePolicy{BackoffBase: 2 * time.Second, BackoffCap: 10 * time.Second}

	assert.Equal(t, 2*time.Second, backoff(policy, 1))
	assert.Equal(t, 4*time.Second, backoff(policy, 2))
	assert.Equal(t, 8*time.Second, backoff(policy, 3))
	assert.Equal(t, 10*time.Second, backoff(policy, 4))
	assert.Equal(t, 10*time.Second, backoff(policy, 10))

	// Attempt numbers below one behave like the first attempt.
	assert.Equal(t, 2*time.Second, backoff(policy, 0))
}
