package domain

import (
	"context"
	"time"
)

type Lane string

const (
	LaneCritical Lane = "critical"
	LaneBatch    Lane = "batch"
	LaneDefault  Lane = "default"
)

type JobType string

const (
	JobUnreleasedCommission  JobType = "unreleased-commission"
	JobOnHoldCommission      JobType = "on-hold-commission"
	JobWeeklyCommissionSweep JobType = "weekly-commission-sweep"
	JobPerAccountCommission  JobType = "per-account-commission"
	JobRankSnapshot          JobType = "rank-snapshot"
	JobBonus                 JobType = "bonus"
	JobDisburseCommission    JobType = "disburse-commission"
	JobGoldPostProcess       JobType = "gold-post-process"
	JobPlatinumPostProcess   JobType = "platinum-post-process"
	JobDiamondPostProcess    JobType = "diamond-post-process"
)

type JobStatus string

const (
	JobQueued    JobStatus = "QUEUED"
	JobRunning   JobStatus = "RUNNING"
	JobCompleted JobStatus = "COMPLETED"
	JobDead      JobStatus = "DEAD"
	JobCanceled  JobStatus = "CANCELED"
)

// Job is one unit of queued work. DEAD jobs are kept forever: they may
// represent unpaid commissions and must stay queryable.
type Job struct {
	ID           string
	Lane         Lane
	Type         JobType
	Payload      []byte
	AttemptCount int
	Status       JobStatus
	RunAt        time.Time
	LastError    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Typed job payloads. Scan jobs (disburse-commission,
// unreleased-commission) carry no payload.

type PerAccountPayload struct {
	AccountID string `json:"account_id"`
	Period    Period `json:"period"`
}

type SweepPayload struct {
	Period Period `json:"period"`
}

type SnapshotPayload struct {
	Period Period `json:"period"`
}

type BonusPayload struct {
	AwardID string `json:"award_id"`
}

type OnHoldPayload struct {
	AccountIDs    []string  `json:"account_ids,omitempty"`
	CreatedBefore time.Time `json:"created_before,omitempty"`
}

type TierPayload struct {
	Period Period `json:"period"`
}

type JobRepository interface {
	EnqueueJob(ctx context.Context, job *Job) error

	// ClaimNextJob moves the oldest due QUEUED job of the lane to
	// RUNNING, bumping its attempt count. Returns (nil, nil) when the
	// lane has no due job. The claim must be safe against concurrent
	// workers claiming the same row.
	ClaimNextJob(ctx context.Context, lane Lane) (*Job, error)

	CompleteJob(ctx context.Context, jobID string) error
	RequeueJob(ctx context.Context, jobID string, runAt time.Time, lastError string) error
	MarkJobDead(ctx context.Context, jobID string, lastError string) error

	// CancelJob cancels a job that is still QUEUED; claimed jobs run to
	// completion and return ErrJobNotCancelable.
	CancelJob(ctx context.Context, jobID string) error
	CancelQueuedJobs(ctx context.Context, lane Lane) (int64, error)
	ListDeadJobs(ctx context.Context, lane Lane) ([]*Job, error)
	CountQueuedJobs(ctx context.Context, lane Lane) (int64, error)
}

// Enqueuer is the producer-side contract of the dispatcher; engines use
// it to fan out follow-up work without depending on the queue wiring.
type Enqueuer interface {
	Enqueue(ctx context.Context, lane Lane, jobType JobType, payload any) (*Job, error)
}
