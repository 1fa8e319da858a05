package background

import (
	"context"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

// BackgroundTasks are the scheduled producers: each ticker enqueues the
// matching job, and the workers do the actual processing.
type BackgroundTasks struct {
	Enqueuer domain.Enqueuer
	Schedule config.ScheduleConfig
	Logger   *slog.Logger
}

func NewBackgroundTasks(enqueuer domain.Enqueuer, schedule config.ScheduleConfig, logger *slog.Logger) *BackgroundTasks {
	return &BackgroundTasks{
		Enqueuer: enqueuer,
		Schedule: schedule,
		Logger:   logger,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startScheduledDisbursement(ctx)
	go bt.startWeeklySweep(ctx)
	go bt.startRankSnapshot(ctx)
}

func (bt *BackgroundTasks) startScheduledDisbursement(ctx context.Context) {
	ticker := time.NewTicker(bt.Schedule.DisburseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := bt.Enqueuer.Enqueue(ctx, domain.LaneCritical, domain.JobUnreleasedCommission, nil); err != nil {
				bt.Logger.Error("failed to enqueue scheduled disbursement", "error", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startWeeklySweep(ctx context.Context) {
	ticker := time.NewTicker(bt.Schedule.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := domain.SweepPayload{Period: domain.CurrentPeriod()}
			if _, err := bt.Enqueuer.Enqueue(ctx, domain.LaneBatch, domain.JobWeeklyCommissionSweep, payload); err != nil {
				bt.Logger.Error("failed to enqueue weekly sweep", "error", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startRankSnapshot(ctx context.Context) {
	ticker := time.NewTicker(bt.Schedule.RankSnapshotInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			payload := domain.SnapshotPayload{Period: domain.CurrentPeriod()}
			if _, err := bt.Enqueuer.Enqueue(ctx, domain.LaneDefault, domain.JobRankSnapshot, payload); err != nil {
				bt.Logger.Error("failed to enqueue rank snapshot", "error", err)
			}
		}
	}
}
