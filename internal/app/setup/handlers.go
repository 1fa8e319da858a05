package setup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LavaJover/shvark-referral-service/internal/dispatcher"
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/usecase"
)

// RegisterJobHandlers binds every job type to its engine operation.
// Workers dispatch strictly by type; a type missing here dies in the
// dispatcher as a deploy mismatch.
func RegisterJobHandlers(
	d *dispatcher.Dispatcher,
	commissionUC usecase.CommissionUsecase,
	rankUC usecase.RankUsecase,
	disbursementUC usecase.DisbursementUsecase,
) {
	d.RegisterHandler(domain.JobUnreleasedCommission, func(ctx context.Context, job *domain.Job) error {
		_, err := disbursementUC.DisburseUnreleased(ctx)
		return err
	})

	d.RegisterHandler(domain.JobDisburseCommission, func(ctx context.Context, job *domain.Job) error {
		_, err := disbursementUC.DisburseUnreleased(ctx)
		return err
	})

	d.RegisterHandler(domain.JobOnHoldCommission, func(ctx context.Context, job *domain.Job) error {
		var payload domain.OnHoldPayload
		if err := decodePayload(job, &payload); err != nil {
			return err
		}
		_, err := disbursementUC.DisburseOnHold(ctx, domain.HoldCriteria{
			AccountIDs:    payload.AccountIDs,
			CreatedBefore: payload.CreatedBefore,
		})
		return err
	})

	d.RegisterHandler(domain.JobWeeklyCommissionSweep, func(ctx context.Context, job *domain.Job) error {
		var payload domain.SweepPayload
		if err := decodePayload(job, &payload); err != nil {
			return err
		}
		_, err := commissionUC.SweepPeriod(ctx, payload.Period)
		return err
	})

	d.RegisterHandler(domain.JobPerAccountCommission, func(ctx context.Context, job *domain.Job) error {
		var payload domain.PerAccountPayload
		if err := decodePayload(job, &payload); err != nil {
			return err
		}
		return commissionUC.ProcessAccountPeriod(ctx, payload.AccountID, payload.Period)
	})

	d.RegisterHandler(domain.JobRankSnapshot, func(ctx context.Context, job *domain.Job) error {
		var payload domain.SnapshotPayload
		if err := decodePayload(job, &payload); err != nil {
			return err
		}
		_, err := rankUC.SnapshotPeriod(ctx, payload.Period)
		return err
	})

	d.RegisterHandler(domain.JobBonus, func(ctx context.Context, job *domain.Job) error {
		var payload domain.BonusPayload
		if err := decodePayload(job, &payload); err != nil {
			return err
		}
		return disbursementUC.PayBonus(ctx, payload.AwardID)
	})

	registerTierHandler(d, rankUC, domain.JobGoldPostProcess, domain.RankGold)
	registerTierHandler(d, rankUC, domain.JobPlatinumPostProcess, domain.RankPlatinum)
	registerTierHandler(d, rankUC, domain.JobDiamondPostProcess, domain.RankDiamond)
}

func registerTierHandler(d *dispatcher.Dispatcher, rankUC usecase.RankUsecase, jobType domain.JobType, rank domain.RankName) {
	d.RegisterHandler(jobType, func(ctx context.Context, job *domain.Job) error {
		var payload domain.TierPayload
		if err := decodePayload(job, &payload); err != nil {
			return err
		}
		_, err := rankUC.EnqueueTierBonuses(ctx, rank, payload.Period)
		return err
	})
}

func decodePayload(job *domain.Job, v interface{}) error {
	if len(job.Payload) == 0 {
		return domain.Validation(fmt.Errorf("job %s: empty payload for %s", job.ID, job.Type))
	}
	if err := json.Unmarshal(job.Payload, v); err != nil {
		return domain.Validation(fmt.Errorf("job %s: malformed payload: %w", job.ID, err))
	}
	return nil
}
