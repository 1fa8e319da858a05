package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
)

type RankEvaluation struct {
	NewRank        domain.RankName
	BonusTriggered bool
}

type RankUsecase interface {
	// EvaluateAccount grants the highest rank whose GV and PV
	// requirements the account meets. Promotions are monotonic and
	// idempotent per (account, rank, period); anything else is a no-op.
	EvaluateAccount(ctx context.Context, accountID string, period domain.Period) (*RankEvaluation, error)

	// SnapshotPeriod evaluates every active account for the period and
	// returns the number of promotions granted.
	SnapshotPeriod(ctx context.Context, period domain.Period) (int, error)

	// EnqueueTierBonuses queues bonus payment jobs for every unpaid
	// award of the tier in the period.
	EnqueueTierBonuses(ctx context.Context, rank domain.RankName, period domain.Period) (int, error)
}

type DefaultRankUsecase struct {
	AccountRepo     domain.AccountRepository
	RankSettingRepo domain.RankSettingRepository
	AwardRepo       domain.RankAwardRepository
	VolumeRepo      domain.VolumeRepository
	Enqueuer        domain.Enqueuer
	Metrics         *metrics.ReferralMetrics
	Logger          *slog.Logger
}

func NewDefaultRankUsecase(
	accountRepo domain.AccountRepository,
	rankSettingRepo domain.RankSettingRepository,
	awardRepo domain.RankAwardRepository,
	volumeRepo domain.VolumeRepository,
	enqueuer domain.Enqueuer,
	referralMetrics *metrics.ReferralMetrics,
	logger *slog.Logger) *DefaultRankUsecase {

	return &DefaultRankUsecase{
		AccountRepo:     accountRepo,
		RankSettingRepo: rankSettingRepo,
		AwardRepo:       awardRepo,
		VolumeRepo:      volumeRepo,
		Enqueuer:        enqueuer,
		Metrics:         referralMetrics,
		Logger:          logger,
	}
}

func (uc *DefaultRankUsecase) EvaluateAccount(ctx context.Context, accountID string, period domain.Period) (*RankEvaluation, error) {
	account, err := uc.AccountRepo.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, domain.Validation(domain.ErrInvalidSubject)
	}

	gv, pv, err := uc.VolumeRepo.AccountVolumes(ctx, accountID, period)
	if err != nil {
		return nil, err
	}

	ranks, err := uc.RankSettingRepo.RanksOrderedByRequirement(ctx)
	if err != nil {
		return nil, err
	}
	if len(ranks) == 0 {
		return nil, domain.Integrity(domain.ErrRankConfigMissing)
	}

	currentIdx := -1
	candidateIdx := -1
	for i, setting := range ranks {
		if setting.Name == account.Rank {
			currentIdx = i
		}
		if gv.GreaterThanOrEqual(setting.GVReq) && pv.GreaterThanOrEqual(setting.PVReq) {
			candidateIdx = i
		}
	}

	// Rank never decreases through this engine; demotion is an explicit
	// out-of-band operation.
	if candidateIdx <= currentIdx {
		return &RankEvaluation{}, nil
	}

	candidate := ranks[candidateIdx]
	award := &domain.RankAward{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		Rank:         candidate.Name,
		Period:       period,
		GroupBonus:   candidate.Meta.GroupBonus,
		CompanyBonus: candidate.Meta.CompanyBonus,
	}

	created, err := uc.AwardRepo.CreateAward(ctx, award)
	if err != nil {
		return nil, err
	}
	if !created {
		// Already granted for this period by an earlier run.
		return &RankEvaluation{}, nil
	}

	if err := uc.AccountRepo.UpdateAccountRank(ctx, accountID, candidate.Name); err != nil {
		return nil, err
	}

	if _, err := uc.Enqueuer.Enqueue(ctx, domain.LaneCritical, domain.JobBonus, domain.BonusPayload{AwardID: award.ID}); err != nil {
		// The award row is in place, so a later tier post-process pass
		// can still pick the bonus up.
		uc.Logger.Error("failed to enqueue bonus job", "award_id", award.ID, "error", err)
	}

	uc.Metrics.RecordRankPromotion(string(candidate.Name))
	uc.Logger.Info("rank promoted", "account_id", accountID, "rank", candidate.Name, "period", period)

	return &RankEvaluation{NewRank: candidate.Name, BonusTriggered: true}, nil
}

func (uc *DefaultRankUsecase) SnapshotPeriod(ctx context.Context, period domain.Period) (int, error) {
	accountIDs, err := uc.AccountRepo.ListActiveAccountIDs(ctx)
	if err != nil {
		return 0, err
	}

	promoted := 0
	for _, accountID := range accountIDs {
		result, err := uc.EvaluateAccount(ctx, accountID, period)
		if err != nil {
			switch domain.ClassOf(err) {
			case domain.FaultValidation, domain.FaultRejection:
				uc.Logger.Warn("skipping account in rank snapshot", "account_id", accountID, "error", err)
				continue
			default:
				return promoted, fmt.Errorf("rank snapshot aborted at account %s: %w", accountID, err)
			}
		}
		if result.BonusTriggered {
			promoted++
		}
	}

	// The top tiers get a follow-up pass picking up awards whose bonus
	// job was lost at promotion time.
	tierJobs := []domain.JobType{
		domain.JobGoldPostProcess,
		domain.JobPlatinumPostProcess,
		domain.JobDiamondPostProcess,
	}
	for _, jobType := range tierJobs {
		if _, err := uc.Enqueuer.Enqueue(ctx, domain.LaneDefault, jobType, domain.TierPayload{Period: period}); err != nil {
			uc.Logger.Error("failed to enqueue tier post-process", "type", jobType, "error", err)
		}
	}

	return promoted, nil
}

func (uc *DefaultRankUsecase) EnqueueTierBonuses(ctx context.Context, rank domain.RankName, period domain.Period) (int, error) {
	awards, err := uc.AwardRepo.ListUnpaidAwards(ctx, rank, period)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, award := range awards {
		// Duplicate bonus jobs are harmless: the payout is idempotent
		// by award reference.
		if _, err := uc.Enqueuer.Enqueue(ctx, domain.LaneCritical, domain.JobBonus, domain.BonusPayload{AwardID: award.ID}); err != nil {
			return enqueued, err
		}
		enqueued++
	}

	return enqueued, nil
}
