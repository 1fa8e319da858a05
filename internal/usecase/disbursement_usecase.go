package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	kafkaevents "github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/jaevor/go-nanoid"
)

type DisbursementSummary struct {
	Disbursed int
	Skipped   int
	Failed    int
}

type DisbursementUsecase interface {
	// DisburseUnreleased pays every UNRELEASED record exactly once.
	// Suspended beneficiaries are skipped and left UNRELEASED; one bad
	// record never aborts the batch.
	DisburseUnreleased(ctx context.Context) (*DisbursementSummary, error)

	// DisburseOnHold releases ON_HOLD records matching the operator's
	// criteria through the same exactly-once path.
	DisburseOnHold(ctx context.Context, criteria domain.HoldCriteria) (*DisbursementSummary, error)

	// PayBonus credits a rank award's group and company bonus to the
	// wallet ledger, idempotently by award reference.
	PayBonus(ctx context.Context, awardID string) error
}

type PayoutEventPublisher interface {
	PublishPayoutIntent(event kafkaevents.PayoutIntentEvent) error
	PublishBonus(event kafkaevents.BonusEvent) error
}

type DefaultDisbursementUsecase struct {
	CommissionRepo domain.CommissionRepository
	AccountRepo    domain.AccountRepository
	AwardRepo      domain.RankAwardRepository
	Publisher      PayoutEventPublisher
	Metrics        *metrics.ReferralMetrics
	Logger         *slog.Logger

	batchID func() string
}

func NewDefaultDisbursementUsecase(
	commissionRepo domain.CommissionRepository,
	accountRepo domain.AccountRepository,
	awardRepo domain.RankAwardRepository,
	publisher PayoutEventPublisher,
	referralMetrics *metrics.ReferralMetrics,
	logger *slog.Logger) (*DefaultDisbursementUsecase, error) {

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, err
	}

	return &DefaultDisbursementUsecase{
		CommissionRepo: commissionRepo,
		AccountRepo:    accountRepo,
		AwardRepo:      awardRepo,
		Publisher:      publisher,
		Metrics:        referralMetrics,
		Logger:         logger,
		batchID:        idGenerator,
	}, nil
}

func (uc *DefaultDisbursementUsecase) DisburseUnreleased(ctx context.Context) (*DisbursementSummary, error) {
	records, err := uc.CommissionRepo.ListRecordsByStatus(ctx, domain.CommissionUnreleased)
	if err != nil {
		return nil, err
	}
	return uc.disburse(ctx, records, "unreleased"), nil
}

func (uc *DefaultDisbursementUsecase) DisburseOnHold(ctx context.Context, criteria domain.HoldCriteria) (*DisbursementSummary, error) {
	records, err := uc.CommissionRepo.ListOnHoldRecords(ctx, criteria)
	if err != nil {
		return nil, err
	}
	return uc.disburse(ctx, records, "on_hold"), nil
}

// disburse runs the check-credit-mark sequence per record. Each record
// is its own atomic unit: work already paid out stays paid even when a
// later record fails and the whole job is retried.
func (uc *DefaultDisbursementUsecase) disburse(ctx context.Context, records []*domain.CommissionRecord, source string) *DisbursementSummary {
	summary := &DisbursementSummary{}
	batchID := uc.batchID()

	for _, record := range records {
		account, err := uc.AccountRepo.GetAccountByID(ctx, record.BeneficiaryAccountID)
		if err != nil {
			uc.Logger.Error("beneficiary lookup failed", "record_id", record.ID, "error", err)
			summary.Failed++
			uc.Metrics.RecordDisburseFailed(source)
			continue
		}
		if account == nil || !account.IsActive() {
			summary.Skipped++
			uc.Metrics.RecordDisburseSkipped("beneficiary_suspended")
			continue
		}

		if err := uc.CommissionRepo.DisburseRecord(ctx, record); err != nil {
			if errors.Is(err, domain.ErrRecordNotEligible) {
				// Another worker, or a previous run, already got here.
				summary.Skipped++
				uc.Metrics.RecordDisburseSkipped("not_eligible")
				continue
			}
			uc.Logger.Error("disburse failed", "record_id", record.ID, "error", err)
			summary.Failed++
			uc.Metrics.RecordDisburseFailed(source)
			continue
		}

		summary.Disbursed++
		amount, _ := record.Amount.Float64()
		uc.Metrics.RecordDisbursed(source, amount)

		if err := uc.Publisher.PublishPayoutIntent(kafkaevents.PayoutIntentEvent{
			RecordID:  record.ID,
			AccountID: record.BeneficiaryAccountID,
			Amount:    record.Amount.StringFixed(2),
			Level:     record.Level,
			BatchID:   batchID,
			PaidAt:    time.Now(),
		}); err != nil {
			// The ledger is the source of truth; a lost intent event is
			// recoverable from it.
			uc.Logger.Error("failed to publish payout intent", "record_id", record.ID, "error", err)
		}
	}

	uc.Logger.Info("disbursement batch finished",
		"source", source,
		"batch_id", batchID,
		"disbursed", summary.Disbursed,
		"skipped", summary.Skipped,
		"failed", summary.Failed,
	)

	return summary
}

func (uc *DefaultDisbursementUsecase) PayBonus(ctx context.Context, awardID string) error {
	award, err := uc.AwardRepo.PayAwardBonus(ctx, awardID)
	if err != nil {
		if errors.Is(err, domain.ErrBonusAlreadyPaid) {
			return nil
		}
		if errors.Is(err, domain.ErrAwardNotFound) {
			return domain.Validation(err)
		}
		return err
	}

	uc.Metrics.RecordBonusPaid(string(award.Rank))

	if err := uc.Publisher.PublishBonus(kafkaevents.BonusEvent{
		AwardID:      award.ID,
		AccountID:    award.AccountID,
		Rank:         string(award.Rank),
		GroupBonus:   award.GroupBonus.StringFixed(2),
		CompanyBonus: award.CompanyBonus.StringFixed(2),
		Period:       string(award.Period),
		PaidAt:       time.Now(),
	}); err != nil {
		uc.Logger.Error("failed to publish bonus event", "award_id", award.ID, "error", err)
	}

	return nil
}
