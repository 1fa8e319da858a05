package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CommissionUsecase interface {
	// ComputeForTransaction walks the buyer's upline and produces one
	// commission record per payable level. Pure computation: nothing is
	// persisted, and the result is deterministic for a fixed graph and
	// level-table snapshot.
	ComputeForTransaction(ctx context.Context, trx *domain.Transaction) ([]*domain.CommissionRecord, error)

	// ProcessTransaction computes and persists commissions for one
	// transaction, idempotently: re-running never creates a second
	// record for the same (transaction, level) pair.
	ProcessTransaction(ctx context.Context, transactionID string) error

	// ProcessAccountPeriod recomputes all unprocessed transactions of
	// one account for the period. Per-transaction rejections are logged
	// and skipped; only infrastructure failures abort the batch.
	ProcessAccountPeriod(ctx context.Context, accountID string, period domain.Period) error

	// SweepPeriod fans out one per-account job on the batch lane for
	// every account with unprocessed sales in the period.
	SweepPeriod(ctx context.Context, period domain.Period) (int, error)
}

type DefaultCommissionUsecase struct {
	AccountRepo     domain.AccountRepository
	Graph           domain.ReferralGraph
	LevelRepo       domain.CommissionLevelRepository
	RankSettingRepo domain.RankSettingRepository
	CommissionRepo  domain.CommissionRepository
	TransactionRepo domain.TransactionRepository
	Enqueuer        domain.Enqueuer
	Metrics         *metrics.ReferralMetrics
	Logger          *slog.Logger
}

func NewDefaultCommissionUsecase(
	accountRepo domain.AccountRepository,
	graph domain.ReferralGraph,
	levelRepo domain.CommissionLevelRepository,
	rankSettingRepo domain.RankSettingRepository,
	commissionRepo domain.CommissionRepository,
	transactionRepo domain.TransactionRepository,
	enqueuer domain.Enqueuer,
	referralMetrics *metrics.ReferralMetrics,
	logger *slog.Logger) *DefaultCommissionUsecase {

	return &DefaultCommissionUsecase{
		AccountRepo:     accountRepo,
		Graph:           graph,
		LevelRepo:       levelRepo,
		RankSettingRepo: rankSettingRepo,
		CommissionRepo:  commissionRepo,
		TransactionRepo: transactionRepo,
		Enqueuer:        enqueuer,
		Metrics:         referralMetrics,
		Logger:          logger,
	}
}

var oneHundred = decimal.NewFromInt(100)

func (uc *DefaultCommissionUsecase) ComputeForTransaction(ctx context.Context, trx *domain.Transaction) ([]*domain.CommissionRecord, error) {
	if !trx.Amount.IsPositive() {
		return nil, domain.Validation(domain.ErrNonPositiveAmount)
	}

	buyer, err := uc.AccountRepo.GetAccountByID(ctx, trx.BuyerAccountID)
	if err != nil {
		return nil, err
	}
	if buyer == nil || !buyer.IsActive() {
		return nil, domain.Validation(domain.ErrInvalidSubject)
	}

	levels, err := uc.loadLevelTable(ctx)
	if err != nil {
		return nil, err
	}

	buyerRank, err := uc.RankSettingRepo.GetRankByName(ctx, buyer.Rank)
	if err != nil {
		return nil, err
	}
	if buyerRank == nil {
		return nil, domain.Integrity(fmt.Errorf("%w: %s", domain.ErrRankConfigMissing, buyer.Rank))
	}

	depth := buyerRank.Meta.MaxLevels
	if depth > domain.MaxCommissionLevels {
		depth = domain.MaxCommissionLevels
	}

	chain, err := uc.Graph.UplineChain(ctx, buyer.ID, depth)
	if err != nil {
		return nil, err
	}

	rankCache := map[domain.RankName]*domain.RankSetting{buyerRank.Name: buyerRank}
	records := make([]*domain.CommissionRecord, 0, len(chain))

	for i, ancestorID := range chain {
		level := i + 1
		if level > len(levels) {
			break
		}

		amount := trx.Amount.Mul(levels[level-1].Percentage).Div(oneHundred).Round(2)

		status, err := uc.legQualification(ctx, ancestorID, trx.Period, rankCache)
		if err != nil {
			return nil, err
		}

		records = append(records, &domain.CommissionRecord{
			ID:                   commissionRecordID(trx.ID, level),
			SourceTransactionID:  trx.ID,
			BeneficiaryAccountID: ancestorID,
			Level:                level,
			Amount:               amount,
			Status:               status,
		})
	}

	return records, nil
}

// legQualification decides UNRELEASED vs ON_HOLD for one ancestor: an
// ancestor that already has leg_cap qualifying legs this period takes
// the new leg over its cap, so the share is held rather than released.
func (uc *DefaultCommissionUsecase) legQualification(
	ctx context.Context,
	ancestorID string,
	period domain.Period,
	rankCache map[domain.RankName]*domain.RankSetting,
) (domain.CommissionStatus, error) {

	ancestor, err := uc.AccountRepo.GetAccountByID(ctx, ancestorID)
	if err != nil {
		return "", err
	}
	if ancestor == nil {
		return "", domain.Integrity(fmt.Errorf("%w: upline %s", domain.ErrAccountNotFound, ancestorID))
	}

	setting, ok := rankCache[ancestor.Rank]
	if !ok {
		setting, err = uc.RankSettingRepo.GetRankByName(ctx, ancestor.Rank)
		if err != nil {
			return "", err
		}
		if setting == nil {
			return "", domain.Integrity(fmt.Errorf("%w: %s", domain.ErrRankConfigMissing, ancestor.Rank))
		}
		rankCache[ancestor.Rank] = setting
	}

	legs, err := uc.Graph.QualifyingLegCount(ctx, ancestorID, period)
	if err != nil {
		return "", err
	}

	if legs >= setting.LegCap {
		return domain.CommissionOnHold, nil
	}
	return domain.CommissionUnreleased, nil
}

// loadLevelTable reads the level table once per computation and fails
// on a table that is non-contiguous or pays out more than 100% total.
func (uc *DefaultCommissionUsecase) loadLevelTable(ctx context.Context) ([]domain.CommissionLevel, error) {
	levels, err := uc.LevelRepo.ActiveLevels(ctx)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for i, level := range levels {
		if level.Level != i+1 {
			return nil, domain.Integrity(fmt.Errorf("%w: level %d at position %d", domain.ErrLevelTableInvalid, level.Level, i+1))
		}
		if !level.Percentage.IsPositive() {
			return nil, domain.Integrity(fmt.Errorf("%w: level %d percentage not positive", domain.ErrLevelTableInvalid, level.Level))
		}
		total = total.Add(level.Percentage)
	}
	if total.GreaterThan(oneHundred) {
		return nil, domain.Integrity(fmt.Errorf("%w: percentages sum to %s", domain.ErrLevelTableInvalid, total))
	}

	return levels, nil
}

func (uc *DefaultCommissionUsecase) ProcessTransaction(ctx context.Context, transactionID string) error {
	trx, err := uc.TransactionRepo.GetTransactionByID(ctx, transactionID)
	if err != nil {
		return err
	}
	if trx == nil {
		return domain.Validation(domain.ErrTransactionNotFound)
	}

	records, err := uc.ComputeForTransaction(ctx, trx)
	if err != nil {
		return err
	}

	if err := uc.CommissionRepo.SaveRecords(ctx, records); err != nil {
		return err
	}

	for _, record := range records {
		amount, _ := record.Amount.Float64()
		uc.Metrics.RecordCommissionComputed(fmt.Sprint(record.Level), string(record.Status), amount)
	}

	return uc.TransactionRepo.MarkProcessed(ctx, trx.ID)
}

func (uc *DefaultCommissionUsecase) ProcessAccountPeriod(ctx context.Context, accountID string, period domain.Period) error {
	transactions, err := uc.TransactionRepo.ListUnprocessedByAccount(ctx, accountID, period)
	if err != nil {
		return err
	}

	for _, trx := range transactions {
		if err := uc.ProcessTransaction(ctx, trx.ID); err != nil {
			switch domain.ClassOf(err) {
			case domain.FaultValidation, domain.FaultRejection:
				uc.Logger.Warn("skipping transaction", "transaction_id", trx.ID, "error", err)
				continue
			default:
				return err
			}
		}
	}

	return nil
}

func (uc *DefaultCommissionUsecase) SweepPeriod(ctx context.Context, period domain.Period) (int, error) {
	accountIDs, err := uc.TransactionRepo.ListAccountIDsWithSales(ctx, period)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, accountID := range accountIDs {
		payload := domain.PerAccountPayload{AccountID: accountID, Period: period}
		if _, err := uc.Enqueuer.Enqueue(ctx, domain.LaneBatch, domain.JobPerAccountCommission, payload); err != nil {
			return enqueued, err
		}
		enqueued++
	}

	uc.Logger.Info("commission sweep fanned out", "period", period, "accounts", enqueued)
	return enqueued, nil
}

// commissionRecordID derives the record id from the (transaction, level)
// pair so a recomputation reproduces records bit-identically.
func commissionRecordID(transactionID string, level int) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(fmt.Sprintf("%s:%d", transactionID, level))).String()
}
