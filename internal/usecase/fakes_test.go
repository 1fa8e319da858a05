package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	kafkaevents "github.com/LavaJover/shvark-referral-service/internal/infrastructure/kafka"
	"github.com/shopspring/decimal"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func strptr(s string) *string { return &s }

type fakeAccountRepo struct {
	accounts    map[string]*domain.Account
	rankUpdates map[string]domain.RankName
	getErr      error
}

func newFakeAccountRepo(accounts ...*domain.Account) *fakeAccountRepo {
	repo := &fakeAccountRepo{
		accounts:    make(map[string]*domain.Account),
		rankUpdates: make(map[string]domain.RankName),
	}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (r *fakeAccountRepo) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}
	return r.accounts[accountID], nil
}

func (r *fakeAccountRepo) UpdateAccountRank(ctx context.Context, accountID string, rank domain.RankName) error {
	account, ok := r.accounts[accountID]
	if !ok {
		return domain.ErrAccountNotFound
	}
	account.Rank = rank
	r.rankUpdates[accountID] = rank
	return nil
}

func (r *fakeAccountRepo) ListActiveAccountIDs(ctx context.Context) ([]string, error) {
	var ids []string
	for id, account := range r.accounts {
		if account.IsActive() {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

type fakeGraph struct {
	chains map[string][]string
	legs   map[string]int
}

func (g *fakeGraph) UplineChain(ctx context.Context, accountID string, maxDepth int) ([]string, error) {
	chain := g.chains[accountID]
	if len(chain) > maxDepth {
		chain = chain[:maxDepth]
	}
	return chain, nil
}

func (g *fakeGraph) QualifyingLegCount(ctx context.Context, accountID string, period domain.Period) (int, error) {
	return g.legs[accountID], nil
}

type fakeVolumeRepo struct {
	gv map[string]decimal.Decimal
	pv map[string]decimal.Decimal
}

func (r *fakeVolumeRepo) AccountVolumes(ctx context.Context, accountID string, period domain.Period) (decimal.Decimal, decimal.Decimal, error) {
	gv, ok := r.gv[accountID]
	if !ok {
		gv = decimal.Zero
	}
	pv, ok := r.pv[accountID]
	if !ok {
		pv = decimal.Zero
	}
	return gv, pv, nil
}

type fakeLevelRepo struct {
	levels []domain.CommissionLevel
}

func (r *fakeLevelRepo) ActiveLevels(ctx context.Context) ([]domain.CommissionLevel, error) {
	return r.levels, nil
}

func defaultLevelTable() []domain.CommissionLevel {
	return []domain.CommissionLevel{
		{Level: 1, Percentage: dec("5")},
		{Level: 2, Percentage: dec("4")},
		{Level: 3, Percentage: dec("3")},
		{Level: 4, Percentage: dec("2")},
		{Level: 5, Percentage: dec("1")},
	}
}

type fakeRankSettingRepo struct {
	ordered []*domain.RankSetting
}

func (r *fakeRankSettingRepo) RanksOrderedByRequirement(ctx context.Context) ([]*domain.RankSetting, error) {
	return r.ordered, nil
}

func (r *fakeRankSettingRepo) GetRankByName(ctx context.Context, name domain.RankName) (*domain.RankSetting, error) {
	for _, setting := range r.ordered {
		if setting.Name == name {
			return setting, nil
		}
	}
	return nil, nil
}

func defaultRankSettings() *fakeRankSettingRepo {
	return &fakeRankSettingRepo{ordered: []*domain.RankSetting{
		{Name: domain.RankBronze, GVReq: dec("0"), PVReq: dec("0"), LegCap: 100, Meta: domain.RankMeta{MaxLevels: 3}},
		{Name: domain.RankSilver, GVReq: dec("10000"), PVReq: dec("500"), LegCap: 50, Meta: domain.RankMeta{MaxLevels: 4, GroupBonus: dec("250"), CompanyBonus: dec("100")}},
		{Name: domain.RankGold, GVReq: dec("50000"), PVReq: dec("1500"), LegCap: 25, Meta: domain.RankMeta{MaxLevels: 5, GroupBonus: dec("1000"), CompanyBonus: dec("500")}},
		{Name: domain.RankPlatinum, GVReq: dec("200000"), PVReq: dec("3000"), LegCap: 15, Meta: domain.RankMeta{MaxLevels: 5, GroupBonus: dec("5000"), CompanyBonus: dec("2000")}},
		{Name: domain.RankDiamond, GVReq: dec("1000000"), PVReq: dec("5000"), LegCap: 10, Meta: domain.RankMeta{MaxLevels: 5, GroupBonus: dec("20000"), CompanyBonus: dec("10000")}},
	}}
}

type fakeCommissionRepo struct {
	records     map[string]*domain.CommissionRecord
	pairs       map[string]bool
	credits     map[string]decimal.Decimal
	disburseErr map[string]error
}

func newFakeCommissionRepo(records ...*domain.CommissionRecord) *fakeCommissionRepo {
	repo := &fakeCommissionRepo{
		records:     make(map[string]*domain.CommissionRecord),
		pairs:       make(map[string]bool),
		credits:     make(map[string]decimal.Decimal),
		disburseErr: make(map[string]error),
	}
	for _, record := range records {
		repo.records[record.ID] = record
		repo.pairs[fmt.Sprintf("%s:%d", record.SourceTransactionID, record.Level)] = true
	}
	return repo
}

func (r *fakeCommissionRepo) SaveRecords(ctx context.Context, records []*domain.CommissionRecord) error {
	for _, record := range records {
		pair := fmt.Sprintf("%s:%d", record.SourceTransactionID, record.Level)
		if r.pairs[pair] {
			continue
		}
		copied := *record
		copied.CreatedAt = time.Now()
		r.records[record.ID] = &copied
		r.pairs[pair] = true
	}
	return nil
}

func (r *fakeCommissionRepo) ListRecordsByStatus(ctx context.Context, status domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	var out []*domain.CommissionRecord
	for _, record := range r.records {
		if record.Status == status {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeCommissionRepo) ListOnHoldRecords(ctx context.Context, criteria domain.HoldCriteria) ([]*domain.CommissionRecord, error) {
	var out []*domain.CommissionRecord
	for _, record := range r.records {
		if record.Status != domain.CommissionOnHold {
			continue
		}
		if len(criteria.AccountIDs) > 0 {
			matched := false
			for _, id := range criteria.AccountIDs {
				if record.BeneficiaryAccountID == id {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		if !criteria.CreatedBefore.IsZero() && !record.CreatedAt.Before(criteria.CreatedBefore) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *fakeCommissionRepo) GetRecordsByTransaction(ctx context.Context, transactionID string) ([]*domain.CommissionRecord, error) {
	var out []*domain.CommissionRecord
	for _, record := range r.records {
		if record.SourceTransactionID == transactionID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (r *fakeCommissionRepo) CommissionHistory(ctx context.Context, accountID string, status *domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	var out []*domain.CommissionRecord
	for _, record := range r.records {
		if record.BeneficiaryAccountID != accountID {
			continue
		}
		if status != nil && record.Status != *status {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *fakeCommissionRepo) DisburseRecord(ctx context.Context, record *domain.CommissionRecord) error {
	if err := r.disburseErr[record.ID]; err != nil {
		return err
	}
	stored, ok := r.records[record.ID]
	if !ok {
		return domain.ErrRecordNotEligible
	}
	if stored.Status != domain.CommissionUnreleased && stored.Status != domain.CommissionOnHold {
		return domain.ErrRecordNotEligible
	}
	stored.Status = domain.CommissionDisbursed
	now := time.Now()
	stored.ReleasedAt = &now
	balance, ok := r.credits[stored.BeneficiaryAccountID]
	if !ok {
		balance = decimal.Zero
	}
	r.credits[stored.BeneficiaryAccountID] = balance.Add(stored.Amount)
	return nil
}

type fakeTransactionRepo struct {
	transactions map[string]*domain.Transaction
	processed    map[string]bool
}

func newFakeTransactionRepo(transactions ...*domain.Transaction) *fakeTransactionRepo {
	repo := &fakeTransactionRepo{
		transactions: make(map[string]*domain.Transaction),
		processed:    make(map[string]bool),
	}
	for _, trx := range transactions {
		repo.transactions[trx.ID] = trx
	}
	return repo
}

func (r *fakeTransactionRepo) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return r.transactions[transactionID], nil
}

func (r *fakeTransactionRepo) ListUnprocessedByAccount(ctx context.Context, accountID string, period domain.Period) ([]*domain.Transaction, error) {
	var out []*domain.Transaction
	for _, trx := range r.transactions {
		if trx.BuyerAccountID == accountID && trx.Period == period && !r.processed[trx.ID] {
			out = append(out, trx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) ListAccountIDsWithSales(ctx context.Context, period domain.Period) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, trx := range r.transactions {
		if trx.Period == period && !r.processed[trx.ID] && !seen[trx.BuyerAccountID] {
			seen[trx.BuyerAccountID] = true
			out = append(out, trx.BuyerAccountID)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) MarkProcessed(ctx context.Context, transactionID string) error {
	r.processed[transactionID] = true
	return nil
}

type enqueuedJob struct {
	lane    domain.Lane
	jobType domain.JobType
	payload any
}

type fakeEnqueuer struct {
	jobs       []enqueuedJob
	enqueueErr error
}

func (e *fakeEnqueuer) Enqueue(ctx context.Context, lane domain.Lane, jobType domain.JobType, payload any) (*domain.Job, error) {
	if e.enqueueErr != nil {
		return nil, e.enqueueErr
	}
	e.jobs = append(e.jobs, enqueuedJob{lane: lane, jobType: jobType, payload: payload})
	return &domain.Job{ID: fmt.Sprintf("job-%d", len(e.jobs)), Lane: lane, Type: jobType}, nil
}

type fakeAwardRepo struct {
	awards map[string]*domain.RankAward
	grants map[string]bool
	payErr map[string]error
}

func newFakeAwardRepo(awards ...*domain.RankAward) *fakeAwardRepo {
	repo := &fakeAwardRepo{
		awards: make(map[string]*domain.RankAward),
		grants: make(map[string]bool),
		payErr: make(map[string]error),
	}
	for _, award := range awards {
		repo.awards[award.ID] = award
		repo.grants[grantKey(award)] = true
	}
	return repo
}

func grantKey(award *domain.RankAward) string {
	return fmt.Sprintf("%s:%s:%s", award.AccountID, award.Rank, award.Period)
}

func (r *fakeAwardRepo) CreateAward(ctx context.Context, award *domain.RankAward) (bool, error) {
	key := grantKey(award)
	if r.grants[key] {
		return false, nil
	}
	copied := *award
	copied.CreatedAt = time.Now()
	r.awards[award.ID] = &copied
	r.grants[key] = true
	return true, nil
}

func (r *fakeAwardRepo) GetAwardByID(ctx context.Context, awardID string) (*domain.RankAward, error) {
	return r.awards[awardID], nil
}

func (r *fakeAwardRepo) ListUnpaidAwards(ctx context.Context, rank domain.RankName, period domain.Period) ([]*domain.RankAward, error) {
	var out []*domain.RankAward
	for _, award := range r.awards {
		if award.Rank == rank && award.Period == period && !award.BonusPaid {
			out = append(out, award)
		}
	}
	return out, nil
}

func (r *fakeAwardRepo) PayAwardBonus(ctx context.Context, awardID string) (*domain.RankAward, error) {
	if err := r.payErr[awardID]; err != nil {
		return nil, err
	}
	award, ok := r.awards[awardID]
	if !ok {
		return nil, domain.ErrAwardNotFound
	}
	if award.BonusPaid {
		return nil, domain.ErrBonusAlreadyPaid
	}
	award.BonusPaid = true
	return award, nil
}

type fakePublisher struct {
	intents    []kafkaevents.PayoutIntentEvent
	bonuses    []kafkaevents.BonusEvent
	publishErr error
}

func (p *fakePublisher) PublishPayoutIntent(event kafkaevents.PayoutIntentEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.intents = append(p.intents, event)
	return nil
}

func (p *fakePublisher) PublishBonus(event kafkaevents.BonusEvent) error {
	if p.publishErr != nil {
		return p.publishErr
	}
	p.bonuses = append(p.bonuses, event)
	return nil
}

var errStoreDown = errors.New("store unavailable")
