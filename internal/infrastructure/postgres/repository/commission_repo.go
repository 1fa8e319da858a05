package repository

import (
	"context"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultCommissionRepository struct {
	DB *gorm.DB
}

func NewDefaultCommissionRepository(db *gorm.DB) *DefaultCommissionRepository {
	return &DefaultCommissionRepository{DB: db}
}

func (r *DefaultCommissionRepository) SaveRecords(ctx context.Context, records []*domain.CommissionRecord) error {
	if len(records) == 0 {
		return nil
	}

	recordModels := make([]*models.CommissionRecordModel, len(records))
	for i, record := range records {
		recordModels[i] = mappers.ToGORMCommissionRecord(record)
	}

	// The unique (transaction, level) index is the dedup point for
	// concurrent duplicate enqueues; conflicting rows are left as is.
	return r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source_transaction_id"}, {Name: "level"}},
			DoNothing: true,
		}).
		Create(&recordModels).Error
}

func (r *DefaultCommissionRepository) ListRecordsByStatus(ctx context.Context, status domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	var recordModels []models.CommissionRecordModel
	if err := r.DB.WithContext(ctx).
		Where("status = ?", status).
		Order("created_at ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.CommissionRecord, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = mappers.ToDomainCommissionRecord(&recordModel)
	}

	return records, nil
}

func (r *DefaultCommissionRepository) ListOnHoldRecords(ctx context.Context, criteria domain.HoldCriteria) ([]*domain.CommissionRecord, error) {
	query := r.DB.WithContext(ctx).
		Model(&models.CommissionRecordModel{}).
		Where("status = ?", domain.CommissionOnHold)

	if len(criteria.AccountIDs) > 0 {
		query = query.Where("beneficiary_account_id IN ?", criteria.AccountIDs)
	}
	if !criteria.CreatedBefore.IsZero() {
		query = query.Where("created_at < ?", criteria.CreatedBefore)
	}

	var recordModels []models.CommissionRecordModel
	if err := query.Order("created_at ASC").Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.CommissionRecord, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = mappers.ToDomainCommissionRecord(&recordModel)
	}

	return records, nil
}

func (r *DefaultCommissionRepository) GetRecordsByTransaction(ctx context.Context, transactionID string) ([]*domain.CommissionRecord, error) {
	var recordModels []models.CommissionRecordModel
	if err := r.DB.WithContext(ctx).
		Where("source_transaction_id = ?", transactionID).
		Order("level ASC").
		Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.CommissionRecord, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = mappers.ToDomainCommissionRecord(&recordModel)
	}

	return records, nil
}

func (r *DefaultCommissionRepository) CommissionHistory(ctx context.Context, accountID string, status *domain.CommissionStatus) ([]*domain.CommissionRecord, error) {
	query := r.DB.WithContext(ctx).
		Model(&models.CommissionRecordModel{}).
		Where("beneficiary_account_id = ?", accountID)

	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var recordModels []models.CommissionRecordModel
	if err := query.Order("created_at DESC").Find(&recordModels).Error; err != nil {
		return nil, err
	}

	records := make([]*domain.CommissionRecord, len(recordModels))
	for i, recordModel := range recordModels {
		records[i] = mappers.ToDomainCommissionRecord(&recordModel)
	}

	return records, nil
}

// DisburseRecord runs the check-credit-mark sequence for one record in
// a single transaction. The status flip is a compare-and-set, so two
// workers racing on the same record cannot both credit it, and the
// wallet entry is re-checked by reference so a retried crash between
// credit and mark cannot credit twice.
func (r *DefaultCommissionRepository) DisburseRecord(ctx context.Context, record *domain.CommissionRecord) error {
	now := time.Now()

	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CommissionRecordModel{}).
			Where("id = ? AND status IN ?", record.ID, []domain.CommissionStatus{
				domain.CommissionUnreleased,
				domain.CommissionOnHold,
			}).
			Updates(map[string]interface{}{
				"status":      domain.CommissionDisbursed,
				"released_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrRecordNotEligible
		}

		var existing int64
		if err := tx.Model(&models.WalletLedgerEntryModel{}).
			Where("reference = ?", record.ID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return nil
		}

		return tx.Create(&models.WalletLedgerEntryModel{
			ID:        uuid.New().String(),
			AccountID: record.BeneficiaryAccountID,
			Amount:    record.Amount,
			Reference: record.ID,
		}).Error
	})
}
