package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainCommissionRecord(model *models.CommissionRecordModel) *domain.CommissionRecord {
	return &domain.CommissionRecord{
		ID:                   model.ID,
		SourceTransactionID:  model.SourceTransactionID,
		BeneficiaryAccountID: model.BeneficiaryAccountID,
		Level:                model.Level,
		Amount:               model.Amount,
		Status:               model.Status,
		CreatedAt:            model.CreatedAt,
		ReleasedAt:           model.ReleasedAt,
	}
}

func ToGORMCommissionRecord(record *domain.CommissionRecord) *models.CommissionRecordModel {
	return &models.CommissionRecordModel{
		ID:                   record.ID,
		SourceTransactionID:  record.SourceTransactionID,
		BeneficiaryAccountID: record.BeneficiaryAccountID,
		Level:                record.Level,
		Amount:               record.Amount,
		Status:               record.Status,
		CreatedAt:            record.CreatedAt,
		ReleasedAt:           record.ReleasedAt,
	}
}

func ToDomainCommissionLevel(model *models.CommissionLevelModel) domain.CommissionLevel {
	return domain.CommissionLevel{
		Level:      model.Level,
		Percentage: model.Percentage,
	}
}
