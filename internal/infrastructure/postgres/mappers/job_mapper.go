package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainJob(model *models.JobModel) *domain.Job {
	return &domain.Job{
		ID:           model.ID,
		Lane:         model.Lane,
		Type:         model.Type,
		Payload:      model.Payload,
		AttemptCount: model.AttemptCount,
		Status:       model.Status,
		RunAt:        model.RunAt,
		LastError:    model.LastError,
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func ToGORMJob(job *domain.Job) *models.JobModel {
	return &models.JobModel{
		ID:           job.ID,
		Lane:         job.Lane,
		Type:         job.Type,
		Payload:      job.Payload,
		AttemptCount: job.AttemptCount,
		Status:       job.Status,
		RunAt:        job.RunAt,
		LastError:    job.LastError,
	}
}

func ToDomainWalletEntry(model *models.WalletLedgerEntryModel) *domain.WalletLedgerEntry {
	return &domain.WalletLedgerEntry{
		ID:        model.ID,
		AccountID: model.AccountID,
		Amount:    model.Amount,
		Reference: model.Reference,
		CreatedAt: model.CreatedAt,
	}
}
