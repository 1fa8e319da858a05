package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainAccount(model *models.AccountModel) *domain.Account {
	return &domain.Account{
		ID:       model.ID,
		UplineID: model.UplineID,
		Rank:     model.Rank,
		Status:   model.Status,
	}
}

func ToDomainTransaction(model *models.TransactionModel) *domain.Transaction {
	return &domain.Transaction{
		ID:             model.ID,
		BuyerAccountID: model.BuyerAccountID,
		Amount:         model.Amount,
		Period:         model.Period,
		Processed:      model.Processed,
		CreatedAt:      model.CreatedAt,
	}
}
