package mappers

import (
	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
)

func ToDomainRankSetting(model *models.RankSettingModel) *domain.RankSetting {
	return &domain.RankSetting{
		Name:   model.Name,
		GVReq:  model.GVReq,
		PVReq:  model.PVReq,
		LegCap: model.LegCap,
		Meta: domain.RankMeta{
			MaxLevels:    model.MaxLevels,
			MinLevels:    model.MinLevels,
			GroupBonus:   model.GroupBonus,
			CompanyBonus: model.CompanyBonus,
		},
	}
}

func ToDomainRankAward(model *models.RankAwardModel) *domain.RankAward {
	return &domain.RankAward{
		ID:           model.ID,
		AccountID:    model.AccountID,
		Rank:         model.Rank,
		Period:       model.Period,
		GroupBonus:   model.GroupBonus,
		CompanyBonus: model.CompanyBonus,
		BonusPaid:    model.BonusPaid,
		CreatedAt:    model.CreatedAt,
	}
}

func ToGORMRankAward(award *domain.RankAward) *models.RankAwardModel {
	return &models.RankAwardModel{
		ID:           award.ID,
		AccountID:    award.AccountID,
		Rank:         award.Rank,
		Period:       award.Period,
		GroupBonus:   award.GroupBonus,
		CompanyBonus: award.CompanyBonus,
		BonusPaid:    award.BonusPaid,
	}
}
