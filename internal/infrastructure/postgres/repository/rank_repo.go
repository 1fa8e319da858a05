package repository

import (
	"context"
	"errors"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/mappers"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DefaultRankSettingRepository struct {
	DB *gorm.DB
}

func NewDefaultRankSettingRepository(db *gorm.DB) *DefaultRankSettingRepository {
	return &DefaultRankSettingRepository{DB: db}
}

func (r *DefaultRankSettingRepository) RanksOrderedByRequirement(ctx context.Context) ([]*domain.RankSetting, error) {
	var settingModels []models.RankSettingModel
	if err := r.DB.WithContext(ctx).
		Order("gv_req ASC").
		Find(&settingModels).Error; err != nil {
		return nil, err
	}

	settings := make([]*domain.RankSetting, len(settingModels))
	for i, settingModel := range settingModels {
		settings[i] = mappers.ToDomainRankSetting(&settingModel)
	}

	return settings, nil
}

func (r *DefaultRankSettingRepository) GetRankByName(ctx context.Context, name domain.RankName) (*domain.RankSetting, error) {
	var settingModel models.RankSettingModel
	if err := r.DB.WithContext(ctx).First(&settingModel, "name = ?", name).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return mappers.ToDomainRankSetting(&settingModel), nil
}

type DefaultRankAwardRepository struct {
	DB *gorm.DB
}

func NewDefaultRankAwardRepository(db *gorm.DB) *DefaultRankAwardRepository {
	return &DefaultRankAwardRepository{DB: db}
}

// CreateAward relies on the unique (account, rank, period) index: a
// conflicting insert writes nothing, which is how re-evaluation stays
// a no-op.
func (r *DefaultRankAwardRepository) CreateAward(ctx context.Context, award *domain.RankAward) (bool, error) {
	res := r.DB.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}, {Name: "rank"}, {Name: "period"}},
			DoNothing: true,
		}).
		Create(mappers.ToGORMRankAward(award))
	if res.Error != nil {
		return false, res.Error
	}

	return res.RowsAffected > 0, nil
}

func (r *DefaultRankAwardRepository) GetAwardByID(ctx context.Context, awardID string) (*domain.RankAward, error) {
	var awardModel models.RankAwardModel
	if err := r.DB.WithContext(ctx).First(&awardModel, "id = ?", awardID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAwardNotFound
		}
		return nil, err
	}

	return mappers.ToDomainRankAward(&awardModel), nil
}

func (r *DefaultRankAwardRepository) ListUnpaidAwards(ctx context.Context, rank domain.RankName, period domain.Period) ([]*domain.RankAward, error) {
	var awardModels []models.RankAwardModel
	if err := r.DB.WithContext(ctx).
		Where("rank = ? AND period = ? AND bonus_paid = false", rank, period).
		Find(&awardModels).Error; err != nil {
		return nil, err
	}

	awards := make([]*domain.RankAward, len(awardModels))
	for i, awardModel := range awardModels {
		awards[i] = mappers.ToDomainRankAward(&awardModel)
	}

	return awards, nil
}

// PayAwardBonus credits group+company bonus and marks the award paid in
// one transaction. The bonus_paid flip is a compare-and-set and the
// ledger entry is keyed by the award reference, mirroring commission
// disbursement.
func (r *DefaultRankAwardRepository) PayAwardBonus(ctx context.Context, awardID string) (*domain.RankAward, error) {
	var award *domain.RankAward

	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var awardModel models.RankAwardModel
		if err := tx.First(&awardModel, "id = ?", awardID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrAwardNotFound
			}
			return err
		}

		res := tx.Model(&models.RankAwardModel{}).
			Where("id = ? AND bonus_paid = false", awardID).
			Update("bonus_paid", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrBonusAlreadyPaid
		}

		reference := "bonus:" + awardID
		var existing int64
		if err := tx.Model(&models.WalletLedgerEntryModel{}).
			Where("reference = ?", reference).
			Count(&existing).Error; err != nil {
			return err
		}

		if existing == 0 {
			total := awardModel.GroupBonus.Add(awardModel.CompanyBonus)
			if err := tx.Create(&models.WalletLedgerEntryModel{
				ID:        uuid.New().String(),
				AccountID: awardModel.AccountID,
				Amount:    total,
				Reference: reference,
			}).Error; err != nil {
				return err
			}
		}

		awardModel.BonusPaid = true
		award = mappers.ToDomainRankAward(&awardModel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return award, nil
}
