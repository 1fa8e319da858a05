package postgres

import (
	"log"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	"github.com/LavaJover/shvark-referral-service/internal/infrastructure/postgres/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func MustInitDB(cfg *config.ReferralConfig) *gorm.DB {
	dsn := cfg.ReferralDB.Dsn
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("failed to init db: %v\n", err.Error())
	}

	db.AutoMigrate(
		&models.AccountModel{},
		&models.TransactionModel{},
		&models.CommissionLevelModel{},
		&models.RankSettingModel{},
		&models.CommissionRecordModel{},
		&models.RankAwardModel{},
		&models.WalletLedgerEntryModel{},
		&models.JobModel{},
	)

	return db
}
