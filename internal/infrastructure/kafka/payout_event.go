package kafka

import (
	"encoding/json"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/domain"
)

const (
	PayoutTopic = "payout-intents"
	BonusTopic  = "rank-bonus-events"
)

// PayoutIntentEvent marks a commission record as ready for external
// settlement. The engine never talks to a payment gateway itself.
type PayoutIntentEvent struct {
	RecordID  string    `json:"record_id"`
	AccountID string    `json:"account_id"`
	Amount    string    `json:"amount"`
	Level     int       `json:"level"`
	BatchID   string    `json:"batch_id"`
	PaidAt    time.Time `json:"paid_at"`
}

type BonusEvent struct {
	AwardID      string    `json:"award_id"`
	AccountID    string    `json:"account_id"`
	Rank         string    `json:"rank"`
	GroupBonus   string    `json:"group_bonus"`
	CompanyBonus string    `json:"company_bonus"`
	Period       string    `json:"period"`
	PaidAt       time.Time `json:"paid_at"`
}

func (k *KafkaPublisher) PublishPayoutIntent(event PayoutIntentEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.Publish(PayoutTopic, domain.Message{Key: []byte(event.AccountID), Value: v})
}

func (k *KafkaPublisher) PublishBonus(event BonusEvent) error {
	v, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return k.Publish(BonusTopic, domain.Message{Key: []byte(event.AccountID), Value: v})
}
