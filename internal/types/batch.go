package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Batch struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	BatchName          string         `gorm:"column:batch_name;not null" json:"batch_name"`
	ProductType        string         `gorm:"column:product_type" json:"product_type"`
	Quantity           string         `gorm:"column:quantity" json:"quantity"`
	HarvestDate        string         `gorm:"column:harvest_date" json:"harvest_date"`
	Location           string         `gorm:"column:location" json:"location"`
	PhotoURL           string         `gorm:"column:photo_url" json:"photo_url"`
	HCSTxID            string         `gorm:"column:hcs_tx_id" json:"hcs_tx_id"`
	HCSTransactionIDs  datatypes.JSON `gorm:"column:hcs_transaction_ids;type:jsonb" json:"hcs_transaction_ids"`
	HederaTokenID      *string        `gorm:"column:hedera_token_id;index" json:"hedera_token_id,omitempty"`
	HederaSerialNumber *string        `gorm:"column:hedera_serial_number" json:"hedera_serial_number,omitempty"`
	AIAnalysis         datatypes.JSON `gorm:"column:ai_analysis;type:jsonb" json:"ai_analysis"`
	TokenizedAt        *time.Time     `gorm:"column:tokenized_at" json:"tokenized_at,omitempty"`
	CreatedAt          time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (Batch) TableName() string { return "batches" }
