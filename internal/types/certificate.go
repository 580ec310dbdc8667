package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Certificate is the minted NFT record for a batch. Identity is the
// (token_id, serial_number) pair; rows are created once at tokenization and
// never mutated.
type Certificate struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TokenID      string         `gorm:"column:token_id;not null;uniqueIndex:idx_tokens_token_serial" json:"token_id"`
	SerialNumber string         `gorm:"column:serial_number;not null;uniqueIndex:idx_tokens_token_serial" json:"serial_number"`
	HCSTxIDs     datatypes.JSON `gorm:"column:hcs_tx_ids;type:jsonb" json:"hcs_tx_ids"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (Certificate) TableName() string { return "tokens" }
