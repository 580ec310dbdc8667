package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// VerificationRecord caches the full verification trace per certificate.
// At most one live row per (token_id, serial_number); writes are upserts
// with last-write-wins semantics.
type VerificationRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TokenID      string         `gorm:"column:token_id;not null;uniqueIndex:idx_verifications_token_serial" json:"token_id"`
	SerialNumber string         `gorm:"column:serial_number;not null;uniqueIndex:idx_verifications_token_serial" json:"serial_number"`
	Trace        datatypes.JSON `gorm:"column:trace;type:jsonb" json:"trace"`
	CreatedAt    time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null;default:now()" json:"updated_at"`
}

func (VerificationRecord) TableName() string { return "verifications" }
