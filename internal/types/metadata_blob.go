package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// MetadataBlob is the off-ledger side of compact NFT metadata: the on-ledger
// bytes carry only a hash, the full structured metadata lives here keyed by
// that hash.
type MetadataBlob struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Hash      string         `gorm:"column:hash;not null;uniqueIndex" json:"hash"`
	Payload   datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload"`
	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (MetadataBlob) TableName() string { return "metadata_blobs" }
