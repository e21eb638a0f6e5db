package modeling

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/graphledger-backend/internal/domain/user"
)

// Model is a named, owned graph. CurrentVersion points at the authoritative Version.VersionNumber
// and only advances in the same transaction that inserts that version.
type Model struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_model_owner_name,priority:1;column:owner_id" json:"owner_id"`
	Owner          *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"-"`
	Name           string    `gorm:"not null;uniqueIndex:idx_model_owner_name,priority:2;column:name" json:"name"`
	Description    string    `gorm:"column:description" json:"description"`
	CurrentVersion int       `gorm:"not null;default:1;column:current_version" json:"current_version"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Model) TableName() string { return "models" }

func (m *Model) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
