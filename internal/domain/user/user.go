package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

type User struct {
	ID       uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Email    string          `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password string          `gorm:"not null;column:password" json:"-"`
	Role     string          `gorm:"not null;default:user;column:role" json:"role"`
	Tokens   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0;check:chk_users_tokens_nonneg,tokens >= 0;column:tokens" json:"tokens"`

	CreatedAt time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.Role == "" {
		u.Role = RoleUser
	}
	return nil
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }
