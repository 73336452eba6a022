package user

import (
	"time"

	"github.com/BizDaniel/go2play/internal/models"
	"gorm.io/gorm"
)

// User is a Go2Play player profile. Mutated by the profile owner only.
type User struct {
	gorm.Model
	Username       string             `gorm:"unique;not null" json:"username"`
	Email          string             `gorm:"unique;not null" json:"email"`
	Password       string             `json:"-"`
	Age            *int               `json:"age,omitempty"`
	Level          string             `json:"level,omitempty"`
	PreferredRoles models.StringSlice `gorm:"type:jsonb" json:"preferred_roles,omitempty"`
	Avatar         string             `json:"avatar,omitempty"`
	LastActive     time.Time          `json:"last_active"`
}

// RefreshToken stores an issued refresh token so sessions can be revoked.
type RefreshToken struct {
	gorm.Model
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Token     string    `gorm:"uniqueIndex;not null" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Revoked   bool      `gorm:"default:false" json:"revoked"`
}
