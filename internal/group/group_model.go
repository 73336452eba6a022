package group

import (
	"github.com/BizDaniel/go2play/internal/user"
	"gorm.io/gorm"
)

// Group is a private circle of players. Private events are only visible to
// members of their owning group.
type Group struct {
	gorm.Model
	Name        string        `json:"name" gorm:"uniqueIndex;not null"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	OwnerID     uint          `json:"owner_id" gorm:"index;not null"`
	Owner       user.User     `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Members     []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

// GroupMember is one membership row. The owner always has a row.
type GroupMember struct {
	gorm.Model
	GroupID uint      `json:"group_id" gorm:"index;not null;uniqueIndex:idx_group_member_unique"`
	UserID  uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_group_member_unique"`
	User    user.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// HasMember reports whether uid is in the loaded member set.
func (g *Group) HasMember(uid uint) bool {
	for _, m := range g.Members {
		if m.UserID == uid {
			return true
		}
	}
	return false
}

type GroupInput struct {
	Name        string `json:"name" binding:"required,min=3,max=60"`
	Description string `json:"description,omitempty" binding:"omitempty,max=500"`
}

type InviteInput struct {
	UserID uint `json:"user_id" binding:"required"`
}
