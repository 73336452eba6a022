package notification

import (
	"github.com/BizDaniel/go2play/internal/user"
	"gorm.io/gorm"
)

type NotificationType string

const (
	TypeInvite    NotificationType = "invite"
	TypeUpdate    NotificationType = "update"
	TypeCancelled NotificationType = "cancelled"
	TypeGroup     NotificationType = "group"
)

type NotificationStatus string

const (
	StatusNotifPending  NotificationStatus = "pending"
	StatusNotifAccepted NotificationStatus = "accepted"
	StatusNotifDeclined NotificationStatus = "declined"
	StatusNotifRead     NotificationStatus = "read"
)

// Notification is a message delivered to a single user. EventID is a plain
// reference rather than an association so that notifications survive event
// deletion and the package stays free of event imports.
type Notification struct {
	gorm.Model
	RecipientID uint               `json:"recipient_id" gorm:"index;not null"`
	Recipient   user.User          `json:"-" gorm:"foreignKey:RecipientID"`
	SenderID    *uint              `json:"sender_id,omitempty" gorm:"index"`
	EventID     uint               `json:"event_id,omitempty" gorm:"index"`
	GroupID     *uint              `json:"group_id,omitempty" gorm:"index"`
	Type        NotificationType   `json:"type" gorm:"not null"`
	Status      NotificationStatus `json:"status" gorm:"index;not null;default:'pending'"`
	Message     string             `json:"message" gorm:"type:text"`
}

// Actionable reports whether the notification still awaits a user decision.
func (n *Notification) Actionable() bool {
	return n.Status == StatusNotifPending && (n.Type == TypeInvite || n.Type == TypeGroup)
}

type RespondInput struct {
	Accept bool `json:"accept"`
}
