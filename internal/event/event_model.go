package event

import (
	"time"

	"github.com/BizDaniel/go2play/internal/field"
	"github.com/BizDaniel/go2play/internal/user"
	"gorm.io/gorm"
)

type EventStatus string

const (
	StatusEventOpen      EventStatus = "open"
	StatusEventFull      EventStatus = "full"
	StatusEventCancelled EventStatus = "cancelled"
	StatusEventCompleted EventStatus = "completed"
)

// DateLayout is the storage format for match dates. Stored as text because
// legacy records may carry malformed values; parsing failures exclude the
// record from date-ordered views instead of failing the request.
const DateLayout = "2006-01-02"

// TimeLayout is the storage format for time-slot boundaries.
const TimeLayout = "15:04"

// Event represents a scheduled game at a field.
//
// Invariants: the player set never exceeds MaxPlayers; Status is "full" iff
// the set is at capacity (recomputed in the same transaction as any
// membership change); the organizer is always a player; cancelled and
// completed events are immutable to membership changes.
type Event struct {
	gorm.Model
	FieldID     uint        `json:"field_id" gorm:"index;not null"`
	Field       field.Field `json:"field,omitempty" gorm:"foreignKey:FieldID"`
	OrganizerID uint        `json:"organizer_id" gorm:"index;not null"`
	Organizer   user.User   `json:"organizer,omitempty" gorm:"foreignKey:OrganizerID"`

	MatchDate string `json:"match_date" gorm:"index;not null"` // YYYY-MM-DD
	StartTime string `json:"start_time"`                       // HH:MM
	EndTime   string `json:"end_time"`                         // HH:MM

	Status      EventStatus   `json:"status" gorm:"index;not null;default:'open'"`
	MaxPlayers  int           `json:"max_players" gorm:"not null"`
	Players     []EventPlayer `json:"players,omitempty" gorm:"foreignKey:EventID"`
	Description string        `json:"description,omitempty" gorm:"type:text"`
	Public      bool          `json:"is_public" gorm:"default:true"`
	GroupID     *uint         `json:"group_id,omitempty" gorm:"index"`
}

// EventPlayer is one membership row in an event's player set.
type EventPlayer struct {
	gorm.Model
	EventID uint      `json:"event_id" gorm:"index;not null;uniqueIndex:idx_event_player_unique"`
	UserID  uint      `json:"user_id" gorm:"index;not null;uniqueIndex:idx_event_player_unique"`
	User    user.User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

// HasPlayer reports whether uid is in the loaded player set.
func (e *Event) HasPlayer(uid uint) bool {
	for _, p := range e.Players {
		if p.UserID == uid {
			return true
		}
	}
	return false
}

// VisibleTo reports whether uid may see the event. Public events are visible
// to everyone; private events only to their organizer, their players, and
// members of the owning group. groupMember is the caller's membership in
// e.GroupID, resolved by whoever loaded the event.
func (e *Event) VisibleTo(uid uint, groupMember bool) bool {
	if e.Public {
		return true
	}
	if e.OrganizerID == uid || e.HasPlayer(uid) {
		return true
	}
	return e.GroupID != nil && groupMember
}

// AtCapacity reports whether the loaded player set is at MaxPlayers.
func (e *Event) AtCapacity() bool {
	return len(e.Players) >= e.MaxPlayers
}

// PlayerIDs returns the user IDs of the loaded player set.
func (e *Event) PlayerIDs() []uint {
	ids := make([]uint, 0, len(e.Players))
	for _, p := range e.Players {
		ids = append(ids, p.UserID)
	}
	return ids
}

// Date parses the stored match date. The boolean is false for malformed
// values.
func (e *Event) Date() (time.Time, bool) {
	t, err := time.Parse(DateLayout, e.MatchDate)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

type EventInput struct {
	FieldID     uint   `json:"field_id" binding:"required"`
	MatchDate   string `json:"match_date" binding:"required,datetime=2006-01-02"`
	StartTime   string `json:"start_time" binding:"required,datetime=15:04"`
	EndTime     string `json:"end_time" binding:"required,datetime=15:04"`
	MaxPlayers  int    `json:"max_players" binding:"required,gt=1"`
	Description string `json:"description,omitempty"`
	Public      *bool  `json:"is_public,omitempty"`
	GroupID     *uint  `json:"group_id,omitempty"`
}

type EventUpdateInput struct {
	MatchDate   *string `json:"match_date,omitempty" binding:"omitempty,datetime=2006-01-02"`
	StartTime   *string `json:"start_time,omitempty" binding:"omitempty,datetime=15:04"`
	EndTime     *string `json:"end_time,omitempty" binding:"omitempty,datetime=15:04"`
	MaxPlayers  *int    `json:"max_players,omitempty" binding:"omitempty,gt=1"`
	Description *string `json:"description,omitempty"`
	Public      *bool   `json:"is_public,omitempty"`
}

type InviteInput struct {
	UserID uint `json:"user_id" binding:"required"`
}

type PaginationInput struct {
	Page  int `form:"page,default=1" binding:"gte=1"`
	Limit int `form:"limit,default=10" binding:"gte=1,lte=100"`
}
