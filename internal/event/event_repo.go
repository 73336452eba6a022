package event

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Domain errors surfaced by the repository. Controllers and the feed machine
// map these to user-visible outcomes instead of raw database failures.
var (
	ErrEventNotFound     = errors.New("event not found")
	ErrCapacityExceeded  = errors.New("event is at maximum player capacity")
	ErrAlreadyMember     = errors.New("user is already a player in this event")
	ErrNotMember         = errors.New("user is not a player in this event")
	ErrEventClosed       = errors.New("event is cancelled or completed")
	ErrPermissionDenied  = errors.New("operation not permitted for this user")
	ErrCapacityBelowSize = errors.New("max players cannot drop below current player count")
)

// EventRepository defines methods to interact with event data.
//
// AddPlayer and RemovePlayer are guarded conditional mutations: the read of
// the current player set and the write happen inside one transaction holding
// a row lock on the event, bounding the race between concurrent joiners.
type EventRepository interface {
	CreateEvent(e *Event) error
	GetEventByID(id uint) (*Event, error)
	GetEvents(filters map[string]interface{}, page, pageSize int) ([]Event, int64, error)
	GetEventsByFieldAndDateRange(ctx context.Context, fieldID uint, startDate, endDate string) ([]Event, error)
	SearchEvents(ctx context.Context, query string) ([]Event, error)
	GetUserEvents(userID uint, status string, page, pageSize int) ([]Event, int64, error)
	UpdateEvent(e *Event) error

	AddPlayer(ctx context.Context, eventID, userID uint) error
	RemovePlayer(ctx context.Context, eventID, userID uint) error

	CancelEvent(eventID, requesterID uint) error
	CompleteElapsedEvents() (int64, error)
}

// GormEventRepository implements EventRepository using GORM
type GormEventRepository struct {
	db *gorm.DB
}

// NewGormEventRepository creates a new GormEventRepository
func NewGormEventRepository(db *gorm.DB) *GormEventRepository {
	return &GormEventRepository{db: db}
}

// CreateEvent inserts the event and its organizer membership row in one
// transaction, so the organizer-is-always-a-player invariant holds from the
// moment the event exists.
func (r *GormEventRepository) CreateEvent(e *Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if e.MaxPlayers < 1 {
			return ErrCapacityBelowSize
		}
		if err := tx.Create(e).Error; err != nil {
			return err
		}
		organizer := EventPlayer{EventID: e.ID, UserID: e.OrganizerID}
		if err := tx.Create(&organizer).Error; err != nil {
			return err
		}
		e.Players = append(e.Players, organizer)
		return nil
	})
}

// GetEventByID retrieves an event with its field, organizer and players.
func (r *GormEventRepository) GetEventByID(id uint) (*Event, error) {
	var e Event
	result := r.db.Preload("Field").
		Preload("Organizer", func(db *gorm.DB) *gorm.DB {
			return db.Select("ID, Username, Avatar, Level")
		}).
		Preload("Players").
		Preload("Players.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("ID, Username, Avatar, Level")
		}).
		First(&e, id)

	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return &e, nil
}

// GetEvents retrieves events based on filters with pagination
func (r *GormEventRepository) GetEvents(filters map[string]interface{}, page, pageSize int) ([]Event, int64, error) {
	var events []Event
	var total int64

	query := r.db.Model(&Event{})

	if fieldID, ok := filters["field_id"]; ok {
		query = query.Where("field_id = ?", fieldID)
	}
	if status, ok := filters["status"]; ok {
		query = query.Where("status = ?", status)
	}
	if groupID, ok := filters["group_id"]; ok {
		query = query.Where("group_id = ?", groupID)
	}
	if public, ok := filters["is_public"]; ok {
		query = query.Where("public = ?", public)
	}
	// visible_to restricts the listing to events the given user may see:
	// public ones, their own, and private ones owned by a group they belong
	// to or that they already play in.
	if viewerID, ok := filters["visible_to"]; ok {
		memberGroups := r.db.Table("group_members").
			Select("group_id").
			Where("user_id = ? AND deleted_at IS NULL", viewerID)
		playedEvents := r.db.Table("event_players").
			Select("event_id").
			Where("user_id = ? AND deleted_at IS NULL", viewerID)
		query = query.Where(
			"public = ? OR organizer_id = ? OR group_id IN (?) OR id IN (?)",
			true, viewerID, memberGroups, playedEvents)
	}
	if from, ok := filters["from_date"]; ok {
		query = query.Where("match_date >= ?", from)
	}
	if to, ok := filters["to_date"]; ok {
		query = query.Where("match_date <= ?", to)
	}

	err := query.Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	result := query.Preload("Field").
		Preload("Organizer", func(db *gorm.DB) *gorm.DB {
			return db.Select("ID, Username, Avatar, Level")
		}).
		Preload("Players").
		Order("match_date asc, start_time asc").
		Offset(offset).Limit(pageSize).
		Find(&events)

	if result.Error != nil {
		return nil, 0, result.Error
	}

	return events, total, nil
}

// GetEventsByFieldAndDateRange retrieves all events for a field inside an
// inclusive date range. ISO dates compare correctly as strings.
func (r *GormEventRepository) GetEventsByFieldAndDateRange(ctx context.Context, fieldID uint, startDate, endDate string) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("field_id = ? AND match_date >= ? AND match_date <= ?", fieldID, startDate, endDate).
		Preload("Field").
		Preload("Players").
		Order("match_date asc, start_time asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// SearchEvents retrieves public, non-closed events whose description or field
// name matches the query. An empty query returns the full browsable set.
func (r *GormEventRepository) SearchEvents(ctx context.Context, query string) ([]Event, error) {
	var events []Event
	q := r.db.WithContext(ctx).Model(&Event{}).
		Joins("JOIN fields ON fields.id = events.field_id").
		Where("events.public = ? AND events.status NOT IN ?", true,
			[]EventStatus{StatusEventCancelled, StatusEventCompleted})

	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("events.description ILIKE ? OR fields.name ILIKE ?", pattern, pattern)
	}

	err := q.Preload("Field").
		Preload("Players").
		Order("events.match_date asc, events.start_time asc").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

// GetUserEvents retrieves events where the user is a player or the organizer.
func (r *GormEventRepository) GetUserEvents(userID uint, status string, page, pageSize int) ([]Event, int64, error) {
	query := r.db.Model(&Event{}).
		Joins("LEFT JOIN event_players ON event_players.event_id = events.id AND event_players.deleted_at IS NULL").
		Where("events.organizer_id = ? OR event_players.user_id = ?", userID, userID)

	if status != "" {
		query = query.Where("events.status = ?", status)
	}

	var total int64
	err := query.Distinct("events.id").Count(&total).Error
	if err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	var eventIDs []uint
	err = query.Distinct("events.id").
		Offset(offset).Limit(pageSize).
		Pluck("events.id", &eventIDs).Error
	if err != nil {
		return nil, 0, err
	}

	var events []Event
	if len(eventIDs) > 0 {
		err = r.db.Preload("Field").
			Preload("Organizer", func(db *gorm.DB) *gorm.DB {
				return db.Select("ID, Username, Avatar, Level")
			}).
			Preload("Players").
			Where("id IN ?", eventIDs).
			Order("match_date asc, start_time asc").
			Find(&events).Error
		if err != nil {
			return nil, 0, err
		}
	}

	return events, total, nil
}

// UpdateEvent saves organizer edits. Capacity may not drop below the current
// player count.
func (r *GormEventRepository) UpdateEvent(e *Event) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&EventPlayer{}).Where("event_id = ?", e.ID).Count(&count).Error; err != nil {
			return err
		}
		if int64(e.MaxPlayers) < count {
			return ErrCapacityBelowSize
		}
		if count >= int64(e.MaxPlayers) && e.Status == StatusEventOpen {
			e.Status = StatusEventFull
		}
		if count < int64(e.MaxPlayers) && e.Status == StatusEventFull {
			e.Status = StatusEventOpen
		}
		return tx.Save(e).Error
	})
}

// AddPlayer adds a user to an event's player set.
//
// The event row is locked FOR UPDATE for the duration of the transaction, so
// the capacity read and the membership insert are atomic with respect to
// concurrent joiners on this backend. Duplicate joins fail with
// ErrAlreadyMember rather than succeeding silently.
func (r *GormEventRepository) AddPlayer(ctx context.Context, eventID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if e.Status == StatusEventCancelled || e.Status == StatusEventCompleted {
			return ErrEventClosed
		}

		var existing int64
		if err := tx.Model(&EventPlayer{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		var count int64
		if err := tx.Model(&EventPlayer{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(e.MaxPlayers) {
			return ErrCapacityExceeded
		}

		if err := tx.Create(&EventPlayer{EventID: eventID, UserID: userID}).Error; err != nil {
			return err
		}

		status := StatusEventOpen
		if count+1 >= int64(e.MaxPlayers) {
			status = StatusEventFull
		}
		return tx.Model(&Event{}).Where("id = ?", eventID).Update("status", status).Error
	})
}

// RemovePlayer removes a user from an event's player set. The organizer can
// never be removed; cancelled/completed events are immutable.
func (r *GormEventRepository) RemovePlayer(ctx context.Context, eventID, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}

		if e.Status == StatusEventCancelled || e.Status == StatusEventCompleted {
			return ErrEventClosed
		}
		if e.OrganizerID == userID {
			return ErrPermissionDenied
		}

		result := tx.Unscoped().
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&EventPlayer{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotMember
		}

		var count int64
		if err := tx.Model(&EventPlayer{}).Where("event_id = ?", eventID).Count(&count).Error; err != nil {
			return err
		}
		status := StatusEventOpen
		if count >= int64(e.MaxPlayers) {
			status = StatusEventFull
		}
		return tx.Model(&Event{}).Where("id = ?", eventID).Update("status", status).Error
	})
}

// CancelEvent marks an event cancelled. Only the organizer may cancel, and
// cancellation is the deletion path: records are never physically removed.
func (r *GormEventRepository) CancelEvent(eventID, requesterID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var e Event
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&e, eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrEventNotFound
			}
			return err
		}
		if e.OrganizerID != requesterID {
			return ErrPermissionDenied
		}
		if e.Status == StatusEventCancelled || e.Status == StatusEventCompleted {
			return ErrEventClosed
		}
		return tx.Model(&Event{}).Where("id = ?", eventID).
			Update("status", StatusEventCancelled).Error
	})
}

// CompleteElapsedEvents marks open/full events whose date has passed as
// completed. Run periodically or from the admin surface.
func (r *GormEventRepository) CompleteElapsedEvents() (int64, error) {
	today := time.Now().Format(DateLayout)
	result := r.db.Model(&Event{}).
		Where("match_date < ? AND status IN ?", today,
			[]EventStatus{StatusEventOpen, StatusEventFull}).
		Update("status", StatusEventCompleted)
	return result.RowsAffected, result.Error
}
