package notification

import (
	"errors"

	"gorm.io/gorm"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationRepository handles notification data operations
type NotificationRepository interface {
	CreateNotification(n *Notification) error
	GetNotificationByID(id uint) (*Notification, error)
	GetUserNotifications(userID uint, page, limit int) ([]Notification, int64, error)
	UpdateStatus(id uint, status NotificationStatus) error
	MarkAllRead(userID uint) error
	DeleteNotification(id uint) error
}

type GormNotificationRepository struct {
	db *gorm.DB
}

func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

func (r *GormNotificationRepository) CreateNotification(n *Notification) error {
	return r.db.Create(n).Error
}

func (r *GormNotificationRepository) GetNotificationByID(id uint) (*Notification, error) {
	var n Notification
	err := r.db.First(&n, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &n, nil
}

func (r *GormNotificationRepository) GetUserNotifications(userID uint, page, limit int) ([]Notification, int64, error) {
	var notifications []Notification
	var total int64

	query := r.db.Model(&Notification{}).Where("recipient_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

func (r *GormNotificationRepository) UpdateStatus(id uint, status NotificationStatus) error {
	result := r.db.Model(&Notification{}).Where("id = ?", id).Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *GormNotificationRepository) MarkAllRead(userID uint) error {
	return r.db.Model(&Notification{}).
		Where("recipient_id = ? AND status = ?", userID, StatusNotifPending).
		Where("type IN ?", []NotificationType{TypeUpdate, TypeCancelled}).
		Update("status", StatusNotifRead).Error
}

func (r *GormNotificationRepository) DeleteNotification(id uint) error {
	result := r.db.Delete(&Notification{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
