package review

import (
	"errors"

	"gorm.io/gorm"
)

var ErrDuplicateReview = errors.New("review already exists for this pair and event")

// ReviewRepository handles review data operations
type ReviewRepository interface {
	CreateReview(r *Review) error
	GetReviewsForEvent(eventID uint) ([]Review, error)
	GetReviewsByReviewer(reviewerID uint) ([]Review, error)
	GetReviewsForUser(reviewedID uint, page, limit int) ([]Review, int64, error)
	GetRatingSummary(userID uint) (*RatingSummary, error)
}

type GormReviewRepository struct {
	db *gorm.DB
}

func NewGormReviewRepository(db *gorm.DB) *GormReviewRepository {
	return &GormReviewRepository{db: db}
}

func (r *GormReviewRepository) CreateReview(review *Review) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&Review{}).
			Where("reviewer_id = ? AND reviewed_id = ? AND event_id = ?",
				review.ReviewerID, review.ReviewedID, review.EventID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrDuplicateReview
		}
		return tx.Create(review).Error
	})
}

func (r *GormReviewRepository) GetReviewsForEvent(eventID uint) ([]Review, error) {
	var reviews []Review
	err := r.db.Where("event_id = ?", eventID).Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormReviewRepository) GetReviewsByReviewer(reviewerID uint) ([]Review, error) {
	var reviews []Review
	err := r.db.Where("reviewer_id = ?", reviewerID).Find(&reviews).Error
	if err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *GormReviewRepository) GetReviewsForUser(reviewedID uint, page, limit int) ([]Review, int64, error) {
	var reviews []Review
	var total int64

	query := r.db.Model(&Review{}).Where("reviewed_id = ?", reviewedID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.
		Preload("Reviewer", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, avatar, level")
		}).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reviews).Error
	if err != nil {
		return nil, 0, err
	}
	return reviews, total, nil
}

func (r *GormReviewRepository) GetRatingSummary(userID uint) (*RatingSummary, error) {
	var summary RatingSummary
	err := r.db.Model(&Review{}).
		Select("COUNT(*) AS review_count, "+
			"COALESCE(AVG(sportsmanship), 0) AS avg_sportsmanship, "+
			"COALESCE(AVG(punctuality), 0) AS avg_punctuality, "+
			"COALESCE(AVG(reliability), 0) AS avg_reliability").
		Where("reviewed_id = ?", userID).
		Scan(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
