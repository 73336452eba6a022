package review

import (
	"github.com/BizDaniel/go2play/internal/user"
	"gorm.io/gorm"
)

// Review is a post-match peer rating. One review per (reviewer, reviewed,
// event) triple, enforced by a composite unique index.
type Review struct {
	gorm.Model
	ReviewerID uint      `json:"reviewer_id" gorm:"index;not null;uniqueIndex:idx_review_unique"`
	Reviewer   user.User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerID"`
	ReviewedID uint      `json:"reviewed_id" gorm:"index;not null;uniqueIndex:idx_review_unique"`
	Reviewed   user.User `json:"reviewed,omitempty" gorm:"foreignKey:ReviewedID"`
	EventID    uint      `json:"event_id" gorm:"index;not null;uniqueIndex:idx_review_unique"`

	Sportsmanship int    `json:"sportsmanship" gorm:"not null"`
	Punctuality   int    `json:"punctuality" gorm:"not null"`
	Reliability   int    `json:"reliability" gorm:"not null"`
	Comment       string `json:"comment,omitempty" gorm:"type:text"`
}

type ReviewInput struct {
	ReviewedID    uint   `json:"reviewed_id" binding:"required"`
	EventID       uint   `json:"event_id" binding:"required"`
	Sportsmanship int    `json:"sportsmanship" binding:"required,gte=1,lte=5"`
	Punctuality   int    `json:"punctuality" binding:"required,gte=1,lte=5"`
	Reliability   int    `json:"reliability" binding:"required,gte=1,lte=5"`
	Comment       string `json:"comment,omitempty" binding:"omitempty,max=500"`
}

// RatingSummary aggregates a user's received ratings.
type RatingSummary struct {
	ReviewCount      int64   `json:"review_count"`
	AvgSportsmanship float64 `json:"avg_sportsmanship"`
	AvgPunctuality   float64 `json:"avg_punctuality"`
	AvgReliability   float64 `json:"avg_reliability"`
}
