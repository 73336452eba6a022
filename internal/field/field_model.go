package field

import (
	"github.com/BizDaniel/go2play/internal/models"
	"gorm.io/gorm"
)

type SurfaceType string

const (
	SurfaceGrass     SurfaceType = "grass"
	SurfaceTurf      SurfaceType = "turf"
	SurfaceClay      SurfaceType = "clay"
	SurfaceHardcourt SurfaceType = "hardcourt"
	SurfaceParquet   SurfaceType = "parquet"
)

// Field is a static venue descriptor. Read and cached by clients, never
// mutated through the public API.
type Field struct {
	gorm.Model
	Name           string             `gorm:"not null;unique" json:"name"`
	Address        string             `gorm:"not null" json:"address"`
	Surface        SurfaceType        `gorm:"index;not null;default:'turf'" json:"surface"`
	Capacity       int                `gorm:"not null" json:"capacity"`
	Indoor         bool               `gorm:"default:false" json:"indoor"`
	PricePerPerson float64            `json:"price_per_person"`
	Description    string             `gorm:"type:text" json:"description,omitempty"`
	ImageURL       string             `json:"image_url,omitempty"`
	Coordinates    models.Coordinates `gorm:"type:jsonb" json:"coordinates"`
}

type FieldInput struct {
	Name           string             `json:"name" binding:"required"`
	Address        string             `json:"address" binding:"required"`
	Surface        SurfaceType        `json:"surface" binding:"required,oneof=grass turf clay hardcourt parquet"`
	Capacity       int                `json:"capacity" binding:"required,gt=0"`
	Indoor         bool               `json:"indoor"`
	PricePerPerson float64            `json:"price_per_person" binding:"gte=0"`
	Description    string             `json:"description,omitempty"`
	ImageURL       string             `json:"image_url,omitempty"`
	Coordinates    models.Coordinates `json:"coordinates"`
}

type PaginationInput struct {
	Page  int `form:"page,default=1" binding:"gte=1"`
	Limit int `form:"limit,default=10" binding:"gte=1,lte=100"`
}
