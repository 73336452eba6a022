package field

import (
	"errors"

	"gorm.io/gorm"
)

// FieldRepository defines the interface for field data operations
type FieldRepository interface {
	CreateField(f *Field) error
	GetFieldByID(id uint) (*Field, error)
	GetAllFields(page, limit int, filters map[string]interface{}) ([]Field, int64, error)
}

type fieldRepository struct {
	db *gorm.DB
}

// NewFieldRepository creates a new instance of FieldRepository
func NewFieldRepository(db *gorm.DB) FieldRepository {
	return &fieldRepository{db: db}
}

func (r *fieldRepository) CreateField(f *Field) error {
	return r.db.Create(f).Error
}

func (r *fieldRepository) GetFieldByID(id uint) (*Field, error) {
	var f Field
	if err := r.db.First(&f, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &f, nil
}

func (r *fieldRepository) GetAllFields(page, limit int, filters map[string]interface{}) ([]Field, int64, error) {
	var fields []Field
	var total int64

	query := r.db.Model(&Field{})

	if surface, ok := filters["surface"]; ok {
		query = query.Where("surface = ?", surface)
	}
	if indoor, ok := filters["indoor"]; ok {
		query = query.Where("indoor = ?", indoor)
	}
	if maxPrice, ok := filters["max_price"]; ok {
		query = query.Where("price_per_person <= ?", maxPrice)
	}
	if name, ok := filters["name"]; ok {
		query = query.Where("name ILIKE ?", "%"+name.(string)+"%")
	}

	query.Count(&total)
	offset := (page - 1) * limit
	if err := query.Offset(offset).Limit(limit).Order("name asc").Find(&fields).Error; err != nil {
		return nil, 0, err
	}
	return fields, total, nil
}
