package group

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrAlreadyMember = errors.New("user is already a group member")
	ErrNotMember     = errors.New("user is not a group member")
	ErrOwnerLeaving  = errors.New("the owner cannot leave their own group")
	ErrNotGroupOwner = errors.New("only the group owner may do this")
	ErrNameTaken     = errors.New("a group with this name already exists")
)

// GroupRepository handles group data operations
type GroupRepository interface {
	CreateGroup(g *Group) error
	GetGroupByID(id uint) (*Group, error)
	GetUserGroups(userID uint) ([]Group, error)
	AddMember(groupID, userID uint) error
	RemoveMember(groupID, userID uint) error
	IsMember(groupID, userID uint) (bool, error)
	DeleteGroup(groupID, requesterID uint) error
}

type GormGroupRepository struct {
	db *gorm.DB
}

func NewGormGroupRepository(db *gorm.DB) *GormGroupRepository {
	return &GormGroupRepository{db: db}
}

// CreateGroup inserts the group and the owner's membership row in one
// transaction so the owner-is-a-member invariant holds from the start.
func (r *GormGroupRepository) CreateGroup(g *Group) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Group{}).Where("name = ?", g.Name).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return ErrNameTaken
		}
		if err := tx.Create(g).Error; err != nil {
			return err
		}
		member := GroupMember{GroupID: g.ID, UserID: g.OwnerID}
		return tx.Create(&member).Error
	})
}

func (r *GormGroupRepository) GetGroupByID(id uint) (*Group, error) {
	var g Group
	err := r.db.
		Preload("Owner", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, avatar, level")
		}).
		Preload("Members.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, avatar, level")
		}).
		First(&g, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *GormGroupRepository) GetUserGroups(userID uint) ([]Group, error) {
	var ids []uint
	err := r.db.Model(&GroupMember{}).
		Where("user_id = ?", userID).
		Pluck("group_id", &ids).Error
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []Group{}, nil
	}

	var groups []Group
	err = r.db.
		Preload("Members.User", func(db *gorm.DB) *gorm.DB {
			return db.Select("id, username, avatar, level")
		}).
		Where("id IN ?", ids).
		Order("name ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func (r *GormGroupRepository) AddMember(groupID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var g Group
		if err := tx.First(&g, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}

		var count int64
		err := tx.Model(&GroupMember{}).
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyMember
		}

		member := GroupMember{GroupID: groupID, UserID: userID}
		return tx.Create(&member).Error
	})
}

func (r *GormGroupRepository) RemoveMember(groupID, userID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var g Group
		if err := tx.First(&g, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		if g.OwnerID == userID {
			return ErrOwnerLeaving
		}

		// Hard delete keeps the unique index usable on rejoin.
		result := tx.Unscoped().
			Where("group_id = ? AND user_id = ?", groupID, userID).
			Delete(&GroupMember{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotMember
		}
		return nil
	})
}

func (r *GormGroupRepository) IsMember(groupID, userID uint) (bool, error) {
	var count int64
	err := r.db.Model(&GroupMember{}).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormGroupRepository) DeleteGroup(groupID, requesterID uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var g Group
		if err := tx.First(&g, groupID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGroupNotFound
			}
			return err
		}
		if g.OwnerID != requesterID {
			return ErrNotGroupOwner
		}
		if err := tx.Where("group_id = ?", groupID).Delete(&GroupMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&g).Error
	})
}
