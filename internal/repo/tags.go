package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/utils"
)

// ListTags returns all tags ordered by name. A non-empty prefix keeps only
// tags whose name starts with it, ignoring case.
func ListTags(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Tag, error) {
	q := db.WithContext(ctx).Model(&domain.Tag{})
	if p := utils.Fold(prefix); p != "" {
		q = q.Where(`search_name LIKE ? ESCAPE '\'`, utils.LikePrefix(p))
	}
	var out []domain.Tag
	if err := q.Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetTag loads a tag by id.
func GetTag(ctx context.Context, db *gorm.DB, id uint) (*domain.Tag, error) {
	var t domain.Tag
	if err := db.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// CreateTag inserts t; a taken name or slug yields ErrDuplicate.
func CreateTag(ctx context.Context, db *gorm.DB, t *domain.Tag) error {
	if err := db.WithContext(ctx).Create(t).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SaveTag writes every column of an existing tag.
func SaveTag(ctx context.Context, db *gorm.DB, t *domain.Tag) error {
	if err := db.WithContext(ctx).Save(t).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteTag removes a tag and its recipe links. It returns ErrNotFound when
// the id matches nothing.
func DeleteTag(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("tag_id = ?", id).Delete(&domain.RecipeTag{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Tag{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// TagsByIDs loads the tags with the given ids, ordered by name.
func TagsByIDs(ctx context.Context, db *gorm.DB, ids []uint) ([]domain.Tag, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []domain.Tag
	if err := db.WithContext(ctx).Where("id IN ?", ids).Order("name ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
