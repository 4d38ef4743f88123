package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/utils"
)

// ListIngredients returns catalog entries ordered by name. A non-empty
// prefix filters by case-insensitive name prefix.
func ListIngredients(ctx context.Context, db *gorm.DB, prefix string) ([]domain.Ingredient, error) {
	q := db.WithContext(ctx).Model(&domain.Ingredient{})
	if p := utils.Fold(prefix); p != "" {
		q = q.Where(`search_name LIKE ? ESCAPE '\'`, utils.LikePrefix(p))
	}
	var out []domain.Ingredient
	if err := q.Order("name ASC").Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// GetIngredient loads an ingredient by id.
func GetIngredient(ctx context.Context, db *gorm.DB, id uint) (*domain.Ingredient, error) {
	var in domain.Ingredient
	if err := db.WithContext(ctx).First(&in, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &in, nil
}

// CreateIngredient inserts in; an existing (name, unit) pair yields ErrDuplicate.
func CreateIngredient(ctx context.Context, db *gorm.DB, in *domain.Ingredient) error {
	if err := db.WithContext(ctx).Create(in).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// SaveIngredient writes every column of an existing ingredient.
func SaveIngredient(ctx context.Context, db *gorm.DB, in *domain.Ingredient) error {
	if err := db.WithContext(ctx).Save(in).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// DeleteIngredient removes an ingredient and every recipe row using it.
func DeleteIngredient(ctx context.Context, db *gorm.DB, id uint) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("ingredient_id = ?", id).Delete(&domain.RecipeIngredient{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.Ingredient{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// IngredientsByIDs loads the ingredients with the given ids keyed by id.
func IngredientsByIDs(ctx context.Context, db *gorm.DB, ids []uint) (map[uint]domain.Ingredient, error) {
	out := make(map[uint]domain.Ingredient, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []domain.Ingredient
	if err := db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, in := range rows {
		out[in.ID] = in
	}
	return out, nil
}

// InsertIngredientsSkipExisting bulk-inserts rows in batches, silently
// skipping (name, unit) pairs that already exist. It returns the number of
// rows actually inserted.
func InsertIngredientsSkipExisting(ctx context.Context, db *gorm.DB, rows []domain.Ingredient, batch int) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if batch <= 0 {
		batch = 500
	}
	res := db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(rows, batch)
	return res.RowsAffected, res.Error
}
