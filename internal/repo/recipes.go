// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file holds the recipe aggregate: the recipe row plus
// its tag links and ingredient amounts, which are always written together.
package repo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
)

// RecipeFilter narrows ListRecipes. Zero values disable a filter.
type RecipeFilter struct {
	AuthorID    uint
	TagSlugs    []string // any of these tags (OR)
	FavoritedBy uint     // only recipes favorited by this user
	InCartOf    uint     // only recipes in this user's shopping cart
}

// IngredientAmount is an ingredient as it appears in a recipe.
type IngredientAmount struct {
	RecipeID        uint
	ID              uint
	Name            string
	MeasurementUnit string
	Amount          int
}

func recipeQuery(ctx context.Context, db *gorm.DB, f RecipeFilter) *gorm.DB {
	q := db.WithContext(ctx).Model(&domain.Recipe{})
	if f.AuthorID != 0 {
		q = q.Where("recipes.author_id = ?", f.AuthorID)
	}
	if len(f.TagSlugs) > 0 {
		sub := db.Model(&domain.RecipeTag{}).
			Select("recipe_tags.recipe_id").
			Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
			Where("tags.slug IN ?", f.TagSlugs)
		q = q.Where("recipes.id IN (?)", sub)
	}
	if f.FavoritedBy != 0 {
		sub := db.Model(&domain.FavoriteRecipe{}).Select("recipe_id").Where("user_id = ?", f.FavoritedBy)
		q = q.Where("recipes.id IN (?)", sub)
	}
	if f.InCartOf != 0 {
		sub := db.Model(&domain.ShoppingCartItem{}).Select("recipe_id").Where("user_id = ?", f.InCartOf)
		q = q.Where("recipes.id IN (?)", sub)
	}
	return q
}

// ListRecipes returns a page of recipes matching f, newest first, and the
// total number of matches.
func ListRecipes(ctx context.Context, db *gorm.DB, f RecipeFilter, offset, limit int) ([]domain.Recipe, int64, error) {
	var total int64
	if err := recipeQuery(ctx, db, f).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var out []domain.Recipe
	err := recipeQuery(ctx, db, f).
		Order("recipes.created_at DESC").Order("recipes.id DESC").
		Offset(offset).Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// GetRecipe loads a recipe row by id.
func GetRecipe(ctx context.Context, db *gorm.DB, id uint) (*domain.Recipe, error) {
	var r domain.Recipe
	if err := db.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// CreateRecipe inserts r with its tag links and ingredient rows. Callers run
// it inside a transaction.
func CreateRecipe(ctx context.Context, tx *gorm.DB, r *domain.Recipe, tagIDs []uint, items []domain.RecipeIngredient) error {
	if err := tx.WithContext(ctx).Omit("Author").Create(r).Error; err != nil {
		return err
	}
	return writeRecipeChildren(ctx, tx, r.ID, tagIDs, items)
}

// UpdateRecipe overwrites the recipe fields and replaces its tag links and
// ingredient rows wholesale. Callers run it inside a transaction.
func UpdateRecipe(ctx context.Context, tx *gorm.DB, r *domain.Recipe, tagIDs []uint, items []domain.RecipeIngredient) error {
	res := tx.WithContext(ctx).Model(&domain.Recipe{}).Where("id = ?", r.ID).Updates(map[string]any{
		"name":         r.Name,
		"text":         r.Text,
		"cooking_time": r.CookingTime,
		"image":        r.Image,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	if err := deleteRecipeChildren(ctx, tx, r.ID, false); err != nil {
		return err
	}
	return writeRecipeChildren(ctx, tx, r.ID, tagIDs, items)
}

// DeleteRecipe removes a recipe together with its tag links, ingredient rows
// and every favorite or cart entry pointing at it.
func DeleteRecipe(ctx context.Context, tx *gorm.DB, id uint) error {
	if err := deleteRecipeChildren(ctx, tx, id, true); err != nil {
		return err
	}
	res := tx.WithContext(ctx).Delete(&domain.Recipe{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func writeRecipeChildren(ctx context.Context, tx *gorm.DB, recipeID uint, tagIDs []uint, items []domain.RecipeIngredient) error {
	if len(tagIDs) > 0 {
		links := make([]domain.RecipeTag, 0, len(tagIDs))
		for _, id := range tagIDs {
			links = append(links, domain.RecipeTag{RecipeID: recipeID, TagID: id})
		}
		if err := tx.WithContext(ctx).Omit("Recipe", "Tag").Create(&links).Error; err != nil {
			return err
		}
	}
	if len(items) > 0 {
		rows := make([]domain.RecipeIngredient, 0, len(items))
		for _, it := range items {
			rows = append(rows, domain.RecipeIngredient{RecipeID: recipeID, IngredientID: it.IngredientID, Amount: it.Amount})
		}
		if err := tx.WithContext(ctx).Omit("Recipe", "Ingredient").Create(&rows).Error; err != nil {
			return err
		}
	}
	return nil
}

func deleteRecipeChildren(ctx context.Context, tx *gorm.DB, recipeID uint, collections bool) error {
	models := []any{&domain.RecipeTag{}, &domain.RecipeIngredient{}}
	if collections {
		models = append(models, &domain.FavoriteRecipe{}, &domain.ShoppingCartItem{})
	}
	for _, m := range models {
		if err := tx.WithContext(ctx).Where("recipe_id = ?", recipeID).Delete(m).Error; err != nil {
			return err
		}
	}
	return nil
}

// TagsForRecipes returns the tags of each recipe, ordered by tag name.
func TagsForRecipes(ctx context.Context, db *gorm.DB, recipeIDs []uint) (map[uint][]domain.Tag, error) {
	out := make(map[uint][]domain.Tag, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		RecipeID uint
		ID       uint
		Name     string
		Color    string
		Slug     string
	}
	err := db.WithContext(ctx).
		Table("recipe_tags").
		Select("recipe_tags.recipe_id, tags.id, tags.name, tags.color, tags.slug").
		Joins("JOIN tags ON tags.id = recipe_tags.tag_id").
		Where("recipe_tags.recipe_id IN ?", recipeIDs).
		Order("tags.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.RecipeID] = append(out[r.RecipeID], domain.Tag{ID: r.ID, Name: r.Name, Color: r.Color, Slug: r.Slug})
	}
	return out, nil
}

// IngredientsForRecipes returns each recipe's ingredients in the order they
// were written.
func IngredientsForRecipes(ctx context.Context, db *gorm.DB, recipeIDs []uint) (map[uint][]IngredientAmount, error) {
	out := make(map[uint][]IngredientAmount, len(recipeIDs))
	if len(recipeIDs) == 0 {
		return out, nil
	}
	var rows []IngredientAmount
	err := db.WithContext(ctx).
		Table("recipe_ingredients").
		Select("recipe_ingredients.recipe_id, ingredients.id, ingredients.name, ingredients.measurement_unit, recipe_ingredients.amount").
		Joins("JOIN ingredients ON ingredients.id = recipe_ingredients.ingredient_id").
		Where("recipe_ingredients.recipe_id IN ?", recipeIDs).
		Order("recipe_ingredients.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.RecipeID] = append(out[r.RecipeID], r)
	}
	return out, nil
}
