package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
)

// Favorites and the shopping cart share one shape: a unique (user, recipe)
// pair. The helpers below are parameterized by the row model.

func addPair(ctx context.Context, db *gorm.DB, row any) error {
	if err := db.WithContext(ctx).Omit("User", "Recipe").Create(row).Error; err != nil {
		if IsDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func removePair(ctx context.Context, db *gorm.DB, model any, userID, recipeID uint) error {
	res := db.WithContext(ctx).Where("user_id = ? AND recipe_id = ?", userID, recipeID).Delete(model)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func pairIDs(ctx context.Context, db *gorm.DB, model any, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return out, nil
	}
	var ids []uint
	err := db.WithContext(ctx).Model(model).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// AddFavorite records that userID favorited recipeID; ErrDuplicate if already present.
func AddFavorite(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	return addPair(ctx, db, &domain.FavoriteRecipe{UserID: userID, RecipeID: recipeID})
}

// RemoveFavorite deletes the favorite; ErrNotFound if it did not exist.
func RemoveFavorite(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	return removePair(ctx, db, &domain.FavoriteRecipe{}, userID, recipeID)
}

// FavoritedAmong reports which of recipeIDs userID has favorited.
func FavoritedAmong(ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pairIDs(ctx, db, &domain.FavoriteRecipe{}, userID, recipeIDs)
}

// AddToCart puts recipeID into userID's shopping cart; ErrDuplicate if already there.
func AddToCart(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	return addPair(ctx, db, &domain.ShoppingCartItem{UserID: userID, RecipeID: recipeID})
}

// RemoveFromCart deletes the cart entry; ErrNotFound if it did not exist.
func RemoveFromCart(ctx context.Context, db *gorm.DB, userID, recipeID uint) error {
	return removePair(ctx, db, &domain.ShoppingCartItem{}, userID, recipeID)
}

// InCartAmong reports which of recipeIDs are in userID's cart.
func InCartAmong(ctx context.Context, db *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pairIDs(ctx, db, &domain.ShoppingCartItem{}, userID, recipeIDs)
}
