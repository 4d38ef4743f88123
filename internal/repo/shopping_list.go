package repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

// ShoppingListLine is one aggregated line of a shopping list: the summed
// amount of an (ingredient name, unit) pair across every recipe in the cart.
type ShoppingListLine struct {
	Name            string
	MeasurementUnit string
	Amount          int64
}

// shoppingListQuery groups cart ingredients by name and unit. Ordering by the
// smallest recipe_ingredients id keeps lines in first-encountered order.
func shoppingListQuery(userID uint) sq.SelectBuilder {
	return sq.Select(
		"i.name AS name",
		"i.measurement_unit AS measurement_unit",
		"SUM(ri.amount) AS amount",
	).
		From("recipe_ingredients ri").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Join("shopping_cart_items c ON c.recipe_id = ri.recipe_id").
		Where(sq.Eq{"c.user_id": userID}).
		GroupBy("i.name", "i.measurement_unit").
		OrderBy("MIN(ri.id) ASC")
}

// ShoppingList aggregates the ingredients of every recipe in userID's cart.
// An empty cart yields an empty slice.
func ShoppingList(ctx context.Context, db *gorm.DB, userID uint) ([]ShoppingListLine, error) {
	query, args, err := shoppingListQuery(userID).ToSql()
	if err != nil {
		return nil, err
	}
	out := []ShoppingListLine{}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
