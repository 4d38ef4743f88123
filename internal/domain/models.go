// Package domain defines the persistence models for users, the tag and
// ingredient catalogs, recipes and the per-user collections built on top of
// them. These types are mapped with GORM and shared by the repository and
// service layers.
package domain

import (
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/utils"
)

// User is an account that can author recipes, collect them and follow other
// authors. Credentials are issued elsewhere; only the password hash lives here.
type User struct {
	ID           uint      `json:"id"         gorm:"primaryKey"`
	Email        string    `json:"email"      gorm:"type:varchar(254);not null;uniqueIndex:ux_users_email"`
	Username     string    `json:"username"   gorm:"type:varchar(150);not null;uniqueIndex:ux_users_username"`
	FirstName    string    `json:"first_name" gorm:"type:varchar(150);not null"`
	LastName     string    `json:"last_name"  gorm:"type:varchar(150);not null"`
	PasswordHash string    `json:"-"          gorm:"type:varchar(255);not null"`
	IsAdmin      bool      `json:"-"          gorm:"not null;default:false"`
	CreatedAt    time.Time `json:"-"`
	UpdatedAt    time.Time `json:"-"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Tag labels recipes (breakfast, lunch, ...). Name and slug are unique; color
// holds a CSS color name.
type Tag struct {
	ID         uint   `json:"id"    gorm:"primaryKey"`
	Name       string `json:"name"  gorm:"type:varchar(200);not null;uniqueIndex:ux_tags_name"`
	Color      string `json:"color" gorm:"type:varchar(32);not null"`
	Slug       string `json:"slug"  gorm:"type:varchar(200);not null;uniqueIndex:ux_tags_slug"`
	SearchName string `json:"-"     gorm:"type:varchar(200);not null;index"`
}

// TableName returns the database table name for Tag.
func (Tag) TableName() string { return "tags" }

// BeforeSave keeps the case-folded search column in sync with Name.
func (t *Tag) BeforeSave(*gorm.DB) error {
	t.SearchName = utils.Fold(t.Name)
	return nil
}

// Ingredient is a catalog entry. The (name, measurement_unit) pair is unique,
// so "sugar, g" and "sugar, tbsp" are distinct ingredients.
type Ingredient struct {
	ID              uint   `json:"id"               gorm:"primaryKey"`
	Name            string `json:"name"             gorm:"type:varchar(200);not null;uniqueIndex:ux_ingredient_name_unit,priority:1"`
	MeasurementUnit string `json:"measurement_unit" gorm:"type:varchar(200);not null;uniqueIndex:ux_ingredient_name_unit,priority:2"`
	SearchName      string `json:"-"                gorm:"type:varchar(200);not null;index"`
}

// TableName returns the database table name for Ingredient.
func (Ingredient) TableName() string { return "ingredients" }

// BeforeSave keeps the case-folded search column in sync with Name.
func (i *Ingredient) BeforeSave(*gorm.DB) error {
	i.SearchName = utils.Fold(i.Name)
	return nil
}

// Recipe is the aggregate root. Its tag links and ingredient amounts are
// stored in RecipeTag and RecipeIngredient rows owned by the recipe.
//
// Fields:
//   - AuthorID: fixed at creation, never reassigned.
//   - CookingTime: minutes, at least 1 (DB check constraint).
//   - Image: storage key of the decoded image (see package media).
type Recipe struct {
	ID          uint      `json:"id"           gorm:"primaryKey"`
	AuthorID    uint      `json:"author_id"    gorm:"not null;index:idx_recipes_author"`
	Name        string    `json:"name"         gorm:"type:varchar(200);not null"`
	Text        string    `json:"text"         gorm:"type:text;not null"`
	CookingTime int       `json:"cooking_time" gorm:"not null;check:chk_recipes_cooking_time,cooking_time >= 1"`
	Image       string    `json:"image"        gorm:"type:varchar(255);not null"`
	CreatedAt   time.Time `json:"created_at"   gorm:"index:idx_recipes_created"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Author owns the recipe; recipes go away with their author.
	Author User `json:"-" gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Recipe.
func (Recipe) TableName() string { return "recipes" }

// RecipeTag links a recipe to a tag.
type RecipeTag struct {
	ID       uint `gorm:"primaryKey"`
	RecipeID uint `gorm:"not null;uniqueIndex:ux_recipe_tag,priority:1"`
	TagID    uint `gorm:"not null;uniqueIndex:ux_recipe_tag,priority:2;index"`

	Recipe Recipe `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Tag    Tag    `gorm:"foreignKey:TagID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RecipeTag.
func (RecipeTag) TableName() string { return "recipe_tags" }

// RecipeIngredient carries the per-recipe amount of an ingredient. A recipe
// lists each ingredient at most once.
type RecipeIngredient struct {
	ID           uint `json:"-"      gorm:"primaryKey"`
	RecipeID     uint `json:"-"      gorm:"not null;uniqueIndex:ux_recipe_ingredient,priority:1"`
	IngredientID uint `json:"id"     gorm:"not null;uniqueIndex:ux_recipe_ingredient,priority:2;index"`
	Amount       int  `json:"amount" gorm:"not null;check:chk_recipe_ingredients_amount,amount >= 1"`

	Recipe     Recipe     `json:"-" gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Ingredient Ingredient `json:"-" gorm:"foreignKey:IngredientID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for RecipeIngredient.
func (RecipeIngredient) TableName() string { return "recipe_ingredients" }

// FavoriteRecipe is a bookmark of a recipe by a user.
type FavoriteRecipe struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_favorite_user_recipe,priority:1"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:ux_favorite_user_recipe,priority:2;index"`
	CreatedAt time.Time `gorm:"index"`

	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for FavoriteRecipe.
func (FavoriteRecipe) TableName() string { return "favorite_recipes" }

// ShoppingCartItem marks a recipe for the user's shopping list.
type ShoppingCartItem struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_cart_user_recipe,priority:1"`
	RecipeID  uint      `gorm:"not null;uniqueIndex:ux_cart_user_recipe,priority:2;index"`
	CreatedAt time.Time `gorm:"index"`

	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Recipe Recipe `gorm:"foreignKey:RecipeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ShoppingCartItem.
func (ShoppingCartItem) TableName() string { return "shopping_cart_items" }

// Subscription is a directed follow edge: UserID follows AuthorID.
// Self-follows are rejected by the service layer and by a check constraint.
type Subscription struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;uniqueIndex:ux_subscription_user_author,priority:1;check:chk_subscriptions_not_self,user_id <> author_id"`
	AuthorID  uint      `gorm:"not null;uniqueIndex:ux_subscription_user_author,priority:2;index"`
	CreatedAt time.Time `gorm:"index"`

	User   User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Author User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Subscription.
func (Subscription) TableName() string { return "subscriptions" }

// All lists every model in dependency order, for migrations.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeTag{},
		&RecipeIngredient{},
		&FavoriteRecipe{},
		&ShoppingCartItem{},
		&Subscription{},
		&Idempotency{},
	}
}
