package services

import (
	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

// Page is a slice of results plus the total number of matches.
type Page[T any] struct {
	Count   int64
	Results []T
}

// Paging selects a window of a list. Offset is derived by the caller.
type Paging struct {
	Offset int
	Limit  int
}

// ReadUser is the public user shape.
type ReadUser struct {
	Email        string `json:"email"`
	ID           uint   `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	IsSubscribed bool   `json:"is_subscribed"`
}

// CreateUser is the registration payload.
type CreateUser struct {
	Email     string `json:"email"      binding:"required,email,max=254"`
	Username  string `json:"username"   binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name"  binding:"required,max=150"`
	Password  string `json:"password"   binding:"required,min=8,max=128"`
}

// CreatedUser is returned by registration; it carries no subscription flag.
type CreatedUser struct {
	Email     string `json:"email"`
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ReadTag is the public tag shape.
type ReadTag struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Slug  string `json:"slug"`
}

// WriteTag is the tag create/update payload. Color is a hex code.
type WriteTag struct {
	Name  string `json:"name"  binding:"required,max=200"`
	Color string `json:"color" binding:"required,max=7"`
	Slug  string `json:"slug"  binding:"required,max=200,slug"`
}

// ReadIngredient is the public ingredient shape.
type ReadIngredient struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// WriteIngredient is the ingredient create/update payload.
type WriteIngredient struct {
	Name            string `json:"name"             binding:"required,max=200"`
	MeasurementUnit string `json:"measurement_unit" binding:"required,max=200"`
}

// RecipeIngredientRead is an ingredient line of a recipe.
type RecipeIngredientRead struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
	Amount          int    `json:"amount"`
}

// ReadRecipe is the full recipe shape returned by reads and writes.
type ReadRecipe struct {
	ID               uint                   `json:"id"`
	Tags             []ReadTag              `json:"tags"`
	Author           ReadUser               `json:"author"`
	Ingredients      []RecipeIngredientRead `json:"ingredients"`
	IsFavorited      bool                   `json:"is_favorited"`
	IsInShoppingCart bool                   `json:"is_in_shopping_cart"`
	Name             string                 `json:"name"`
	Image            string                 `json:"image"`
	Text             string                 `json:"text"`
	CookingTime      int                    `json:"cooking_time"`
}

// IngredientAmountIn is one (ingredient id, amount) pair of a write payload.
type IngredientAmountIn struct {
	ID     uint `json:"id"`
	Amount int  `json:"amount"`
}

// WriteRecipe is the create/update payload. Image is a base64 data URI and
// may be omitted on update to keep the current one.
type WriteRecipe struct {
	Ingredients []IngredientAmountIn `json:"ingredients"`
	Tags        []uint               `json:"tags"`
	Image       string               `json:"image"`
	Name        string               `json:"name"`
	Text        string               `json:"text"`
	CookingTime int                  `json:"cooking_time"`
}

// ShortRecipe is the compact shape used by collections and subscriptions.
type ShortRecipe struct {
	ID          uint   `json:"id"`
	Name        string `json:"name"`
	Image       string `json:"image"`
	CookingTime int    `json:"cooking_time"`
}

// SubscriptionAuthor is a followed author with a preview of their recipes.
type SubscriptionAuthor struct {
	ReadUser
	Recipes      []ShortRecipe `json:"recipes"`
	RecipesCount int64         `json:"recipes_count"`
}

// RecipeFlags are the per-caller annotations of a recipe.
type RecipeFlags struct {
	IsFavorited      bool
	IsInShoppingCart bool
}

// URLFunc maps a stored image key to a public URL.
type URLFunc func(key string) string

// ToReadUser maps a user row.
func ToReadUser(u domain.User, subscribed bool) ReadUser {
	return ReadUser{
		Email:        u.Email,
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: subscribed,
	}
}

// ToReadTag maps a tag row.
func ToReadTag(t domain.Tag) ReadTag {
	return ReadTag{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

// ToReadIngredient maps an ingredient row.
func ToReadIngredient(in domain.Ingredient) ReadIngredient {
	return ReadIngredient{ID: in.ID, Name: in.Name, MeasurementUnit: in.MeasurementUnit}
}

// ToShortRecipe maps a recipe row to the compact shape.
func ToShortRecipe(r domain.Recipe, url URLFunc) ShortRecipe {
	return ShortRecipe{ID: r.ID, Name: r.Name, Image: url(r.Image), CookingTime: r.CookingTime}
}

// ToReadRecipe assembles the full read shape from a recipe row and its
// already-loaded parts.
func ToReadRecipe(r domain.Recipe, author ReadUser, tags []domain.Tag, items []repo.IngredientAmount, flags RecipeFlags, url URLFunc) ReadRecipe {
	out := ReadRecipe{
		ID:               r.ID,
		Tags:             make([]ReadTag, 0, len(tags)),
		Author:           author,
		Ingredients:      make([]RecipeIngredientRead, 0, len(items)),
		IsFavorited:      flags.IsFavorited,
		IsInShoppingCart: flags.IsInShoppingCart,
		Name:             r.Name,
		Image:            url(r.Image),
		Text:             r.Text,
		CookingTime:      r.CookingTime,
	}
	for _, t := range tags {
		out.Tags = append(out.Tags, ToReadTag(t))
	}
	for _, it := range items {
		out.Ingredients = append(out.Ingredients, RecipeIngredientRead{
			ID: it.ID, Name: it.Name, MeasurementUnit: it.MeasurementUnit, Amount: it.Amount,
		})
	}
	return out
}

// ToWriteRecipe maps a read shape back to an update payload that keeps the
// current image. Applying it leaves the recipe unchanged.
func ToWriteRecipe(r ReadRecipe) WriteRecipe {
	out := WriteRecipe{
		Ingredients: make([]IngredientAmountIn, 0, len(r.Ingredients)),
		Tags:        make([]uint, 0, len(r.Tags)),
		Name:        r.Name,
		Text:        r.Text,
		CookingTime: r.CookingTime,
	}
	for _, in := range r.Ingredients {
		out.Ingredients = append(out.Ingredients, IngredientAmountIn{ID: in.ID, Amount: in.Amount})
	}
	for _, t := range r.Tags {
		out.Tags = append(out.Tags, t.ID)
	}
	return out
}
