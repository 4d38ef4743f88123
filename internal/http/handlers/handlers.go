package handlers

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/repo"
	"github.com/tbourn/foodgram-backend/internal/services"
	"github.com/tbourn/foodgram-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// RecipeService defines the recipe reads and writes consumed by handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type RecipeService interface {
	List(ctx context.Context, actor domain.Actor, q services.RecipeQuery, p services.Paging) (services.Page[services.ReadRecipe], error)
	Get(ctx context.Context, actor domain.Actor, id uint) (*services.ReadRecipe, error)
	// CreateOnce creates a recipe; a non-empty key makes retries replay the
	// first result.
	CreateOnce(ctx context.Context, actor domain.Actor, key string, in services.WriteRecipe) (*services.ReadRecipe, bool, error)
	Update(ctx context.Context, actor domain.Actor, id uint, in services.WriteRecipe) (*services.ReadRecipe, error)
	Delete(ctx context.Context, actor domain.Actor, id uint) error
}

// TagService defines tag catalog operations.
type TagService interface {
	List(ctx context.Context, prefix string) ([]services.ReadTag, error)
	Get(ctx context.Context, id uint) (*services.ReadTag, error)
	Create(ctx context.Context, actor domain.Actor, in services.WriteTag) (*services.ReadTag, error)
	Update(ctx context.Context, actor domain.Actor, id uint, in services.WriteTag) (*services.ReadTag, error)
	Delete(ctx context.Context, actor domain.Actor, id uint) error
}

// IngredientService defines ingredient catalog operations.
type IngredientService interface {
	List(ctx context.Context, prefix string) ([]services.ReadIngredient, error)
	Get(ctx context.Context, id uint) (*services.ReadIngredient, error)
	Create(ctx context.Context, actor domain.Actor, in services.WriteIngredient) (*services.ReadIngredient, error)
	Update(ctx context.Context, actor domain.Actor, id uint, in services.WriteIngredient) (*services.ReadIngredient, error)
	Delete(ctx context.Context, actor domain.Actor, id uint) error
}

// UserService defines account reads and registration.
type UserService interface {
	Register(ctx context.Context, in services.CreateUser) (*services.CreatedUser, error)
	Get(ctx context.Context, actor domain.Actor, id uint) (*services.ReadUser, error)
	Me(ctx context.Context, actor domain.Actor) (*services.ReadUser, error)
	List(ctx context.Context, actor domain.Actor, p services.Paging) (services.Page[services.ReadUser], error)
}

// SubscriptionService defines the follow graph operations.
type SubscriptionService interface {
	Subscribe(ctx context.Context, actor domain.Actor, authorID uint, recipesLimit int) (*services.SubscriptionAuthor, error)
	Unsubscribe(ctx context.Context, actor domain.Actor, authorID uint) error
	List(ctx context.Context, actor domain.Actor, p services.Paging, recipesLimit int) (services.Page[services.SubscriptionAuthor], error)
}

// CollectionService defines favorites and shopping cart membership.
type CollectionService interface {
	Add(ctx context.Context, actor domain.Actor, c services.Collection, recipeID uint) (*services.ShortRecipe, error)
	Remove(ctx context.Context, actor domain.Actor, c services.Collection, recipeID uint) error
}

// ShoppingListService renders the caller's aggregated shopping list.
type ShoppingListService interface {
	Lines(ctx context.Context, actor domain.Actor) ([]repo.ShoppingListLine, error)
}

//
// Handler wiring
//

// Services bundles the dependencies of Handlers.
type Services struct {
	Recipes       RecipeService
	Tags          TagService
	Ingredients   IngredientService
	Users         UserService
	Subscriptions SubscriptionService
	Collections   CollectionService
	ShoppingList  ShoppingListService
}

// Options tunes handler behavior.
type Options struct {
	PageSize             int    // default page size; <= 0 means 6
	ShoppingListFilename string // download attachment name; empty means shopping_list.txt
}

// Handlers groups the HTTP endpoints. It depends on abstract service
// interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	svc  Services
	opts Options
}

// New constructs Handlers bound to the given services.
func New(svc Services, opts Options) *Handlers {
	if opts.PageSize <= 0 {
		opts.PageSize = 6
	}
	if opts.ShoppingListFilename == "" {
		opts.ShoppingListFilename = "shopping_list.txt"
	}
	registerValidators()
	return &Handlers{svc: svc, opts: opts}
}

// parseID reads a positive integer path parameter. Anything else yields
// false, which handlers answer with 404.
func parseID(c *gin.Context, name string) (uint, bool) {
	n, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || n == 0 {
		return 0, false
	}
	return uint(n), true
}

// requireActor answers 401 for anonymous callers. Write endpoints call it
// before binding the body.
func requireActor(c *gin.Context) bool {
	if middleware.ActorFrom(c).Authenticated() {
		return true
	}
	writeServiceError(c, services.ErrUnauthenticated)
	return false
}

// recipesLimit reads ?recipes_limit. Missing, malformed or negative means no
// cap; 0 asks for an empty preview.
func recipesLimit(c *gin.Context) int {
	if n := utils.AtoiDefault(c.Query("recipes_limit"), repo.NoLimit); n >= 0 {
		return n
	}
	return repo.NoLimit
}

// Routes mounts every endpoint on api. Static segments (me, subscriptions,
// download_shopping_cart) take precedence over the :id parameter.
func (h *Handlers) Routes(api *gin.RouterGroup) {
	// Recipes
	api.GET("/recipes", h.ListRecipes)
	api.POST("/recipes", h.CreateRecipe)
	api.GET("/recipes/download_shopping_cart", h.DownloadShoppingList)
	api.GET("/recipes/:id", h.GetRecipe)
	api.PATCH("/recipes/:id", h.UpdateRecipe)
	api.DELETE("/recipes/:id", h.DeleteRecipe)
	api.POST("/recipes/:id/favorite", h.AddFavorite)
	api.DELETE("/recipes/:id/favorite", h.RemoveFavorite)
	api.POST("/recipes/:id/shopping_cart", h.AddToCart)
	api.DELETE("/recipes/:id/shopping_cart", h.RemoveFromCart)

	// Users and subscriptions
	api.GET("/users", h.ListUsers)
	api.POST("/users", h.RegisterUser)
	api.GET("/users/me", h.Me)
	api.GET("/users/subscriptions", h.ListSubscriptions)
	api.GET("/users/:id", h.GetUser)
	api.POST("/users/:id/subscribe", h.Subscribe)
	api.DELETE("/users/:id/subscribe", h.Unsubscribe)

	// Catalog
	api.GET("/tags", h.ListTags)
	api.POST("/tags", h.CreateTag)
	api.GET("/tags/:id", h.GetTag)
	api.PATCH("/tags/:id", h.UpdateTag)
	api.DELETE("/tags/:id", h.DeleteTag)
	api.GET("/ingredients", h.ListIngredients)
	api.POST("/ingredients", h.CreateIngredient)
	api.GET("/ingredients/:id", h.GetIngredient)
	api.PATCH("/ingredients/:id", h.UpdateIngredient)
	api.DELETE("/ingredients/:id", h.DeleteIngredient)
}
