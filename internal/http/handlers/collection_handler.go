// Favorites, shopping cart and the shopping list download.
package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/observability"
	"github.com/tbourn/foodgram-backend/internal/services"
)

// AddFavorite godoc
// @ID          addFavorite
// @Summary     Add a recipe to favorites
// @Tags        Recipes
// @Produce     json
// @Security    TokenAuth
// @Param       id   path  int  true  "Recipe id"
// @Success     201  {object}  services.ShortRecipe
// @Failure     400  {object}  handlers.ErrorResponse  "Already in favorites"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Router      /recipes/{id}/favorite [post]
func (h *Handlers) AddFavorite(c *gin.Context) { h.addTo(c, services.Favorites) }

// RemoveFavorite godoc
// @ID          removeFavorite
// @Summary     Remove a recipe from favorites
// @Tags        Recipes
// @Security    TokenAuth
// @Param       id   path  int  true  "Recipe id"
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Not in favorites"
// @Router      /recipes/{id}/favorite [delete]
func (h *Handlers) RemoveFavorite(c *gin.Context) { h.removeFrom(c, services.Favorites) }

// AddToCart godoc
// @ID          addToCart
// @Summary     Add a recipe to the shopping cart
// @Tags        Recipes
// @Produce     json
// @Security    TokenAuth
// @Param       id   path  int  true  "Recipe id"
// @Success     201  {object}  services.ShortRecipe
// @Failure     400  {object}  handlers.ErrorResponse  "Already in the cart"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Router      /recipes/{id}/shopping_cart [post]
func (h *Handlers) AddToCart(c *gin.Context) { h.addTo(c, services.ShoppingCart) }

// RemoveFromCart godoc
// @ID          removeFromCart
// @Summary     Remove a recipe from the shopping cart
// @Tags        Recipes
// @Security    TokenAuth
// @Param       id   path  int  true  "Recipe id"
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Not in the cart"
// @Router      /recipes/{id}/shopping_cart [delete]
func (h *Handlers) RemoveFromCart(c *gin.Context) { h.removeFrom(c, services.ShoppingCart) }

func (h *Handlers) addTo(c *gin.Context, coll services.Collection) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrRecipeNotFound.Error())
		return
	}
	out, err := h.svc.Collections.Add(c.Request.Context(), middleware.ActorFrom(c), coll, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	observability.CollectionChanges.WithLabelValues(coll.String(), "add").Inc()
	ok(c, http.StatusCreated, out)
}

func (h *Handlers) removeFrom(c *gin.Context, coll services.Collection) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrRecipeNotFound.Error())
		return
	}
	if err := h.svc.Collections.Remove(c.Request.Context(), middleware.ActorFrom(c), coll, id); err != nil {
		writeServiceError(c, err)
		return
	}
	observability.CollectionChanges.WithLabelValues(coll.String(), "remove").Inc()
	noContent(c)
}

// DownloadShoppingList godoc
// @ID          downloadShoppingList
// @Summary     Download the shopping list
// @Description Sums ingredient amounts over every recipe in the cart, one line per (name, unit). An empty cart yields the header only.
// @Tags        Recipes
// @Produce     plain
// @Security    TokenAuth
// @Success     200  {string}  string  "Shopping list document"
// @Header      200  {string}  Content-Disposition  "attachment; filename=..."
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /recipes/download_shopping_cart [get]
func (h *Handlers) DownloadShoppingList(c *gin.Context) {
	lines, err := h.svc.ShoppingList.Lines(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	observability.ShoppingListDownloads.Inc()
	observability.ShoppingListLines.Observe(float64(len(lines)))

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.opts.ShoppingListFilename))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(services.RenderShoppingList(lines)))
}
