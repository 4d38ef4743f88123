// Recipe HTTP handlers.
//
// This file exposes REST endpoints for recipes:
//   - GET    /recipes        (list, paginated, filterable)
//   - POST   /recipes        (create, Idempotency-Key aware)
//   - GET    /recipes/{id}   (read)
//   - PATCH  /recipes/{id}   (replace fields, tags and ingredients)
//   - DELETE /recipes/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/observability"
	"github.com/tbourn/foodgram-backend/internal/services"
	"github.com/tbourn/foodgram-backend/internal/sysutil"
	"github.com/tbourn/foodgram-backend/internal/utils"
)

// HeaderIdempotentReplay is set to "true" on a create answered from a
// stored idempotency record.
const HeaderIdempotentReplay = "Idempotent-Replay"

// RecipePage is the paginated recipe list (for docs).
type RecipePage = PageResponse[services.ReadRecipe]

// ListRecipes godoc
// @ID          listRecipes
// @Summary     List recipes (paginated)
// @Description Returns recipes newest first. Tag filters are OR-combined; the collection filters apply to signed-in callers only.
// @Tags        Recipes
// @Produce     json
//
// @Param       page                 query  int     false  "Page number"                  minimum(1) default(1)
// @Param       limit                query  int     false  "Items per page"               minimum(1) maximum(100) default(6)
// @Param       author               query  int     false  "Author id"
// @Param       tags                 query  []string false "Tag slugs (repeatable)"       collectionFormat(multi)
// @Param       is_favorited         query  int     false  "Only favorites (1/0)"
// @Param       is_in_shopping_cart  query  int     false  "Only shopping cart (1/0)"
//
// @Success     200  {object}  handlers.RecipePage
// @Failure     404  {object}  handlers.ErrorResponse  "Invalid page"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recipes [get]
func (h *Handlers) ListRecipes(c *gin.Context) {
	page, p := pageParams(c, h.opts.PageSize)
	author := utils.AtoiDefault(c.Query("author"), 0)
	if author < 0 {
		author = 0
	}
	q := services.RecipeQuery{
		AuthorID:         uint(author),
		Tags:             c.QueryArray("tags"),
		IsFavorited:      sysutil.IsTruthy(c.Query("is_favorited")),
		IsInShoppingCart: sysutil.IsTruthy(c.Query("is_in_shopping_cart")),
	}

	res, err := h.svc.Recipes.List(c.Request.Context(), middleware.ActorFrom(c), q, p)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	out, found := newPage(c, page, p, res)
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, "invalid page")
		return
	}
	ok(c, http.StatusOK, out)
}

// GetRecipe godoc
// @ID          getRecipe
// @Summary     Get a recipe
// @Tags        Recipes
// @Produce     json
// @Param       id   path  int  true  "Recipe id"
// @Success     200  {object}  services.ReadRecipe
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Router      /recipes/{id} [get]
func (h *Handlers) GetRecipe(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrRecipeNotFound.Error())
		return
	}
	r, err := h.svc.Recipes.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// CreateRecipe godoc
// @ID          createRecipe
// @Summary     Create a recipe
// @Description Creates a recipe authored by the caller. With an Idempotency-Key, a retry inside the TTL returns the first result and sets Idempotent-Replay.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    TokenAuth
//
// @Param       Idempotency-Key  header  string                 false  "Client retry key"  example(3f1c2a9e-create-1)
// @Param       body             body    services.WriteRecipe   true   "Recipe payload; image is a base64 data URI"
//
// @Success     201  {object}  services.ReadRecipe
// @Header      201  {string}  Idempotent-Replay  "true when replayed"
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /recipes [post]
func (h *Handlers) CreateRecipe(c *gin.Context) {
	if !requireActor(c) {
		return
	}
	var in services.WriteRecipe
	if !bindJSON(c, &in) {
		return
	}
	key, _ := middleware.GetIdempotencyKey(c)

	r, replayed, err := h.svc.Recipes.CreateOnce(c.Request.Context(), middleware.ActorFrom(c), key, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if replayed {
		observability.IdempotentReplays.Inc()
		c.Header(HeaderIdempotentReplay, "true")
	} else {
		observability.RecipesCreated.Inc()
	}
	ok(c, http.StatusCreated, r)
}

// UpdateRecipe godoc
// @ID          updateRecipe
// @Summary     Update a recipe
// @Description Replaces name, text, cooking time, tags and ingredient amounts. Omit image to keep the current one. Author or admin only.
// @Tags        Recipes
// @Accept      json
// @Produce     json
// @Security    TokenAuth
//
// @Param       id    path  int                   true  "Recipe id"
// @Param       body  body  services.WriteRecipe  true  "Recipe payload"
//
// @Success     200  {object}  services.ReadRecipe
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Router      /recipes/{id} [patch]
func (h *Handlers) UpdateRecipe(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrRecipeNotFound.Error())
		return
	}
	if !requireActor(c) {
		return
	}
	var in services.WriteRecipe
	if !bindJSON(c, &in) {
		return
	}
	r, err := h.svc.Recipes.Update(c.Request.Context(), middleware.ActorFrom(c), id, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, r)
}

// DeleteRecipe godoc
// @ID          deleteRecipe
// @Summary     Delete a recipe
// @Tags        Recipes
// @Security    TokenAuth
// @Param       id   path  int  true  "Recipe id"
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Not the author"
// @Failure     404  {object}  handlers.ErrorResponse  "Recipe not found"
// @Router      /recipes/{id} [delete]
func (h *Handlers) DeleteRecipe(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrRecipeNotFound.Error())
		return
	}
	if err := h.svc.Recipes.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
