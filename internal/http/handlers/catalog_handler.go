// Tag and ingredient catalog handlers. Reads are public and unpaginated;
// writes are admin-only.
package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/services"
)

// ListTags godoc
// @ID          listTags
// @Summary     List tags
// @Description Returns all tags ordered by name; name filters by case-insensitive prefix.
// @Tags        Tags
// @Produce     json
// @Param       name  query  string  false  "Name prefix"
// @Success     200  {array}   services.ReadTag
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /tags [get]
func (h *Handlers) ListTags(c *gin.Context) {
	out, err := h.svc.Tags.List(c.Request.Context(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetTag godoc
// @ID          getTag
// @Summary     Get a tag
// @Tags        Tags
// @Produce     json
// @Param       id   path  int  true  "Tag id"
// @Success     200  {object}  services.ReadTag
// @Failure     404  {object}  handlers.ErrorResponse  "Tag not found"
// @Router      /tags/{id} [get]
func (h *Handlers) GetTag(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrTagNotFound.Error())
		return
	}
	t, err := h.svc.Tags.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// CreateTag godoc
// @ID          createTag
// @Summary     Create a tag
// @Description Color is a hex code and is stored as its CSS color name. Admin only.
// @Tags        Tags
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       body  body  services.WriteTag  true  "Tag payload"
// @Success     201  {object}  services.ReadTag
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed or duplicate"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Router      /tags [post]
func (h *Handlers) CreateTag(c *gin.Context) {
	if !requireActor(c) {
		return
	}
	var in services.WriteTag
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.svc.Tags.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, t)
}

// UpdateTag godoc
// @ID          updateTag
// @Summary     Update a tag
// @Tags        Tags
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id    path  int                true  "Tag id"
// @Param       body  body  services.WriteTag  true  "Tag payload"
// @Success     200  {object}  services.ReadTag
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed or duplicate"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     404  {object}  handlers.ErrorResponse  "Tag not found"
// @Router      /tags/{id} [patch]
func (h *Handlers) UpdateTag(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrTagNotFound.Error())
		return
	}
	if !requireActor(c) {
		return
	}
	var in services.WriteTag
	if !bindJSON(c, &in) {
		return
	}
	t, err := h.svc.Tags.Update(c.Request.Context(), middleware.ActorFrom(c), id, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, t)
}

// DeleteTag godoc
// @ID          deleteTag
// @Summary     Delete a tag
// @Tags        Tags
// @Security    TokenAuth
// @Param       id   path  int  true  "Tag id"
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     404  {object}  handlers.ErrorResponse  "Tag not found"
// @Router      /tags/{id} [delete]
func (h *Handlers) DeleteTag(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrTagNotFound.Error())
		return
	}
	if err := h.svc.Tags.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}

// ListIngredients godoc
// @ID          listIngredients
// @Summary     List ingredients
// @Description Returns ingredients ordered by name; name filters by case-insensitive prefix.
// @Tags        Ingredients
// @Produce     json
// @Param       name  query  string  false  "Name prefix"  example(fl)
// @Success     200  {array}   services.ReadIngredient
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /ingredients [get]
func (h *Handlers) ListIngredients(c *gin.Context) {
	out, err := h.svc.Ingredients.List(c.Request.Context(), strings.TrimSpace(c.Query("name")))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// GetIngredient godoc
// @ID          getIngredient
// @Summary     Get an ingredient
// @Tags        Ingredients
// @Produce     json
// @Param       id   path  int  true  "Ingredient id"
// @Success     200  {object}  services.ReadIngredient
// @Failure     404  {object}  handlers.ErrorResponse  "Ingredient not found"
// @Router      /ingredients/{id} [get]
func (h *Handlers) GetIngredient(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrIngredientNotFound.Error())
		return
	}
	in, err := h.svc.Ingredients.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, in)
}

// CreateIngredient godoc
// @ID          createIngredient
// @Summary     Create an ingredient
// @Description The (name, measurement_unit) pair must be unique. Admin only.
// @Tags        Ingredients
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       body  body  services.WriteIngredient  true  "Ingredient payload"
// @Success     201  {object}  services.ReadIngredient
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed or duplicate"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Router      /ingredients [post]
func (h *Handlers) CreateIngredient(c *gin.Context) {
	if !requireActor(c) {
		return
	}
	var in services.WriteIngredient
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.svc.Ingredients.Create(c.Request.Context(), middleware.ActorFrom(c), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// UpdateIngredient godoc
// @ID          updateIngredient
// @Summary     Update an ingredient
// @Tags        Ingredients
// @Accept      json
// @Produce     json
// @Security    TokenAuth
// @Param       id    path  int                       true  "Ingredient id"
// @Param       body  body  services.WriteIngredient  true  "Ingredient payload"
// @Success     200  {object}  services.ReadIngredient
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed or duplicate"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     404  {object}  handlers.ErrorResponse  "Ingredient not found"
// @Router      /ingredients/{id} [patch]
func (h *Handlers) UpdateIngredient(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrIngredientNotFound.Error())
		return
	}
	if !requireActor(c) {
		return
	}
	var in services.WriteIngredient
	if !bindJSON(c, &in) {
		return
	}
	out, err := h.svc.Ingredients.Update(c.Request.Context(), middleware.ActorFrom(c), id, in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, out)
}

// DeleteIngredient godoc
// @ID          deleteIngredient
// @Summary     Delete an ingredient
// @Tags        Ingredients
// @Security    TokenAuth
// @Param       id   path  int  true  "Ingredient id"
// @Success     204  {string}  string  "No Content"
// @Failure     403  {object}  handlers.ErrorResponse  "Admin only"
// @Failure     404  {object}  handlers.ErrorResponse  "Ingredient not found"
// @Router      /ingredients/{id} [delete]
func (h *Handlers) DeleteIngredient(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrIngredientNotFound.Error())
		return
	}
	if err := h.svc.Ingredients.Delete(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
