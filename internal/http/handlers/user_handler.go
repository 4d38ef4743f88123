// User and subscription handlers.
//
//   - GET    /users                 (list, paginated)
//   - POST   /users                 (register)
//   - GET    /users/me
//   - GET    /users/{id}
//   - GET    /users/subscriptions   (followed authors, paginated)
//   - POST   /users/{id}/subscribe
//   - DELETE /users/{id}/subscribe
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/services"
)

// UserPage is the paginated user list (for docs).
type UserPage = PageResponse[services.ReadUser]

// SubscriptionPage is the paginated subscription list (for docs).
type SubscriptionPage = PageResponse[services.SubscriptionAuthor]

// ListUsers godoc
// @ID          listUsers
// @Summary     List users (paginated)
// @Tags        Users
// @Produce     json
// @Param       page   query  int  false  "Page number"     minimum(1) default(1)
// @Param       limit  query  int  false  "Items per page"  minimum(1) maximum(100) default(6)
// @Success     200  {object}  handlers.UserPage
// @Failure     404  {object}  handlers.ErrorResponse  "Invalid page"
// @Router      /users [get]
func (h *Handlers) ListUsers(c *gin.Context) {
	page, p := pageParams(c, h.opts.PageSize)
	res, err := h.svc.Users.List(c.Request.Context(), middleware.ActorFrom(c), p)
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

// RegisterUser godoc
// @ID          registerUser
// @Summary     Register a user
// @Tags        Users
// @Accept      json
// @Produce     json
// @Param       body  body  services.CreateUser  true  "Registration payload"
// @Success     201  {object}  services.CreatedUser
// @Failure     400  {object}  handlers.ErrorResponse  "Validation failed or duplicate"
// @Router      /users [post]
func (h *Handlers) RegisterUser(c *gin.Context) {
	var in services.CreateUser
	if !bindJSON(c, &in) {
		return
	}
	u, err := h.svc.Users.Register(c.Request.Context(), in)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, u)
}

// Me godoc
// @ID          getMe
// @Summary     Current user
// @Tags        Users
// @Produce     json
// @Security    TokenAuth
// @Success     200  {object}  services.ReadUser
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Router      /users/me [get]
func (h *Handlers) Me(c *gin.Context) {
	u, err := h.svc.Users.Me(c.Request.Context(), middleware.ActorFrom(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// GetUser godoc
// @ID          getUser
// @Summary     Get a user
// @Tags        Users
// @Produce     json
// @Param       id   path  int  true  "User id"
// @Success     200  {object}  services.ReadUser
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /users/{id} [get]
func (h *Handlers) GetUser(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrUserNotFound.Error())
		return
	}
	u, err := h.svc.Users.Get(c.Request.Context(), middleware.ActorFrom(c), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusOK, u)
}

// ListSubscriptions godoc
// @ID          listSubscriptions
// @Summary     Followed authors (paginated)
// @Description Each entry embeds the author's newest recipes, capped by recipes_limit, and their total recipes_count.
// @Tags        Users
// @Produce     json
// @Security    TokenAuth
// @Param       page           query  int  false  "Page number"            minimum(1) default(1)
// @Param       limit          query  int  false  "Items per page"         minimum(1) maximum(100) default(6)
// @Param       recipes_limit  query  int  false  "Recipes per author"     minimum(0)
// @Success     200  {object}  handlers.SubscriptionPage
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "Invalid page"
// @Router      /users/subscriptions [get]
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	page, p := pageParams(c, h.opts.PageSize)
	res, err := h.svc.Subscriptions.List(c.Request.Context(), middleware.ActorFrom(c), p, recipesLimit(c))
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

// Subscribe godoc
// @ID          subscribe
// @Summary     Follow an author
// @Tags        Users
// @Produce     json
// @Security    TokenAuth
// @Param       id             path   int  true   "Author id"
// @Param       recipes_limit  query  int  false  "Recipes in the response"  minimum(0)
// @Success     201  {object}  services.SubscriptionAuthor
// @Failure     400  {object}  handlers.ErrorResponse  "Self or duplicate subscription"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found"
// @Router      /users/{id}/subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrUserNotFound.Error())
		return
	}
	out, err := h.svc.Subscriptions.Subscribe(c.Request.Context(), middleware.ActorFrom(c), id, recipesLimit(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	ok(c, http.StatusCreated, out)
}

// Unsubscribe godoc
// @ID          unsubscribe
// @Summary     Unfollow an author
// @Tags        Users
// @Security    TokenAuth
// @Param       id   path  int  true  "Author id"
// @Success     204  {string}  string  "No Content"
// @Failure     401  {object}  handlers.ErrorResponse  "Unauthorized"
// @Failure     404  {object}  handlers.ErrorResponse  "User not found or not subscribed"
// @Router      /users/{id}/subscribe [delete]
func (h *Handlers) Unsubscribe(c *gin.Context) {
	id, found := parseID(c, "id")
	if !found {
		fail(c, http.StatusNotFound, ErrCodeNotFound, services.ErrUserNotFound.Error())
		return
	}
	if err := h.svc.Subscriptions.Unsubscribe(c.Request.Context(), middleware.ActorFrom(c), id); err != nil {
		writeServiceError(c, err)
		return
	}
	noContent(c)
}
