// Package services holds the business rules for the recipe catalog, user
// collections and subscriptions. This file centralizes the service-level
// error values so that handlers can translate them into HTTP responses
// consistently.
//
// Services never log; they return one of these values (or a
// *ValidationError) for predictable failures and the raw error otherwise.
package services

import (
	"errors"
	"sort"
	"strings"
)

// Access errors.
var (
	// ErrUnauthenticated is returned when an operation requires a signed-in caller.
	ErrUnauthenticated = errors.New("authentication credentials were not provided")

	// ErrForbidden is returned when the caller is signed in but lacks permission.
	ErrForbidden = errors.New("you do not have permission to perform this action")
)

// Not-found errors.
var (
	ErrRecipeNotFound     = errors.New("recipe not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrTagNotFound        = errors.New("tag not found")
	ErrIngredientNotFound = errors.New("ingredient not found")
	ErrNotFavorited       = errors.New("recipe is not in favorites")
	ErrNotInCart          = errors.New("recipe is not in the shopping cart")
	ErrNotSubscribed      = errors.New("you are not subscribed to this user")
)

// Conflict errors: uniqueness violations surfaced as client errors.
var (
	ErrAlreadyFavorited    = errors.New("recipe already added to favorites")
	ErrAlreadyInCart       = errors.New("recipe already added to the shopping cart")
	ErrAlreadySubscribed   = errors.New("already subscribed to this user")
	ErrDuplicateTag        = errors.New("a tag with this name or slug already exists")
	ErrDuplicateIngredient = errors.New("an ingredient with this name and measurement unit already exists")
	ErrDuplicateUser       = errors.New("a user with this email or username already exists")
)

// ErrSelfSubscription is returned when a user tries to follow themselves.
var ErrSelfSubscription = errors.New("cannot subscribe to self")

var conflicts = []error{
	ErrAlreadyFavorited, ErrAlreadyInCart, ErrAlreadySubscribed,
	ErrDuplicateTag, ErrDuplicateIngredient, ErrDuplicateUser,
}

var notFounds = []error{
	ErrRecipeNotFound, ErrUserNotFound, ErrTagNotFound, ErrIngredientNotFound,
	ErrNotFavorited, ErrNotInCart, ErrNotSubscribed,
}

// IsConflict reports whether err is one of the uniqueness errors.
func IsConflict(err error) bool { return isAny(err, conflicts) }

// IsNotFound reports whether err is one of the not-found errors.
func IsNotFound(err error) bool { return isAny(err, notFounds) }

func isAny(err error, set []error) bool {
	for _, e := range set {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

// ValidationError reports field-level input problems. Fields maps a JSON
// field name (dotted for nested values, e.g. "ingredients.1.amount") to a
// message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records a problem with field, keeping the first message per field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// Err returns e when it holds at least one problem, nil otherwise.
func (e *ValidationError) Err() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}

func invalid(field, msg string) error {
	v := &ValidationError{}
	v.Add(field, msg)
	return v
}
