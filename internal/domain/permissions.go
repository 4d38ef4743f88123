package domain

// Actor is the caller of an operation. The zero value is an anonymous caller.
type Actor struct {
	UserID  uint
	IsAdmin bool
}

// Authenticated reports whether the actor carries a user identity.
func (a Actor) Authenticated() bool { return a.UserID != 0 }

// Action is the kind of access requested on a resource.
type Action int

const (
	ActionRead Action = iota
	ActionCreate
	ActionUpdate
	ActionDelete
)

// IsSafe reports whether the action cannot modify state.
func (a Action) IsSafe() bool { return a == ActionRead }

// Decision is the outcome of a permission check.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

// IsAuthor reports whether the actor wrote the recipe.
func IsAuthor(a Actor, r Recipe) bool {
	return a.Authenticated() && r.AuthorID == a.UserID
}

// CatalogAccess decides access to tags and ingredients: anyone may read,
// only admins may write.
func CatalogAccess(a Actor, act Action) Decision {
	switch {
	case act.IsSafe():
		return Allow
	case !a.Authenticated():
		return DenyUnauthenticated
	case a.IsAdmin:
		return Allow
	default:
		return DenyForbidden
	}
}

// RecipeAccess decides access to a recipe: anyone may read, any signed-in
// user may create, and only the author or an admin may update or delete.
// For ActionCreate the recipe argument is ignored.
func RecipeAccess(a Actor, act Action, r Recipe) Decision {
	switch {
	case act.IsSafe():
		return Allow
	case !a.Authenticated():
		return DenyUnauthenticated
	case act == ActionCreate:
		return Allow
	case IsAuthor(a, r) || a.IsAdmin:
		return Allow
	default:
		return DenyForbidden
	}
}

// MemberAccess decides access to per-user resources (favorites, cart,
// subscriptions, the shopping list): the caller must be signed in.
func MemberAccess(a Actor) Decision {
	if !a.Authenticated() {
		return DenyUnauthenticated
	}
	return Allow
}
