package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/media"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

// Collection names a per-user recipe set.
type Collection int

const (
	Favorites Collection = iota
	ShoppingCart
)

func (c Collection) String() string {
	if c == ShoppingCart {
		return "shopping_cart"
	}
	return "favorites"
}

// CollectionService adds recipes to and removes them from a user's
// favorites and shopping cart. The unique (user, recipe) index is the only
// guard against duplicates; a lost race surfaces as a conflict.
type CollectionService struct {
	DB    *gorm.DB
	Media media.Store
}

// Add puts recipeID into the caller's collection and returns the short shape.
func (s *CollectionService) Add(ctx context.Context, actor domain.Actor, c Collection, recipeID uint) (*ShortRecipe, error) {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return nil, err
	}
	r, err := repo.GetRecipe(ctx, s.DB, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}

	add, dup := repo.AddFavorite, ErrAlreadyFavorited
	if c == ShoppingCart {
		add, dup = repo.AddToCart, ErrAlreadyInCart
	}
	if err := add(ctx, s.DB, actor.UserID, recipeID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, dup
		}
		return nil, err
	}
	sr := ToShortRecipe(*r, s.url)
	return &sr, nil
}

// Remove takes recipeID out of the caller's collection.
func (s *CollectionService) Remove(ctx context.Context, actor domain.Actor, c Collection, recipeID uint) error {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return err
	}
	if _, err := repo.GetRecipe(ctx, s.DB, recipeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrRecipeNotFound
		}
		return err
	}

	remove, missing := repo.RemoveFavorite, ErrNotFavorited
	if c == ShoppingCart {
		remove, missing = repo.RemoveFromCart, ErrNotInCart
	}
	if err := remove(ctx, s.DB, actor.UserID, recipeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return missing
		}
		return err
	}
	return nil
}

func (s *CollectionService) url(key string) string {
	if s.Media == nil {
		return key
	}
	return s.Media.URL(key)
}
