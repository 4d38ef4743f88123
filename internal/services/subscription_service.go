package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/media"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

// SubscriptionService manages the follow graph between users.
type SubscriptionService struct {
	DB    *gorm.DB
	Media media.Store
}

func (s *SubscriptionService) url(key string) string {
	if s.Media == nil {
		return key
	}
	return s.Media.URL(key)
}

// Subscribe makes the caller follow authorID and returns the author entry.
// Self-subscription is rejected before the author is even looked up. recipesLimit
// caps the embedded recipe preview; repo.NoLimit (any negative value) means no cap.
func (s *SubscriptionService) Subscribe(ctx context.Context, actor domain.Actor, authorID uint, recipesLimit int) (*SubscriptionAuthor, error) {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return nil, err
	}
	if authorID == actor.UserID {
		return nil, ErrSelfSubscription
	}
	author, err := repo.GetUser(ctx, s.DB, authorID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if err := repo.CreateSubscription(ctx, s.DB, actor.UserID, authorID); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadySubscribed
		}
		return nil, err
	}
	out, err := s.entries(ctx, []domain.User{*author}, map[uint]bool{author.ID: true}, recipesLimit)
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// Unsubscribe removes the caller's follow edge to authorID.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, actor domain.Actor, authorID uint) error {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return err
	}
	if _, err := repo.GetUser(ctx, s.DB, authorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	if err := repo.DeleteSubscription(ctx, s.DB, actor.UserID, authorID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotSubscribed
		}
		return err
	}
	return nil
}

// List returns a page of the authors the caller follows.
func (s *SubscriptionService) List(ctx context.Context, actor domain.Actor, p Paging, recipesLimit int) (Page[SubscriptionAuthor], error) {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return Page[SubscriptionAuthor]{}, err
	}
	authors, total, err := repo.ListSubscribedAuthors(ctx, s.DB, actor.UserID, p.Offset, p.Limit)
	if err != nil {
		return Page[SubscriptionAuthor]{}, err
	}
	subscribed := make(map[uint]bool, len(authors))
	for _, a := range authors {
		subscribed[a.ID] = true
	}
	out, err := s.entries(ctx, authors, subscribed, recipesLimit)
	if err != nil {
		return Page[SubscriptionAuthor]{}, err
	}
	return Page[SubscriptionAuthor]{Count: total, Results: out}, nil
}

func (s *SubscriptionService) entries(ctx context.Context, authors []domain.User, subscribed map[uint]bool, recipesLimit int) ([]SubscriptionAuthor, error) {
	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := repo.RecipeCountsByAuthor(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	previews, err := repo.RecipesByAuthors(ctx, s.DB, ids, recipesLimit)
	if err != nil {
		return nil, err
	}
	out := make([]SubscriptionAuthor, 0, len(authors))
	for _, a := range authors {
		short := make([]ShortRecipe, 0, len(previews[a.ID]))
		for _, r := range previews[a.ID] {
			short = append(short, ToShortRecipe(r, s.url))
		}
		out = append(out, SubscriptionAuthor{
			ReadUser:     ToReadUser(a, subscribed[a.ID]),
			Recipes:      short,
			RecipesCount: counts[a.ID],
		})
	}
	return out, nil
}
