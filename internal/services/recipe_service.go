// Package services – RecipeService
//
// RecipeService owns the recipe aggregate: the recipe row, its tag links and
// its ingredient amounts. Writes are validated completely before any
// statement runs, and each write executes in one transaction, so a rejected
// update leaves the stored recipe untouched.
//
// Observability: public methods are OpenTelemetry-instrumented.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/media"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

// ScopeCreateRecipe partitions idempotency keys used on recipe creation.
const ScopeCreateRecipe = "POST /recipes"

const maxRecipeName = 200

// Upper bounds of the integer fields. Shopping-list sums stay far below the
// int64 range for any cart built from bounded amounts.
const (
	MaxAmount      = 32000
	MaxCookingTime = 32000
)

// RecipeQuery carries the list filters. The collection flags apply only to
// authenticated callers and are ignored otherwise.
type RecipeQuery struct {
	AuthorID         uint
	Tags             []string
	IsFavorited      bool
	IsInShoppingCart bool
}

// RecipeService implements recipe reads and writes.
type RecipeService struct {
	DB             *gorm.DB
	Media          media.Store
	IdempotencyTTL time.Duration
}

func (s *RecipeService) url(key string) string {
	if s.Media == nil {
		return key
	}
	return s.Media.URL(key)
}

func tracer() trace.Tracer { return otel.Tracer("services/RecipeService") }

// List returns a page of recipes matching q, newest first.
func (s *RecipeService) List(ctx context.Context, actor domain.Actor, q RecipeQuery, p Paging) (Page[ReadRecipe], error) {
	ctx, span := tracer().Start(ctx, "List", trace.WithAttributes(
		attribute.Int("user.id", int(actor.UserID)),
		attribute.Int("page.offset", p.Offset),
		attribute.Int("page.limit", p.Limit),
	))
	defer span.End()

	f := repo.RecipeFilter{AuthorID: q.AuthorID, TagSlugs: q.Tags}
	if actor.Authenticated() {
		if q.IsFavorited {
			f.FavoritedBy = actor.UserID
		}
		if q.IsInShoppingCart {
			f.InCartOf = actor.UserID
		}
	}
	rows, total, err := repo.ListRecipes(ctx, s.DB, f, p.Offset, p.Limit)
	if err != nil {
		return Page[ReadRecipe]{}, err
	}
	out, err := s.hydrate(ctx, s.DB, actor, rows)
	if err != nil {
		return Page[ReadRecipe]{}, err
	}
	return Page[ReadRecipe]{Count: total, Results: out}, nil
}

// Get returns one recipe as seen by actor.
func (s *RecipeService) Get(ctx context.Context, actor domain.Actor, id uint) (*ReadRecipe, error) {
	return s.get(ctx, s.DB, actor, id)
}

func (s *RecipeService) get(ctx context.Context, db *gorm.DB, actor domain.Actor, id uint) (*ReadRecipe, error) {
	r, err := repo.GetRecipe(ctx, db, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrRecipeNotFound
		}
		return nil, err
	}
	out, err := s.hydrate(ctx, db, actor, []domain.Recipe{*r})
	if err != nil {
		return nil, err
	}
	return &out[0], nil
}

// hydrate loads tags, ingredients, authors and the caller's flags for rows
// with one query per kind.
func (s *RecipeService) hydrate(ctx context.Context, db *gorm.DB, actor domain.Actor, rows []domain.Recipe) ([]ReadRecipe, error) {
	out := make([]ReadRecipe, 0, len(rows))
	if len(rows) == 0 {
		return out, nil
	}
	ids := make([]uint, 0, len(rows))
	authorIDs := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		authorIDs = append(authorIDs, r.AuthorID)
	}

	tags, err := repo.TagsForRecipes(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	items, err := repo.IngredientsForRecipes(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	authors, err := repo.UsersByIDs(ctx, db, authorIDs)
	if err != nil {
		return nil, err
	}
	subs, err := repo.SubscribedAmong(ctx, db, actor.UserID, authorIDs)
	if err != nil {
		return nil, err
	}
	fav, err := repo.FavoritedAmong(ctx, db, actor.UserID, ids)
	if err != nil {
		return nil, err
	}
	cart, err := repo.InCartAmong(ctx, db, actor.UserID, ids)
	if err != nil {
		return nil, err
	}

	for _, r := range rows {
		author := ToReadUser(authors[r.AuthorID], subs[r.AuthorID])
		flags := RecipeFlags{IsFavorited: fav[r.ID], IsInShoppingCart: cart[r.ID]}
		out = append(out, ToReadRecipe(r, author, tags[r.ID], items[r.ID], flags, s.url))
	}
	return out, nil
}

// ValidateWriteRecipe checks the payload shape without touching storage and
// decodes the image when one is given. requireImage is set on create.
func ValidateWriteRecipe(in WriteRecipe, requireImage bool) (*media.Image, error) {
	v := &ValidationError{}

	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		v.Add("name", "this field may not be blank")
	case utf8.RuneCountInString(name) > maxRecipeName:
		v.Add("name", fmt.Sprintf("ensure this field has no more than %d characters", maxRecipeName))
	}
	if strings.TrimSpace(in.Text) == "" {
		v.Add("text", "this field may not be blank")
	}
	switch {
	case in.CookingTime < 1:
		v.Add("cooking_time", "ensure this value is greater than or equal to 1")
	case in.CookingTime > MaxCookingTime:
		v.Add("cooking_time", fmt.Sprintf("ensure this value is less than or equal to %d", MaxCookingTime))
	}

	if len(in.Ingredients) == 0 {
		v.Add("ingredients", "at least one ingredient is required")
	}
	seen := make(map[uint]bool, len(in.Ingredients))
	for i, it := range in.Ingredients {
		if it.ID == 0 {
			v.Add(fmt.Sprintf("ingredients.%d.id", i), "this field is required")
		}
		switch {
		case it.Amount < 1:
			v.Add(fmt.Sprintf("ingredients.%d.amount", i), "ensure this value is greater than or equal to 1")
		case it.Amount > MaxAmount:
			v.Add(fmt.Sprintf("ingredients.%d.amount", i), fmt.Sprintf("ensure this value is less than or equal to %d", MaxAmount))
		}
		if it.ID != 0 && seen[it.ID] {
			v.Add("ingredients", "ingredients must not repeat")
		}
		seen[it.ID] = true
	}

	if len(in.Tags) == 0 {
		v.Add("tags", "at least one tag is required")
	}
	seenTag := make(map[uint]bool, len(in.Tags))
	for _, id := range in.Tags {
		if seenTag[id] {
			v.Add("tags", "tags must not repeat")
		}
		seenTag[id] = true
	}

	var img *media.Image
	switch {
	case strings.TrimSpace(in.Image) != "":
		decoded, err := media.DecodeDataURI(in.Image)
		if err != nil {
			v.Add("image", "upload a valid image as a base64 data URI")
		}
		img = decoded
	case requireImage:
		v.Add("image", "this field is required")
	}

	if err := v.Err(); err != nil {
		return nil, err
	}
	return img, nil
}

// checkRefs verifies that every referenced ingredient and tag exists.
func checkRefs(ctx context.Context, db *gorm.DB, in WriteRecipe) error {
	v := &ValidationError{}
	ids := make([]uint, 0, len(in.Ingredients))
	for _, it := range in.Ingredients {
		ids = append(ids, it.ID)
	}
	found, err := repo.IngredientsByIDs(ctx, db, ids)
	if err != nil {
		return err
	}
	for i, it := range in.Ingredients {
		if _, ok := found[it.ID]; !ok {
			v.Add(fmt.Sprintf("ingredients.%d.id", i), fmt.Sprintf("ingredient %d does not exist", it.ID))
		}
	}
	tags, err := repo.TagsByIDs(ctx, db, in.Tags)
	if err != nil {
		return err
	}
	have := make(map[uint]bool, len(tags))
	for _, t := range tags {
		have[t.ID] = true
	}
	for _, id := range in.Tags {
		if !have[id] {
			v.Add("tags", fmt.Sprintf("tag %d does not exist", id))
		}
	}
	return v.Err()
}

func recipeItems(in WriteRecipe) []domain.RecipeIngredient {
	out := make([]domain.RecipeIngredient, 0, len(in.Ingredients))
	for _, it := range in.Ingredients {
		out = append(out, domain.RecipeIngredient{IngredientID: it.ID, Amount: it.Amount})
	}
	return out
}

func (s *RecipeService) storeImage(ctx context.Context, img *media.Image) (string, error) {
	if s.Media == nil {
		return "", errors.New("services: no media store configured")
	}
	return media.Put(ctx, s.Media, img)
}

// discardImage removes a stored image nothing references any more. Errors
// are dropped: the recipe write already has its outcome.
func (s *RecipeService) discardImage(ctx context.Context, key string) {
	if key == "" || s.Media == nil {
		return
	}
	_ = s.Media.Delete(context.WithoutCancel(ctx), key)
}

// Create validates in and writes a new recipe authored by actor.
func (s *RecipeService) Create(ctx context.Context, actor domain.Actor, in WriteRecipe) (*ReadRecipe, error) {
	return s.create(ctx, actor, in, nil)
}

func (s *RecipeService) create(ctx context.Context, actor domain.Actor, in WriteRecipe, after func(tx *gorm.DB, id uint) error) (*ReadRecipe, error) {
	ctx, span := tracer().Start(ctx, "Create", trace.WithAttributes(attribute.Int("user.id", int(actor.UserID))))
	defer span.End()

	if err := checkAccess(domain.RecipeAccess(actor, domain.ActionCreate, domain.Recipe{})); err != nil {
		return nil, err
	}
	img, err := ValidateWriteRecipe(in, true)
	if err != nil {
		return nil, err
	}

	var (
		out    *ReadRecipe
		stored string
	)
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(ctx, tx, in); err != nil {
			return err
		}
		key, err := s.storeImage(ctx, img)
		if err != nil {
			return err
		}
		stored = key
		r := &domain.Recipe{
			AuthorID:    actor.UserID,
			Name:        strings.TrimSpace(in.Name),
			Text:        in.Text,
			CookingTime: in.CookingTime,
			Image:       key,
		}
		if err := repo.CreateRecipe(ctx, tx, r, in.Tags, recipeItems(in)); err != nil {
			return err
		}
		if after != nil {
			if err := after(tx, r.ID); err != nil {
				return err
			}
		}
		out, err = s.get(ctx, tx, actor, r.ID)
		return err
	})
	if err != nil {
		s.discardImage(ctx, stored)
		return nil, err
	}
	span.SetAttributes(attribute.Int("recipe.id", int(out.ID)))
	return out, nil
}

// CreateOnce is Create keyed by an idempotency key: a retry with the same
// key inside the TTL returns the recipe created by the first call and
// replayed=true. An empty key behaves like Create.
func (s *RecipeService) CreateOnce(ctx context.Context, actor domain.Actor, key string, in WriteRecipe) (rec *ReadRecipe, replayed bool, err error) {
	if key == "" || !actor.Authenticated() {
		rec, err = s.Create(ctx, actor, in)
		return rec, false, err
	}
	if rec, ok, err := s.replay(ctx, actor, key); err != nil || ok {
		return rec, ok, err
	}

	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rec, err = s.create(ctx, actor, in, func(tx *gorm.DB, id uint) error {
		_, err := repo.CreateIdempotency(ctx, tx, actor.UserID, ScopeCreateRecipe, key, id, 201, ttl)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won; serve its result.
		rec, ok, rerr := s.replay(ctx, actor, key)
		if rerr != nil || !ok {
			return nil, false, errors.Join(err, rerr)
		}
		return rec, true, nil
	}
	return rec, false, err
}

func (s *RecipeService) replay(ctx context.Context, actor domain.Actor, key string) (*ReadRecipe, bool, error) {
	prev, err := repo.GetIdempotency(ctx, s.DB, actor.UserID, ScopeCreateRecipe, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r, err := s.Get(ctx, actor, prev.ResourceID)
	if err != nil {
		return nil, false, err
	}
	return r, true, nil
}

// Update replaces a recipe's fields, tags and ingredient amounts. Only the
// author or an admin may update. The image is kept when in.Image is empty.
func (s *RecipeService) Update(ctx context.Context, actor domain.Actor, id uint, in WriteRecipe) (*ReadRecipe, error) {
	ctx, span := tracer().Start(ctx, "Update", trace.WithAttributes(
		attribute.Int("user.id", int(actor.UserID)),
		attribute.Int("recipe.id", int(id)),
	))
	defer span.End()

	if !actor.Authenticated() {
		return nil, ErrUnauthenticated
	}

	var (
		out              *ReadRecipe
		stored, replaced string
	)
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetRecipe(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if err := checkAccess(domain.RecipeAccess(actor, domain.ActionUpdate, *cur)); err != nil {
			return err
		}
		img, err := ValidateWriteRecipe(in, false)
		if err != nil {
			return err
		}
		if err := checkRefs(ctx, tx, in); err != nil {
			return err
		}

		cur.Name = strings.TrimSpace(in.Name)
		cur.Text = in.Text
		cur.CookingTime = in.CookingTime
		if img != nil {
			key, err := s.storeImage(ctx, img)
			if err != nil {
				return err
			}
			stored, replaced = key, cur.Image
			cur.Image = key
		}
		if err := repo.UpdateRecipe(ctx, tx, cur, in.Tags, recipeItems(in)); err != nil {
			return err
		}
		out, err = s.get(ctx, tx, actor, id)
		return err
	})
	if err != nil {
		s.discardImage(ctx, stored)
		return nil, err
	}
	s.discardImage(ctx, replaced)
	return out, nil
}

// Delete removes a recipe with everything that references it. Only the
// author or an admin may delete.
func (s *RecipeService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	ctx, span := tracer().Start(ctx, "Delete", trace.WithAttributes(
		attribute.Int("user.id", int(actor.UserID)),
		attribute.Int("recipe.id", int(id)),
	))
	defer span.End()

	if !actor.Authenticated() {
		return ErrUnauthenticated
	}
	var image string
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetRecipe(ctx, tx, id)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrRecipeNotFound
			}
			return err
		}
		if err := checkAccess(domain.RecipeAccess(actor, domain.ActionDelete, *cur)); err != nil {
			return err
		}
		image = cur.Image
		return repo.DeleteRecipe(ctx, tx, id)
	})
	if err != nil {
		return err
	}
	s.discardImage(ctx, image)
	return nil
}
