package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
)

func TestCreateRecipe_WritesChildrenInOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "chef")
	soup := seedTag(t, db, "Soup", "soup")
	lunch := seedTag(t, db, "Lunch", "lunch")
	water := seedIngredient(t, db, "water", "ml")
	beet := seedIngredient(t, db, "beet", "pcs")

	r := seedRecipe(t, db, u.ID, "borscht", []uint{soup.ID, lunch.ID}, item(water.ID, 500), item(beet.ID, 2))

	tags, err := TagsForRecipes(ctx, db, []uint{r.ID})
	if err != nil || len(tags[r.ID]) != 2 || tags[r.ID][0].Slug != "lunch" {
		t.Fatalf("tags: err=%v got=%+v", err, tags)
	}
	items, err := IngredientsForRecipes(ctx, db, []uint{r.ID})
	if err != nil {
		t.Fatalf("ingredients: %v", err)
	}
	got := items[r.ID]
	if len(got) != 2 || got[0].Name != "water" || got[0].Amount != 500 || got[1].Name != "beet" || got[1].MeasurementUnit != "pcs" {
		t.Fatalf("ingredient rows unexpected: %+v", got)
	}
}

func TestCreateRecipe_DuplicateIngredientRollsBack(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "chef")
	salt := seedIngredient(t, db, "salt", "g")

	r := &domain.Recipe{AuthorID: u.ID, Name: "bad", Text: "t", CookingTime: 1, Image: "i"}
	err := db.Transaction(func(tx *gorm.DB) error {
		return CreateRecipe(ctx, tx, r, nil, []domain.RecipeIngredient{item(salt.ID, 1), item(salt.ID, 2)})
	})
	if err == nil {
		t.Fatalf("expected unique violation on repeated ingredient")
	}
	var n int64
	db.Model(&domain.Recipe{}).Count(&n)
	if n != 0 {
		t.Fatalf("recipe row must be rolled back, found %d", n)
	}
}

func TestUpdateRecipe_ReplacesChildren(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "chef")
	a := seedTag(t, db, "A", "a")
	b := seedTag(t, db, "B", "b")
	flour := seedIngredient(t, db, "flour", "g")
	eggs := seedIngredient(t, db, "eggs", "pcs")
	r := seedRecipe(t, db, u.ID, "bread", []uint{a.ID}, item(flour.ID, 500))

	r.Name = "pancakes"
	r.CookingTime = 20
	err := db.Transaction(func(tx *gorm.DB) error {
		return UpdateRecipe(ctx, tx, r, []uint{b.ID}, []domain.RecipeIngredient{item(eggs.ID, 3), item(flour.ID, 200)})
	})
	if err != nil {
		t.Fatalf("UpdateRecipe: %v", err)
	}

	got, err := GetRecipe(ctx, db, r.ID)
	if err != nil || got.Name != "pancakes" || got.CookingTime != 20 {
		t.Fatalf("GetRecipe: err=%v got=%+v", err, got)
	}
	tags, _ := TagsForRecipes(ctx, db, []uint{r.ID})
	if len(tags[r.ID]) != 1 || tags[r.ID][0].ID != b.ID {
		t.Fatalf("tags not replaced: %+v", tags[r.ID])
	}
	items, _ := IngredientsForRecipes(ctx, db, []uint{r.ID})
	if len(items[r.ID]) != 2 || items[r.ID][0].ID != eggs.ID || items[r.ID][1].Amount != 200 {
		t.Fatalf("ingredients not replaced: %+v", items[r.ID])
	}

	missing := &domain.Recipe{ID: 999, Name: "x", Text: "x", CookingTime: 1, Image: "i"}
	err = db.Transaction(func(tx *gorm.DB) error { return UpdateRecipe(ctx, tx, missing, nil, nil) })
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing recipe, got %v", err)
	}
}

func TestDeleteRecipe_RemovesEverything(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "chef")
	fan := seedUser(t, db, "fan")
	tag := seedTag(t, db, "T", "t")
	salt := seedIngredient(t, db, "salt", "g")
	r := seedRecipe(t, db, u.ID, "fries", []uint{tag.ID}, item(salt.ID, 5))
	if err := AddFavorite(ctx, db, fan.ID, r.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := AddToCart(ctx, db, fan.ID, r.ID); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error { return DeleteRecipe(ctx, tx, r.ID) }); err != nil {
		t.Fatalf("DeleteRecipe: %v", err)
	}
	for _, m := range []any{&domain.Recipe{}, &domain.RecipeTag{}, &domain.RecipeIngredient{}, &domain.FavoriteRecipe{}, &domain.ShoppingCartItem{}} {
		var n int64
		db.Model(m).Count(&n)
		if n != 0 {
			t.Fatalf("%T rows left after delete: %d", m, n)
		}
	}
	if err := db.Transaction(func(tx *gorm.DB) error { return DeleteRecipe(ctx, tx, r.ID) }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestListRecipes_Filters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	breakfast := seedTag(t, db, "Breakfast", "breakfast")
	dinner := seedTag(t, db, "Dinner", "dinner")
	lunch := seedTag(t, db, "Lunch", "lunch")

	r1 := seedRecipe(t, db, alice.ID, "r1", []uint{breakfast.ID})
	r2 := seedRecipe(t, db, alice.ID, "r2", []uint{dinner.ID, breakfast.ID})
	r3 := seedRecipe(t, db, bob.ID, "r3", []uint{lunch.ID})
	_ = r1

	all, total, err := ListRecipes(ctx, db, RecipeFilter{}, 0, 10)
	if err != nil || total != 3 || all[0].ID != r3.ID {
		t.Fatalf("newest first expected: err=%v total=%d first=%+v", err, total, all)
	}

	byAuthor, total, _ := ListRecipes(ctx, db, RecipeFilter{AuthorID: alice.ID}, 0, 10)
	if total != 2 || len(byAuthor) != 2 {
		t.Fatalf("author filter: total=%d", total)
	}

	// OR across tags, no duplicates when a recipe matches several tags.
	byTags, total, _ := ListRecipes(ctx, db, RecipeFilter{TagSlugs: []string{"breakfast", "dinner"}}, 0, 10)
	if total != 2 || len(byTags) != 2 {
		t.Fatalf("tag filter: total=%d got=%+v", total, byTags)
	}

	if err := AddFavorite(ctx, db, bob.ID, r2.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := AddToCart(ctx, db, bob.ID, r3.ID); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	fav, total, _ := ListRecipes(ctx, db, RecipeFilter{FavoritedBy: bob.ID}, 0, 10)
	if total != 1 || fav[0].ID != r2.ID {
		t.Fatalf("favorited filter: %+v", fav)
	}
	cart, total, _ := ListRecipes(ctx, db, RecipeFilter{InCartOf: bob.ID, TagSlugs: []string{"lunch"}}, 0, 10)
	if total != 1 || cart[0].ID != r3.ID {
		t.Fatalf("cart+tag filter: %+v", cart)
	}

	page, total, _ := ListRecipes(ctx, db, RecipeFilter{}, 2, 2)
	if total != 3 || len(page) != 1 {
		t.Fatalf("paging: total=%d len=%d", total, len(page))
	}
}
