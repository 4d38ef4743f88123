package repo

import (
	"context"
	"errors"
	"testing"
)

func TestFavoritesAndCart_AddRemoveMembership(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	u := seedUser(t, db, "u")
	r1 := seedRecipe(t, db, u.ID, "r1", nil)
	r2 := seedRecipe(t, db, u.ID, "r2", nil)

	if err := AddFavorite(ctx, db, u.ID, r1.ID); err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if err := AddFavorite(ctx, db, u.ID, r1.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := AddToCart(ctx, db, u.ID, r2.ID); err != nil {
		t.Fatalf("AddToCart: %v", err)
	}
	if err := AddToCart(ctx, db, u.ID, r2.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	fav, err := FavoritedAmong(ctx, db, u.ID, []uint{r1.ID, r2.ID})
	if err != nil || !fav[r1.ID] || fav[r2.ID] {
		t.Fatalf("FavoritedAmong: err=%v got=%v", err, fav)
	}
	cart, err := InCartAmong(ctx, db, u.ID, []uint{r1.ID, r2.ID})
	if err != nil || cart[r1.ID] || !cart[r2.ID] {
		t.Fatalf("InCartAmong: err=%v got=%v", err, cart)
	}
	anon, err := FavoritedAmong(ctx, db, 0, []uint{r1.ID})
	if err != nil || len(anon) != 0 {
		t.Fatalf("anonymous lookup must be empty: err=%v got=%v", err, anon)
	}

	if err := RemoveFavorite(ctx, db, u.ID, r1.ID); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if err := RemoveFavorite(ctx, db, u.ID, r1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := RemoveFromCart(ctx, db, u.ID, r1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for absent cart entry, got %v", err)
	}
}

func TestSubscriptions_Lifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	reader := seedUser(t, db, "reader")
	a1 := seedUser(t, db, "a1")
	a2 := seedUser(t, db, "a2")

	if err := CreateSubscription(ctx, db, reader.ID, a1.ID); err != nil {
		t.Fatalf("subscribe a1: %v", err)
	}
	if err := CreateSubscription(ctx, db, reader.ID, a2.ID); err != nil {
		t.Fatalf("subscribe a2: %v", err)
	}
	if err := CreateSubscription(ctx, db, reader.ID, a1.ID); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	authors, total, err := ListSubscribedAuthors(ctx, db, reader.ID, 0, 10)
	if err != nil || total != 2 || len(authors) != 2 || authors[0].ID != a2.ID {
		t.Fatalf("ListSubscribedAuthors: err=%v total=%d got=%+v", err, total, authors)
	}

	subs, err := SubscribedAmong(ctx, db, reader.ID, []uint{a1.ID, reader.ID})
	if err != nil || !subs[a1.ID] || subs[reader.ID] {
		t.Fatalf("SubscribedAmong: err=%v got=%v", err, subs)
	}

	if err := DeleteSubscription(ctx, db, reader.ID, a1.ID); err != nil {
		t.Fatalf("DeleteSubscription: %v", err)
	}
	if err := DeleteSubscription(ctx, db, reader.ID, a1.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
