package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/media"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

var dbSeq atomic.Int64

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:svc_%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, repo.AutoMigrate(db))
	return db
}

func newStore(t *testing.T) *media.LocalStore {
	t.Helper()
	return &media.LocalStore{Root: t.TempDir(), BaseURL: "http://testserver/media/"}
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func seedUser(t *testing.T, db *gorm.DB, username string) domain.Actor {
	t.Helper()
	u := &domain.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Vasya",
		LastName:     "Pupkin",
		PasswordHash: "x",
	}
	require.NoError(t, repo.CreateUser(context.Background(), db, u))
	return domain.Actor{UserID: u.ID}
}

func seedAdmin(t *testing.T, db *gorm.DB) domain.Actor {
	t.Helper()
	a := seedUser(t, db, "admin")
	require.NoError(t, db.Model(&domain.User{}).Where("id = ?", a.UserID).Update("is_admin", true).Error)
	a.IsAdmin = true
	return a
}

func seedTag(t *testing.T, db *gorm.DB, name, slug string) uint {
	t.Helper()
	tag := &domain.Tag{Name: name, Slug: slug, Color: "green"}
	require.NoError(t, repo.CreateTag(context.Background(), db, tag))
	return tag.ID
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) uint {
	t.Helper()
	in := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, repo.CreateIngredient(context.Background(), db, in))
	return in.ID
}

// fixture is a small catalog shared by recipe tests.
type fixture struct {
	db        *gorm.DB
	store     *media.LocalStore
	recipes   *RecipeService
	author    domain.Actor
	reader    domain.Actor
	breakfast uint
	lunch     uint
	flour     uint
	egg       uint
	milk      uint
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	store := newStore(t)
	f := &fixture{
		db:      db,
		store:   store,
		recipes: &RecipeService{DB: db, Media: store},
		author:  seedUser(t, db, "author"),
		reader:  seedUser(t, db, "reader"),
	}
	f.breakfast = seedTag(t, db, "Breakfast", "breakfast")
	f.lunch = seedTag(t, db, "Lunch", "lunch")
	f.flour = seedIngredient(t, db, "flour", "g")
	f.egg = seedIngredient(t, db, "egg", "pcs")
	f.milk = seedIngredient(t, db, "milk", "ml")
	return f
}

func (f *fixture) payload(t *testing.T, name string, tags []uint, items ...IngredientAmountIn) WriteRecipe {
	t.Helper()
	return WriteRecipe{
		Ingredients: items,
		Tags:        tags,
		Image:       pngDataURI(t),
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 15,
	}
}

func (f *fixture) create(t *testing.T, actor domain.Actor, name string, tags []uint, items ...IngredientAmountIn) *ReadRecipe {
	t.Helper()
	r, err := f.recipes.Create(context.Background(), actor, f.payload(t, name, tags, items...))
	require.NoError(t, err)
	return r
}

func amt(id uint, amount int) IngredientAmountIn {
	return IngredientAmountIn{ID: id, Amount: amount}
}
