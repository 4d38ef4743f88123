package repo

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/foodgram-backend/internal/domain"
)

var dbSeq atomic.Int64

// newTestDB opens a private in-memory database with foreign keys enforced.
// With no models given it migrates the full schema; pass models to migrate a
// subset, or nil to migrate nothing.
func newTestDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db.DB(): %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if len(migrate) == 0 {
		migrate = domain.All()
	}
	if len(migrate) == 1 && migrate[0] == nil {
		return db
	}
	if err := db.AutoMigrate(migrate...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	u := &domain.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "First",
		LastName:     "Last",
		PasswordHash: "x",
	}
	if err := CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return u
}

func seedTag(t *testing.T, db *gorm.DB, name, slug string) *domain.Tag {
	t.Helper()
	tag := &domain.Tag{Name: name, Slug: slug, Color: "green"}
	if err := CreateTag(context.Background(), db, tag); err != nil {
		t.Fatalf("seed tag %s: %v", slug, err)
	}
	return tag
}

func seedIngredient(t *testing.T, db *gorm.DB, name, unit string) *domain.Ingredient {
	t.Helper()
	in := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	if err := CreateIngredient(context.Background(), db, in); err != nil {
		t.Fatalf("seed ingredient %s: %v", name, err)
	}
	return in
}

func seedRecipe(t *testing.T, db *gorm.DB, author uint, name string, tags []uint, items ...domain.RecipeIngredient) *domain.Recipe {
	t.Helper()
	r := &domain.Recipe{AuthorID: author, Name: name, Text: "text", CookingTime: 10, Image: "recipes/images/x.png"}
	err := db.Transaction(func(tx *gorm.DB) error {
		return CreateRecipe(context.Background(), tx, r, tags, items)
	})
	if err != nil {
		t.Fatalf("seed recipe %s: %v", name, err)
	}
	return r
}

func item(ingredientID uint, amount int) domain.RecipeIngredient {
	return domain.RecipeIngredient{IngredientID: ingredientID, Amount: amount}
}
