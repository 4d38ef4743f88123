package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/media"
	"github.com/tbourn/foodgram-backend/internal/repo"
	"github.com/tbourn/foodgram-backend/internal/services"
)

func init() { gin.SetMode(gin.TestMode) }

var dbSeq atomic.Int64

// env is a router over real services and an in-memory database. Callers
// authenticate with the X-User-ID header.
type env struct {
	t  *testing.T
	db *gorm.DB
	r  *gin.Engine
}

func newEnv(t *testing.T) *env {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:h_%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))
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

	store := &media.LocalStore{Root: t.TempDir(), BaseURL: "http://testserver/media/"}
	users := &services.UserService{DB: db}
	h := New(Services{
		Recipes:       &services.RecipeService{DB: db, Media: store},
		Tags:          &services.TagService{DB: db},
		Ingredients:   &services.IngredientService{DB: db},
		Users:         users,
		Subscriptions: &services.SubscriptionService{DB: db, Media: store},
		Collections:   &services.CollectionService{DB: db, Media: store},
		ShoppingList:  &services.ShoppingListService{DB: db},
	}, Options{})

	r := gin.New()
	r.Use(middleware.RequestID())
	r.Use(middleware.Authenticate(middleware.AuthOptions{TrustUserHeader: true, Lookup: users.Lookup}))
	r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil))
	h.Routes(r.Group("/api"))
	return &env{t: t, db: db, r: r}
}

// do sends a JSON request as uid (0 for anonymous).
func (e *env) do(method, path string, uid uint, body any, headers ...string) *httptest.ResponseRecorder {
	e.t.Helper()
	var rd *bytes.Reader
	switch b := body.(type) {
	case nil:
		rd = bytes.NewReader(nil)
	case string:
		rd = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		require.NoError(e.t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if uid != 0 {
		req.Header.Set(middleware.HeaderUserID, strconv.FormatUint(uint64(uid), 10))
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.r.ServeHTTP(w, req)
	return w
}

func (e *env) user(username string) uint {
	e.t.Helper()
	u := &domain.User{
		Email:        username + "@example.com",
		Username:     username,
		FirstName:    "Vasya",
		LastName:     "Pupkin",
		PasswordHash: "x",
	}
	require.NoError(e.t, repo.CreateUser(context.Background(), e.db, u))
	return u.ID
}

func (e *env) admin() uint {
	e.t.Helper()
	id := e.user("admin")
	require.NoError(e.t, e.db.Model(&domain.User{}).Where("id = ?", id).Update("is_admin", true).Error)
	return id
}

func (e *env) tag(name, slug string) uint {
	e.t.Helper()
	tag := &domain.Tag{Name: name, Slug: slug, Color: "green"}
	require.NoError(e.t, repo.CreateTag(context.Background(), e.db, tag))
	return tag.ID
}

func (e *env) ingredient(name, unit string) uint {
	e.t.Helper()
	in := &domain.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(e.t, repo.CreateIngredient(context.Background(), e.db, in))
	return in.ID
}

func pngDataURI(t *testing.T) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func recipeBody(t *testing.T, name string, tags []uint, items ...services.IngredientAmountIn) services.WriteRecipe {
	t.Helper()
	return services.WriteRecipe{
		Ingredients: items,
		Tags:        tags,
		Image:       pngDataURI(t),
		Name:        name,
		Text:        "Mix and bake.",
		CookingTime: 20,
	}
}

func amt(id uint, amount int) services.IngredientAmountIn {
	return services.IngredientAmountIn{ID: id, Amount: amount}
}

// createRecipe posts a recipe as uid and returns its id.
func (e *env) createRecipe(uid uint, name string, tags []uint, items ...services.IngredientAmountIn) uint {
	e.t.Helper()
	w := e.do(http.MethodPost, "/api/recipes", uid, recipeBody(e.t, name, tags, items...))
	require.Equal(e.t, http.StatusCreated, w.Code, w.Body.String())
	var r services.ReadRecipe
	decode(e.t, w, &r)
	return r.ID
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorOf(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	decode(t, w, &er)
	return er
}

func itoa(id uint) string { return strconv.FormatUint(uint64(id), 10) }
