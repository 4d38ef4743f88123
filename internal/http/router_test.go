package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/foodgram-backend/internal/auth"
	"github.com/tbourn/foodgram-backend/internal/config"
	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/http/middleware"
	"github.com/tbourn/foodgram-backend/internal/media"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

func init() { gin.SetMode(gin.TestMode) }

var dbSeq atomic.Int64

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", dbSeq.Add(1))
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
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:          "/api",
		PageSize:             6,
		ShoppingListFilename: "shopping_list.txt",
		RateRPS:              100,
		RateBurst:            10,
		Auth:                 config.AuthConfig{JWTSecret: "test-secret"},
		Media:                config.MediaConfig{Backend: "local", URL: "/media/"},
		IdempotencyTTL:       time.Hour,
		OTEL:                 config.OTELConfig{ServiceName: "test-svc"},
	}
}

func newRouter(t *testing.T, cfg config.Config) (*gin.Engine, *gorm.DB, *media.LocalStore) {
	t.Helper()
	db := newTestDB(t)
	store := &media.LocalStore{Root: t.TempDir(), BaseURL: cfg.Media.URL}
	r := gin.New()
	RegisterRoutes(r, db, store, cfg)
	return r, db, store
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRegisterRoutes_CORSAllowAll_Health_Metrics_Fallbacks(t *testing.T) {
	r, _, _ := newRouter(t, testConfig())

	w := serve(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected X-Request-ID header to be set")
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "foodgram_recipes_created_total") {
		t.Fatalf("GET /metrics bad: code=%d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	w = serve(r, httptest.NewRequest(http.MethodPost, "/health", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	cfg := testConfig()
	cfg.CORS = config.CORSConfig{AllowedOrigins: []string{"http://example.com"}}
	r, _, _ := newRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("expected ACAO echo, got %q", got)
	}
}

func TestRegisterRoutes_TokenAuth(t *testing.T) {
	cfg := testConfig()
	r, db, _ := newRouter(t, cfg)

	u := &domain.User{Email: "a@example.com", Username: "alice", FirstName: "A", LastName: "B", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	tok, err := auth.SignToken([]byte(cfg.Auth.JWTSecret), u.ID, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Token "+tok)
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/users/me = %d %s", w.Code, w.Body.String())
	}
	var me struct {
		ID       uint   `json:"id"`
		Username string `json:"username"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &me); err != nil || me.ID != u.ID {
		t.Fatalf("unexpected body %s (%v)", w.Body.String(), err)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Token not-a-jwt")
	w = serve(r, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token expected 401, got %d", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("401 must still carry CORS headers")
	}

	// X-User-ID is ignored unless the proxy header is trusted
	req = httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set(middleware.HeaderUserID, "1")
	if w = serve(r, req); w.Code != http.StatusUnauthorized {
		t.Fatalf("untrusted X-User-ID expected 401, got %d", w.Code)
	}
}

func TestRegisterRoutes_PublicCatalogAndGzip(t *testing.T) {
	r, db, _ := newRouter(t, testConfig())
	ctx := context.Background()
	for _, name := range []string{"flour", "flax", "egg"} {
		if err := repo.CreateIngredient(ctx, db, &domain.Ingredient{Name: name, MeasurementUnit: "g"}); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	req := httptest.NewRequest(http.MethodGet, "/api/ingredients?name=fl", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	w := serve(r, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET ingredients = %d", w.Code)
	}
	if w.Header().Get("Content-Encoding") != "gzip" {
		t.Fatalf("expected gzip response, headers=%v", w.Header())
	}

	w = serve(r, httptest.NewRequest(http.MethodGet, "/api/ingredients?name=fl", nil))
	var list []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil || len(list) != 2 {
		t.Fatalf("prefix search: %s (%v)", w.Body.String(), err)
	}
}

func TestRegisterRoutes_LocalMediaServed(t *testing.T) {
	r, _, store := newRouter(t, testConfig())
	img := &media.Image{Data: []byte("not really a png"), Ext: "png"}
	if err := store.Save(context.Background(), "recipes/images/x.png", img); err != nil {
		t.Fatalf("save: %v", err)
	}
	w := serve(r, httptest.NewRequest(http.MethodGet, "/media/recipes/images/x.png", nil))
	if w.Code != http.StatusOK || w.Body.String() != "not really a png" {
		t.Fatalf("GET media = %d %q", w.Code, w.Body.String())
	}
}

func TestRegisterRoutes_IdempotencyLookupOnlyOnCreate(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.TrustUserHeader = true
	r, db, _ := newRouter(t, cfg)

	u := &domain.User{Email: "a@example.com", Username: "alice", FirstName: "A", LastName: "B", PasswordHash: "x"}
	if err := repo.CreateUser(context.Background(), db, u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	if _, err := repo.CreateIdempotency(context.Background(), db, u.ID, "POST /recipes", "k-1", 77, 201, time.Hour); err != nil {
		t.Fatalf("seed idempotency: %v", err)
	}

	// malformed keys are rejected everywhere
	req := httptest.NewRequest(http.MethodPost, "/api/tags", bytes.NewBufferString("{}"))
	req.Header.Set(middleware.HeaderUserID, fmt.Sprint(u.ID))
	req.Header.Set(middleware.HeaderIdempotencyKey, "bad key!")
	if w := serve(r, req); w.Code != http.StatusBadRequest {
		t.Fatalf("malformed key expected 400, got %d", w.Code)
	}

	// a stored key for recipe creation does not leak onto other routes
	req = httptest.NewRequest(http.MethodPost, "/api/tags", bytes.NewBufferString(`{"name":"x","color":"#008000","slug":"x"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.HeaderUserID, fmt.Sprint(u.ID))
	req.Header.Set(middleware.HeaderIdempotencyKey, "k-1")
	if w := serve(r, req); w.Code != http.StatusForbidden {
		t.Fatalf("member tag create expected 403, got %d", w.Code)
	}
}

func Test_limitBody_Middleware(t *testing.T) {
	r := gin.New()
	r.Use(limitBody(10))
	r.POST("/echo", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.String(http.StatusRequestEntityTooLarge, "too big")
			return
		}
		c.String(http.StatusOK, "ok")
	})

	w := serve(r, httptest.NewRequest(http.MethodPost, "/echo", bytes.NewBufferString("0123456789AB")))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 from limitBody, got %d", w.Code)
	}
	if maxBodyBytes <= media.MaxImageBytes {
		t.Fatalf("body limit %d cannot carry an encoded image", maxBodyBytes)
	}
}

func Test_groupWithPrefix(t *testing.T) {
	r := gin.New()
	groupWithPrefix(r, "/").GET("/one", func(c *gin.Context) { c.String(http.StatusOK, "one") })
	groupWithPrefix(r, "").GET("/two", func(c *gin.Context) { c.String(http.StatusOK, "two") })
	groupWithPrefix(r, "/api").GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })

	for path, want := range map[string]string{"/one": "one", "/two": "two", "/api/ping": "pong"} {
		w := serve(r, httptest.NewRequest(http.MethodGet, path, nil))
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Fatalf("GET %s got %d %q", path, w.Code, w.Body.String())
		}
	}
	if apiRoot("") != "/" || apiRoot("/api") != "/api" {
		t.Fatalf("apiRoot")
	}
}
