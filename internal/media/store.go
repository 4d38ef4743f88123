package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tbourn/foodgram-backend/internal/config"
)

// KeyPrefix is where recipe images live inside a store.
const KeyPrefix = "recipes/images/"

// Store persists images under a key and maps keys to public URLs. Delete
// of a missing key is not an error.
type Store interface {
	Save(ctx context.Context, key string, img *Image) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewKey returns a fresh storage key for an image with the given extension.
func NewKey(ext string) string {
	return KeyPrefix + uuid.NewString() + "." + ext
}

// Put stores img under a fresh key and returns that key.
func Put(ctx context.Context, s Store, img *Image) (string, error) {
	if img == nil {
		return "", ErrInvalidImage
	}
	key := NewKey(img.Ext)
	if err := s.Save(ctx, key, img); err != nil {
		return "", err
	}
	return key, nil
}

// New builds the store selected by cfg.Backend.
func New(ctx context.Context, cfg config.MediaConfig) (Store, error) {
	switch cfg.Backend {
	case "", "local":
		return &LocalStore{Root: cfg.Root, BaseURL: cfg.URL}, nil
	case "s3":
		return NewS3Store(ctx, cfg)
	default:
		return nil, fmt.Errorf("media: unsupported backend %q", cfg.Backend)
	}
}

// LocalStore writes images below Root and serves them from BaseURL.
type LocalStore struct {
	Root    string
	BaseURL string
}

func (s *LocalStore) path(key string) (string, error) {
	clean := path.Clean("/" + key)
	if strings.Contains(key, "..") || clean == "/" {
		return "", errors.New("media: invalid key")
	}
	return filepath.Join(s.Root, filepath.FromSlash(strings.TrimPrefix(clean, "/"))), nil
}

// Save writes the image file, creating parent directories as needed.
func (s *LocalStore) Save(_ context.Context, key string, img *Image) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dst, img.Data, 0o644)
}

// Delete removes the image file.
func (s *LocalStore) Delete(_ context.Context, key string) error {
	dst, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(dst); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// URL joins BaseURL and key.
func (s *LocalStore) URL(key string) string {
	return joinURL(s.BaseURL, key)
}

func joinURL(base, key string) string {
	if key == "" {
		return ""
	}
	if base == "" {
		return "/" + strings.TrimPrefix(key, "/")
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimPrefix(key, "/")
}
