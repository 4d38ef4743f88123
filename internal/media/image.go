// Package media decodes recipe images sent as base64 data URIs and stores
// them on a pluggable backend (local filesystem or S3-compatible storage).
package media

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/webp"
)

// ErrInvalidImage is returned for payloads that are not a base64 data URI of
// a supported image type.
var ErrInvalidImage = errors.New("invalid image")

// MaxImageBytes caps the decoded image size.
const MaxImageBytes = 10 << 20

// Image is a decoded upload ready to be stored.
type Image struct {
	Data        []byte
	Ext         string // file extension without the dot
	ContentType string
}

var extByType = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/gif":  "gif",
	"image/webp": "webp",
}

// DecodeDataURI parses "data:image/<type>;base64,<payload>", checks that the
// payload really is an image of a supported type and returns its bytes.
func DecodeDataURI(s string) (*Image, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return nil, ErrInvalidImage
	}
	meta, payload, ok := strings.Cut(s[len("data:"):], ",")
	if !ok || payload == "" {
		return nil, ErrInvalidImage
	}
	mime, enc, ok := strings.Cut(meta, ";")
	if !ok || enc != "base64" {
		return nil, ErrInvalidImage
	}
	mime = strings.ToLower(mime)
	ext, ok := extByType[mime]
	if !ok {
		return nil, ErrInvalidImage
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes {
		return nil, ErrInvalidImage
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		if data, err = base64.RawStdEncoding.DecodeString(payload); err != nil {
			return nil, ErrInvalidImage
		}
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err != nil || !sameFormat(format, ext) {
		return nil, ErrInvalidImage
	}
	if mime == "image/jpg" {
		mime = "image/jpeg"
	}
	return &Image{Data: data, Ext: ext, ContentType: mime}, nil
}

func sameFormat(decoded, ext string) bool {
	if decoded == "jpeg" {
		return ext == "jpg"
	}
	return decoded == ext
}
