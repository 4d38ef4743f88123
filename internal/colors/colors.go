// Package colors maps hex color codes to CSS color names.
package colors

import (
	"errors"
	"fmt"
	"image/color"
	"sort"
	"strings"

	"golang.org/x/image/colornames"
)

// ErrNoName is returned when a well-formed hex code has no CSS name.
var ErrNoName = errors.New("no name for this color")

// ErrInvalidHex is returned for strings that are not #RGB or #RRGGBB.
var ErrInvalidHex = errors.New("invalid hex color")

// byHex maps "#rrggbb" to a color name. When several names share a value
// (gray/grey, aqua/cyan, ...) the alphabetically first one wins.
var byHex = func() map[string]string {
	names := append([]string(nil), colornames.Names...)
	sort.Strings(names)
	m := make(map[string]string, len(names))
	for _, n := range names {
		h := toHex(colornames.Map[n])
		if _, ok := m[h]; !ok {
			m[h] = n
		}
	}
	return m
}()

func toHex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// Normalize validates a #RGB or #RRGGBB code and returns it as lowercase
// #rrggbb.
func Normalize(hex string) (string, error) {
	h := strings.ToLower(strings.TrimSpace(hex))
	if !strings.HasPrefix(h, "#") {
		return "", ErrInvalidHex
	}
	h = h[1:]
	for _, r := range h {
		if !(r >= '0' && r <= '9' || r >= 'a' && r <= 'f') {
			return "", ErrInvalidHex
		}
	}
	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	case 6:
	default:
		return "", ErrInvalidHex
	}
	return "#" + h, nil
}

// HexToName returns the CSS name of a hex color code.
func HexToName(hex string) (string, error) {
	h, err := Normalize(hex)
	if err != nil {
		return "", err
	}
	name, ok := byHex[h]
	if !ok {
		return "", ErrNoName
	}
	return name, nil
}

// IsName reports whether s is a known CSS color name.
func IsName(s string) bool {
	_, ok := colornames.Map[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// Resolve accepts either a hex code or a color name and returns the name.
func Resolve(s string) (string, error) {
	if strings.HasPrefix(strings.TrimSpace(s), "#") {
		return HexToName(s)
	}
	if IsName(s) {
		return strings.ToLower(strings.TrimSpace(s)), nil
	}
	return "", ErrInvalidHex
}
