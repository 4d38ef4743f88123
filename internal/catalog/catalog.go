// Package catalog loads the ingredient catalog from a data file and inserts
// it into the database. JSON and YAML are accepted; both are a list of
// {name, measurement_unit} records:
//
//	[{"name": "абрикосовое варенье", "measurement_unit": "г"}, ...]
//
//	- name: абрикосовое варенье
//	  measurement_unit: г
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

// Format selects the decoder.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
)

// Entry is one ingredient record of an import file.
type Entry struct {
	Name            string `json:"name"             yaml:"name"`
	MeasurementUnit string `json:"measurement_unit" yaml:"measurement_unit"`
}

// Result summarizes an import.
type Result struct {
	Read     int   // records in the file
	Skipped  int   // blank or repeated within the file
	Inserted int64 // new rows; the rest already existed
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return JSON, nil
	case ".yaml", ".yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("catalog: unsupported file type %q", filepath.Ext(path))
	}
}

// Decode parses r in the given format.
func Decode(r io.Reader, f Format) ([]Entry, error) {
	var out []Entry
	switch f {
	case JSON:
		if err := json.NewDecoder(r).Decode(&out); err != nil {
			return nil, fmt.Errorf("catalog: parse json: %w", err)
		}
	case YAML:
		if err := yaml.NewDecoder(r).Decode(&out); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("catalog: parse yaml: %w", err)
		}
	default:
		return nil, fmt.Errorf("catalog: unsupported format %q", f)
	}
	return out, nil
}

// normalize trims entries and drops blanks and in-file duplicates, keeping
// the first occurrence.
func normalize(entries []Entry) ([]domain.Ingredient, int) {
	seen := make(map[Entry]bool, len(entries))
	rows := make([]domain.Ingredient, 0, len(entries))
	skipped := 0
	for _, e := range entries {
		e.Name = strings.TrimSpace(e.Name)
		e.MeasurementUnit = strings.TrimSpace(e.MeasurementUnit)
		if e.Name == "" || e.MeasurementUnit == "" || seen[e] {
			skipped++
			continue
		}
		seen[e] = true
		rows = append(rows, domain.Ingredient{Name: e.Name, MeasurementUnit: e.MeasurementUnit})
	}
	return rows, skipped
}

// Import inserts entries, skipping pairs already in the catalog.
func Import(ctx context.Context, db *gorm.DB, entries []Entry) (Result, error) {
	rows, skipped := normalize(entries)
	res := Result{Read: len(entries), Skipped: skipped}
	n, err := repo.InsertIngredientsSkipExisting(ctx, db, rows, 500)
	if err != nil {
		return res, fmt.Errorf("catalog: insert: %w", err)
	}
	res.Inserted = n
	return res, nil
}

// ImportFile reads path and imports it.
func ImportFile(ctx context.Context, db *gorm.DB, path string) (Result, error) {
	f, err := FormatFor(path)
	if err != nil {
		return Result{}, err
	}
	fh, err := os.Open(path)
	if err != nil {
		return Result{}, err
	}
	defer fh.Close()

	entries, err := Decode(fh, f)
	if err != nil {
		return Result{}, err
	}
	return Import(ctx, db, entries)
}
