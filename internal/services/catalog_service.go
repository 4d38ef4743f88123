// Package services – catalog services
//
// TagService and IngredientService own the two admin-managed catalogs.
// Reads are public; writes require an admin actor.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/colors"
	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

var slugRE = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

// ValidSlug reports whether s is a URL slug: letters, digits, '-' and '_'.
func ValidSlug(s string) bool { return slugRE.MatchString(s) }

func checkAccess(d domain.Decision) error {
	switch d {
	case domain.DenyUnauthenticated:
		return ErrUnauthenticated
	case domain.DenyForbidden:
		return ErrForbidden
	default:
		return nil
	}
}

// TagService manages the tag catalog.
type TagService struct {
	DB *gorm.DB
}

// List returns all tags, optionally filtered by name prefix.
func (s *TagService) List(ctx context.Context, prefix string) ([]ReadTag, error) {
	rows, err := repo.ListTags(ctx, s.DB, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]ReadTag, 0, len(rows))
	for _, t := range rows {
		out = append(out, ToReadTag(t))
	}
	return out, nil
}

// Get returns one tag.
func (s *TagService) Get(ctx context.Context, id uint) (*ReadTag, error) {
	t, err := repo.GetTag(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	rt := ToReadTag(*t)
	return &rt, nil
}

// validateTag trims the payload and converts the hex color to its name.
func validateTag(in WriteTag) (domain.Tag, error) {
	v := &ValidationError{}
	name := strings.TrimSpace(in.Name)
	slug := strings.TrimSpace(in.Slug)
	if name == "" {
		v.Add("name", "this field may not be blank")
	}
	if !ValidSlug(slug) {
		v.Add("slug", "enter a valid slug of letters, numbers, underscores or hyphens")
	}
	color, err := colors.HexToName(in.Color)
	switch {
	case errors.Is(err, colors.ErrNoName):
		v.Add("color", colors.ErrNoName.Error())
	case err != nil:
		v.Add("color", "enter a hex color such as #RRGGBB")
	}
	if err := v.Err(); err != nil {
		return domain.Tag{}, err
	}
	return domain.Tag{Name: name, Slug: slug, Color: color}, nil
}

// Create adds a tag. Admin only.
func (s *TagService) Create(ctx context.Context, actor domain.Actor, in WriteTag) (*ReadTag, error) {
	if err := checkAccess(domain.CatalogAccess(actor, domain.ActionCreate)); err != nil {
		return nil, err
	}
	t, err := validateTag(in)
	if err != nil {
		return nil, err
	}
	if err := repo.CreateTag(ctx, s.DB, &t); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateTag
		}
		return nil, err
	}
	rt := ToReadTag(t)
	return &rt, nil
}

// Update overwrites a tag. Admin only.
func (s *TagService) Update(ctx context.Context, actor domain.Actor, id uint, in WriteTag) (*ReadTag, error) {
	if err := checkAccess(domain.CatalogAccess(actor, domain.ActionUpdate)); err != nil {
		return nil, err
	}
	next, err := validateTag(in)
	if err != nil {
		return nil, err
	}
	cur, err := repo.GetTag(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrTagNotFound
		}
		return nil, err
	}
	cur.Name, cur.Slug, cur.Color = next.Name, next.Slug, next.Color
	if err := repo.SaveTag(ctx, s.DB, cur); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateTag
		}
		return nil, err
	}
	rt := ToReadTag(*cur)
	return &rt, nil
}

// Delete removes a tag. Admin only.
func (s *TagService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if err := checkAccess(domain.CatalogAccess(actor, domain.ActionDelete)); err != nil {
		return err
	}
	if err := repo.DeleteTag(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrTagNotFound
		}
		return err
	}
	return nil
}

// IngredientService manages the ingredient catalog.
type IngredientService struct {
	DB *gorm.DB
}

// List returns all ingredients, optionally filtered by name prefix.
func (s *IngredientService) List(ctx context.Context, prefix string) ([]ReadIngredient, error) {
	rows, err := repo.ListIngredients(ctx, s.DB, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]ReadIngredient, 0, len(rows))
	for _, in := range rows {
		out = append(out, ToReadIngredient(in))
	}
	return out, nil
}

// Get returns one ingredient.
func (s *IngredientService) Get(ctx context.Context, id uint) (*ReadIngredient, error) {
	in, err := repo.GetIngredient(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	ri := ToReadIngredient(*in)
	return &ri, nil
}

func validateIngredient(in WriteIngredient) (domain.Ingredient, error) {
	v := &ValidationError{}
	name := strings.TrimSpace(in.Name)
	unit := strings.TrimSpace(in.MeasurementUnit)
	if name == "" {
		v.Add("name", "this field may not be blank")
	}
	if unit == "" {
		v.Add("measurement_unit", "this field may not be blank")
	}
	if err := v.Err(); err != nil {
		return domain.Ingredient{}, err
	}
	return domain.Ingredient{Name: name, MeasurementUnit: unit}, nil
}

// Create adds an ingredient. Admin only.
func (s *IngredientService) Create(ctx context.Context, actor domain.Actor, in WriteIngredient) (*ReadIngredient, error) {
	if err := checkAccess(domain.CatalogAccess(actor, domain.ActionCreate)); err != nil {
		return nil, err
	}
	row, err := validateIngredient(in)
	if err != nil {
		return nil, err
	}
	if err := repo.CreateIngredient(ctx, s.DB, &row); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateIngredient
		}
		return nil, err
	}
	ri := ToReadIngredient(row)
	return &ri, nil
}

// Update overwrites an ingredient. Admin only.
func (s *IngredientService) Update(ctx context.Context, actor domain.Actor, id uint, in WriteIngredient) (*ReadIngredient, error) {
	if err := checkAccess(domain.CatalogAccess(actor, domain.ActionUpdate)); err != nil {
		return nil, err
	}
	next, err := validateIngredient(in)
	if err != nil {
		return nil, err
	}
	cur, err := repo.GetIngredient(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrIngredientNotFound
		}
		return nil, err
	}
	cur.Name, cur.MeasurementUnit = next.Name, next.MeasurementUnit
	if err := repo.SaveIngredient(ctx, s.DB, cur); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrDuplicateIngredient
		}
		return nil, err
	}
	ri := ToReadIngredient(*cur)
	return &ri, nil
}

// Delete removes an ingredient and its recipe rows. Admin only.
func (s *IngredientService) Delete(ctx context.Context, actor domain.Actor, id uint) error {
	if err := checkAccess(domain.CatalogAccess(actor, domain.ActionDelete)); err != nil {
		return err
	}
	if err := repo.DeleteIngredient(ctx, s.DB, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrIngredientNotFound
		}
		return err
	}
	return nil
}
