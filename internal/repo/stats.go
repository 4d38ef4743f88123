// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used to enrich
// list responses (recipe counts and previews per author) with one statement
// per page instead of one per author.
package repo

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
)

// RecipeCountsByAuthor returns the number of recipes written by each of the
// given authors. Authors without recipes map to 0.
func RecipeCountsByAuthor(ctx context.Context, db *gorm.DB, authorIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(authorIDs))
	if len(authorIDs) == 0 {
		return out, nil
	}
	for _, id := range authorIDs {
		out[id] = 0
	}

	query, args, err := sq.Select("author_id", "COUNT(*) AS n").
		From("recipes").
		Where(sq.Eq{"author_id": authorIDs}).
		GroupBy("author_id").
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []struct {
		AuthorID uint
		N        int64
	}
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.AuthorID] = r.N
	}
	return out, nil
}

// NoLimit disables the per-author cap of RecipesByAuthors.
const NoLimit = -1

// RecipesByAuthors returns each author's newest recipes, at most limit per
// author. A negative limit returns all of them; zero returns none.
func RecipesByAuthors(ctx context.Context, db *gorm.DB, authorIDs []uint, limit int) (map[uint][]domain.Recipe, error) {
	out := make(map[uint][]domain.Recipe, len(authorIDs))
	if len(authorIDs) == 0 || limit == 0 {
		return out, nil
	}

	ranked := sq.Select(
		"r.id", "r.author_id", "r.name", "r.text", "r.cooking_time", "r.image", "r.created_at", "r.updated_at",
		"ROW_NUMBER() OVER (PARTITION BY r.author_id ORDER BY r.created_at DESC, r.id DESC) AS rn",
	).
		From("recipes r").
		Where(sq.Eq{"r.author_id": authorIDs})
	q := sq.Select("id", "author_id", "name", "text", "cooking_time", "image", "created_at", "updated_at").
		FromSelect(ranked, "ranked").
		OrderBy("author_id", "rn")
	if limit > 0 {
		q = q.Where(sq.LtOrEq{"rn": limit})
	}
	query, args, err := q.ToSql()
	if err != nil {
		return nil, err
	}

	var rows []domain.Recipe
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, r := range rows {
		out[r.AuthorID] = append(out[r.AuthorID], r)
	}
	return out, nil
}
