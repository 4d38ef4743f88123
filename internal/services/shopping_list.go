package services

import (
	"context"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/foodgram-backend/internal/domain"
	"github.com/tbourn/foodgram-backend/internal/repo"
)

// ShoppingListHeader is the first line of every shopping list document. Its
// leading "C" is the Latin letter; downloads stay byte-identical to the lists
// existing clients already parse.
const ShoppingListHeader = "Cписок покупок:"

// ShoppingListService renders a user's cart as an aggregated shopping list.
type ShoppingListService struct {
	DB *gorm.DB
}

// Lines returns the aggregated (name, unit, amount) lines for the caller.
func (s *ShoppingListService) Lines(ctx context.Context, actor domain.Actor) ([]repo.ShoppingListLine, error) {
	if err := checkAccess(domain.MemberAccess(actor)); err != nil {
		return nil, err
	}
	ctx, span := otel.Tracer("services/ShoppingListService").Start(ctx, "Lines",
		trace.WithAttributes(attribute.Int("user.id", int(actor.UserID))))
	defer span.End()

	lines, err := repo.ShoppingList(ctx, s.DB, actor.UserID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("lines", len(lines)))
	return lines, nil
}

// RenderShoppingList formats lines as the header followed by one
// "name - amount unit" entry per line. Every entry but the last ends with a
// comma. No lines yields the header alone.
func RenderShoppingList(lines []repo.ShoppingListLine) string {
	var b strings.Builder
	b.WriteString(ShoppingListHeader)
	for i, l := range lines {
		b.WriteString("\n")
		b.WriteString(l.Name)
		b.WriteString(" - ")
		b.WriteString(strconv.FormatInt(l.Amount, 10))
		b.WriteString(" ")
		b.WriteString(l.MeasurementUnit)
		if i < len(lines)-1 {
			b.WriteString(",")
		}
	}
	return b.String()
}
