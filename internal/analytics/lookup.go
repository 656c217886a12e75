package analytics

import "spendwise/internal/models"

const (
	// UncategorizedName labels expenses whose category no longer exists.
	UncategorizedName = "Uncategorized"
	// FallbackColor is used for unknown categories and categories without a color.
	FallbackColor = "#6B7280"
)

// CategoryLookup resolves category IDs to display names and colors.
type CategoryLookup struct {
	byID map[string]models.Category
}

// NewCategoryLookup indexes the given categories by ID.
func NewCategoryLookup(categories []models.Category) CategoryLookup {
	byID := make(map[string]models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}
	return CategoryLookup{byID: byID}
}

// Resolve returns the name and color of the category with the given ID.
func (l CategoryLookup) Resolve(id string) (name, color string) {
	c, ok := l.byID[id]
	if !ok {
		return UncategorizedName, FallbackColor
	}
	if c.Color == "" {
		return c.Name, FallbackColor
	}
	return c.Name, c.Color
}

// Label returns a copy of s with every category's name and color filled in.
func (l CategoryLookup) Label(s Summary) Summary {
	labelled := s
	labelled.Categories = make([]CategorySummary, len(s.Categories))
	for i, c := range s.Categories {
		c.Name, c.Color = l.Resolve(c.CategoryID)
		labelled.Categories[i] = c
	}
	return labelled
}
