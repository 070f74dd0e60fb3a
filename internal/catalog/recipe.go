package catalog

import (
	"github.com/flavourai/backend/internal/sanitize"
)

// Recipe is one row of the recipe table. Nutrient levels are precomputed
// upstream and treated as ground truth.
type Recipe struct {
	ID              int64    `json:"recipe_id"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Category        string   `json:"recipe_category"`
	CookTime        CookTime `json:"-"`
	Keywords        string   `json:"keywords"`
	IngredientsRaw  string   `json:"-"`
	InstructionsRaw string   `json:"-"`
	// Levels defaults to Low for every nutrient when left unset; use
	// UnknownLevels for recipes without labels.
	Levels NutrientLevels `json:"-"`
}

// Ingredients returns the ingredient list as readable text.
func (r Recipe) Ingredients() string {
	s, _ := sanitize.CleanListField(r.IngredientsRaw)
	return s
}

// Instructions returns the instruction steps as readable text.
func (r Recipe) Instructions() string {
	s, _ := sanitize.CleanListField(r.InstructionsRaw)
	return s
}

// Level returns the recipe's level for nutrient n.
func (r Recipe) Level(n Nutrient) Level {
	return r.Levels.Get(n)
}
