// Package catalog holds the immutable in-memory recipe table that every
// recommendation query reads from.
package catalog

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
)

var (
	ErrDuplicateID = errors.New("duplicate recipe id")
	ErrNotFound    = errors.New("recipe not found")
)

// Catalog is a read-only snapshot of the recipe table. It is safe for
// concurrent use because nothing mutates it after New returns.
type Catalog struct {
	recipes []Recipe
	byID    map[int64]int
	version string
}

// New builds a catalog from recipes, keeping their order. The slice is
// copied; later changes by the caller are not visible to the catalog.
func New(recipes []Recipe) (*Catalog, error) {
	c := &Catalog{
		recipes: make([]Recipe, len(recipes)),
		byID:    make(map[int64]int, len(recipes)),
	}
	copy(c.recipes, recipes)

	for i, r := range c.recipes {
		if _, exists := c.byID[r.ID]; exists {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, r.ID)
		}
		c.byID[r.ID] = i
	}
	c.version = fingerprint(c.recipes)
	return c, nil
}

// Len returns the number of recipes.
func (c *Catalog) Len() int {
	return len(c.recipes)
}

// At returns the recipe at catalog position i.
func (c *Catalog) At(i int) Recipe {
	return c.recipes[i]
}

// Recipes returns a copy of all recipes in catalog order.
func (c *Catalog) Recipes() []Recipe {
	out := make([]Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

// ByID looks a recipe up by its identifier.
func (c *Catalog) ByID(id int64) (Recipe, error) {
	i, ok := c.byID[id]
	if !ok {
		return Recipe{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return c.recipes[i], nil
}

// Keywords returns the keyword corpus, one document per recipe in catalog order.
func (c *Catalog) Keywords() []string {
	out := make([]string, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.Keywords
	}
	return out
}

// Labels returns the level of nutrient n for every recipe in catalog order.
func (c *Catalog) Labels(n Nutrient) []Level {
	out := make([]Level, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.Level(n)
	}
	return out
}

// Version identifies the catalog content. Two catalogs with the same ids,
// keywords and levels in the same order share a version.
func (c *Catalog) Version() string {
	return c.version
}

func fingerprint(recipes []Recipe) string {
	h := sha256.New()
	var buf [8]byte
	for _, r := range recipes {
		binary.LittleEndian.PutUint64(buf[:], uint64(r.ID))
		h.Write(buf[:])
		h.Write([]byte(r.Keywords))
		h.Write([]byte{0})
		for _, l := range r.Levels {
			h.Write([]byte{byte(l + 1)})
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
