package catalog

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownNutrient = errors.New("unknown nutrient")
	ErrUnknownLevel    = errors.New("unknown nutrient level")
)

// Nutrient identifies one of the eight nutrient attributes carried by every recipe.
type Nutrient int

const (
	Calories Nutrient = iota
	Fat
	Cholesterol
	Sodium
	Carbohydrate
	Fiber
	Sugar
	Protein
)

// NumNutrients is the number of nutrient attributes on a recipe.
const NumNutrients = 8

var nutrientNames = [NumNutrients]string{
	"Calories", "Fat", "Cholesterol", "Sodium", "Carbohydrate", "Fiber", "Sugar", "Protein",
}

// Source table column holding the precomputed level for each nutrient.
var nutrientColumns = [NumNutrients]string{
	"Calories_Level",
	"FatContent_Level",
	"CholesterolContent_Level",
	"SodiumContent_Level",
	"CarbohydrateContent_Level",
	"FiberContent_Level",
	"SugarContent_Level",
	"ProteinContent_Level",
}

// Nutrients returns all nutrients in declaration order.
func Nutrients() []Nutrient {
	out := make([]Nutrient, NumNutrients)
	for i := range out {
		out[i] = Nutrient(i)
	}
	return out
}

func (n Nutrient) Valid() bool {
	return n >= 0 && int(n) < NumNutrients
}

func (n Nutrient) String() string {
	if !n.Valid() {
		return fmt.Sprintf("Nutrient(%d)", int(n))
	}
	return nutrientNames[n]
}

// Column returns the name of the source column holding this nutrient's level.
func (n Nutrient) Column() string {
	if !n.Valid() {
		return ""
	}
	return nutrientColumns[n]
}

// ParseNutrient resolves a nutrient by display name or column name, ignoring case.
func ParseNutrient(s string) (Nutrient, error) {
	s = strings.TrimSpace(s)
	for i := 0; i < NumNutrients; i++ {
		if strings.EqualFold(s, nutrientNames[i]) || strings.EqualFold(s, nutrientColumns[i]) {
			return Nutrient(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownNutrient, s)
}

// Level is the ordered categorical value of a nutrient on a recipe.
type Level int

const (
	LevelUnknown Level = iota - 1
	Low
	Medium
	High
	VeryHigh
)

// NumLevels is the number of known levels.
const NumLevels = 4

var levelNames = [NumLevels]string{"Low", "Medium", "High", "Very High"}

// Levels returns the known levels from lowest to highest.
func Levels() []Level {
	return []Level{Low, Medium, High, VeryHigh}
}

func (l Level) Valid() bool {
	return l >= Low && l <= VeryHigh
}

func (l Level) String() string {
	if !l.Valid() {
		return "Unknown"
	}
	return levelNames[l]
}

// ParseLevel parses a level label. Whitespace, case and a missing space in
// "VeryHigh" are tolerated.
func ParseLevel(s string) (Level, error) {
	norm := strings.ToLower(strings.Join(strings.Fields(s), ""))
	for _, l := range Levels() {
		if norm == strings.ToLower(strings.ReplaceAll(l.String(), " ", "")) {
			return l, nil
		}
	}
	return LevelUnknown, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// NutrientLevels holds one level per nutrient, indexed by Nutrient. Low is
// the zero Level, so the zero value reads as Low for every nutrient; start
// from UnknownLevels when labels may be missing.
type NutrientLevels [NumNutrients]Level

// UnknownLevels returns levels with every nutrient set to LevelUnknown.
func UnknownLevels() NutrientLevels {
	var nl NutrientLevels
	for i := range nl {
		nl[i] = LevelUnknown
	}
	return nl
}

// Get returns the level recorded for n, or LevelUnknown for an invalid nutrient.
func (nl NutrientLevels) Get(n Nutrient) Level {
	if !n.Valid() {
		return LevelUnknown
	}
	return nl[n]
}
