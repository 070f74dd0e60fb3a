// Package nutrient recommends recipes matching requested nutrient levels,
// ranked by a keyword classifier's confidence in the primary level.
package nutrient

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/flavourai/backend/internal/catalog"
)

// DefaultTopN is the number of recipes returned by a filter query, and the
// most any query returns.
const DefaultTopN = 10

// Status describes how a filter result was produced.
type Status string

const (
	StatusExactMatch   Status = "EXACT_MATCH"
	StatusFallbackUsed Status = "FALLBACK_USED"
	StatusEmptyResult  Status = "EMPTY_RESULT"
)

const (
	MessageFallback = "no exact match, showing closest by predicted probability"
	MessageEmpty    = "nothing found"
)

// Constraint requires a nutrient to be at a level.
type Constraint struct {
	Nutrient catalog.Nutrient
	Level    catalog.Level
}

func (c Constraint) validate() error {
	if !c.Nutrient.Valid() {
		return fmt.Errorf("%w: %d", catalog.ErrUnknownNutrient, int(c.Nutrient))
	}
	if !c.Level.Valid() {
		return fmt.Errorf("%w: %d", catalog.ErrUnknownLevel, int(c.Level))
	}
	return nil
}

// Query has a required primary constraint and an optional secondary one.
type Query struct {
	Primary   Constraint
	Secondary *Constraint
}

// Result is a recipe with the predicted probability of the primary level.
type Result struct {
	Recipe      catalog.Recipe
	Probability float64
	Position    int
}

// FilterResult is the answer to one filter query.
type FilterResult struct {
	Status  Status
	Message string
	Results []Result
}

// ModelTrainer produces the model for a nutrient. Implementations may cache,
// but must return a model equivalent to TrainModel.
type ModelTrainer func(ctx context.Context, c *catalog.Catalog, n catalog.Nutrient) (*Model, error)

// FilterEngine answers nutrient filter queries.
type FilterEngine struct {
	topN  int
	train ModelTrainer
}

// NewFilterEngine creates an engine training a fresh model per query. A topN
// outside 1..DefaultTopN falls back to DefaultTopN.
func NewFilterEngine(topN int, cfg ModelConfig) *FilterEngine {
	if topN <= 0 || topN > DefaultTopN {
		topN = DefaultTopN
	}
	return &FilterEngine{
		topN: topN,
		train: func(ctx context.Context, c *catalog.Catalog, n catalog.Nutrient) (*Model, error) {
			return TrainModel(ctx, c, n, cfg)
		},
	}
}

// WithModelTrainer replaces the trainer, typically with a cached one.
func (e *FilterEngine) WithModelTrainer(t ModelTrainer) *FilterEngine {
	if t != nil {
		e.train = t
	}
	return e
}

// Filter returns recipes matching every constraint exactly, ordered by the
// probability of the primary level. With no exact match it falls back to the
// whole catalog ranked by that same probability; the secondary constraint
// plays no part in the fallback ranking.
func (e *FilterEngine) Filter(ctx context.Context, c *catalog.Catalog, q Query) (FilterResult, error) {
	if err := q.Primary.validate(); err != nil {
		return FilterResult{}, err
	}
	if q.Secondary != nil {
		if err := q.Secondary.validate(); err != nil {
			return FilterResult{}, err
		}
	}

	if c.Len() == 0 {
		return FilterResult{Status: StatusEmptyResult, Message: MessageEmpty}, nil
	}

	model, err := e.train(ctx, c, q.Primary.Nutrient)
	if err != nil {
		return FilterResult{}, err
	}

	all := make([]Result, c.Len())
	var matched []Result
	for i := range all {
		r := c.At(i)
		all[i] = Result{
			Recipe:      r,
			Probability: model.Probability(i, q.Primary.Level),
			Position:    i,
		}
		if r.Level(q.Primary.Nutrient) != q.Primary.Level {
			continue
		}
		if q.Secondary != nil && r.Level(q.Secondary.Nutrient) != q.Secondary.Level {
			continue
		}
		matched = append(matched, all[i])
	}

	if len(matched) > 0 {
		return FilterResult{Status: StatusExactMatch, Results: e.rank(matched)}, nil
	}
	return FilterResult{Status: StatusFallbackUsed, Message: MessageFallback, Results: e.rank(all)}, nil
}

func (e *FilterEngine) rank(results []Result) []Result {
	slices.SortStableFunc(results, func(a, b Result) int {
		return cmp.Compare(b.Probability, a.Probability)
	})
	if len(results) > e.topN {
		results = results[:e.topN]
	}
	return results
}
