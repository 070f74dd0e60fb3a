package nutrient

import (
	"context"
	"errors"
	"fmt"

	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/classifier"
	"github.com/flavourai/backend/internal/search"
)

// DefaultMaxFeatures bounds the keyword vocabulary fed to the classifier.
const DefaultMaxFeatures = 500

// ModelConfig controls how a nutrient model is trained.
type ModelConfig struct {
	MaxFeatures int
	Classifier  classifier.Config
}

// DefaultModelConfig returns the standard model configuration.
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		MaxFeatures: DefaultMaxFeatures,
		Classifier:  classifier.DefaultConfig(),
	}
}

// Model holds, for one nutrient, the predicted level distribution of every
// recipe in a catalog.
type Model struct {
	Nutrient catalog.Nutrient
	Version  string
	// probs[i][level] is the probability that recipe i has the given level.
	probs [][]float64
}

// Probability returns the probability that the recipe at catalog position i
// has level l.
func (m *Model) Probability(i int, l catalog.Level) float64 {
	if !l.Valid() || i < 0 || i >= len(m.probs) {
		return 0
	}
	return m.probs[i][l]
}

// Distribution returns a copy of the level distribution for recipe i, all
// zeros when i is out of range.
func (m *Model) Distribution(i int) []float64 {
	out := make([]float64, catalog.NumLevels)
	if i < 0 || i >= len(m.probs) {
		return out
	}
	copy(out, m.probs[i])
	return out
}

// TrainModel fits a classifier predicting the level of nutrient n from recipe
// keywords and scores every recipe in c. A catalog with no labelled recipes
// yields a model that assigns zero probability everywhere.
func TrainModel(ctx context.Context, c *catalog.Catalog, n catalog.Nutrient, cfg ModelConfig) (*Model, error) {
	if !n.Valid() {
		return nil, fmt.Errorf("%w: %d", catalog.ErrUnknownNutrient, int(n))
	}

	vectorizer := search.NewTFIDFVectorizer()
	vectorizer.MaxFeatures = cfg.MaxFeatures
	features := vectorizer.FitTransform(c.Keywords())

	labels := make([]int, c.Len())
	for i, l := range c.Labels(n) {
		labels[i] = int(l)
	}

	model := &Model{
		Nutrient: n,
		Version:  c.Version(),
		probs:    make([][]float64, c.Len()),
	}

	clf, err := classifier.New(catalog.NumLevels, cfg.Classifier)
	if err != nil {
		return nil, err
	}
	if err := clf.Fit(ctx, features, labels, vectorizer.Dimension()); err != nil {
		if errors.Is(err, classifier.ErrNoTrainingData) {
			for i := range model.probs {
				model.probs[i] = make([]float64, catalog.NumLevels)
			}
			return model, nil
		}
		return nil, fmt.Errorf("failed to train %s classifier: %w", n, err)
	}

	for i, x := range features {
		p, err := clf.PredictProba(x)
		if err != nil {
			return nil, err
		}
		model.probs[i] = p
	}
	return model, nil
}
