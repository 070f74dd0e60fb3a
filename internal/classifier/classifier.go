// Package classifier implements a multinomial logistic regression over
// sparse TF-IDF features, trained with full-batch gradient descent from a
// zero start so that a fit is reproducible bit for bit.
package classifier

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/flavourai/backend/internal/search"
)

var (
	ErrNoTrainingData  = errors.New("no labelled training samples")
	ErrLengthMismatch  = errors.New("features and labels differ in length")
	ErrNotTrained      = errors.New("classifier is not trained")
	ErrInvalidClassNum = errors.New("number of classes must be positive")
)

// Config controls training.
type Config struct {
	// MaxIter caps the number of gradient steps.
	MaxIter      int
	LearningRate float64
	// L2 is the weight decay applied to the coefficients (not the intercepts).
	L2 float64
	// Tolerance stops training once no gradient component exceeds it.
	Tolerance float64
}

// DefaultConfig returns the training configuration used by the recommender.
func DefaultConfig() Config {
	return Config{
		MaxIter:      1000,
		LearningRate: 1.0,
		L2:           1e-4,
		Tolerance:    1e-4,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxIter <= 0 {
		c.MaxIter = d.MaxIter
	}
	if c.LearningRate <= 0 {
		c.LearningRate = d.LearningRate
	}
	if c.L2 < 0 {
		c.L2 = 0
	}
	if c.Tolerance < 0 {
		c.Tolerance = 0
	}
	return c
}

// LogisticRegression is a softmax classifier over numClasses labels
// 0..numClasses-1. Classes are weighted inversely to their frequency.
type LogisticRegression struct {
	config     Config
	numClasses int
	dim        int

	weights [][]float64 // [class][feature]
	bias    []float64
	present []bool
	single  int // index of the only class seen, or -1
	trained bool
	epochs  int
}

// New creates an untrained classifier.
func New(numClasses int, cfg Config) (*LogisticRegression, error) {
	if numClasses <= 0 {
		return nil, ErrInvalidClassNum
	}
	return &LogisticRegression{
		config:     cfg.withDefaults(),
		numClasses: numClasses,
		single:     -1,
	}, nil
}

// Fit trains on sparse feature vectors of dimension dim. Samples whose label
// is outside 0..numClasses-1 are ignored.
//
// Each step computes the exact gradient of the class-weighted mean
// cross-entropy plus the L2 penalty, so the gradient norm shrinks as the
// weights approach the optimum and Tolerance is a real stopping point.
func (m *LogisticRegression) Fit(ctx context.Context, x []search.SparseVector, y []int, dim int) error {
	if len(x) != len(y) {
		return fmt.Errorf("%w: %d vs %d", ErrLengthMismatch, len(x), len(y))
	}

	samples := make([]int, 0, len(y))
	counts := make([]int, m.numClasses)
	for i, label := range y {
		if label < 0 || label >= m.numClasses {
			continue
		}
		samples = append(samples, i)
		counts[label]++
	}
	if len(samples) == 0 {
		return ErrNoTrainingData
	}

	m.dim = dim
	m.weights = make([][]float64, m.numClasses)
	for k := range m.weights {
		m.weights[k] = make([]float64, dim)
	}
	m.bias = make([]float64, m.numClasses)
	m.present = make([]bool, m.numClasses)
	m.single = -1
	m.epochs = 0

	// Balanced weights: n / (classes present * count)
	present := 0
	for k, c := range counts {
		if c > 0 {
			m.present[k] = true
			present++
			m.single = k
		}
	}
	if present == 1 {
		m.trained = true
		return nil
	}
	m.single = -1

	sampleWeight := make([]float64, m.numClasses)
	for k, c := range counts {
		if c > 0 {
			// Folds the 1/n of the mean into each sample's weight.
			sampleWeight[k] = 1 / (float64(present) * float64(c))
		}
	}

	gradW := make([][]float64, m.numClasses)
	for k := range gradW {
		gradW[k] = make([]float64, dim)
	}
	gradB := make([]float64, m.numClasses)
	probs := make([]float64, m.numClasses)
	rate := m.config.LearningRate

	for epoch := 0; epoch < m.config.MaxIter; epoch++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		for k := range gradW {
			if !m.present[k] {
				continue
			}
			clear(gradW[k])
			gradB[k] = 0
		}

		for _, i := range samples {
			m.softmax(x[i], probs)
			label := y[i]
			w := sampleWeight[label]
			for k := 0; k < m.numClasses; k++ {
				if !m.present[k] {
					continue
				}
				diff := probs[k]
				if k == label {
					diff -= 1
				}
				diff *= w
				gradB[k] += diff
				row := gradW[k]
				for j, idx := range x[i].Indices {
					if idx < dim {
						row[idx] += diff * x[i].Values[j]
					}
				}
			}
		}

		var largest float64
		for k := 0; k < m.numClasses; k++ {
			if !m.present[k] {
				continue
			}
			row, weights := gradW[k], m.weights[k]
			for j := range row {
				g := row[j] + m.config.L2*weights[j]
				weights[j] -= rate * g
				largest = max(largest, math.Abs(g))
			}
			m.bias[k] -= rate * gradB[k]
			largest = max(largest, math.Abs(gradB[k]))
		}

		m.epochs = epoch + 1
		if largest <= m.config.Tolerance {
			break
		}
	}

	m.trained = true
	return nil
}

// softmax writes class probabilities for x into out. Classes absent from
// training get probability zero.
func (m *LogisticRegression) softmax(x search.SparseVector, out []float64) {
	maxLogit := math.Inf(-1)
	for k := 0; k < m.numClasses; k++ {
		if !m.present[k] {
			continue
		}
		z := m.bias[k]
		for j, idx := range x.Indices {
			if idx < m.dim {
				z += m.weights[k][idx] * x.Values[j]
			}
		}
		out[k] = z
		if z > maxLogit {
			maxLogit = z
		}
	}

	var sum float64
	for k := 0; k < m.numClasses; k++ {
		if !m.present[k] {
			out[k] = 0
			continue
		}
		out[k] = math.Exp(out[k] - maxLogit)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
}

// PredictProba returns a probability distribution over the classes for x.
func (m *LogisticRegression) PredictProba(x search.SparseVector) ([]float64, error) {
	if !m.trained {
		return nil, ErrNotTrained
	}
	out := make([]float64, m.numClasses)
	if m.single >= 0 {
		out[m.single] = 1
		return out, nil
	}
	m.softmax(x, out)
	return out, nil
}

// Epochs reports how many passes the last Fit performed.
func (m *LogisticRegression) Epochs() int {
	return m.epochs
}
