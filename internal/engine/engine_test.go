package engine_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/engine"
	"github.com/flavourai/backend/internal/nutrient"
	"github.com/flavourai/backend/internal/reviews"
	"github.com/flavourai/backend/internal/search"
	"github.com/flavourai/backend/internal/storage"
)

// Mocks

type MockSource struct {
	mock.Mock
}

func (m *MockSource) LoadRecipes() ([]catalog.Recipe, storage.LoadReport, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Get(1).(storage.LoadReport), args.Error(2)
	}
	return args.Get(0).([]catalog.Recipe), args.Get(1).(storage.LoadReport), args.Error(2)
}

func (m *MockSource) LoadReviews() ([]reviews.Review, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]reviews.Review), args.Error(1)
}

func (m *MockSource) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	return logger.WithField("test", "engine")
}

func testOptions(cache bool) engine.Options {
	model := nutrient.DefaultModelConfig()
	model.Classifier.MaxIter = 100
	return engine.Options{TopN: 10, Model: model, CacheEnabled: cache, CacheSize: 4}
}

func sampleRecipes() []catalog.Recipe {
	var recipes []catalog.Recipe
	add := func(n int, kw string, cal catalog.Level) {
		for i := 0; i < n; i++ {
			id := int64(len(recipes) + 1)
			var levels catalog.NutrientLevels
			levels[catalog.Calories] = cal
			recipes = append(recipes, catalog.Recipe{
				ID:       id,
				Name:     fmt.Sprintf("recipe %d", id),
				Keywords: kw,
				Levels:   levels,
			})
		}
	}
	add(4, "salad greens light", catalog.Low)
	add(3, "spicy chicken curry", catalog.Medium)
	add(3, "cheese bacon burger", catalog.High)
	return recipes
}

func sampleReviews() []reviews.Review {
	return []reviews.Review{
		{ReviewID: 1, RecipeID: 1, AuthorName: "ann", Rating: 5, Year: 2010},
		{ReviewID: 2, RecipeID: 2, AuthorName: "bob", Rating: 4, Year: 2010},
		{ReviewID: 3, RecipeID: 2, AuthorName: "ann", Rating: 3, Year: 2011},
	}
}

func newEngine(t *testing.T, cache bool) *engine.Engine {
	t.Helper()
	c, err := catalog.New(sampleRecipes())
	require.NoError(t, err)
	eng, err := engine.New(testOptions(cache), testLogger(), c, sampleReviews())
	require.NoError(t, err)
	return eng
}

func TestLoad(t *testing.T) {
	src := new(MockSource)
	report := storage.LoadReport{Rows: 10, UnknownCookTimes: 2}
	src.On("LoadRecipes").Return(sampleRecipes(), report, nil)
	src.On("LoadReviews").Return(sampleReviews(), nil)

	eng, err := engine.Load(src, testOptions(true), testLogger())
	require.NoError(t, err)

	status := eng.Status()
	assert.Equal(t, 10, status.Recipes)
	assert.Equal(t, 3, status.Reviews)
	assert.Equal(t, report, status.Report)
	assert.Equal(t, eng.Catalog().Version(), status.Version)
	src.AssertExpectations(t)
}

func TestLoad_SourceError(t *testing.T) {
	src := new(MockSource)
	src.On("LoadRecipes").Return(nil, storage.LoadReport{}, storage.ErrEmptyTable)

	_, err := engine.Load(src, testOptions(false), testLogger())
	assert.ErrorIs(t, err, storage.ErrEmptyTable)
	src.AssertNotCalled(t, "LoadReviews")
}

func TestLoad_DuplicateRecipe(t *testing.T) {
	recipes := sampleRecipes()
	recipes = append(recipes, recipes[0])
	src := new(MockSource)
	src.On("LoadRecipes").Return(recipes, storage.LoadReport{}, nil)

	_, err := engine.Load(src, testOptions(false), testLogger())
	assert.ErrorIs(t, err, catalog.ErrDuplicateID)
}

func TestNew_NilCatalog(t *testing.T) {
	_, err := engine.New(testOptions(false), testLogger(), nil, nil)
	assert.Error(t, err)
}

func TestSearchByKeyword(t *testing.T) {
	eng := newEngine(t, true)

	res := eng.SearchByKeyword("spicy curry")
	assert.Equal(t, search.StatusOK, res.Status)
	require.Len(t, res.Results, 3)
	for _, r := range res.Results {
		assert.Equal(t, "spicy chicken curry", r.Recipe.Keywords)
	}

	assert.Equal(t, search.StatusEmptyQuery, eng.SearchByKeyword("   ").Status)
	assert.Equal(t, search.StatusNoMatch, eng.SearchByKeyword("sushi").Status)
	assert.Equal(t, int64(3), eng.Status().Stats.KeywordQueries)
}

func TestNew_TopNCappedAtTen(t *testing.T) {
	var recipes []catalog.Recipe
	for i := 1; i <= 30; i++ {
		var levels catalog.NutrientLevels
		levels[catalog.Protein] = catalog.High
		recipes = append(recipes, catalog.Recipe{
			ID:       int64(i),
			Name:     fmt.Sprintf("chicken d%d", i),
			Keywords: fmt.Sprintf("chicken d%d", i),
			Levels:   levels,
		})
	}
	c, err := catalog.New(recipes)
	require.NoError(t, err)

	opts := testOptions(false)
	opts.TopN = 25
	eng, err := engine.New(opts, testLogger(), c, nil)
	require.NoError(t, err)

	res := eng.SearchByKeyword("chicken")
	assert.Equal(t, search.StatusOK, res.Status)
	assert.LessOrEqual(t, len(res.Results), 10)

	filtered, err := eng.FilterByNutrient(context.Background(), nutrient.Query{
		Primary: nutrient.Constraint{Nutrient: catalog.Protein, Level: catalog.High},
	})
	require.NoError(t, err)
	assert.Equal(t, nutrient.StatusExactMatch, filtered.Status)
	assert.LessOrEqual(t, len(filtered.Results), 10)
}

func TestCacheDoesNotChangeResults(t *testing.T) {
	cached := newEngine(t, true)
	uncached := newEngine(t, false)
	ctx := context.Background()

	q := nutrient.Query{Primary: nutrient.Constraint{Nutrient: catalog.Calories, Level: catalog.VeryHigh}}
	for i := 0; i < 2; i++ {
		a, err := cached.FilterByNutrient(ctx, q)
		require.NoError(t, err)
		b, err := uncached.FilterByNutrient(ctx, q)
		require.NoError(t, err)
		assert.Equal(t, b, a)
		assert.Equal(t, nutrient.StatusFallbackUsed, a.Status)

		assert.Equal(t, uncached.SearchByKeyword("cheese"), cached.SearchByKeyword("cheese"))
	}

	assert.True(t, cached.Status().CacheEnabled)
	assert.Equal(t, 2, cached.Status().CachedModels)
	assert.Equal(t, 0, uncached.Status().CachedModels)
}

func TestFilterByNutrient(t *testing.T) {
	eng := newEngine(t, true)

	res, err := eng.FilterByNutrient(context.Background(), nutrient.Query{
		Primary: nutrient.Constraint{Nutrient: catalog.Calories, Level: catalog.High},
	})
	require.NoError(t, err)
	assert.Equal(t, nutrient.StatusExactMatch, res.Status)
	require.Len(t, res.Results, 3)
	for _, r := range res.Results {
		assert.Equal(t, catalog.High, r.Recipe.Level(catalog.Calories))
	}
}

func TestFilterByNutrient_InvalidQuery(t *testing.T) {
	eng := newEngine(t, true)

	_, err := eng.FilterByNutrient(context.Background(), nutrient.Query{
		Primary: nutrient.Constraint{Nutrient: catalog.Nutrient(42), Level: catalog.Low},
	})
	assert.ErrorIs(t, err, catalog.ErrUnknownNutrient)
	assert.NotEmpty(t, eng.Status().Stats.LastError)
}

func TestFilterByNutrient_Cancelled(t *testing.T) {
	eng := newEngine(t, true)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := eng.FilterByNutrient(ctx, nutrient.Query{
		Primary: nutrient.Constraint{Nutrient: catalog.Calories, Level: catalog.Low},
	})
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 0, eng.Status().CachedModels)
}

func TestRecipe(t *testing.T) {
	eng := newEngine(t, false)

	r, err := eng.Recipe(2)
	require.NoError(t, err)
	assert.Equal(t, "recipe 2", r.Name)

	_, err = eng.Recipe(999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestReviewStats(t *testing.T) {
	eng := newEngine(t, false)

	stats := eng.ReviewStats(1)
	assert.Equal(t, 3, stats.Total)
	require.Len(t, stats.TopReviewers, 1)
	assert.Equal(t, "ann", stats.TopReviewers[0].AuthorName)
}
