package engine

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/classifier"
	"github.com/flavourai/backend/internal/config"
	"github.com/flavourai/backend/internal/metrics"
	"github.com/flavourai/backend/internal/nutrient"
	"github.com/flavourai/backend/internal/reviews"
	"github.com/flavourai/backend/internal/search"
	"github.com/flavourai/backend/internal/storage"
)

const (
	modeKeyword  = "keyword"
	modeNutrient = "nutrient"

	modelIndex    = "keyword_index"
	modelNutrient = "nutrient"
)

// Options controls ranking limits, training and model caching.
type Options struct {
	TopN         int
	Model        nutrient.ModelConfig
	CacheEnabled bool
	CacheSize    int
}

// OptionsFromConfig maps service configuration onto engine options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		TopN: cfg.Search.TopN,
		Model: nutrient.ModelConfig{
			MaxFeatures: cfg.Classifier.MaxFeatures,
			Classifier: classifier.Config{
				MaxIter:      cfg.Classifier.MaxIter,
				LearningRate: cfg.Classifier.LearningRate,
				L2:           cfg.Classifier.L2,
				Tolerance:    cfg.Classifier.Tolerance,
			},
		},
		CacheEnabled: cfg.Cache.Enabled,
		CacheSize:    cfg.Cache.Size,
	}
}

// Engine answers recommendation queries against one loaded catalog
type Engine struct {
	Logger *logrus.Entry

	catalog  *catalog.Catalog
	reviews  []reviews.Review
	report   storage.LoadReport
	opts     Options
	searcher *search.KeywordSearcher
	filter   *nutrient.FilterEngine

	// Fitted models keyed by catalog version; nil when caching is off.
	indexes *lru.Cache[string, *search.Index]
	models  *lru.Cache[string, *nutrient.Model]
	group   singleflight.Group

	mu       sync.RWMutex
	loadedAt time.Time
	stats    EngineStats
}

// EngineStats counts queries served since start.
type EngineStats struct {
	KeywordQueries  int64
	NutrientQueries int64
	LastError       string
}

// Status is a point-in-time snapshot of the engine.
type Status struct {
	Recipes      int
	Reviews      int
	Version      string
	LoadedAt     time.Time
	CacheEnabled bool
	CachedModels int
	Report       storage.LoadReport
	Stats        EngineStats
}

func New(opts Options, logger *logrus.Entry, c *catalog.Catalog, revs []reviews.Review) (*Engine, error) {
	if c == nil {
		return nil, fmt.Errorf("engine: nil catalog")
	}
	requestedTopN := opts.TopN
	if opts.TopN <= 0 || opts.TopN > search.DefaultTopN {
		opts.TopN = search.DefaultTopN
	}
	if opts.Model.MaxFeatures == 0 && opts.Model.Classifier == (classifier.Config{}) {
		opts.Model = nutrient.DefaultModelConfig()
	}

	e := &Engine{
		Logger:   logger.WithField("component", "engine"),
		catalog:  c,
		reviews:  revs,
		opts:     opts,
		searcher: search.NewKeywordSearcher(opts.TopN),
		filter:   nutrient.NewFilterEngine(opts.TopN, opts.Model),
		loadedAt: time.Now(),
	}
	if requestedTopN > search.DefaultTopN {
		e.Logger.WithFields(logrus.Fields{
			"requested": requestedTopN,
			"limit":     search.DefaultTopN,
		}).Warn("Top-N above limit, capping")
	}

	if opts.CacheEnabled {
		size := opts.CacheSize
		if size <= 0 {
			size = 16
		}
		var err error
		if e.indexes, err = lru.New[string, *search.Index](size); err != nil {
			return nil, fmt.Errorf("failed to create index cache: %w", err)
		}
		if e.models, err = lru.New[string, *nutrient.Model](size); err != nil {
			return nil, fmt.Errorf("failed to create model cache: %w", err)
		}
		e.searcher.WithIndexBuilder(e.cachedIndex)
		e.filter.WithModelTrainer(e.cachedModel)
	}

	metrics.CatalogRecipes.Set(float64(c.Len()))
	return e, nil
}

// Load reads the catalog and reviews from src and builds an engine over them.
func Load(src storage.RecipeSource, opts Options, logger *logrus.Entry) (*Engine, error) {
	recipes, report, err := src.LoadRecipes()
	if err != nil {
		return nil, fmt.Errorf("load recipes: %w", err)
	}
	c, err := catalog.New(recipes)
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	revs, err := src.LoadReviews()
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}

	e, err := New(opts, logger, c, revs)
	if err != nil {
		return nil, err
	}
	e.report = report
	return e, nil
}

// Catalog returns the catalog queries run against.
func (e *Engine) Catalog() *catalog.Catalog {
	return e.catalog
}

// SearchByKeyword ranks recipes by keyword similarity to query.
func (e *Engine) SearchByKeyword(query string) search.KeywordResult {
	start := time.Now()
	res := e.searcher.Search(e.catalog, query)
	elapsed := time.Since(start)

	metrics.RecordQuery(modeKeyword, string(res.Status), elapsed)
	e.mu.Lock()
	e.stats.KeywordQueries++
	e.mu.Unlock()

	e.Logger.WithFields(logrus.Fields{
		"query":   query,
		"status":  res.Status,
		"results": len(res.Results),
		"elapsed": elapsed,
	}).Debug("Keyword search")
	return res
}

// FilterByNutrient recommends recipes at the requested nutrient levels.
func (e *Engine) FilterByNutrient(ctx context.Context, q nutrient.Query) (nutrient.FilterResult, error) {
	start := time.Now()
	res, err := e.filter.Filter(ctx, e.catalog, q)
	elapsed := time.Since(start)

	e.mu.Lock()
	e.stats.NutrientQueries++
	if err != nil {
		e.stats.LastError = err.Error()
	}
	e.mu.Unlock()

	fields := logrus.Fields{
		"nutrient": q.Primary.Nutrient,
		"level":    q.Primary.Level,
		"elapsed":  elapsed,
	}
	if q.Secondary != nil {
		fields["nutrient2"] = q.Secondary.Nutrient
		fields["level2"] = q.Secondary.Level
	}
	if err != nil {
		metrics.RecordQuery(modeNutrient, "ERROR", elapsed)
		e.Logger.WithFields(fields).WithError(err).Debug("Nutrient filter failed")
		return res, err
	}

	metrics.RecordQuery(modeNutrient, string(res.Status), elapsed)
	fields["status"] = res.Status
	fields["results"] = len(res.Results)
	e.Logger.WithFields(fields).Debug("Nutrient filter")
	return res, nil
}

// Recipe looks up a recipe by id.
func (e *Engine) Recipe(id int64) (catalog.Recipe, error) {
	return e.catalog.ByID(id)
}

// ReviewStats summarises the loaded reviews.
func (e *Engine) ReviewStats(topN int) reviews.Stats {
	return reviews.Compute(e.reviews, topN)
}

func (e *Engine) Status() Status {
	e.mu.RLock()
	defer e.mu.RUnlock()

	s := Status{
		Recipes:      e.catalog.Len(),
		Reviews:      len(e.reviews),
		Version:      e.catalog.Version(),
		LoadedAt:     e.loadedAt,
		CacheEnabled: e.opts.CacheEnabled,
		Report:       e.report,
		Stats:        e.stats,
	}
	if e.models != nil {
		s.CachedModels = e.indexes.Len() + e.models.Len()
	}
	return s
}

func (e *Engine) cachedIndex(c *catalog.Catalog) *search.Index {
	key := c.Version()
	if idx, ok := e.indexes.Get(key); ok {
		metrics.RecordCacheLookup(modelIndex, true)
		return idx
	}
	metrics.RecordCacheLookup(modelIndex, false)

	v, _, _ := e.group.Do("index:"+key, func() (interface{}, error) {
		if idx, ok := e.indexes.Get(key); ok {
			return idx, nil
		}
		start := time.Now()
		idx := search.BuildIndex(c)
		metrics.RecordModelFit(modelIndex, time.Since(start))
		e.indexes.Add(key, idx)
		return idx, nil
	})
	return v.(*search.Index)
}

func (e *Engine) cachedModel(ctx context.Context, c *catalog.Catalog, n catalog.Nutrient) (*nutrient.Model, error) {
	key := c.Version() + ":" + strconv.Itoa(int(n))
	if m, ok := e.models.Get(key); ok {
		metrics.RecordCacheLookup(modelNutrient, true)
		return m, nil
	}
	metrics.RecordCacheLookup(modelNutrient, false)

	v, err, shared := e.group.Do("model:"+key, func() (interface{}, error) {
		if m, ok := e.models.Get(key); ok {
			return m, nil
		}
		start := time.Now()
		m, err := nutrient.TrainModel(ctx, c, n, e.opts.Model)
		if err != nil {
			return nil, err
		}
		elapsed := time.Since(start)
		metrics.RecordModelFit(modelNutrient, elapsed)
		e.Logger.WithFields(logrus.Fields{
			"nutrient": n,
			"elapsed":  elapsed,
		}).Info("Trained nutrient model")
		e.models.Add(key, m)
		return m, nil
	})
	if err != nil {
		if shared && ctx.Err() == nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// The leader's context was cancelled; train under ours instead.
			return nutrient.TrainModel(ctx, c, n, e.opts.Model)
		}
		return nil, err
	}
	return v.(*nutrient.Model), nil
}
