package search

import (
	"cmp"
	"slices"
	"strings"

	"github.com/flavourai/backend/internal/catalog"
)

// DefaultTopN is the number of results returned by a keyword search. It is
// also the upper bound.
const DefaultTopN = 10

// Status describes the outcome of a keyword search.
type Status string

const (
	StatusOK         Status = "OK"
	StatusEmptyQuery Status = "EMPTY_QUERY"
	StatusNoMatch    Status = "NO_MATCH"
)

// SearchResult holds a matching recipe and its score. Position is the
// recipe's index in the catalog the search ran against.
type SearchResult struct {
	Recipe   catalog.Recipe
	Score    float64
	Position int
}

// KeywordResult is the answer to one keyword query.
type KeywordResult struct {
	Status  Status
	Results []SearchResult
}

// Index is a vectorizer fitted on a catalog's keyword corpus together with
// the vector of every recipe.
type Index struct {
	Vectorizer *TFIDFVectorizer
	Vectors    []SparseVector
	Version    string
}

// BuildIndex fits a fresh vectorizer on the catalog's keywords.
func BuildIndex(c *catalog.Catalog) *Index {
	v := NewTFIDFVectorizer()
	return &Index{
		Vectorizer: v,
		Vectors:    v.FitTransform(c.Keywords()),
		Version:    c.Version(),
	}
}

// IndexBuilder produces the index used for one search. Implementations may
// cache, but must return an index equivalent to BuildIndex(c).
type IndexBuilder func(c *catalog.Catalog) *Index

// KeywordSearcher ranks recipes by cosine similarity between the query and
// their keywords.
type KeywordSearcher struct {
	topN  int
	build IndexBuilder
}

func NewKeywordSearcher(topN int) *KeywordSearcher {
	if topN <= 0 || topN > DefaultTopN {
		topN = DefaultTopN
	}
	return &KeywordSearcher{topN: topN, build: BuildIndex}
}

// WithIndexBuilder replaces the index builder, typically with a cached one.
func (s *KeywordSearcher) WithIndexBuilder(b IndexBuilder) *KeywordSearcher {
	if b != nil {
		s.build = b
	}
	return s
}

// Search finds the recipes most similar to the query. Recipes with zero
// similarity are never returned; equal scores keep catalog order.
func (s *KeywordSearcher) Search(c *catalog.Catalog, query string) KeywordResult {
	if strings.TrimSpace(query) == "" {
		return KeywordResult{Status: StatusEmptyQuery}
	}

	idx := s.build(c)
	queryVector := idx.Vectorizer.Transform(query)
	if queryVector.IsZero() {
		return KeywordResult{Status: StatusNoMatch}
	}

	var results []SearchResult
	for i, vec := range idx.Vectors {
		score := CosineSimilarity(queryVector, vec)
		if score > 0 {
			results = append(results, SearchResult{
				Recipe:   c.At(i),
				Score:    score,
				Position: i,
			})
		}
	}
	if len(results) == 0 {
		return KeywordResult{Status: StatusNoMatch}
	}

	// Sort by descending score
	slices.SortStableFunc(results, func(a, b SearchResult) int {
		return cmp.Compare(b.Score, a.Score)
	})

	if len(results) > s.topN {
		results = results[:s.topN]
	}
	return KeywordResult{Status: StatusOK, Results: results}
}
