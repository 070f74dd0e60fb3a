package search

import (
	"math"
	"sort"
)

// TFIDFVectorizer implements Term Frequency - Inverse Document Frequency with
// smoothed idf and L2-normalised rows.
type TFIDFVectorizer struct {
	// MaxFeatures bounds the vocabulary to the most frequent terms in the
	// corpus. Zero keeps every term.
	MaxFeatures int
	StopWords   map[string]struct{}

	vocabulary map[string]int
	idf        []float64
}

// NewTFIDFVectorizer returns a vectorizer with English stop words removed.
func NewTFIDFVectorizer() *TFIDFVectorizer {
	return &TFIDFVectorizer{
		StopWords:  EnglishStopWords(),
		vocabulary: make(map[string]int),
	}
}

func (v *TFIDFVectorizer) analyze(text string) []string {
	tokens := Tokenize(text)
	if len(v.StopWords) == 0 {
		return tokens
	}
	out := tokens[:0]
	for _, t := range tokens {
		if _, stop := v.StopWords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// Fit analyzes the corpus to build vocabulary and IDF stats. Any previously
// fitted state is replaced.
func (v *TFIDFVectorizer) Fit(docs []string) {
	docCounts := make(map[string]int)
	termCounts := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]bool)
		for _, token := range v.analyze(doc) {
			termCounts[token]++
			if !seen[token] {
				docCounts[token]++
				seen[token] = true
			}
		}
	}

	terms := make([]string, 0, len(termCounts))
	for term := range termCounts {
		terms = append(terms, term)
	}

	if v.MaxFeatures > 0 && len(terms) > v.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			ci, cj := termCounts[terms[i]], termCounts[terms[j]]
			if ci != cj {
				return ci > cj
			}
			return terms[i] < terms[j]
		})
		terms = terms[:v.MaxFeatures]
	}
	sort.Strings(terms)

	n := float64(len(docs))
	v.vocabulary = make(map[string]int, len(terms))
	v.idf = make([]float64, len(terms))
	for i, term := range terms {
		v.vocabulary[term] = i
		// idf = ln((1 + n) / (1 + df)) + 1
		v.idf[i] = math.Log((1+n)/(1+float64(docCounts[term]))) + 1
	}
}

// Transform converts text to a vector based on the learned vocabulary.
// Tokens outside the vocabulary are ignored, so unseen text yields the zero
// vector.
func (v *TFIDFVectorizer) Transform(text string) SparseVector {
	counts := make(map[int]float64)
	for _, token := range v.analyze(text) {
		if idx, ok := v.vocabulary[token]; ok {
			counts[idx]++
		}
	}
	if len(counts) == 0 {
		return SparseVector{}
	}

	vec := SparseVector{
		Indices: make([]int, 0, len(counts)),
		Values:  make([]float64, 0, len(counts)),
	}
	for idx := range counts {
		vec.Indices = append(vec.Indices, idx)
	}
	sort.Ints(vec.Indices)

	var norm float64
	for _, idx := range vec.Indices {
		w := counts[idx] * v.idf[idx]
		vec.Values = append(vec.Values, w)
		norm += w * w
	}
	norm = math.Sqrt(norm)
	for i := range vec.Values {
		vec.Values[i] /= norm
	}
	return vec
}

// FitTransform fits on docs and returns one vector per document.
func (v *TFIDFVectorizer) FitTransform(docs []string) []SparseVector {
	v.Fit(docs)
	out := make([]SparseVector, len(docs))
	for i, doc := range docs {
		out[i] = v.Transform(doc)
	}
	return out
}

// Dimension returns the vocabulary size.
func (v *TFIDFVectorizer) Dimension() int {
	return len(v.idf)
}

// Vocabulary returns a copy of the term to column mapping.
func (v *TFIDFVectorizer) Vocabulary() map[string]int {
	out := make(map[string]int, len(v.vocabulary))
	for k, i := range v.vocabulary {
		out[k] = i
	}
	return out
}

// SparseVector stores the non-zero entries of a vector. Indices are strictly
// increasing.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// IsZero reports whether the vector has no non-zero entries.
func (s SparseVector) IsZero() bool {
	for _, v := range s.Values {
		if v != 0 {
			return false
		}
	}
	return true
}

// Dot returns the inner product of two sparse vectors.
func (s SparseVector) Dot(o SparseVector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(s.Indices) && j < len(o.Indices) {
		switch {
		case s.Indices[i] == o.Indices[j]:
			sum += s.Values[i] * o.Values[j]
			i++
			j++
		case s.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Norm returns the Euclidean length of the vector.
func (s SparseVector) Norm() float64 {
	var sum float64
	for _, v := range s.Values {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// CosineSimilarity calculates the cosine similarity between two vectors
func CosineSimilarity(a, b SparseVector) float64 {
	normA, normB := a.Norm(), b.Norm()
	if normA == 0 || normB == 0 {
		return 0
	}
	return a.Dot(b) / (normA * normB)
}
