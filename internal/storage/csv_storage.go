package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/reviews"
	"github.com/flavourai/backend/internal/sanitize"
)

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyTable    = errors.New("table has no header row")
)

// RecipeSource defines where the recipe and review tables come from
type RecipeSource interface {
	LoadRecipes() ([]catalog.Recipe, LoadReport, error)
	LoadReviews() ([]reviews.Review, error)
	Close() error
}

// LoadReport counts rows that were recovered with a default value.
type LoadReport struct {
	Rows               int
	SkippedRows        int
	UnknownCookTimes   int
	MalformedLists     int
	UnknownLevelLabels int
}

// Warnings returns the total number of recovered values.
func (r LoadReport) Warnings() int {
	return r.SkippedRows + r.UnknownCookTimes + r.MalformedLists + r.UnknownLevelLabels
}

// CSVStorage implements RecipeSource over two CSV files
type CSVStorage struct {
	recipesPath string
	reviewsPath string
	logger      *logrus.Entry
}

// NewCSVStorage creates a CSV-backed source. The recipes file must exist; an
// empty reviewsPath means there is no review table.
func NewCSVStorage(recipesPath, reviewsPath string, logger *logrus.Entry) (*CSVStorage, error) {
	if logger == nil {
		logger = logrus.WithField("component", "csv_storage")
	}
	if _, err := os.Stat(recipesPath); err != nil {
		return nil, fmt.Errorf("failed to open recipes table: %w", err)
	}
	return &CSVStorage{
		recipesPath: recipesPath,
		reviewsPath: reviewsPath,
		logger:      logger,
	}, nil
}

// LoadRecipes reads the recipe table
func (s *CSVStorage) LoadRecipes() ([]catalog.Recipe, LoadReport, error) {
	f, err := os.Open(s.recipesPath)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("failed to open recipes table: %w", err)
	}
	defer f.Close()

	recipes, report, err := ReadRecipes(f)
	if err != nil {
		return nil, report, fmt.Errorf("failed to read %s: %w", s.recipesPath, err)
	}

	entry := s.logger.WithFields(logrus.Fields{
		"path":    s.recipesPath,
		"recipes": len(recipes),
	})
	if report.Warnings() > 0 {
		entry.WithFields(logrus.Fields{
			"skipped_rows":         report.SkippedRows,
			"unknown_cook_times":   report.UnknownCookTimes,
			"malformed_lists":      report.MalformedLists,
			"unknown_level_labels": report.UnknownLevelLabels,
		}).Warn("Recovered malformed values in recipe table")
	}
	entry.Info("Loaded recipe table")
	return recipes, report, nil
}

// LoadReviews reads the review table
func (s *CSVStorage) LoadReviews() ([]reviews.Review, error) {
	if s.reviewsPath == "" {
		return nil, nil
	}
	f, err := os.Open(s.reviewsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open reviews table: %w", err)
	}
	defer f.Close()

	rs, err := ReadReviews(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", s.reviewsPath, err)
	}
	s.logger.WithFields(logrus.Fields{"path": s.reviewsPath, "reviews": len(rs)}).Info("Loaded review table")
	return rs, nil
}

// Close is a no-op for file storage
func (s *CSVStorage) Close() error {
	return nil
}

// table gives named access to CSV records.
type table struct {
	reader  *csv.Reader
	columns map[string]int
}

func newTable(r io.Reader, required ...string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyTable
	}
	if err != nil {
		return nil, err
	}

	t := &table{reader: reader, columns: make(map[string]int, len(header))}
	for i, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		t.columns[name] = i
	}
	for _, col := range required {
		if _, ok := t.columns[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return t, nil
}

func (t *table) get(record []string, column string) string {
	i, ok := t.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func (t *table) has(column string) bool {
	_, ok := t.columns[column]
	return ok
}

// ReadRecipes parses a recipe table. Rows without a usable RecipeId are
// skipped; every other malformed value is replaced by a default and counted.
func ReadRecipes(r io.Reader) ([]catalog.Recipe, LoadReport, error) {
	var report LoadReport
	t, err := newTable(r, "RecipeId", "Name")
	if err != nil {
		return nil, report, err
	}

	var recipes []catalog.Recipe
	for {
		record, err := t.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, report, err
		}
		report.Rows++

		id, err := parseID(t.get(record, "RecipeId"))
		if err != nil {
			report.SkippedRows++
			continue
		}

		recipe := catalog.Recipe{
			ID:              id,
			Name:            t.get(record, "Name"),
			Description:     sanitize.StripMarkup(t.get(record, "Description")),
			Category:        t.get(record, "RecipeCategory"),
			Keywords:        nullToEmpty(t.get(record, "Keywords")),
			IngredientsRaw:  t.get(record, "RecipeIngredientParts"),
			InstructionsRaw: t.get(record, "RecipeInstructions"),
			Levels:          catalog.UnknownLevels(),
		}

		cookTime, ok := catalog.ParseCookTime(t.get(record, "CookTime"))
		if !ok && t.has("CookTime") {
			report.UnknownCookTimes++
		}
		recipe.CookTime = cookTime

		if _, ok := sanitize.CleanListField(recipe.IngredientsRaw); !ok {
			report.MalformedLists++
		}
		if _, ok := sanitize.CleanListField(recipe.InstructionsRaw); !ok {
			report.MalformedLists++
		}

		for _, n := range catalog.Nutrients() {
			level, err := catalog.ParseLevel(t.get(record, n.Column()))
			if err != nil {
				report.UnknownLevelLabels++
			}
			recipe.Levels[n] = level
		}

		recipes = append(recipes, recipe)
	}
	return recipes, report, nil
}

// ReadReviews parses a review table. Unparseable numbers become zero.
func ReadReviews(r io.Reader) ([]reviews.Review, error) {
	t, err := newTable(r, "RecipeId", "Rating")
	if err != nil {
		return nil, err
	}

	var rs []reviews.Review
	for {
		record, err := t.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		review := reviews.Review{
			AuthorName: t.get(record, "AuthorName"),
			Text:       t.get(record, "Review"),
			Submitted:  parseTime(t.get(record, "DateSubmitted")),
		}
		review.ReviewID, _ = parseID(t.get(record, "ReviewId"))
		review.RecipeID, _ = parseID(t.get(record, "RecipeId"))
		review.AuthorID, _ = parseID(t.get(record, "AuthorId"))
		rating, _ := parseID(t.get(record, "Rating"))
		review.Rating = int(rating)
		year, _ := parseID(t.get(record, "Year"))
		review.Year = int(year)

		rs = append(rs, review)
	}
	return rs, nil
}

// parseID accepts integers and integral floats such as "38.0".
func parseID(s string) (int64, error) {
	if id, err := strconv.ParseInt(s, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return int64(f), nil
}

var timeLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullToEmpty(s string) string {
	switch strings.ToLower(s) {
	case "nan", "na", "null", "none":
		return ""
	}
	return s
}
