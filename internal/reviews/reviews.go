// Package reviews models the review table and computes the aggregates shown
// alongside the recommendations.
package reviews

import (
	"cmp"
	"slices"
	"time"
)

// Review is one row of the review table.
type Review struct {
	ReviewID   int64     `json:"review_id"`
	RecipeID   int64     `json:"recipe_id"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Text       string    `json:"review"`
	Submitted  time.Time `json:"date_submitted"`
	Year       int       `json:"year"`
}

// RatingCount is the number of reviews carrying a rating.
type RatingCount struct {
	Rating int `json:"rating"`
	Count  int `json:"count"`
}

// YearStat aggregates the reviews of one year.
type YearStat struct {
	Year          int     `json:"year"`
	Reviews       int     `json:"reviews"`
	AverageRating float64 `json:"average_rating"`
}

// ReviewerCount is the number of reviews written by one author.
type ReviewerCount struct {
	AuthorName string `json:"author_name"`
	Reviews    int    `json:"reviews"`
}

// Stats summarises a review table.
type Stats struct {
	Total        int             `json:"total"`
	Ratings      []RatingCount   `json:"rating_distribution"`
	Years        []YearStat      `json:"years"`
	TopReviewers []ReviewerCount `json:"top_reviewers"`
}

// Compute aggregates reviews: the rating distribution in ascending rating
// order, review count and mean rating per year in ascending year order
// (reviews without a year are skipped), and the topN most prolific authors.
// Authors with equal counts are ordered by name.
func Compute(reviews []Review, topN int) Stats {
	stats := Stats{Total: len(reviews)}

	ratings := make(map[int]int)
	years := make(map[int]*YearStat)
	authors := make(map[string]int)
	ratingSums := make(map[int]float64)

	for _, r := range reviews {
		ratings[r.Rating]++
		if r.AuthorName != "" {
			authors[r.AuthorName]++
		}

		year := r.Year
		if year == 0 && !r.Submitted.IsZero() {
			year = r.Submitted.Year()
		}
		if year == 0 {
			continue
		}
		ys, ok := years[year]
		if !ok {
			ys = &YearStat{Year: year}
			years[year] = ys
		}
		ys.Reviews++
		ratingSums[year] += float64(r.Rating)
	}

	for rating, count := range ratings {
		stats.Ratings = append(stats.Ratings, RatingCount{Rating: rating, Count: count})
	}
	slices.SortFunc(stats.Ratings, func(a, b RatingCount) int { return cmp.Compare(a.Rating, b.Rating) })

	for year, ys := range years {
		ys.AverageRating = ratingSums[year] / float64(ys.Reviews)
		stats.Years = append(stats.Years, *ys)
	}
	slices.SortFunc(stats.Years, func(a, b YearStat) int { return cmp.Compare(a.Year, b.Year) })

	for name, count := range authors {
		stats.TopReviewers = append(stats.TopReviewers, ReviewerCount{AuthorName: name, Reviews: count})
	}
	slices.SortFunc(stats.TopReviewers, func(a, b ReviewerCount) int {
		if c := cmp.Compare(b.Reviews, a.Reviews); c != 0 {
			return c
		}
		return cmp.Compare(a.AuthorName, b.AuthorName)
	})
	if topN >= 0 && len(stats.TopReviewers) > topN {
		stats.TopReviewers = stats.TopReviewers[:topN]
	}

	return stats
}
