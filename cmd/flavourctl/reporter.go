package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/flavourai/backend/internal/catalog"
	"github.com/flavourai/backend/internal/nutrient"
	"github.com/flavourai/backend/internal/reviews"
	"github.com/flavourai/backend/internal/search"
)

const descriptionWidth = 80

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printSearch(w io.Writer, res search.KeywordResult) {
	switch res.Status {
	case search.StatusEmptyQuery:
		fmt.Fprintln(w, "Please enter a keyword to search.")
		return
	case search.StatusNoMatch:
		fmt.Fprintln(w, "No recipes match your search.")
		return
	}

	fmt.Fprintf(w, "Top %d recipes:\n", len(res.Results))
	for i, hit := range res.Results {
		fmt.Fprintf(w, "%2d. %s (score %.3f)\n", i+1, hit.Recipe.Name, hit.Score)
		printRecipeDetails(w, hit.Recipe)
	}
}

func printFilter(w io.Writer, res nutrient.FilterResult) {
	if res.Message != "" {
		fmt.Fprintln(w, res.Message)
	}
	if len(res.Results) == 0 {
		return
	}

	fmt.Fprintf(w, "Top %d recipes:\n", len(res.Results))
	for i, hit := range res.Results {
		fmt.Fprintf(w, "%2d. %s (probability %.3f)\n", i+1, hit.Recipe.Name, hit.Probability)
		printRecipeDetails(w, hit.Recipe)
	}
}

func printRecipeDetails(w io.Writer, r catalog.Recipe) {
	if r.Category != "" {
		fmt.Fprintf(w, "    category:  %s\n", r.Category)
	}
	fmt.Fprintf(w, "    cook time: %s\n", r.CookTime)
	if r.Description != "" {
		fmt.Fprintf(w, "    %s\n", truncate(r.Description, descriptionWidth))
	}
}

func printReviews(w io.Writer, stats reviews.Stats) {
	fmt.Fprintf(w, "Reviews: %d\n", stats.Total)
	if stats.Total == 0 {
		return
	}

	fmt.Fprintln(w, "\nRatings:")
	for _, rc := range stats.Ratings {
		fmt.Fprintf(w, "  %d stars  %d\n", rc.Rating, rc.Count)
	}

	if len(stats.Years) > 0 {
		fmt.Fprintln(w, "\nPer year:")
		for _, ys := range stats.Years {
			fmt.Fprintf(w, "  %d  %6d reviews  avg %.2f\n", ys.Year, ys.Reviews, ys.AverageRating)
		}
	}

	if len(stats.TopReviewers) > 0 {
		fmt.Fprintln(w, "\nTop reviewers:")
		for i, rc := range stats.TopReviewers {
			fmt.Fprintf(w, "  %2d. %s (%d)\n", i+1, rc.AuthorName, rc.Reviews)
		}
	}
}

func truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	return strings.TrimSpace(string(runes[:width-3])) + "..."
}
