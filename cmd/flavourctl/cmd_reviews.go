package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/flavourai/backend/internal/config"
)

func newReviewsCommand(cfg *config.Config, opts *globalOptions) *cobra.Command {
	var top int

	cmd := &cobra.Command{
		Use:   "reviews",
		Short: "Summarise recipe reviews",
		Long: `Print the rating distribution, review volume and mean rating per year,
and the most prolific reviewers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if top < 0 {
				return fmt.Errorf("--top must not be negative")
			}

			eng, err := loadEngine(cmd, cfg, opts)
			if err != nil {
				return err
			}

			stats := eng.ReviewStats(top)
			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				return writeJSON(out, stats)
			}
			printReviews(out, stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", 10, "Number of top reviewers to list")

	return cmd
}
