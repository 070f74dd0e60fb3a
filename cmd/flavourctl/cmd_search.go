package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/flavourai/backend/internal/api"
	"github.com/flavourai/backend/internal/config"
	"github.com/flavourai/backend/internal/search"
)

func newSearchCommand(cfg *config.Config, opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query...>",
		Short: "Find recipes by keyword similarity",
		Long: `Rank recipes by TF-IDF cosine similarity between the query and each
recipe's keywords. At most the top results are printed, best first.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := loadEngine(cmd, cfg, opts)
			if err != nil {
				return err
			}

			query := strings.Join(args, " ")
			res := eng.SearchByKeyword(query)
			out := cmd.OutOrStdout()

			if opts.jsonOutput {
				if err := writeJSON(out, api.NewSearchResponse(query, res)); err != nil {
					return err
				}
			} else {
				printSearch(out, res)
			}

			switch res.Status {
			case search.StatusEmptyQuery:
				return &NoResultsError{Message: "empty query"}
			case search.StatusNoMatch:
				return &NoResultsError{Message: "no recipe matches the query"}
			}
			return nil
		},
	}
}
