package main

import (
	"github.com/spf13/cobra"

	"github.com/flavourai/backend/internal/api"
	"github.com/flavourai/backend/internal/config"
	"github.com/flavourai/backend/internal/nutrient"
)

type filterOptions struct {
	nutrient  string
	level     string
	nutrient2 string
	level2    string
}

func newFilterCommand(cfg *config.Config, opts *globalOptions) *cobra.Command {
	fo := &filterOptions{}

	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Recommend recipes at the requested nutrient levels",
		Long: `Select recipes whose nutrient levels match exactly, ranked by how
confidently a keyword classifier predicts the primary level.

When nothing matches, the closest recipes by predicted probability are shown
instead. Nutrients: Calories, Fat, Cholesterol, Sodium, Carbohydrate, Fiber,
Sugar, Protein. Levels: Low, Medium, High, Very High.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := api.ParseNutrientQuery(fo.nutrient, fo.level, fo.nutrient2, fo.level2)
			if err != nil {
				return err
			}

			eng, err := loadEngine(cmd, cfg, opts)
			if err != nil {
				return err
			}

			res, err := eng.FilterByNutrient(cmd.Context(), query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if opts.jsonOutput {
				if err := writeJSON(out, api.NewNutrientResponse(res)); err != nil {
					return err
				}
			} else {
				printFilter(out, res)
			}

			if res.Status == nutrient.StatusEmptyResult {
				return &NoResultsError{Message: res.Message}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&fo.nutrient, "nutrient", "", "Primary nutrient")
	cmd.Flags().StringVar(&fo.level, "level", "", "Required level of the primary nutrient")
	cmd.Flags().StringVar(&fo.nutrient2, "nutrient2", "", "Optional secondary nutrient")
	cmd.Flags().StringVar(&fo.level2, "level2", "", "Required level of the secondary nutrient")
	_ = cmd.MarkFlagRequired("nutrient")
	_ = cmd.MarkFlagRequired("level")
	cmd.MarkFlagsRequiredTogether("nutrient2", "level2")

	return cmd
}
