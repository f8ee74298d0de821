package main

import (
	"errors"
	"fmt"

	"github.com/godilite/review-server/internal/render"
	"github.com/godilite/review-server/internal/service"
	"github.com/godilite/review-server/internal/tui"
	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reviews, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := service.LoadAggregate(cmd.Context(), c.store, c.logger)
			if err != nil {
				return fmt.Errorf("load reviews: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), c.renderer.Reviews(state.Reviews))
			return nil
		},
	}
}

func newSummaryCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show the average rating and the rating distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := service.LoadAggregate(cmd.Context(), c.store, c.logger)
			if err != nil {
				return fmt.Errorf("load reviews: %w", err)
			}
			fmt.Fprint(cmd.OutOrStdout(), c.renderer.Summary(state))
			return nil
		},
	}
}

func newSubmitCmd(c *cli) *cobra.Command {
	var (
		name   string
		text   string
		rating int
	)

	cmd := &cobra.Command{
		Use:   "submit",
		Short: "Submit one review",
		Long: `Submits a review and prints the refreshed summary.

Example:
  reviews submit --rating 5 --name Ann --text "Works as advertised"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			agg := c.newAggregator()
			if err := agg.SetRating(rating); err != nil {
				return err
			}

			if err := agg.Submit(cmd.Context(), name, text); err != nil {
				if errors.Is(err, service.ErrNotSubmittable) {
					return err
				}
				return errors.New(render.ErrorText(err))
			}

			fmt.Fprint(cmd.OutOrStdout(), c.renderer.View(agg.Snapshot()))
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Your name (required)")
	cmd.Flags().StringVar(&text, "text", "", "Review text (required)")
	cmd.Flags().IntVar(&rating, "rating", 0, "Rating from 1 to 5 (required)")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("rating")
	return cmd
}

func newRateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "rate",
		Short: "Open the interactive rating form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return tui.Run(cmd.Context(), c.newAggregator(), c.renderer)
		},
	}
}
