// cmd/costli/analyze.go
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"costli-agents/internal/bootstrap"
	"costli-agents/internal/models"
	analyzescenario "costli-agents/internal/workers/cost-analysis/analyze-scenario"
	generateactionplan "costli-agents/internal/workers/cost-analysis/generate-action-plan"
)

func newAnalyzeCmd(opts *rootOptions, open func(*cobra.Command) (*bootstrap.App, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <scenario>",
		Short: "Analyze a scenario and print five recommendation tiles as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := models.ParseDomain(opts.domain)
			if err != nil {
				return err
			}
			app, err := open(cmd)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())

			stderr := cmd.ErrOrStderr()
			progress := analyzescenario.ProgressFunc(func(label string) {
				fmt.Fprintf(stderr, "» %s\n", label)
			})

			tiles := app.Analyze.Analyze(cmd.Context(), strings.Join(args, " "), domain, progress)
			return printJSON(cmd.OutOrStdout(), tiles)
		},
	}
}

func newPlanCmd(opts *rootOptions, open func(*cobra.Command) (*bootstrap.App, error)) *cobra.Command {
	var headline, rationale string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Generate implementation steps for one recommendation",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := open(cmd)
			if err != nil {
				return err
			}
			defer app.Close(cmd.Context())

			out, err := app.Plan.Execute(cmd.Context(), &generateactionplan.Input{
				Headline:  headline,
				Rationale: rationale,
				Domain:    opts.domain,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().StringVar(&headline, "headline", "", "Recommendation headline")
	cmd.Flags().StringVar(&rationale, "rationale", "", "Why the recommendation applies")
	_ = cmd.MarkFlagRequired("headline")
	return cmd
}
