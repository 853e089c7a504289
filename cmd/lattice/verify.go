package main

import (
	"github.com/spf13/cobra"
	"github.com/vango-dev/lattice/internal/demo"
	"github.com/vango-dev/lattice/pkg/dom"
)

func verifyCmd(a *app) *cobra.Command {
	var starts []int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that hydration reproduces server markup",
		Long: `Render the counter on a dry tree, parse the markup, hydrate a live
tree over it and compare the serialized result byte for byte.

Examples:
  lattice verify
  lattice verify --start=0,1,2,10`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, start := range starts {
				markup, err := demo.RoundTrip(cmd.Context(), func(t *dom.Tree) (dom.Element, error) {
					c, err := demo.NewCounter(t, start)
					if err != nil {
						return dom.Element{}, err
					}
					return c.Root(), nil
				})
				if err != nil {
					return err
				}
				success(w, "start=%d: %d bytes round trip", start, len(markup))
			}
			a.logger.Debug("verify complete", "cases", len(starts))
			return nil
		},
	}

	cmd.Flags().IntSliceVar(&starts, "start", []int{0, 1, 2}, "Initial counts to verify")

	return cmd
}
