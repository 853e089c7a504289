package main

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/vango-dev/lattice/internal/demo"
	"github.com/vango-dev/lattice/pkg/dom"
	"github.com/vango-dev/lattice/pkg/render"
	"github.com/vango-dev/lattice/pkg/update"
)

func renderCmd(a *app) *cobra.Command {
	var (
		start  int
		page   bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the counter on a dry tree",
		Long: `Render the demo counter without a surface and print its markup.

Examples:
  lattice render
  lattice render --start=4
  lattice render --page -o index.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}

			tree := dom.NewTree(nil, dom.WithQueue(update.New()))
			counter, err := demo.NewCounter(tree, start)
			if err != nil {
				return err
			}
			body := counter.Root()

			r := render.NewRenderer(render.RendererConfig{
				MountID: a.cfg.Render.MountID,
				Lang:    a.cfg.Render.Lang,
			})
			if !page {
				if err := r.RenderToWriter(w, body); err != nil {
					return err
				}
				_, err := w.Write([]byte("\n"))
				return err
			}
			return r.RenderPage(cmd.Context(), w, render.PageData{
				Title:       a.cfg.Render.Title,
				StyleSheets: a.cfg.Render.StyleSheets,
				Body:        body,
			})
		},
	}

	cmd.Flags().IntVar(&start, "start", 0, "Initial count")
	cmd.Flags().BoolVar(&page, "page", false, "Render a complete HTML page")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to a file instead of stdout")

	return cmd
}
