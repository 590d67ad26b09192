package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newPageCmd() *cobra.Command {
	var index int

	cmd := &cobra.Command{
		Use:   "page",
		Short: "Print one page of artworks as JSON lines",
		Example: `  # First page
  artsel page

  # Fourth page
  artsel page --index 3`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			if err := a.session.GoToPage(cmd.Context(), index); err != nil {
				return fmt.Errorf("load page %d: %w", index, err)
			}

			view := a.session.View()
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, row := range view.Rows {
				if err := enc.Encode(row.Record); err != nil {
					return err
				}
			}

			a.logger.Info().
				Int("page_index", view.State.PageIndex).
				Int("total", view.State.Total).
				Int("total_pages", view.State.TotalPages()).
				Msg("Page loaded")
			return nil
		},
	}

	cmd.Flags().IntVar(&index, "index", 0, "0-based page index")

	return cmd
}
