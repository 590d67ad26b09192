package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newSelectCmd() *cobra.Command {
	var (
		page int
		rows int
	)

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Select the first N rows starting at a page and print them as JSON lines",
		Example: `  # First 20 artworks
  artsel select --rows 20

  # 30 artworks starting at the third page
  artsel select --page 2 --rows 30`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.session.GoToPage(ctx, page); err != nil {
				return fmt.Errorf("load page %d: %w", page, err)
			}

			res, err := a.session.SelectFirstK(ctx, rows)
			if err != nil {
				return fmt.Errorf("rowNumber: failed to fetch rows: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, r := range a.session.Selection().Records {
				if err := enc.Encode(r); err != nil {
					return err
				}
			}

			a.logger.Info().
				Int("requested", res.Requested).
				Int("selected", res.Selected).
				Int("pages_fetched", res.PagesFetched).
				Msg("Rows selected")
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 0, "0-based page index to start from")
	cmd.Flags().IntVar(&rows, "rows", 0, "number of rows to select")

	return cmd
}
