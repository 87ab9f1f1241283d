package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

func newLookupCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <isbn>",
		Short: "Resolve an ISBN and print the book record as JSON",
		Example: `  bookshelf lookup 9780140449136
  bookshelf lookup 0-14-044913-2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			isbn := args[0]
			if !metadata.IsValidISBN(isbn) {
				return fmt.Errorf("%q is not a valid ISBN-10 or ISBN-13", isbn)
			}

			resolver := entrypoint.NewResolver(config.NewConfig().Lookup)
			lookup, err := resolver.Lookup(cmd.Context(), isbn)
			if errors.Is(err, metadata.ErrNotFound) {
				return fmt.Errorf("no book found for ISBN %s", isbn)
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), string(lookup.Body))
			return nil
		},
	}
}
