package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
	"github.com/mrlokans/bookshelf/internal/metadata"
)

func newEnrichCommand() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "enrich [book-id]",
		Short: "Fill in missing metadata for one book, or for the whole library with --all",
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.NewConfig()

			db, err := database.NewDatabase(cfg.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			enricher := metadata.NewEnricher(
				entrypoint.NewResolver(cfg.Lookup),
				database.NewMetadataUpdater(books.NewRepository(db.DB)),
			)

			var result any
			if all {
				result, err = enricher.EnrichAllMissing(cmd.Context())
			} else {
				id, parseErr := strconv.ParseUint(args[0], 10, 32)
				if parseErr != nil {
					return fmt.Errorf("invalid book ID %q", args[0])
				}
				result, err = enricher.EnrichBook(cmd.Context(), uint(id))
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "enrich every book that is missing metadata")
	return cmd
}
