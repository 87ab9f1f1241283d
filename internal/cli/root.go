// Package cli defines the bookshelf command line.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/entrypoint"
)

// NewRootCommand builds the bookshelf command tree. Without a subcommand the
// HTTP server is started.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "bookshelf",
		Short: "Personal book library with ISBN metadata lookup",
		Long: `Bookshelf keeps a catalogue of books and fills in their metadata
(publisher, page count, cover, description) from ISBNdb and Google Books.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(config.NewConfig(), version)
		},
	}

	rootCmd.AddCommand(
		newServeCommand(version),
		newLookupCommand(),
		newEnrichCommand(),
		newCreateUserCommand(),
	)
	return rootCmd
}

func newServeCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return entrypoint.Run(config.NewConfig(), version)
		},
	}
}
