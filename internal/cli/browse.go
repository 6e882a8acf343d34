package cli

import (
	"github.com/spf13/cobra"

	"github.com/five82/channelsync/internal/app"
)

func newBrowseCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "browse [collection]",
		Short: "Open the interactive browser",
		Long: `Open the interactive browser on a collection.

Example:
  # Browse the collection from the config file
  channelsync browse

  # Browse a generated collection
  channelsync --demo browse`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts, args)
		},
	}
}

func runBrowse(cmd *cobra.Command, opts *globalOptions, args []string) error {
	var collection string
	if len(args) == 1 {
		collection = args[0]
	}
	return app.Run(cmd.Context(), opts.appOptions(collection, false))
}
