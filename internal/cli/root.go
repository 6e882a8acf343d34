// Package cli provides the channelsync command line.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/channelsync/internal/app"
	"github.com/five82/channelsync/internal/state"
)

// Version is set by the main package at startup.
var Version = "dev"

// globalOptions holds the persistent flags.
type globalOptions struct {
	configPath string
	prefsPath  string
	apiURL     string
	demo       bool
	verbose    bool
	debug      bool
}

// NewRootCmd creates the root command. Without a subcommand it opens the
// browser.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "channelsync [collection]",
		Short: "Browse and reorder paginated collections from the terminal",
		Long: `channelsync keeps a local, page-by-page view of a remote collection
and applies removals and moves locally before the server confirms them.

Run without a subcommand to open the browser on the collection named in the
config file or on the command line. Use --demo to try it against a generated
in-memory collection.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts, args)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&opts.prefsPath, "prefs", "", "Preferences file path")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().BoolVar(&opts.demo, "demo", false, "Use a generated in-memory collection")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "Enable debug output (same as --verbose)")

	rootCmd.AddCommand(newBrowseCmd(opts))
	rootCmd.AddCommand(newContentsCmd(opts))
	rootCmd.AddCommand(newMoveCmd(opts))
	rootCmd.AddCommand(newRefreshItemCmd(opts))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// appOptions maps the persistent flags onto app.Options. Console sends log
// lines to stderr; the browser logs to the file instead.
func (o *globalOptions) appOptions(collection string, console bool) app.Options {
	level := ""
	if o.verbose || o.debug {
		level = "debug"
	}
	return app.Options{
		ConfigPath: o.configPath,
		PrefsPath:  o.prefsPath,
		APIURL:     o.apiURL,
		Collection: collection,
		LogLevel:   level,
		Demo:       o.demo,
		Console:    console,
	}
}

// openSession opens a console-logging session for one-shot commands.
func (o *globalOptions) openSession(collection string) (*app.Session, error) {
	return app.Open(o.appOptions(collection, true))
}

// viewFlags override the remembered sort, direction and type filter.
type viewFlags struct {
	sort       string
	direction  string
	typeFilter string
}

func (v *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&v.sort, "sort", "", "Sort field (defaults to the remembered view)")
	cmd.Flags().StringVar(&v.direction, "direction", "", "Sort direction: asc or desc")
	cmd.Flags().StringVar(&v.typeFilter, "type", "", "Only show items of this type")
}

// apply switches sess to the overridden identity.
func (v *viewFlags) apply(sess *app.Session) error {
	id := sess.Controller.Identity()
	if v.sort != "" {
		id.Sort = v.sort
	}
	switch strings.ToUpper(strings.TrimSpace(v.direction)) {
	case "":
	case state.DirectionAsc:
		id.Direction = state.DirectionAsc
	case state.DirectionDesc:
		id.Direction = state.DirectionDesc
	default:
		return fmt.Errorf("invalid --direction %q: want asc or desc", v.direction)
	}
	if v.typeFilter != "" {
		id.TypeFilter = v.typeFilter
	}
	return sess.Controller.SetIdentity(id)
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the channelsync version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "channelsync %s\n", Version)
		},
	}
}
