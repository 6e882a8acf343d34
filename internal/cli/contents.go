package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/five82/channelsync/internal/state"
)

func newContentsCmd(opts *globalOptions) *cobra.Command {
	var (
		pages  int
		asJSON bool
		view   viewFlags
	)

	cmd := &cobra.Command{
		Use:   "contents <collection>",
		Short: "Print the first pages of a collection",
		Long: `Fetch the first pages of a collection concurrently and print the
merged view. Slots whose page was not fetched print as "not loaded".

Example:
  # First three pages, newest first
  channelsync contents arena-influences --pages 3

  # Images only, oldest first, as JSON
  channelsync contents arena-influences --type Image --direction asc --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if pages < 1 {
				return fmt.Errorf("--pages must be at least 1")
			}
			sess, err := opts.openSession(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			if err := view.apply(sess); err != nil {
				return err
			}

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(sess.Config.MaxInFlight, 1))
			for page := 1; page <= pages; page++ {
				g.Go(func() error {
					return sess.Controller.FetchPage(ctx, page)
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			snap := sess.Controller.Snapshot()
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(snap.Items)
			}
			printItems(cmd.OutOrStdout(), snap)
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to fetch")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the item payloads as JSON")
	view.register(cmd)

	return cmd
}

// printItems writes one line per slot followed by a summary.
func printItems(w io.Writer, snap state.Snapshot) {
	for i, item := range snap.Items {
		if item == nil {
			fmt.Fprintf(w, "%4d  (not loaded)\n", i+1)
			continue
		}
		fmt.Fprintf(w, "%4d  %-10s %-10s %s\n", i+1, item.Type, item.ID, item.Title())
	}
	fmt.Fprintf(w, "%d of %d loaded\n", snap.Resolved(), snap.Count)
}
