package cli

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/five82/channelsync/internal/state"
)

func newRefreshItemCmd(opts *globalOptions) *cobra.Command {
	var (
		pages int
		kind  string
	)

	cmd := &cobra.Command{
		Use:   "refresh-item <collection> <item-id>",
		Short: "Refetch one item and replace it in the loaded view",
		Long: `Load the first pages of a collection, refetch one item by id and swap the
fresh content into its slot. Items that are collections themselves are
skipped.

Example:
  channelsync refresh-item arena-influences 4821 --pages 2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			sess, err := opts.openSession(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()

			for page := 1; page <= max(pages, 1); page++ {
				if err := sess.Controller.FetchPage(ctx, page); err != nil {
					return err
				}
			}

			itemID := args[1]
			if kind == "" {
				kind = kindOf(sess.Controller.Items(), itemID)
			}
			if !sess.Mutator.ReplaceInPlace(ctx, itemID, kind) {
				return fmt.Errorf("item %s was not refreshed (not in the loaded pages, a collection, or not found)", itemID)
			}

			items := sess.Controller.Items()
			idx := slices.IndexFunc(items, func(it *state.Item) bool { return it != nil && it.ID == itemID })
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed %s at %d: %s\n", itemID, idx+1, items[idx].Title())
			return nil
		},
	}

	cmd.Flags().IntVar(&pages, "pages", 1, "Number of pages to load before refreshing")
	cmd.Flags().StringVar(&kind, "kind", "", "Connectable kind (BLOCK or CHANNEL); defaults to the loaded item's kind")
	return cmd
}

// kindOf returns the connectable kind of the first loaded item with id.
func kindOf(items []*state.Item, id string) string {
	for _, it := range items {
		if it != nil && it.ID == id {
			return state.ConnectableKind(it.Type)
		}
	}
	return state.KindBlock
}
