package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/channelsync/internal/app"
	"github.com/five82/channelsync/internal/paging"
)

func newMoveCmd(opts *globalOptions) *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "move <collection> <from> <to>",
		Short: "Move an item to another position",
		Long: `Move the item at position <from> to position <to>. Positions count from 1
in the displayed order; use "last" for the final position. The move is
applied locally, sent to the server, and then verified by refetching the
target page.

Example:
  channelsync move arena-influences 7 1
  channelsync move arena-influences 3 last`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parsePosition(args[1], false)
			if err != nil {
				return err
			}
			to, err := parsePosition(args[2], true)
			if err != nil {
				return err
			}

			sess, err := opts.openSession(args[0])
			if err != nil {
				return err
			}
			defer func() { _ = sess.Close() }()
			if err := view.apply(sess); err != nil {
				return err
			}
			return runMove(cmd, sess, from, to)
		},
	}
	view.register(cmd)
	return cmd
}

// runMove moves the item at the zero-based index from to index to (-1 for
// the last position) and verifies the result.
func runMove(cmd *cobra.Command, sess *app.Session, from, to int) error {
	ctx := cmd.Context()
	ctrl := sess.Controller

	if err := ctrl.FetchPage(ctx, ctrl.PageFromIndex(from)); err != nil {
		return err
	}
	items := ctrl.Items()
	if from >= len(items) || items[from] == nil {
		return fmt.Errorf("position %d is out of range (collection has %d items)", from+1, ctrl.Count())
	}
	moved := *items[from]

	target := to
	if target == -1 {
		target = ctrl.Count() - 1
	}
	if !sess.Mutator.MoveLocal(ctx, from, to) {
		return fmt.Errorf("cannot move position %d to %d", from+1, target+1)
	}
	sess.Mutator.Wait()

	if err := ctrl.FetchPage(ctx, paging.PageFromIndex(target, ctrl.Identity().PageSize)); err != nil {
		return fmt.Errorf("verify move: %w", err)
	}
	items = ctrl.Items()
	if target >= len(items) || items[target] == nil || items[target].Key() != moved.Key() {
		return fmt.Errorf("server did not confirm the move of %s", moved.ID)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "moved %s to %d\n", moved.ID, target+1)
	return nil
}

// parsePosition converts a one-based position to a zero-based index. When
// allowLast is set, "last" maps to -1.
func parsePosition(arg string, allowLast bool) (int, error) {
	arg = strings.TrimSpace(arg)
	if allowLast && strings.EqualFold(arg, "last") {
		return -1, nil
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q: want a number from 1", arg)
	}
	return n - 1, nil
}
