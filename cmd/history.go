package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/types"
)

func newHistoryCmd(c *cli) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show, replay or clear executed queries",
	}

	listCmd := &cobra.Command{
		Use:   "list [mongo|redis]",
		Short: "List history, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			entries, err := c.app.History(kind)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no history"))
				return nil
			}
			rows := make([][]string, len(entries))
			for i, e := range entries {
				rows[i] = []string{
					strconv.Itoa(i),
					when(e.Timestamp),
					fmt.Sprintf("%.3fs", e.ExecutionTime),
					target(e.Database, e.Collection),
					e.Query,
				}
			}
			printTable(cmd.OutOrStdout(), []string{"#", "WHEN", "TOOK", "TARGET", "QUERY"}, rows)
			return nil
		},
	}

	var (
		profile string
		out     outputFlags
	)
	replayCmd := &cobra.Command{
		Use:   "replay [mongo|redis] [index]",
		Short: "Run a history entry again (0 is the newest)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			index, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("index must be a number: %w", err)
			}
			id, err := c.connect(cmd, kind, profile)
			if err != nil {
				return err
			}
			res, err := c.app.ReplayHistory(cmd.Context(), id, index)
			if err != nil {
				return err
			}
			return c.printResult(cmd, res, &out)
		},
	}
	replayCmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile to connect with (default: last used)")
	out.register(replayCmd)

	clearCmd := &cobra.Command{
		Use:   "clear [mongo|redis]",
		Short: "Clear history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			return c.app.ClearHistory(kind)
		},
	}

	historyCmd.AddCommand(listCmd, replayCmd, clearCmd)
	return historyCmd
}

func when(ts types.Timestamp) string {
	if ts.Time.IsZero() {
		return ts.String()
	}
	return ts.Time.Local().Format(time.DateTime)
}

func target(database, collection string) string {
	switch {
	case database == "":
		return ""
	case collection == "":
		return database
	default:
		return database + "." + collection
	}
}
