package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/types"
)

func newFavoriteCmd(c *cli) *cobra.Command {
	favoriteCmd := &cobra.Command{
		Use:     "favorite",
		Aliases: []string{"fav"},
		Short:   "Manage saved queries",
	}

	var (
		fav types.FavoriteEntry
		op  string
	)
	addCmd := &cobra.Command{
		Use:   "add [mongo|redis] [name] [query]",
		Short: "Save or replace a favorite",
		Long: `Save or replace a favorite. For mongo the query is a filter, or a
pipeline with --op aggregate, and --database/--collection give its target. For redis the query is a command
line such as "HGETALL user:1".`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			fav.Name = args[1]
			fav.Query = args[2]
			fav.Operation = types.Operation(op)
			if err := c.app.SaveFavorite(kind, fav); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s favorite %q\n", successStyle.Render("saved"), fav.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&fav.Database, "database", "", "Database (mongo)")
	addCmd.Flags().StringVar(&fav.Collection, "collection", "", "Collection (mongo)")
	addCmd.Flags().StringVar(&op, "op", "", "Operation: find, aggregate or count (mongo, default: inferred from the query)")

	listCmd := &cobra.Command{
		Use:   "list [mongo|redis]",
		Short: "List favorites",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			favorites, err := c.app.Favorites(kind)
			if err != nil {
				return err
			}
			if len(favorites) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no favorites"))
				return nil
			}
			rows := make([][]string, len(favorites))
			for i, f := range favorites {
				rows[i] = []string{f.Name, target(f.Database, f.Collection), f.Query}
			}
			printTable(cmd.OutOrStdout(), []string{"NAME", "TARGET", "QUERY"}, rows)
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm [mongo|redis] [name]",
		Short: "Delete a favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			return c.app.DeleteFavorite(kind, args[1])
		},
	}

	var (
		profile string
		out     outputFlags
	)
	runCmd := &cobra.Command{
		Use:   "run [mongo|redis] [name]",
		Short: "Run a favorite",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			id, err := c.connect(cmd, kind, profile)
			if err != nil {
				return err
			}
			res, err := c.app.RunFavorite(cmd.Context(), id, args[1])
			if err != nil {
				return err
			}
			return c.printResult(cmd, res, &out)
		},
	}
	runCmd.Flags().StringVarP(&profile, "profile", "p", "", "Profile to connect with (default: last used)")
	out.register(runCmd)

	favoriteCmd.AddCommand(addCmd, listCmd, rmCmd, runCmd)
	return favoriteCmd
}
