package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSettingsCmd(c *cli) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change display settings",
	}

	getCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Show one setting, or all of them",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := c.app.Settings()
			keys := settings.Keys()
			if len(args) == 1 {
				keys = []string{args[0]}
			}
			var rows [][]string
			for _, k := range keys {
				raw, ok := settings.Raw(k)
				if !ok {
					return fmt.Errorf("unknown setting %q", k)
				}
				rows = append(rows, []string{k, string(raw)})
			}
			printTable(cmd.OutOrStdout(), []string{"KEY", "VALUE"}, rows)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Change a setting (theme, auto_refresh, refresh_interval, max_history, page_size)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.app.UpdateSetting(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("updated"), args[0])
			return nil
		},
	}

	themesCmd := &cobra.Command{
		Use:   "themes",
		Short: "List highlighting palettes usable as the theme setting",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current := c.app.Settings().Theme()
			var rows [][]string
			for _, p := range c.app.Palettes() {
				origin := "user"
				if p.Builtin {
					origin = "builtin"
				}
				marker := ""
				if strings.EqualFold(p.ID, current) {
					marker = "*"
				}
				rows = append(rows, []string{p.ID + marker, p.Name, origin})
			}
			printTable(cmd.OutOrStdout(), []string{"ID", "NAME", "ORIGIN"}, rows)
			return nil
		},
	}

	settingsCmd.AddCommand(getCmd, setCmd, themesCmd)
	return settingsCmd
}
