package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/types"
)

func kindArg(s string) (types.StoreKind, error) {
	return types.ParseStoreKind(s)
}

func newProfileCmd(c *cli) *cobra.Command {
	profileCmd := &cobra.Command{
		Use:   "profile",
		Short: "Manage connection profiles",
	}

	var p types.ConnectionProfile
	addCmd := &cobra.Command{
		Use:   "add [mongo|redis] [name]",
		Short: "Add or replace a connection profile",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			p.Name = args[1]
			if p.Port == 0 {
				p.Port = defaultPort(kind)
			}
			if err := c.app.SaveProfile(kind, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s profile %q\n", successStyle.Render("saved"), kind, p.Name)
			return nil
		},
	}
	addCmd.Flags().StringVar(&p.Host, "host", "localhost", "Server host")
	addCmd.Flags().IntVar(&p.Port, "port", 0, "Server port (default: 27017 for mongo, 6379 for redis)")
	addCmd.Flags().StringVar(&p.Username, "username", "", "Username (mongo)")
	addCmd.Flags().StringVar(&p.Password, "password", "", "Password")
	addCmd.Flags().StringVar(&p.Database, "database", "", "Authentication database (mongo)")
	addCmd.Flags().IntVar(&p.DB, "db", 0, "Database index (redis)")

	addURICmd := &cobra.Command{
		Use:   "add-uri [name] [uri]",
		Short: "Add a profile from a mongodb:// or redis:// URI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := c.app.SaveProfileFromURI(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s profile %q\n", successStyle.Render("saved"), kind, args[0])
			return nil
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [mongo|redis]",
		Short: "List connection profiles",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := types.Kinds
			if len(args) == 1 {
				kind, err := kindArg(args[0])
				if err != nil {
					return err
				}
				kinds = []types.StoreKind{kind}
			}

			var rows [][]string
			for _, kind := range kinds {
				profiles, err := c.app.ListProfiles(kind)
				if err != nil {
					return err
				}
				last, _ := c.app.LastConnection(kind)
				for _, p := range profiles {
					marker := ""
					if p.Name == last {
						marker = "*"
					}
					rows = append(rows, []string{string(kind), p.Name + marker, p.Address(), profileDetail(kind, p)})
				}
			}
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), dimStyle.Render("no profiles"))
				return nil
			}
			printTable(cmd.OutOrStdout(), []string{"KIND", "NAME", "ADDRESS", "DETAIL"}, rows)
			return nil
		},
	}

	rmCmd := &cobra.Command{
		Use:   "rm [mongo|redis] [name]",
		Short: "Delete a profile and its stored password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			return c.app.DeleteProfile(kind, args[1])
		},
	}

	var showPassword bool
	uriCmd := &cobra.Command{
		Use:   "uri [mongo|redis] [name]",
		Short: "Print a profile as a connection URI",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := kindArg(args[0])
			if err != nil {
				return err
			}
			uri, err := c.app.ProfileURI(kind, args[1], !showPassword)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), uri)
			return nil
		},
	}
	uriCmd.Flags().BoolVar(&showPassword, "show-password", false, "Include the password instead of masking it")

	profileCmd.AddCommand(addCmd, addURICmd, listCmd, rmCmd, uriCmd)
	return profileCmd
}

func defaultPort(kind types.StoreKind) int {
	if kind == types.KindRedis {
		return 6379
	}
	return 27017
}

func profileDetail(kind types.StoreKind, p types.ConnectionProfile) string {
	if kind == types.KindRedis {
		return "db " + strconv.Itoa(p.DB)
	}
	if p.Username != "" {
		return p.Username + "@" + p.Database
	}
	return p.Database
}
