package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/dispatch"
	"github.com/peternagy/dbquerytool/internal/keyspace"
	"github.com/peternagy/dbquerytool/internal/types"
)

func newRedisCmd(c *cli) *cobra.Command {
	var profile string
	redisCmd := &cobra.Command{
		Use:   "redis",
		Short: "Run commands against a Redis profile",
	}
	redisCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Profile to connect with (default: last used)")

	var (
		limit int64
		ttl   time.Duration
		out   outputFlags
	)
	execCmd := &cobra.Command{
		Use:   "exec [command line]",
		Short: "Run one command, e.g. \"GET user:1\" or 'RAW [\"PING\"]'",
		Long: `Run one command. Supported commands: ` + commandNames() + `.
The first word is the command, the second the key, and the rest the body:
a value for SET, a field for HGET, "start stop" for LRANGE and ZRANGE,
a section for INFO, or a JSON array of tokens for RAW.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindRedis, profile)
			if err != nil {
				return err
			}
			req, err := dispatch.ParseCommandText(strings.Join(args, " "))
			if err != nil {
				return err
			}
			req.Limit = limit
			req.TTL = ttl
			res, err := c.app.Execute(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return c.printResult(cmd, res, &out)
		},
	}
	execCmd.Flags().Int64Var(&limit, "limit", 0, "Maximum keys returned by KEYS (0: all)")
	execCmd.Flags().DurationVar(&ttl, "ttl", 0, "Expiry for SET (e.g. 30s)")
	out.register(execCmd)

	var watch bool
	keysCmd := &cobra.Command{
		Use:   "keys [pattern]",
		Short: "Browse keys grouped by prefix",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindRedis, profile)
			if err != nil {
				return err
			}
			pattern := "*"
			if len(args) == 1 {
				pattern = args[0]
			}
			tree, err := c.app.BrowseKeys(cmd.Context(), id, pattern)
			if err != nil {
				return err
			}
			printTree(cmd.OutOrStdout(), tree)
			if !watch {
				return nil
			}
			return c.watchKeys(cmd, id, pattern)
		},
	}
	keysCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Keep refreshing on the refresh_interval setting until interrupted")

	inspectCmd := &cobra.Command{
		Use:   "inspect [key]",
		Short: "Show a key's type, TTL and value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindRedis, profile)
			if err != nil {
				return err
			}
			info, err := c.app.InspectKey(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			return c.printJSON(cmd, info)
		},
	}

	var setTTL time.Duration
	setCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Write a string value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindRedis, profile)
			if err != nil {
				return err
			}
			if err := c.app.WriteValue(cmd.Context(), id, args[0], args[1], setTTL); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("set"), args[0])
			return nil
		},
	}
	setCmd.Flags().DurationVar(&setTTL, "ttl", 0, "Expiry (e.g. 1h)")

	delCmd := &cobra.Command{
		Use:   "del [key]",
		Short: "Delete a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindRedis, profile)
			if err != nil {
				return err
			}
			deleted, err := c.app.DeleteKey(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			if !deleted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", dimStyle.Render("no such key"), args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", successStyle.Render("deleted"), args[0])
			return nil
		},
	}

	redisCmd.AddCommand(execCmd, keysCmd, inspectCmd, setCmd, delCmd)
	return redisCmd
}

func (c *cli) watchKeys(cmd *cobra.Command, id, pattern string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	out := cmd.OutOrStdout()
	started, err := c.app.StartAutoRefresh(ctx, id, pattern, func(tree *keyspace.Tree, err error) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(out, dimStyle.Render("--- "+time.Now().Format(time.TimeOnly)))
		if err != nil {
			fmt.Fprintf(out, "%s %v\n", warningStyle.Render("refresh failed:"), err)
			return
		}
		printTree(out, tree)
	})
	if err != nil {
		return err
	}
	if !started {
		return fmt.Errorf("auto refresh is off; enable it with: dbqt settings set %s true", types.SettingAutoRefresh)
	}
	defer c.app.StopAutoRefresh(id)

	<-ctx.Done()
	return nil
}

func commandNames() string {
	names := make([]string, len(types.KVCommands))
	for i, cmd := range types.KVCommands {
		names[i] = cmd.String()
	}
	return strings.Join(names, ", ")
}
