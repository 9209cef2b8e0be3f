package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/types"
)

func newMongoCmd(c *cli) *cobra.Command {
	var profile string
	mongoCmd := &cobra.Command{
		Use:   "mongo",
		Short: "Query a MongoDB profile",
	}
	mongoCmd.PersistentFlags().StringVarP(&profile, "profile", "p", "", "Profile to connect with (default: last used)")

	for _, op := range []types.Operation{types.OpFind, types.OpAggregate, types.OpCount} {
		mongoCmd.AddCommand(newMongoQueryCmd(c, op, &profile))
	}

	dbsCmd := &cobra.Command{
		Use:   "dbs",
		Short: "List databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, profile)
			if err != nil {
				return err
			}
			dbs, err := c.app.ListDatabases(cmd.Context(), id)
			if err != nil {
				return err
			}
			for _, db := range dbs {
				fmt.Fprintln(cmd.OutOrStdout(), db)
			}
			return nil
		},
	}

	collectionsCmd := &cobra.Command{
		Use:   "collections [database]",
		Short: "List collections of a database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, profile)
			if err != nil {
				return err
			}
			colls, err := c.app.ListCollections(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			for _, coll := range colls {
				fmt.Fprintln(cmd.OutOrStdout(), coll)
			}
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats [database] [collection]",
		Short: "Show collection statistics",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, profile)
			if err != nil {
				return err
			}
			stats, err := c.app.CollectionStats(cmd.Context(), id, args[0], args[1])
			if err != nil {
				return err
			}
			return c.printJSON(cmd, stats)
		},
	}

	indexesCmd := &cobra.Command{
		Use:   "indexes [database] [collection]",
		Short: "List collection indexes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, profile)
			if err != nil {
				return err
			}
			indexes, err := c.app.Indexes(cmd.Context(), id, args[0], args[1])
			if err != nil {
				return err
			}
			return c.printJSON(cmd, indexes)
		},
	}

	var sampleSize int
	schemaCmd := &cobra.Command{
		Use:   "schema [database] [collection]",
		Short: "Infer a collection's schema from a sample",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, profile)
			if err != nil {
				return err
			}
			report, err := c.app.InferSchema(cmd.Context(), id, args[0], args[1], sampleSize)
			if err != nil {
				return err
			}
			return c.printJSON(cmd, report)
		},
	}
	schemaCmd.Flags().IntVar(&sampleSize, "sample", 100, "Number of documents to sample")

	importCmd := &cobra.Command{
		Use:   "import [database] [collection] [file]",
		Short: "Insert records from a JSON, NDJSON or CSV file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, profile)
			if err != nil {
				return err
			}
			result, err := c.app.ImportFile(cmd.Context(), id, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d records into %s.%s\n",
				successStyle.Render("imported"), result.Inserted, args[0], args[1])
			return nil
		},
	}

	mongoCmd.AddCommand(dbsCmd, collectionsCmd, statsCmd, indexesCmd, schemaCmd, importCmd)
	return mongoCmd
}

func newMongoQueryCmd(c *cli, op types.Operation, profile *string) *cobra.Command {
	var (
		limit, skip int64
		out         outputFlags
	)
	short := map[types.Operation]string{
		types.OpFind:      "Find documents matching a filter",
		types.OpAggregate: "Run an aggregation pipeline (or a single stage)",
		types.OpCount:     "Count documents matching a filter",
	}[op]

	cmd := &cobra.Command{
		Use:   string(op) + " [database] [collection] [body]",
		Short: short,
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := c.connect(cmd, types.KindMongo, *profile)
			if err != nil {
				return err
			}
			req := types.QueryRequest{
				Kind:       types.KindMongo,
				Database:   args[0],
				Collection: args[1],
				Operation:  op,
				Limit:      limit,
				Skip:       skip,
			}
			if len(args) == 3 {
				req.Body = args[2]
			}
			res, err := c.app.Execute(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			return c.printResult(cmd, res, &out)
		},
	}
	if op == types.OpFind {
		cmd.Flags().Int64Var(&limit, "limit", 0, "Maximum documents to return (default: page_size setting)")
		cmd.Flags().Int64Var(&skip, "skip", 0, "Documents to skip")
	}
	out.register(cmd)
	return cmd
}
