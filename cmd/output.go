package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/peternagy/dbquerytool/internal/export"
	"github.com/peternagy/dbquerytool/internal/keyspace"
	"github.com/peternagy/dbquerytool/internal/types"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62"))

	groupStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)
)

// outputFlags selects how results are printed.
type outputFlags struct {
	format  string
	outFile string
	flatten bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.format, "output", "o", "", "Result format: json, csv or yaml (default: highlighted json)")
	cmd.Flags().StringVar(&o.outFile, "out", "", "Write the result to a file instead of stdout (format from extension unless --output is set)")
	cmd.Flags().BoolVar(&o.flatten, "flatten", false, "Flatten nested objects and arrays into dotted CSV columns")
}

func (c *cli) printResult(cmd *cobra.Command, res *types.QueryResult, o *outputFlags) error {
	opts := export.Options{FlattenObjects: o.flatten, FlattenArrays: o.flatten}

	var format export.Format
	if o.format != "" {
		f, err := export.ParseFormat(o.format)
		if err != nil {
			return err
		}
		format = f
	}

	if o.outFile != "" {
		if err := c.app.ExportResult(o.outFile, res, format, opts); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %d records to %s\n", successStyle.Render("wrote"), res.Count, o.outFile)
		return nil
	}

	if format != "" {
		return export.Write(cmd.OutOrStdout(), res.Records, format, opts)
	}

	text, err := res.Text()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, c.app.Highlight(text))
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d records in %s", res.Count, res.Elapsed)))
	return nil
}

// printJSON writes v as indented JSON through the highlighter.
func (c *cli) printJSON(cmd *cobra.Command, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), c.app.Highlight(string(data)))
	return nil
}

// printTable writes rows under a bold header, tab-aligned.
func printTable(out io.Writer, header []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	styled := make([]string, len(header))
	for i, h := range header {
		styled[i] = headerStyle.Render(h)
	}
	fmt.Fprintln(w, strings.Join(styled, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	_ = w.Flush()
}

// printTree writes a key tree: groups with their leaves indented, then root keys.
func printTree(out io.Writer, tree *keyspace.Tree) {
	for _, node := range tree.Nodes() {
		if node.Leaf != nil {
			fmt.Fprintln(out, node.Leaf.Key)
			continue
		}
		g := node.Group
		fmt.Fprintf(out, "%s %s\n", groupStyle.Render(g.Label), dimStyle.Render(fmt.Sprintf("(%d)", len(g.Leaves))))
		for _, leaf := range g.Leaves {
			fmt.Fprintf(out, "  %s\n", leaf.Label)
		}
	}
	if tree.Truncated {
		fmt.Fprintln(out, warningStyle.Render(fmt.Sprintf("showing %d of %d keys", tree.Len(), tree.Total)))
		return
	}
	fmt.Fprintln(out, dimStyle.Render(fmt.Sprintf("%d keys", tree.Total)))
}
