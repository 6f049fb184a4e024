package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eknes/tableset"
	"github.com/eknes/tableset/internal/manifest"
)

func addCommands(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "build manifest.toml out.db",
		Short: "Assemble a container from a TOML manifest and CSV files",
		Args:  cobra.ExactArgs(2),
		RunE:  runBuild}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "import database-url out.db",
		Short: "Import the tables of a live database into a container",
		Args:  cobra.ExactArgs(2),
		RunE:  runImport}
	cmd.Flags().StringP("name", "n", "", "container name (default: database or schema name)")
	cmd.Flags().StringP("tables", "t", "", "specific tables (comma-separated, optional)")
	cmd.Flags().StringP("exclude", "e", "", "tables to skip (comma-separated)")
	cmd.Flags().StringP("schema", "s", "", "database schema name (default: public for PostgreSQL)")
	cmd.Flags().String("cardinal", "", "designate the cardinal table")
	cmd.Flags().BoolP("verbose", "v", false, "log progress to stderr")
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "info container.db",
		Short: "Show the tables, row counts and cardinal of a container",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "network container.db",
		Short: "Show the inferred relations between the container's tables",
		Args:  cobra.ExactArgs(1),
		RunE:  runNetwork}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "set-cardinal container.db table",
		Short: "Designate the cardinal table of a container",
		Args:  cobra.ExactArgs(2),
		RunE:  runSetCardinal}
	root.AddCommand(cmd)

	cmd = &cobra.Command{
		Use:   "slice container.db out.db",
		Short: "Extract a consistent sub-selection driven by the cardinal table",
		Args:  cobra.ExactArgs(2),
		RunE:  runSlice}
	cmd.Flags().String("at", "", "select the single row with this index value")
	cmd.Flags().String("in", "", "select rows with these index values (comma-separated)")
	cmd.Flags().String("span", "", "select rows at positions lo:hi (half-open)")
	root.AddCommand(cmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	c, err := manifest.Build(args[0])
	if err != nil {
		return err
	}
	if err := tableset.Save(cmd.Context(), c, args[1]); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d tables\n", args[1], c.Len())
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	opts := &tableset.ImportOptions{}
	opts.Name, _ = cmd.Flags().GetString("name")
	opts.SchemaName, _ = cmd.Flags().GetString("schema")
	opts.Cardinal, _ = cmd.Flags().GetString("cardinal")
	if tables, _ := cmd.Flags().GetString("tables"); tables != "" {
		opts.Tables = splitList(tables)
	}
	if exclude, _ := cmd.Flags().GetString("exclude"); exclude != "" {
		opts.ExcludeTables = splitList(exclude)
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		opts.Logger = logger
	}

	c, err := tableset.Import(cmd.Context(), args[0], opts)
	if err != nil {
		return err
	}
	if err := tableset.Save(cmd.Context(), c, args[1]); err != nil {
		return err
	}
	fmt.Printf("wrote %s: %d tables\n", args[1], c.Len())
	return nil
}

func runInfo(cmd *cobra.Command, args []string) error {
	c, err := tableset.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printInfo(c)
	return nil
}

func runNetwork(cmd *cobra.Command, args []string) error {
	c, err := tableset.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	g, err := c.Network()
	if err != nil {
		return err
	}
	printNetwork(g)
	return nil
}

func runSetCardinal(cmd *cobra.Command, args []string) error {
	c, err := tableset.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if err := c.SetCardinal(args[1]); err != nil {
		return err
	}
	return tableset.Save(cmd.Context(), c, args[0])
}

func runSlice(cmd *cobra.Command, args []string) error {
	at, _ := cmd.Flags().GetString("at")
	in, _ := cmd.Flags().GetString("in")
	span, _ := cmd.Flags().GetString("span")
	key, err := parseKey(at, in, span)
	if err != nil {
		return err
	}

	c, err := tableset.Load(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	sub, err := c.Slice(key)
	if err != nil {
		return err
	}
	if err := tableset.Save(cmd.Context(), sub, args[1]); err != nil {
		return err
	}

	for _, name := range sub.Names() {
		before, _ := c.Get(name)
		after, _ := sub.Get(name)
		fmt.Printf("%s: %d of %d rows\n", name, after.RowCount(), before.RowCount())
	}
	return nil
}

// parseKey builds the selection key from the mutually exclusive --at, --in
// and --span flags.
func parseKey(at, in, span string) (tableset.Key, error) {
	set := 0
	for _, f := range []string{at, in, span} {
		if f != "" {
			set++
		}
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of --at, --in, or --span must be given")
	}

	switch {
	case at != "":
		return tableset.One(manifest.ParseCell(at)), nil
	case in != "":
		parts := splitList(in)
		values := make([]any, len(parts))
		for i, p := range parts {
			values[i] = manifest.ParseCell(p)
		}
		return tableset.List(values...), nil
	default:
		lo, hi, err := parseSpan(span)
		if err != nil {
			return nil, err
		}
		return tableset.Span(lo, hi), nil
	}
}

func parseSpan(s string) (lo, hi int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid span %q, want lo:hi", s)
	}
	lo, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid span %q: %w", s, err)
	}
	hi, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid span %q: %w", s, err)
	}
	return lo, hi, nil
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func printInfo(c *tableset.Container) {
	fmt.Printf("container %s\n", c.Name())
	if d := c.Description(); d != "" {
		fmt.Printf("  %s\n", d)
	}
	for _, k := range c.MetaKeys() {
		v, _ := c.Meta(k)
		fmt.Printf("  %s: %s\n", k, v)
	}
	fmt.Println()
	for _, name := range c.Names() {
		t, _ := c.Get(name)
		marker := " "
		if name == c.Cardinal() {
			marker = "*"
		}
		idx := t.IndexName()
		if idx == "" {
			idx = "-"
		}
		fmt.Printf("%s %-20s index=%-12s rows=%d\n", marker, name, idx, t.RowCount())
	}
	if c.Cardinal() == "" {
		fmt.Println("\nno cardinal table set")
	}
}

func printNetwork(g *tableset.Graph) {
	for _, from := range g.Nodes() {
		edges := g.Neighbors(from)
		if len(edges) == 0 {
			fmt.Printf("%s (no relations)\n", from)
			continue
		}
		for _, e := range edges {
			if e.Column != "" {
				fmt.Printf("%s -> %s  %s via %s\n", from, e.To, e.Kind, e.Column)
			} else {
				fmt.Printf("%s -> %s  %s\n", from, e.To, e.Kind)
			}
		}
	}
}
