package cli

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/joinery/internal/query"
	"github.com/roach88/joinery/internal/schema"
)

// QueryOptions holds flags shared by the query and sql commands.
type QueryOptions struct {
	*RootOptions
	Table  string
	Joins  []string
	Wheres []string
	Ors    []string
	Orders []string
}

func (o *QueryOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.Table, "table", "t", "", "root table (required)")
	cmd.Flags().StringArrayVar(&o.Joins, "join", nil, "join as <kind>:<table>, kind is left|right|outer|inner (repeatable)")
	cmd.Flags().StringArrayVar(&o.Wheres, "where", nil, `filter as "<table>.<field> <op> [value]" (repeatable, AND-combined)`)
	cmd.Flags().StringArrayVar(&o.Ors, "or", nil, "alternate for the last --where, same syntax (repeatable)")
	cmd.Flags().StringArrayVar(&o.Orders, "order", nil, "order as <table>.<field>[:asc|desc] (repeatable)")
	_ = cmd.MarkFlagRequired("table")
}

func newQueryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a composed query and print the rows",
		Long: `Compose a SELECT over the root table and its joins, run it, and print
every row as one record per joined table.

Example:
  joinery query --table Person --join left:Posts --where "Person.age >= 18" --order Person.id:desc
  joinery query --table Person --where "Person.email like x.com" --or "Person.email is-null" --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, opts)
		},
	}
	opts.bind(cmd)
	return cmd
}

func newSQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &QueryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL and parameters a query would run",
		Long: `Compose a query with the same flags as "joinery query" and print the
statement and its bound parameters without connecting to the database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadSchema()
			if err != nil {
				return err
			}
			q, err := opts.build(reg)
			if err != nil {
				return err
			}
			sql, params := q.SQL()
			return writeSQL(opts.formatter(cmd), sql, params)
		},
	}
	opts.bind(cmd)
	return cmd
}

// build composes a query from the flags.
func (o *QueryOptions) build(reg *schema.Registry) (*query.Core, error) {
	root, err := reg.Table(o.Table)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "unknown root table", err)
	}
	q := query.New(root, query.WithLogger(o.Logger))

	for _, j := range o.Joins {
		kindText, tableName, ok := strings.Cut(j, ":")
		if !ok {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("join %q: want <kind>:<table>", j))
		}
		kind, err := query.ParseJoinKind(kindText)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid join", err)
		}
		target, err := reg.Table(tableName)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid join", err)
		}
		if _, err := q.Join(target, kind); err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid join", err)
		}
	}

	if len(o.Ors) > 0 && len(o.Wheres) == 0 {
		return nil, NewExitError(ExitCommandError, "--or needs a --where to attach to")
	}
	for i, w := range o.Wheres {
		expr, err := ParseWhere(reg, w)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid filter", err)
		}
		if i == len(o.Wheres)-1 {
			for _, alt := range o.Ors {
				altExpr, err := ParseWhere(reg, alt)
				if err != nil {
					return nil, WrapExitError(ExitCommandError, "invalid filter", err)
				}
				expr = expr.Or(altExpr)
			}
		}
		if _, err := q.Filter(expr); err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid filter", err)
		}
	}

	for _, ord := range o.Orders {
		col, asc, err := parseOrder(reg, ord)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid order", err)
		}
		if _, err := q.OrderBy(col, asc); err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid order", err)
		}
	}
	return q, nil
}

func runQuery(cmd *cobra.Command, opts *QueryOptions) error {
	reg, err := opts.loadSchema()
	if err != nil {
		return err
	}
	q, err := opts.build(reg)
	if err != nil {
		return err
	}
	return printResults(cmd, opts.RootOptions, q)
}

// printResults runs q and writes its rows, or its frames for msgpack.
func printResults(cmd *cobra.Command, opts *RootOptions, q *query.Core) error {
	ctx := cmd.Context()
	db, closeDB, err := opts.connect(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	out := opts.formatter(cmd)
	if out.Format == "msgpack" {
		frames, err := q.Frames(ctx, db)
		if err != nil {
			return WrapExitError(ExitFailure, "query failed", err)
		}
		return out.WriteFrames(frames)
	}

	rows, err := q.Maps(ctx, db)
	if err != nil {
		return WrapExitError(ExitFailure, "query failed", err)
	}
	opts.Logger.Debug("query complete", slog.Int("rows", len(rows)))
	return out.WriteRows(q.Tables(), rows)
}

func writeSQL(out *OutputFormatter, sql string, params []any) error {
	if out.Format == "json" {
		return out.Success(map[string]any{"sql": sql, "params": params})
	}
	fmt.Fprintln(out.Writer, sql)
	for i, p := range params {
		fmt.Fprintf(out.Writer, "@p%d = %s (%T)\n", i+1, formatValue(p, "NULL"), p)
	}
	return nil
}
