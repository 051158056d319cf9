package cli

import (
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/joinery/internal/query"
)

// RawOptions holds flags for the raw command.
type RawOptions struct {
	*RootOptions
	Table string
}

func newRawCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RawOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "raw <sql> [params...]",
		Short: "Run hand-written SQL and decode rows against a table",
		Long: `Run a hand-written statement with positional parameters bound to @p1,
@p2, ... and decode each row against --table. Column aliases must be the
qualified "<table>.<field>" keys.

Parameters are integers, floats, true/false or null when they parse as
such, and strings otherwise.

Example:
  joinery raw --table Person 'SELECT id AS "Person.id", email AS "Person.email", age AS "Person.age" FROM Person WHERE id = @p1' 1`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := opts.loadSchema()
			if err != nil {
				return err
			}
			root, err := reg.Table(opts.Table)
			if err != nil {
				return WrapExitError(ExitCommandError, "unknown table", err)
			}

			params := make([]any, len(args)-1)
			for i, a := range args[1:] {
				params[i] = parseParam(a)
			}
			q := query.Raw(root, args[0], params, query.WithLogger(opts.Logger))
			return printResults(cmd, opts.RootOptions, q)
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "table to decode rows against (required)")
	_ = cmd.MarkFlagRequired("table")
	return cmd
}

// parseParam guesses the type of a command-line parameter.
func parseParam(s string) any {
	if strings.EqualFold(s, "null") {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}
