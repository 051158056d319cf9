package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/joinery/internal/schema"
)

// tableInfo is the JSON shape of one table in "joinery schema".
type tableInfo struct {
	Name      string         `json:"name"`
	Fields    []schema.Field `json:"fields"`
	Relations []string       `json:"relations,omitempty"`
}

func newSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	var validateOnly bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "List declared tables, fields and relations",
		Long: `Load and validate the schema file, then list every table with its fields
and the tables it can join.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := rootOpts.loadSchema()
			if err != nil {
				return err
			}
			out := rootOpts.formatter(cmd)
			if validateOnly {
				return out.Success(fmt.Sprintf("schema %s is valid (%d tables)", rootOpts.Config.Schema, len(reg.Tables())))
			}

			var infos []tableInfo
			for _, t := range reg.Tables() {
				info := tableInfo{Name: t.QualifiedName(), Fields: t.Fields}
				for _, target := range t.Related() {
					rel, _ := t.Relation(target)
					info.Relations = append(info.Relations, rel)
				}
				infos = append(infos, info)
			}
			if out.Format == "json" {
				return out.Success(infos)
			}
			for _, info := range infos {
				fmt.Fprintln(out.Writer, info.Name)
				for _, f := range info.Fields {
					fmt.Fprintf(out.Writer, "  %-16s %s\n", f.Name, describeField(f))
				}
				for _, rel := range info.Relations {
					fmt.Fprintf(out.Writer, "  join %s\n", rel)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validateOnly, "validate", false, "only validate the schema")
	return cmd
}

func describeField(f schema.Field) string {
	parts := []string{string(f.Kind)}
	if f.PrimaryKey {
		parts = append(parts, "primary key")
	}
	if f.Nullable {
		parts = append(parts, "nullable")
	}
	if f.ForeignKey != "" {
		parts = append(parts, "-> "+f.ForeignKey)
	}
	return strings.Join(parts, ", ")
}
