package query

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/filter"
	"github.com/roach88/joinery/internal/querysql"
	"github.com/roach88/joinery/internal/schema"
)

// JoinKind is the SQL keyword of a join.
type JoinKind string

const (
	JoinLeft  JoinKind = "LEFT"
	JoinRight JoinKind = "RIGHT"
	JoinOuter JoinKind = "OUTER"
	JoinInner JoinKind = "INNER"
)

// ParseJoinKind accepts left, right, outer or inner in any case.
func ParseJoinKind(s string) (JoinKind, error) {
	switch k := JoinKind(strings.ToUpper(strings.TrimSpace(s))); k {
	case JoinLeft, JoinRight, JoinOuter, JoinInner:
		return k, nil
	default:
		return "", fmt.Errorf("unknown join kind %q (want left, right, outer or inner)", s)
	}
}

var errRawQuery = errors.New("raw query cannot be composed")

// Core is the mutable state of one query.
//
// A Core is single-owner: it holds no locks and must not be mutated from
// several goroutines.
type Core struct {
	root    *schema.Table
	tables  []*schema.Table // registration order, root first
	joined  map[string]bool
	joins   string
	filters []string
	order   []string
	binder  querysql.Binder
	logger  *slog.Logger

	raw       bool
	rawSQL    string
	rawParams []any
}

// Option configures a Core.
type Option func(*Core)

// WithLogger sets the logger for compiled statements and filter warnings.
func WithLogger(l *slog.Logger) Option {
	return func(c *Core) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a query rooted at root.
func New(root *schema.Table, opts ...Option) *Core {
	c := &Core{
		root:   root,
		joined: make(map[string]bool),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.tables = append(c.tables, root)
	c.joined[root.QualifiedName()] = true
	return c
}

// Raw creates a query that runs sql with params verbatim and decodes its
// rows against root. Column aliases in sql must use the "<table>.<field>"
// keys the decoders read. A raw Core cannot be joined, filtered or ordered.
func Raw(root *schema.Table, sql string, params []any, opts ...Option) *Core {
	c := New(root, opts...)
	c.raw = true
	c.rawSQL = sql
	c.rawParams = slices.Clone(params)
	return c
}

// Root returns the root table.
func (c *Core) Root() *schema.Table {
	return c.root
}

// Tables returns the registered tables, root first, in join order.
func (c *Core) Tables() []*schema.Table {
	return slices.Clone(c.tables)
}

// Joined reports whether table is part of the query.
func (c *Core) Joined(table string) bool {
	return c.joined[table]
}

// IsRaw reports whether the query runs hand-written SQL.
func (c *Core) IsRaw() bool {
	return c.raw
}

// Clone returns an independent copy of c.
func (c *Core) Clone() *Core {
	next := *c
	next.tables = slices.Clone(c.tables)
	next.joined = make(map[string]bool, len(c.joined))
	for k, v := range c.joined {
		next.joined[k] = v
	}
	next.filters = slices.Clone(c.filters)
	next.order = slices.Clone(c.order)
	next.binder = c.binder.Clone()
	next.rawParams = slices.Clone(c.rawParams)
	return &next
}

// Join adds target with the given join kind, using the root table's
// relation to target as the ON clause.
func (c *Core) Join(target *schema.Table, kind JoinKind) (*Core, error) {
	if c.raw {
		return c, errRawQuery
	}
	name := target.QualifiedName()
	if c.joined[name] {
		return c, errs.NewAlreadyJoined(name)
	}
	onClause, err := c.root.Relation(name)
	if err != nil {
		return c, err
	}

	c.joins += " " + string(kind) + " JOIN " + onClause
	c.tables = append(c.tables, target)
	c.joined[name] = true
	return c, nil
}

// LeftJoin is Join with JoinLeft.
func (c *Core) LeftJoin(target *schema.Table) (*Core, error) { return c.Join(target, JoinLeft) }

// RightJoin is Join with JoinRight.
func (c *Core) RightJoin(target *schema.Table) (*Core, error) { return c.Join(target, JoinRight) }

// OuterJoin is Join with JoinOuter.
func (c *Core) OuterJoin(target *schema.Table) (*Core, error) { return c.Join(target, JoinOuter) }

// InnerJoin is Join with JoinInner.
func (c *Core) InnerJoin(target *schema.Table) (*Core, error) { return c.Join(target, JoinInner) }

// Filter adds expr to the WHERE clause, AND-combined with earlier filters.
//
// The table of expr's own column must be joined. Alternates are compiled
// as written; ones that reference unjoined tables are logged as warnings.
func (c *Core) Filter(expr filter.Expr) (*Core, error) {
	if c.raw {
		return c, errRawQuery
	}
	if !c.joined[expr.Column.Table] {
		return c, errs.NewTableNotJoined(expr.Column.Table, "filter")
	}

	result := filter.Validate(expr, c.Joined)
	for _, w := range result.Warnings {
		c.logger.Warn("filter warning", "warning", w)
	}

	sql, err := querysql.CompileFilter(expr, &c.binder)
	if err != nil {
		return c, fmt.Errorf("compile filter: %w", err)
	}
	c.filters = append(c.filters, sql)
	return c, nil
}

// OrderBy appends an ORDER BY term for col.
func (c *Core) OrderBy(col filter.Column, ascending bool) (*Core, error) {
	if c.raw {
		return c, errRawQuery
	}
	if !c.joined[col.Table] {
		return c, errs.NewTableNotJoined(col.Table, "order by")
	}
	c.order = append(c.order, querysql.OrderFragment(col, ascending))
	return c, nil
}

// OrderByAsc is OrderBy ascending.
func (c *Core) OrderByAsc(col filter.Column) (*Core, error) { return c.OrderBy(col, true) }

// OrderByDesc is OrderBy descending.
func (c *Core) OrderByDesc(col filter.Column) (*Core, error) { return c.OrderBy(col, false) }

// SQL returns the statement text and its parameters in placeholder order.
func (c *Core) SQL() (string, []any) {
	if c.raw {
		return c.rawSQL, slices.Clone(c.rawParams)
	}
	sel := querysql.Select{
		Tables:  c.tables,
		Joins:   c.joins,
		Filters: c.filters,
		Order:   c.order,
	}
	return sel.String(), c.binder.Params()
}
