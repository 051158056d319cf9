package querysql

import (
	"fmt"
	"slices"
)

// Binder assigns placeholder numbers and collects bound values.
//
// The zero value is ready to use; the first Bind returns "@p1".
type Binder struct {
	counter int
	params  []any
}

// Bind appends v and returns its placeholder.
func (b *Binder) Bind(v any) string {
	b.params = append(b.params, v)
	b.counter++
	return Placeholder(b.counter)
}

// Counter returns the highest placeholder number issued so far.
func (b *Binder) Counter() int {
	return b.counter
}

// Params returns a copy of the bound values in placeholder order.
func (b *Binder) Params() []any {
	return slices.Clone(b.params)
}

// Clone returns an independent copy of b.
func (b *Binder) Clone() Binder {
	return Binder{counter: b.counter, params: slices.Clone(b.params)}
}

// Placeholder formats placeholder number n.
func Placeholder(n int) string {
	return fmt.Sprintf("@p%d", n)
}
