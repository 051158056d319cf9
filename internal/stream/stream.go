// Package stream lazily decodes cursor rows.
package stream

import (
	"iter"

	"github.com/roach88/joinery/internal/conn"
	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/projection"
)

// RowStream decodes one cursor's rows on demand.
//
// It is single-pass: once Next returns false the stream is done, the
// cursor is closed, and later calls keep returning false. Metadata items
// are skipped. A cursor or decode failure ends the stream and is reported
// by Err.
//
//	s := stream.New(cur, projection.Struct[Person](person))
//	defer s.Close()
//	for s.Next() {
//		p := s.Value()
//	}
//	if err := s.Err(); err != nil { ... }
type RowStream[T any] struct {
	cursor  conn.Cursor
	decode  projection.Decoder[T]
	current T
	err     error
	done    bool
}

// New creates a stream over c.
func New[T any](c conn.Cursor, decode projection.Decoder[T]) *RowStream[T] {
	return &RowStream[T]{cursor: c, decode: decode}
}

// Next advances to the next decoded row.
func (s *RowStream[T]) Next() bool {
	var zero T
	s.current = zero
	if s.done {
		return false
	}

	for {
		item, ok, err := s.cursor.Next()
		if err != nil {
			s.finish(errs.WrapDriver("read row", err))
			return false
		}
		if !ok {
			s.finish(nil)
			return false
		}
		if item.IsMetadata() || item.Row == nil {
			continue
		}

		v, err := s.decode(item.Row)
		if err != nil {
			s.finish(err)
			return false
		}
		s.current = v
		return true
	}
}

// Value returns the row decoded by the last successful Next.
func (s *RowStream[T]) Value() T {
	return s.current
}

// Err returns the error that ended the stream, if any.
func (s *RowStream[T]) Err() error {
	return s.err
}

// Close releases the cursor. It is safe to call more than once.
func (s *RowStream[T]) Close() error {
	if s.done {
		return nil
	}
	s.done = true
	return s.cursor.Close()
}

func (s *RowStream[T]) finish(err error) {
	s.done = true
	closeErr := s.cursor.Close()
	if err == nil && closeErr != nil {
		err = errs.WrapDriver("close cursor", closeErr)
	}
	if s.err == nil {
		s.err = err
	}
}

// All returns an iterator over the remaining rows. A failure is yielded
// once as the final pair. Breaking out of the loop closes the stream.
func (s *RowStream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer s.Close()
		for s.Next() {
			if !yield(s.Value(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}

// Collect drains the stream into a slice, empty but non-nil when there
// are no rows.
func (s *RowStream[T]) Collect() ([]T, error) {
	defer s.Close()
	out := make([]T, 0)
	for s.Next() {
		out = append(out, s.Value())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
