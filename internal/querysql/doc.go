// Package querysql compiles filter trees and builder state into SQL text.
//
// Placeholders are positional and named "@p1", "@p2", ... A Binder owns the
// counter and the flat parameter list; the value backing "@pN" is always
// Params()[N-1]. One Binder is shared by every fragment compiled for a
// query, so numbering keeps increasing across filters.
//
// Dialects whose drivers expect another placeholder syntax rewrite the text
// at the connection boundary (see internal/conn).
package querysql
