// Package projection decodes result rows into caller-facing shapes.
//
// Every decoder reads a row by qualified column key ("<table>.<field>"),
// the alias the select list gives each column, so one physical row of a
// joined query can be decoded once per participating table:
//
//   - Struct decodes into a typed record using `db` struct tags
//   - Map decodes into a map keyed by bare field name
//   - Tuple applies several decoders to the same row
//   - Frame accumulates rows into one typed column per field
//
// Values are converted through each field's schema.Kind, so drivers that
// return text for numbers or bytes for strings decode the same way.
package projection
