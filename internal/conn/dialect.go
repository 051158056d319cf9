package conn

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects how placeholders are rendered for a driver.
type Dialect string

const (
	DialectSQLite    Dialect = "sqlite"
	DialectSQLServer Dialect = "sqlserver"
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
)

// DialectFor returns the dialect used by a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3", "sqlite":
		return DialectSQLite, nil
	case "postgres", "pgx":
		return DialectPostgres, nil
	case "mysql":
		return DialectMySQL, nil
	case "sqlserver", "mssql":
		return DialectSQLServer, nil
	default:
		return "", fmt.Errorf("unsupported driver %q", driver)
	}
}

// placeholder is one "@pN" occurrence in statement text.
type placeholder struct {
	start, end int // byte offsets of the token
	n          int
}

// scanPlaceholders finds "@pN" tokens outside single-quoted literals.
// With backslashEscapes, a backslash inside a literal escapes the next byte.
func scanPlaceholders(query string, backslashEscapes bool) []placeholder {
	var found []placeholder
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		if inQuote && backslashEscapes && c == '\\' {
			i++
			continue
		}
		if c == '\'' {
			inQuote = !inQuote
			continue
		}
		if inQuote || c != '@' || i+2 >= len(query) || query[i+1] != 'p' {
			continue
		}
		j := i + 2
		for j < len(query) && query[j] >= '0' && query[j] <= '9' {
			j++
		}
		if j == i+2 {
			continue
		}
		n, err := strconv.Atoi(query[i+2 : j])
		if err != nil {
			continue
		}
		found = append(found, placeholder{start: i, end: j, n: n})
		i = j - 1
	}
	return found
}

// Rebind rewrites query and params for the dialect's driver. Statements
// without "@pN" tokens are passed through with positional params.
func (d Dialect) Rebind(query string, params []any) (string, []any, error) {
	tokens := scanPlaceholders(query, d == DialectMySQL)
	if len(tokens) == 0 {
		return query, params, nil
	}
	for _, tok := range tokens {
		if tok.n < 1 || tok.n > len(params) {
			return "", nil, fmt.Errorf("placeholder @p%d has no parameter (%d bound)", tok.n, len(params))
		}
	}

	switch d {
	case DialectSQLite, DialectSQLServer:
		args := make([]any, len(params))
		for i, v := range params {
			args[i] = sql.Named("p"+strconv.Itoa(i+1), v)
		}
		return query, args, nil

	case DialectPostgres:
		return replaceTokens(query, tokens, func(tok placeholder) string {
			return "$" + strconv.Itoa(tok.n)
		}), params, nil

	case DialectMySQL:
		args := make([]any, 0, len(tokens))
		for _, tok := range tokens {
			args = append(args, params[tok.n-1])
		}
		return replaceTokens(query, tokens, func(placeholder) string { return "?" }), args, nil

	default:
		return "", nil, fmt.Errorf("unsupported dialect %q", string(d))
	}
}

func replaceTokens(query string, tokens []placeholder, render func(placeholder) string) string {
	var b strings.Builder
	b.Grow(len(query))
	last := 0
	for _, tok := range tokens {
		b.WriteString(query[last:tok.start])
		b.WriteString(render(tok))
		last = tok.end
	}
	b.WriteString(query[last:])
	return b.String()
}
