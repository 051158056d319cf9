package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/joinery/internal/config"
	"github.com/roach88/joinery/internal/conn"
	"github.com/roach88/joinery/internal/errs"
	"github.com/roach88/joinery/internal/testutil"
)

const fixtureSchema = `
tables:
  - name: Person
    fields:
      - {name: id, kind: int, primary_key: true}
      - {name: email, kind: string, nullable: true}
      - {name: age, kind: int, nullable: true}
  - name: Posts
    fields:
      - {name: id, kind: int, primary_key: true}
      - {name: person_id, kind: int, foreign_key: Person.id}
      - {name: title, kind: string}
  - name: Tags
    fields:
      - {name: id, kind: int, primary_key: true}
      - {name: label, kind: string}
`

// cliEnv runs commands against an in-memory filesystem holding
// schema.yaml and the given database.
type cliEnv struct {
	fs      afero.Fs
	db      conn.Querier
	openErr error
	opened  int
}

func newCLIEnv(t *testing.T, db conn.Querier) *cliEnv {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "schema.yaml", []byte(fixtureSchema), 0o644))
	return &cliEnv{fs: fs, db: db}
}

func (e *cliEnv) run(args ...string) (code int, stdout, stderr string) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	opts := &RootOptions{
		Fs: e.fs,
		Open: func(ctx context.Context, cfg *config.Config, logger *slog.Logger) (conn.Querier, io.Closer, error) {
			e.opened++
			if e.openErr != nil {
				return nil, nil, e.openErr
			}
			return e.db, nil, nil
		},
	}
	code = execute(context.Background(), opts, args, out, errOut)
	return code, out.String(), errOut.String()
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "joinery", cmd.Use)
	assert.Contains(t, cmd.Long, "foreign keys")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, name := range []string{"query", "sql", "raw", "schema"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub)
			assert.Equal(t, name, sub.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"verbose", "v", "false"},
		{"format", "", "text"},
		{"driver", "", "sqlite3"},
		{"dsn", "", "joinery.db"},
		{"schema", "", "schema.yaml"},
		{"config", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestQueryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	queryCmd, _, err := cmd.Find([]string{"query"})
	require.NoError(t, err)

	for _, name := range []string{"table", "join", "where", "or", "order"} {
		assert.NotNil(t, queryCmd.Flags().Lookup(name), name)
	}
	assert.Equal(t, "t", queryCmd.Flags().Lookup("table").Shorthand)
}

func TestExecute_InvalidFormat(t *testing.T) {
	env := newCLIEnv(t, &testutil.ScriptedQuerier{})

	code, _, stderr := env.run("schema", "--format", "yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid configuration")
	assert.Contains(t, stderr, `unknown format "yaml"`)
}

func TestExecute_MissingSchema(t *testing.T) {
	env := newCLIEnv(t, &testutil.ScriptedQuerier{})

	code, _, stderr := env.run("schema", "--schema", "nope.yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to load schema")
}

func TestExecute_JSONErrorEnvelope(t *testing.T) {
	env := newCLIEnv(t, &testutil.ScriptedQuerier{})

	code, stdout, stderr := env.run("sql", "--format", "json", "--table", "Person", "--where", "Posts.id = 1")
	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stderr)
	assert.Contains(t, stdout, `"status":"error"`)
	assert.Contains(t, stdout, `"code":"TABLE_NOT_JOINED"`)
}

func TestExecute_ConfigFileFromFs(t *testing.T) {
	env := newCLIEnv(t, &testutil.ScriptedQuerier{})
	require.NoError(t, afero.WriteFile(env.fs, "joinery.yaml", []byte("format: json\n"), 0o644))

	code, stdout, _ := env.run("schema", "--validate")
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, `"status":"ok"`)
	assert.Contains(t, stdout, "3 tables")
}

func TestExecute_OpenFailureIsQueryFailure(t *testing.T) {
	env := newCLIEnv(t, nil)
	env.openErr = errs.WrapDriver("ping", errors.New("connection refused"))

	code, _, stderr := env.run("query", "--table", "Person")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error [DRIVER_ERROR]: failed to open database")
	assert.Equal(t, 1, env.opened)
}
