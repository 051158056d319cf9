package cli

import (
	"bytes"
	"encoding/base64"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"

	"github.com/roach88/joinery/internal/projection"
	"github.com/roach88/joinery/internal/schema"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Query failure (driver error, decode error, ...)
	ExitCommandError = 2 // Command error (bad flags, schema not found, ...)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter writes command results in the configured format.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Diagnostic output (defaults to Writer)
	Verbose   bool
	Color     bool // Bold table headers in text output
}

// CLIResponse is the JSON envelope for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`          // "ok" or "error"
	Data   any       `json:"data,omitempty"`  // success payload
	Error  *CLIError `json:"error,omitempty"` // error details
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // errs code, or COMMAND_ERROR
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
		})
	}

	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
		})
	}

	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// WriteRows writes joined rows, one map per table per row, as a text
// table, canonical JSON or CSV.
func (f *OutputFormatter) WriteRows(tables []*schema.Table, rows [][]map[string]any) error {
	switch f.Format {
	case "json":
		data := make([]any, len(rows))
		for i, row := range rows {
			obj := make(map[string]any, len(tables))
			for j, t := range tables {
				obj[t.QualifiedName()] = row[j]
			}
			data[i] = obj
		}
		return f.writeCanonical(map[string]any{"status": "ok", "data": data})
	case "csv":
		return f.writeCSV(tables, rows)
	case "msgpack":
		return errors.New("msgpack output is written from frames")
	default:
		return f.writeTable(tables, rows)
	}
}

// WriteFrames writes one msgpack document per frame.
func (f *OutputFormatter) WriteFrames(frames []*projection.Frame) error {
	for _, frame := range frames {
		if err := frame.EncodeMsgpack(f.Writer); err != nil {
			return err
		}
	}
	return nil
}

func (f *OutputFormatter) writeCanonical(v any) error {
	b, err := projection.MarshalCanonical(v)
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	b = append(b, '\n')
	_, err = f.Writer.Write(b)
	return err
}

func header(tables []*schema.Table) []string {
	var cols []string
	for _, t := range tables {
		for _, field := range t.Fields {
			cols = append(cols, t.Key(field.Name))
		}
	}
	return cols
}

func cells(tables []*schema.Table, row []map[string]any, null string) []string {
	var out []string
	for i, t := range tables {
		for _, field := range t.Fields {
			out = append(out, formatValue(row[i][field.Name], null))
		}
	}
	return out
}

func (f *OutputFormatter) writeTable(tables []*schema.Table, rows [][]map[string]any) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header(tables), "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(cells(tables, row, "NULL"), "\t"))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	// Bold is applied after alignment; tabwriter counts escape bytes as width.
	head, body, _ := bytes.Cut(buf.Bytes(), []byte("\n"))
	bold := color.New(color.Bold)
	if f.Color {
		bold.EnableColor()
	} else {
		bold.DisableColor()
	}
	fmt.Fprintln(f.Writer, bold.Sprint(string(head)))
	if _, err := f.Writer.Write(body); err != nil {
		return err
	}
	fmt.Fprintf(f.Writer, "(%d rows)\n", len(rows))
	return nil
}

func (f *OutputFormatter) writeCSV(tables []*schema.Table, rows [][]map[string]any) error {
	w := csv.NewWriter(f.Writer)
	if err := w.Write(header(tables)); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(cells(tables, row, "")); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatValue(v any, null string) string {
	switch val := v.(type) {
	case nil:
		return null
	case time.Time:
		return val.Format(time.RFC3339Nano)
	case []byte:
		return base64.StdEncoding.EncodeToString(val)
	default:
		return fmt.Sprint(val)
	}
}
