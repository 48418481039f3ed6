package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

// Formatter renders command output as human-readable text or JSON.
type Formatter struct {
	out  io.Writer
	json bool
}

// NewFormatter builds a formatter using the current CLI flags.
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{
		out:  out,
		json: IsJSONOutput(),
	}
}

// Write formats and writes output based on CLI flags.
func (f *Formatter) Write(value any) error {
	if f.json {
		return writeJSON(f.out, value)
	}
	return writeHuman(f.out, value)
}

// WriteOutput is a convenience wrapper around NewFormatter.
func WriteOutput(out io.Writer, value any) error {
	return NewFormatter(out).Write(value)
}

func writeJSON(out io.Writer, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func writeHuman(out io.Writer, value any) error {
	switch v := value.(type) {
	case string:
		_, err := fmt.Fprintln(out, v)
		return err
	case fmt.Stringer:
		_, err := fmt.Fprintln(out, v.String())
		return err
	default:
		// Human views are command-specific; fall back to indented JSON for
		// structured values without one.
		return writeJSON(out, value)
	}
}
