// Package iojson reads and writes the JSON documents the CLI exchanges with
// scripts.
package iojson

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Error is the JSON body written to stderr when a value cannot be encoded.
type Error struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// Encode renders v as indented JSON followed by a newline. Subjects are
// user text, so HTML characters are left unescaped.
func Encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWith writes v as JSON to w. Encoding failures are reported on ew as
// an Error and do not fail the command.
func WriteWith(w io.Writer, ew io.Writer, v any) error {
	bits, err := Encode(v)
	if err != nil {
		return writeError(ew, "cannot encode output", err)
	}
	_, err = w.Write(bits)
	return err
}

func writeError(ew io.Writer, msg string, cause error) error {
	bits, err := Encode(Error{Message: msg, Data: map[string]any{"json_error": cause.Error()}})
	if err != nil {
		return fmt.Errorf("%s: %w", msg, cause)
	}
	_, err = ew.Write(bits)
	return err
}
