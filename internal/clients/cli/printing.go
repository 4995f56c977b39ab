// Package cli provides utilities for nicer CLI output
package cli

import (
	"bytes"
	"io"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type IndentedWriter struct {
	indent     int
	ansiWriter *ansi.Writer
	skipIndent bool
	ansi       bool
}

func NewIndentedWriter(indent int, forward io.Writer) *IndentedWriter {
	return &IndentedWriter{
		indent: indent,
		ansiWriter: &ansi.Writer{
			Forward: forward,
		},
	}
}

// indentedWriter: io.Writer

func (w *IndentedWriter) Write(b []byte) (n int, err error) {
	// This method was adapted from the Writer.Write method in the indent package of the MIT-licensed
	// github.com/muesli/reflow project maintained by Christian Muehlhaeuser
	// (see https://github.com/muesli/reflow/blob/83f6379/indent/indent.go#L60). The method was
	// modified to properly indent after `\r` sequences.
	for _, c := range string(b) {
		switch {
		case c == '\x1B': // ANSI escape sequence
			w.ansi = true
		case w.ansi:
			if (c >= 0x41 && c <= 0x5a) || (c >= 0x61 && c <= 0x7a) {
				// ANSI sequence terminated
				w.ansi = false
			}
		default:
			if !w.skipIndent {
				w.ansiWriter.ResetAnsi()
				_, err := w.ansiWriter.Write([]byte(makeIndentation(w.indent)))
				if err != nil {
					return 0, err
				}

				w.skipIndent = true
				w.ansiWriter.RestoreAnsi()
			}

			if c == '\n' || c == '\r' {
				// end of current line
				w.skipIndent = false
			}
		}

		_, err := w.ansiWriter.Write([]byte(string(c)))
		if err != nil {
			return 0, err
		}
	}

	return len(b), nil
}

func makeIndentation(indent int) string {
	const indentation = "  "
	return strings.Repeat(indentation, indent)
}

// Yaml

// PrintYaml writes the value as an indented yaml document, for human-readable
// output of mappings and reports.
func PrintYaml(w io.Writer, indent int, a any) error {
	buf := &bytes.Buffer{}
	encoder := yaml.NewEncoder(buf)
	encoder.SetIndent(len(makeIndentation(1)))
	if err := encoder.Encode(a); err != nil {
		return errors.Wrapf(err, "couldn't serialize %T as yaml document", a)
	}
	if err := encoder.Close(); err != nil {
		return errors.Wrapf(err, "couldn't close yaml encoder after serializing %T", a)
	}
	iw := NewIndentedWriter(indent, w)
	if _, err := iw.Write(buf.Bytes()); err != nil {
		return errors.Wrap(err, "couldn't write yaml document")
	}
	return nil
}
