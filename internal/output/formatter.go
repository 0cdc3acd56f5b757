// Package output renders command results as text tables, JSON, or TOON.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	toon "github.com/toon-format/toon-go"
)

// Format represents an output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatTOON Format = "toon"
)

// ParseFormat converts a string to Format, defaulting to text.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON
	case "toon":
		return FormatTOON
	default:
		return FormatText
	}
}

// Renderable defines data that can render itself as text and as data.
type Renderable interface {
	RenderText(w io.Writer, colored bool) error
	// RenderData returns the value serialized for JSON and TOON.
	RenderData() any
}

// Formatter writes results to stdout or a file and messages to stderr.
type Formatter struct {
	format  Format
	writer  io.Writer
	errw    io.Writer
	file    *os.File
	colored bool
}

// NewFormatter creates a new formatter. Output to a file is never colored.
func NewFormatter(format Format, output string, colored bool) (*Formatter, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return nil, err
		}
		writer = f
		file = f
		colored = false
	}

	return &Formatter{
		format:  format,
		writer:  writer,
		errw:    os.Stderr,
		file:    file,
		colored: colored,
	}, nil
}

// NewWriterFormatter formats to w, with messages going to errw.
func NewWriterFormatter(format Format, w, errw io.Writer, colored bool) *Formatter {
	return &Formatter{format: format, writer: w, errw: errw, colored: colored}
}

// Close closes the formatter's writer if it's a file.
func (f *Formatter) Close() error {
	if f.file != nil {
		return f.file.Close()
	}
	return nil
}

// Writer returns the underlying writer.
func (f *Formatter) Writer() io.Writer {
	return f.writer
}

// Format returns the configured format.
func (f *Formatter) Format() Format {
	return f.format
}

// Colored returns whether colored output is enabled.
func (f *Formatter) Colored() bool {
	return f.colored
}

// Output writes data in the configured format. Non-Renderable values are
// written as JSON in text mode.
func (f *Formatter) Output(data any) error {
	r, ok := data.(Renderable)
	if ok {
		data = r.RenderData()
	}

	switch f.format {
	case FormatTOON:
		out, err := toon.Marshal(data, toon.WithIndent(2))
		if err != nil {
			return fmt.Errorf("failed to encode toon: %w", err)
		}
		_, err = fmt.Fprintln(f.writer, string(out))
		return err
	case FormatJSON:
		return f.outputJSON(data)
	default:
		if ok {
			return r.RenderText(f.writer, f.colored)
		}
		return f.outputJSON(data)
	}
}

// outputJSON writes data as formatted JSON.
func (f *Formatter) outputJSON(data any) error {
	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Table is a Renderable table with headers, rows, and optional footer.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Footer  []string
	Data    any
}

// NewTable creates a table that wraps structured data for serialization.
func NewTable(title string, headers []string, rows [][]string, footer []string, data any) *Table {
	return &Table{
		Title:   title,
		Headers: headers,
		Rows:    rows,
		Footer:  footer,
		Data:    data,
	}
}

// RenderData returns Data, or the rows keyed by header when Data is nil.
func (t *Table) RenderData() any {
	if t.Data != nil {
		return t.Data
	}
	result := make([]map[string]string, len(t.Rows))
	for i, row := range t.Rows {
		m := make(map[string]string, len(t.Headers))
		for j, h := range t.Headers {
			if j < len(row) {
				m[h] = row[j]
			}
		}
		result[i] = m
	}
	return result
}

func (t *Table) RenderText(w io.Writer, colored bool) error {
	if t.Title != "" {
		if colored {
			color.New(color.Bold).Fprintln(w, t.Title)
		} else {
			fmt.Fprintln(w, t.Title)
		}
		fmt.Fprintln(w, strings.Repeat("=", len(t.Title)))
		fmt.Fprintln(w)
	}

	left := tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignLeft}}
	header := left
	header.Formatting = tw.CellFormatting{AutoFormat: tw.On}

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: header,
			Row:    left,
			Footer: left,
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)

	table.Header(t.Headers)
	for _, row := range t.Rows {
		if err := table.Append(row); err != nil {
			return err
		}
	}
	if len(t.Footer) > 0 {
		footer := make([]any, len(t.Footer))
		for i, v := range t.Footer {
			footer[i] = v
		}
		table.Footer(footer...)
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintln(w)
	return nil
}

// Lines is a Renderable block of preformatted text lines.
type Lines struct {
	Title string
	Lines []string
	Data  any
}

func (l *Lines) RenderData() any {
	if l.Data != nil {
		return l.Data
	}
	return l.Lines
}

func (l *Lines) RenderText(w io.Writer, colored bool) error {
	if l.Title != "" {
		if colored {
			color.New(color.Bold, color.FgCyan).Fprintln(w, l.Title)
		} else {
			fmt.Fprintln(w, l.Title)
		}
	}
	for _, line := range l.Lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// Message helpers write to stderr so they never mix with results.

func (f *Formatter) Warning(format string, args ...any) {
	if f.colored {
		color.New(color.FgYellow).Fprintf(f.errw, format+"\n", args...)
	} else {
		fmt.Fprintf(f.errw, "WARNING: "+format+"\n", args...)
	}
}

func (f *Formatter) Error(format string, args ...any) {
	if f.colored {
		color.New(color.FgRed).Fprintf(f.errw, format+"\n", args...)
	} else {
		fmt.Fprintf(f.errw, "ERROR: "+format+"\n", args...)
	}
}

func (f *Formatter) Info(format string, args ...any) {
	if f.colored {
		color.New(color.FgCyan).Fprintf(f.errw, format+"\n", args...)
	} else {
		fmt.Fprintf(f.errw, format+"\n", args...)
	}
}

// SeverityColor colors text by how far value exceeds limit: red beyond
// twice the limit, yellow beyond it, plain otherwise. A zero limit never colors.
func SeverityColor(value, limit uint32, text string) string {
	switch {
	case limit == 0 || value <= limit:
		return text
	case value > limit*2:
		return color.RedString(text)
	default:
		return color.YellowString(text)
	}
}
