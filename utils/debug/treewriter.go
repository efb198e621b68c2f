// Package debug has helpers to produce human readable dumps of documents for
// debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// maxTextLen limits quoted text in dumps, compiled documents could be large.
const maxTextLen = 160

type TreeWriter struct {
	w *strings.Builder
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{
		w: &strings.Builder{},
	}
}

func (tw TreeWriter) String() string {
	return tw.w.String()
}

func (tw TreeWriter) indent(depth int) {
	for range depth {
		tw.w.WriteString("  ")
	}
}

func (tw TreeWriter) Line(depth int, format string, args ...any) {
	tw.indent(depth)
	fmt.Fprintf(tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Element writes element name followed by its attributes, attrs are key
// value pairs. Dangling key is written without value.
func (tw TreeWriter) Element(depth int, name string, attrs ...string) {
	tw.indent(depth)
	tw.w.WriteString(name)
	for i := 0; i < len(attrs); i += 2 {
		tw.w.WriteByte(' ')
		tw.w.WriteString(attrs[i])
		if i+1 < len(attrs) {
			tw.w.WriteByte('=')
			tw.w.WriteString(strconv.Quote(attrs[i+1]))
		}
	}
	tw.w.WriteByte('\n')
}

func (tw TreeWriter) TextBlock(depth int, label, value string) {
	tw.indent(depth)
	tw.w.WriteString(label)
	tw.w.WriteString(": ")
	tw.w.WriteString(encodeText(value))
	tw.w.WriteByte('\n')
}

func encodeText(raw string) string {
	if raw == "" {
		return raw
	}
	if utf8.RuneCountInString(raw) > maxTextLen {
		r := []rune(raw)
		return strconv.Quote(string(r[:maxTextLen])) + "..."
	}
	return strconv.Quote(raw)
}
