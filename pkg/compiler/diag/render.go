package diag

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Position is a 1-based line and column; the column counts runes.
type Position struct {
	Line, Col int
}

// PositionOf converts a byte offset into a Position. Offsets are clamped
// to the source bounds.
func PositionOf(src string, offset int) Position {
	offset = max(0, min(offset, len(src)))
	before := src[:offset]
	line := strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	return Position{Line: line, Col: utf8.RuneCountInString(before[lineStart:]) + 1}
}

// Render returns err augmented with a caret-annotated snippet of src when
// err is (or wraps) a *Error. Other errors are returned unchanged.
//
//	error in pattern.rulex at 1:5: unknown token
//
//	   1 | 'a' @ 'b'
//	     |     ^
func Render(err error, src, name string) error {
	var d *Error
	if !errors.As(err, &d) {
		return err
	}
	return errors.New(Snippet(d, src, name))
}

// Snippet builds the multi-line report for d. At most one line of context
// is shown before and after the offending line.
func Snippet(d *Error, src, name string) string {
	pos := PositionOf(src, d.Span.Start)
	lines := strings.Split(src, "\n")
	lineTxt := lines[pos.Line-1]

	var b strings.Builder
	if name != "" {
		fmt.Fprintf(&b, "error in %s at %d:%d: %s\n\n", name, pos.Line, pos.Col, d.Message())
	} else {
		fmt.Fprintf(&b, "error at %d:%d: %s\n\n", pos.Line, pos.Col, d.Message())
	}
	if pos.Line > 1 {
		fmt.Fprintf(&b, "%4d | %s\n", pos.Line-1, lines[pos.Line-2])
	}
	fmt.Fprintf(&b, "%4d | %s\n", pos.Line, lineTxt)
	fmt.Fprintf(&b, "     | %s%s\n", strings.Repeat(" ", pos.Col-1), strings.Repeat("^", caretWidth(d, src, lineTxt, pos)))
	if pos.Line < len(lines) {
		fmt.Fprintf(&b, "%4d | %s\n", pos.Line+1, lines[pos.Line])
	}
	if d.Help != "" {
		fmt.Fprintf(&b, "\nhelp: %s\n", d.Help)
	}
	return b.String()
}

// caretWidth is the span length in runes, cut at the end of the line.
func caretWidth(d *Error, src, lineTxt string, pos Position) int {
	if d.Span.IsEmpty() {
		return 1
	}
	start := max(0, min(d.Span.Start, len(src)))
	end := max(start, min(d.Span.End, len(src)))
	width := utf8.RuneCountInString(src[start:end])
	remaining := utf8.RuneCountInString(lineTxt) - (pos.Col - 1)
	return max(1, min(width, remaining))
}
