// Package diag defines the located errors produced while compiling rulex
// source, and renders them against the source text.
package diag

import (
	"fmt"
	"strings"

	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

// Kind classifies a diagnostic.
type Kind uint8

const (
	KindLexError Kind = iota
	KindLexErrorWithMessage
	KindUnexpected
	KindIncomplete
	KindLeftoverTokens
	KindUnclosedClass
	KindEmptyClass
	KindRangeNotIncreasing
	KindInvalidRange
	KindInvalidNumber
	KindInvalidCodePoint
	KindInvalidEscape
	KindRepetitionOrder
	KindUnknownClass
	KindUnknownVariable
	KindRecursiveVariable
	KindDuplicateVariable
	KindUnknownGroupName
	KindUnknownGroupNumber
	KindDuplicateGroupName
	KindUnsupported
)

var kindMessages = [...]string{
	KindLexError:            "unknown token",
	KindLexErrorWithMessage: "invalid token",
	KindUnexpected:          "unexpected token",
	KindIncomplete:          "unexpected end of input",
	KindLeftoverTokens:      "leftover tokens that couldn't be parsed",
	KindUnclosedClass:       "this character class is never closed",
	KindEmptyClass:          "character classes can't be empty",
	KindRangeNotIncreasing:  "the first character in a range must be smaller than the second",
	KindInvalidRange:        "only single characters and code points can be used in a range",
	KindInvalidNumber:       "invalid number",
	KindInvalidCodePoint:    "invalid code point",
	KindInvalidEscape:       "unsupported escape sequence in string",
	KindRepetitionOrder:     "lower bound can't be greater than the upper bound",
	KindUnknownClass:        "unknown character class",
	KindUnknownVariable:     "variable doesn't exist",
	KindRecursiveVariable:   "variables can't be used recursively",
	KindDuplicateVariable:   "a variable with this name is already declared",
	KindUnknownGroupName:    "group name doesn't exist",
	KindUnknownGroupNumber:  "reference to a group that doesn't exist",
	KindDuplicateGroupName:  "group name is used more than once",
	KindUnsupported:         "unsupported by this regex flavor",
}

func (k Kind) String() string {
	if int(k) < len(kindMessages) {
		return kindMessages[k]
	}
	return fmt.Sprintf("diag.Kind(%d)", k)
}

// At returns a new diagnostic of this kind located at span.
func (k Kind) At(span lexer.Span) *Error {
	return &Error{Kind: k, Span: span}
}

// Error is a diagnostic located in the source.
type Error struct {
	Kind Kind
	Span lexer.Span
	// Msg is set for KindLexErrorWithMessage.
	Msg    lexer.ErrorMsg
	Detail string
	Help   string
}

// LexErrorWithMessage returns a lexical error carrying the scanner's explanation.
func LexErrorWithMessage(msg lexer.ErrorMsg, span lexer.Span) *Error {
	return &Error{Kind: KindLexErrorWithMessage, Span: span, Msg: msg}
}

// WithDetail sets a detail appended to the kind's message.
func (e *Error) WithDetail(format string, args ...any) *Error {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHelp attaches a hint such as a spelling suggestion. Empty help is ignored.
func (e *Error) WithHelp(help string) *Error {
	if help != "" {
		e.Help = help
	}
	return e
}

// Message returns the description without location or help.
func (e *Error) Message() string {
	var b strings.Builder
	b.WriteString(e.Kind.String())
	if e.Kind == KindLexErrorWithMessage && e.Msg != lexer.MsgNone {
		b.WriteString(": ")
		b.WriteString(e.Msg.String())
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("error at %s: %s", e.Span, e.Message())
	if e.Help != "" {
		msg += " (help: " + e.Help + ")"
	}
	return msg
}
