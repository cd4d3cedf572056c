package parser

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/combinator"
	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/input"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

func isKind(kind lexer.Kind) func(input.Element) bool {
	return func(e input.Element) bool { return e.Kind() == kind }
}

func token(kind lexer.Kind) combinator.Parser[In, input.Element] {
	return combinator.Satisfy[In](isKind(kind))
}

func keyword(word string) combinator.Parser[In, input.Element] {
	return combinator.Satisfy[In](func(e input.Element) bool {
		return e.Kind() == lexer.KindIdentifier && e.Text == word
	})
}

// tokens matches the given kinds in order.
func tokens(kinds ...lexer.Kind) combinator.Parser[In, struct{}] {
	return func(in In) (In, struct{}, error) {
		rest := in
		for _, k := range kinds {
			var err error
			if rest, _, err = token(k)(rest); err != nil {
				return in, struct{}{}, err
			}
		}
		return rest, struct{}{}, nil
	}
}

// tagged matches the given kinds in order and yields value.
func tagged[T any](value T, kinds ...lexer.Kind) combinator.Parser[In, T] {
	return combinator.Map(tokens(kinds...), func(struct{}) T { return value })
}

func alt(rules ...func(In) (In, ast.Rule, error)) combinator.Parser[In, ast.Rule] {
	ps := make([]combinator.Parser[In, ast.Rule], len(rules))
	for i, r := range rules {
		ps[i] = r
	}
	return combinator.Alt(ps...)
}

// between is the span of the tokens consumed going from in to rest.
func between(in, rest In) lexer.Span {
	return in.Take(in.Len() - rest.Len()).Extent()
}

func fail(d *diag.Error) error {
	return &combinator.Failure{Err: d}
}

// unexpected describes the token at the start of at. The end of input is
// reported as incomplete.
func unexpected(at In, what string) *diag.Error {
	found, ok := at.Peek()
	if !ok {
		d := diag.KindIncomplete.At(at.Span())
		if what != "" {
			d.WithDetail("expected %s", what)
		}
		return d
	}
	d := diag.KindUnexpected.At(at.Span())
	if what != "" {
		return d.WithDetail("expected %s, found %s", what, found.Token)
	}
	return d.WithDetail("%s", found.Token)
}

func expected(at In, what string) error {
	return fail(unexpected(at, what))
}

// expect consumes one token of the given kind or fails without recovery.
func expect(in In, kind lexer.Kind, what string) (In, input.Element, error) {
	rest, e, err := token(kind)(in)
	if err != nil {
		return in, e, expected(in, what)
	}
	return rest, e, nil
}

func parseNumber(in In) (In, int, error) {
	span := in.Span()
	rest, e, err := token(lexer.KindNumber)(in)
	if err != nil {
		return in, 0, err
	}
	n, perr := strconv.ParseUint(e.Text, 10, 16)
	if perr != nil {
		return in, 0, fail(diag.KindInvalidNumber.At(span).WithDetail("`%s` is larger than 65535", e.Text))
	}
	return rest, int(n), nil
}

// unquote strips the quotes of a string token. Double-quoted strings
// support the escapes \" and \\ only.
func unquote(text string, span lexer.Span) (string, *diag.Error) {
	body := text[1 : len(text)-1]
	if text[0] == '\'' || !strings.ContainsRune(body, '\\') {
		return body, nil
	}

	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case '"', '\\':
			b.WriteByte(body[i])
		default:
			r, w := utf8.DecodeRuneInString(body[i:])
			at := span.Start + 1 + i
			return "", diag.KindInvalidEscape.At(lexer.Span{Start: at - 1, End: at + w}).
				WithDetail("`\\%c`", r).
				WithHelp("only `\\\"` and `\\\\` are escapes; use single quotes for a raw string")
		}
	}
	return b.String(), nil
}

// codePoint decodes the text of a U+XXXX token.
func codePoint(text string, span lexer.Span) (rune, *diag.Error) {
	n, err := strconv.ParseUint(text[2:], 16, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return 0, diag.KindInvalidCodePoint.At(span).WithDetail("`%s` is not a Unicode scalar value", text)
	}
	return rune(n), nil
}
