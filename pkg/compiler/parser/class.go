package parser

import (
	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/combinator"
	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

// parseClass: '!'? '[' CLASS_ITEM+ ']'
// The items between the brackets are cut out first and parsed as a
// cursor of their own.
func parseClass(in In) (In, ast.Rule, error) {
	rest, not, err := combinator.Opt(token(lexer.KindNot))(in)
	if err != nil {
		return in, nil, err
	}

	open := rest.Span()
	if rest, _, err = token(lexer.KindOpenBracket)(rest); err != nil {
		return in, nil, err
	}

	rest, inner, err := combinator.TakeUntil[In](isKind(lexer.KindCloseBracket))(rest)
	if err != nil {
		return in, nil, fail(diag.KindUnclosedClass.At(open).WithHelp("add a closing `]`"))
	}
	closing := rest.Span()
	_, rest = rest.TakeSplit(1)

	if inner.IsEmpty() {
		return in, nil, fail(diag.KindEmptyClass.At(open.Join(closing)))
	}

	var items []ast.ClassItem
	for !inner.IsEmpty() {
		next, more, derr := parseClassItem(inner, closing)
		if derr != nil {
			return in, nil, fail(derr)
		}
		items = append(items, more...)
		inner = next
	}

	return rest, &ast.CharClass{Negated: not != nil, Items: items, Span: between(in, rest)}, nil
}

// parseClassItem parses a character, a range, a named class or a dot. A
// multi-character string contributes one item per character.
func parseClassItem(in In, closing lexer.Span) (In, []ast.ClassItem, *diag.Error) {
	start := in.Span()
	e, _ := in.Peek()

	switch e.Kind() {
	case lexer.KindIdentifier:
		_, rest := in.TakeSplit(1)
		return rest, []ast.ClassItem{{Kind: ast.ClassNamed, Name: e.Text, Span: start}}, nil

	case lexer.KindDot:
		_, rest := in.TakeSplit(1)
		return rest, []ast.ClassItem{{Kind: ast.ClassDot, Span: start}}, nil

	case lexer.KindString, lexer.KindCodePoint:
		rest, first, derr := parseClassChars(in)
		if derr != nil {
			return in, nil, derr
		}

		if _, _, err := token(lexer.KindDash)(rest); err != nil {
			items := make([]ast.ClassItem, len(first))
			for i, r := range first {
				items[i] = ast.ClassItem{Kind: ast.ClassChar, First: r, Span: start}
			}
			return rest, items, nil
		}

		if len(first) != 1 {
			return in, nil, diag.KindInvalidRange.At(start).WithDetail("a range bound must be a single character")
		}
		_, rest = rest.TakeSplit(1)

		end := rest.Span()
		if rest.IsEmpty() {
			return in, nil, diag.KindUnexpected.At(closing).WithDetail("expected a character after `-`, found `]`")
		}
		rest, last, derr := parseClassChars(rest)
		if derr != nil {
			return in, nil, derr
		}
		if len(last) != 1 {
			return in, nil, diag.KindInvalidRange.At(end).WithDetail("a range bound must be a single character")
		}

		span := start.Join(end)
		if first[0] > last[0] {
			return in, nil, diag.KindRangeNotIncreasing.At(span).
				WithDetail("%q is greater than %q", first[0], last[0]).
				WithHelp("switch the characters")
		}
		return rest, []ast.ClassItem{{Kind: ast.ClassRange, First: first[0], Last: last[0], Span: span}}, nil
	}

	return in, nil, diag.KindUnexpected.At(start).
		WithDetail("expected a character, range or class name, found %s", e.Token)
}

// parseClassChars reads a string or code point inside a class.
func parseClassChars(in In) (In, []rune, *diag.Error) {
	span := in.Span()
	e, _ := in.Peek()
	_, rest := in.TakeSplit(1)

	switch e.Kind() {
	case lexer.KindCodePoint:
		r, derr := codePoint(e.Text, span)
		if derr != nil {
			return in, nil, derr
		}
		return rest, []rune{r}, nil

	case lexer.KindString:
		value, derr := unquote(e.Text, span)
		if derr != nil {
			return in, nil, derr
		}
		if value == "" {
			return in, nil, diag.KindEmptyClass.At(span).WithDetail("empty string")
		}
		return rest, []rune(value), nil
	}

	return in, nil, diag.KindUnexpected.At(span).WithDetail("expected a character, found %s", e.Token)
}
