package parser

import (
	"errors"

	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/combinator"
	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/input"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

// In is the token cursor every grammar rule consumes.
type In = input.Input

// Reserved words can't be used as variable names.
var reserved = map[string]bool{
	"let":    true,
	"lazy":   true,
	"greedy": true,
}

// Parse tokenizes and parses rulex source.
func Parse(src string) (*ast.Rulex, error) {
	var buf []lexer.Record
	in, err := input.Tokenize(src, &buf)
	if err != nil {
		return nil, err
	}
	return ParseTokens(in)
}

// ParseTokens parses an already tokenized cursor. The whole cursor must be
// consumed.
func ParseTokens(in In) (*ast.Rulex, error) {
	rest, lets, err := combinator.Many0(combinator.Parser[In, *ast.Let](parseLet))(in)
	if err != nil {
		return nil, toDiag(err)
	}

	rest, root, err := parseExpression(rest)
	if err != nil {
		return nil, toDiag(err)
	}

	if _, _, err := combinator.Eof[In]()(rest); err != nil {
		return nil, diag.KindLeftoverTokens.At(rest.Extent())
	}

	seen := make(map[string]bool, len(lets))
	for _, l := range lets {
		if seen[l.Name] {
			return nil, diag.KindDuplicateVariable.At(l.NameSpan).WithDetail("`%s`", l.Name)
		}
		seen[l.Name] = true
	}

	return &ast.Rulex{Lets: lets, Root: root}, nil
}

// parseLet: let NAME = EXPRESSION ;
func parseLet(in In) (In, *ast.Let, error) {
	// Two tokens of lookahead decide whether this is a declaration at all.
	_, head, err := combinator.Take[In](2)(in)
	if err != nil {
		return in, nil, err
	}
	if _, _, err := keyword("let")(head); err != nil {
		return in, nil, err
	}
	_, rest := in.TakeSplit(1)

	nameSpan := rest.Span()
	rest, name, err := expect(rest, lexer.KindIdentifier, "a variable name")
	if err != nil {
		return in, nil, err
	}
	if reserved[name.Text] {
		return in, nil, fail(diag.KindUnexpected.At(nameSpan).WithDetail("`%s` is a reserved keyword", name.Text))
	}

	rest, _, err = expect(rest, lexer.KindEquals, "`=`")
	if err != nil {
		return in, nil, err
	}

	rest, rule, err := combinator.Cut(combinator.Parser[In, ast.Rule](parseExpression))(rest)
	if err != nil {
		return in, nil, err
	}

	rest, _, err = expect(rest, lexer.KindSemicolon, "`;`")
	if err != nil {
		return in, nil, err
	}

	return rest, &ast.Let{Name: name.Text, NameSpan: nameSpan, Rule: rule, Span: between(in, rest)}, nil
}

// parseExpression: '|'? SEQUENCE ('|' SEQUENCE)*
// An expression without any sequence is the empty group.
func parseExpression(in In) (In, ast.Rule, error) {
	rest, leading, err := combinator.Opt(token(lexer.KindPipe))(in)
	if err != nil {
		return in, nil, err
	}

	rest, alts, err := combinator.SeparatedList1(token(lexer.KindPipe), combinator.Parser[In, ast.Rule](parseSequence))(rest)
	if err != nil {
		if leading != nil || combinator.IsFailure(err) {
			return in, nil, err
		}
		at := in.Span().Start
		return in, &ast.Group{Span: lexer.Span{Start: at, End: at}}, nil
	}

	if len(alts) == 1 {
		return rest, alts[0], nil
	}
	return rest, &ast.Alternation{Rules: alts, Span: between(in, rest)}, nil
}

func parseSequence(in In) (In, ast.Rule, error) {
	rest, parts, err := combinator.Many1(alt(parseLookaround, parseRepeated))(in)
	if err != nil {
		return in, nil, err
	}
	if len(parts) == 1 {
		return rest, parts[0], nil
	}
	return rest, &ast.Group{Parts: parts, Span: between(in, rest)}, nil
}

// parseLookaround: '!'? ('>>' | '<<') SEQUENCE
func parseLookaround(in In) (In, ast.Rule, error) {
	rest, kind, err := combinator.Alt(
		tagged(ast.LookAheadNeg, lexer.KindNot, lexer.KindLookAhead),
		tagged(ast.LookBehindNeg, lexer.KindNot, lexer.KindLookBehind),
		tagged(ast.LookAhead, lexer.KindLookAhead),
		tagged(ast.LookBehind, lexer.KindLookBehind),
	)(in)
	if err != nil {
		return in, nil, err
	}

	rest, rule, err := combinator.Cut(combinator.Parser[In, ast.Rule](parseSequence))(rest)
	if err != nil {
		return in, nil, err
	}
	return rest, &ast.Lookaround{Kind: kind, Rule: rule, Span: between(in, rest)}, nil
}

// parseRepeated: ATOM REPETITION*
func parseRepeated(in In) (In, ast.Rule, error) {
	rest, rule, err := parseAtom(in)
	if err != nil {
		return in, nil, err
	}

	rest, reps, err := combinator.Many0(combinator.Parser[In, repetition](parseRepetition))(rest)
	if err != nil {
		return in, nil, err
	}
	for _, r := range reps {
		rule = &ast.Repetition{Rule: rule, Min: r.min, Max: r.max, Lazy: r.lazy, Span: rule.Pos().Join(r.span)}
	}
	return rest, rule, nil
}

func parseAtom(in In) (In, ast.Rule, error) {
	return alt(
		parseGroup,
		parseString,
		parseCodePoint,
		parseClass,
		parseBoundary,
		parseReference,
		parseDot,
		parseVariable,
	)(in)
}

// parseGroup: (':' NAME?)? '(' EXPRESSION ')'
func parseGroup(in In) (In, ast.Rule, error) {
	rest, colon, err := combinator.Opt(token(lexer.KindColon))(in)
	if err != nil {
		return in, nil, err
	}

	capture, name := ast.CaptureNone, ""
	if colon != nil {
		capture = ast.CaptureNumbered
		var ident *input.Element
		if rest, ident, err = combinator.Opt(token(lexer.KindIdentifier))(rest); err != nil {
			return in, nil, err
		}
		if ident != nil {
			capture, name = ast.CaptureNamed, ident.Text
		}
		if rest, _, err = expect(rest, lexer.KindOpenParen, "`(`"); err != nil {
			return in, nil, err
		}
	} else if rest, _, err = token(lexer.KindOpenParen)(rest); err != nil {
		return in, nil, err
	}

	rest, rule, err := combinator.Cut(combinator.Parser[In, ast.Rule](parseExpression))(rest)
	if err != nil {
		return in, nil, err
	}

	rest, _, err = expect(rest, lexer.KindCloseParen, "`)`")
	if err != nil {
		return in, nil, err
	}

	parts := []ast.Rule{rule}
	if g, ok := rule.(*ast.Group); ok && g.Capture == ast.CaptureNone {
		parts = g.Parts
	}
	return rest, &ast.Group{Capture: capture, Name: name, Parts: parts, Span: between(in, rest)}, nil
}

func parseString(in In) (In, ast.Rule, error) {
	span := in.Span()
	rest, e, err := token(lexer.KindString)(in)
	if err != nil {
		return in, nil, err
	}
	value, derr := unquote(e.Text, span)
	if derr != nil {
		return in, nil, fail(derr)
	}
	return rest, &ast.Literal{Value: value, Span: span}, nil
}

func parseCodePoint(in In) (In, ast.Rule, error) {
	span := in.Span()
	rest, e, err := token(lexer.KindCodePoint)(in)
	if err != nil {
		return in, nil, err
	}
	r, derr := codePoint(e.Text, span)
	if derr != nil {
		return in, nil, fail(derr)
	}
	return rest, &ast.Literal{Value: string(r), Span: span}, nil
}

// parseBoundary: '<%' | '%>' | '%' | '!' '%'
func parseBoundary(in In) (In, ast.Rule, error) {
	rest, kind, err := combinator.Alt(
		tagged(ast.BoundaryStart, lexer.KindStart),
		tagged(ast.BoundaryEnd, lexer.KindEnd),
		tagged(ast.BoundaryWord, lexer.KindPercent),
		tagged(ast.BoundaryNotWord, lexer.KindNot, lexer.KindPercent),
	)(in)
	if err != nil {
		return in, nil, err
	}
	return rest, &ast.Boundary{Kind: kind, Span: between(in, rest)}, nil
}

// parseReference: '::' (NUMBER | NAME | ('+' | '-') NUMBER)
func parseReference(in In) (In, ast.Rule, error) {
	rest, _, err := token(lexer.KindDoubleColon)(in)
	if err != nil {
		return in, nil, err
	}

	target := rest
	rest, ref, err := combinator.Alt(
		combinator.Map(combinator.Parser[In, int](parseNumber), func(n int) ast.Reference {
			return ast.Reference{Kind: ast.RefNumber, Number: n}
		}),
		combinator.Map(token(lexer.KindIdentifier), func(e input.Element) ast.Reference {
			return ast.Reference{Kind: ast.RefName, Name: e.Text}
		}),
		combinator.Map(combinator.Preceded(token(lexer.KindPlus), combinator.Parser[In, int](parseNumber)), func(n int) ast.Reference {
			return ast.Reference{Kind: ast.RefRelative, Number: n}
		}),
		combinator.Map(combinator.Preceded(token(lexer.KindDash), combinator.Parser[In, int](parseNumber)), func(n int) ast.Reference {
			return ast.Reference{Kind: ast.RefRelative, Number: -n}
		}),
	)(rest)
	if err != nil {
		if combinator.IsFailure(err) {
			return in, nil, err
		}
		return in, nil, expected(target, "a group number or name")
	}

	ref.Span = between(in, rest)
	return rest, &ref, nil
}

func parseDot(in In) (In, ast.Rule, error) {
	span := in.Span()
	rest, _, err := token(lexer.KindDot)(in)
	if err != nil {
		return in, nil, err
	}
	return rest, &ast.CharClass{Items: []ast.ClassItem{{Kind: ast.ClassDot, Span: span}}, Span: span}, nil
}

func parseVariable(in In) (In, ast.Rule, error) {
	span := in.Span()
	rest, e, err := combinator.Satisfy[In](func(e input.Element) bool {
		return e.Kind() == lexer.KindIdentifier && !reserved[e.Text]
	})(in)
	if err != nil {
		return in, nil, err
	}
	return rest, &ast.Variable{Name: e.Text, Span: span}, nil
}

// toDiag converts whatever stopped the parse into a located diagnostic.
func toDiag(err error) error {
	var d *diag.Error
	if errors.As(err, &d) {
		return d
	}
	var cerr *combinator.Error[In]
	if errors.As(err, &cerr) {
		return unexpected(cerr.Input, "")
	}
	return err
}
