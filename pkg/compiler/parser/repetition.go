package parser

import (
	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/combinator"
	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/input"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

type repetition struct {
	min, max int
	lazy     bool
	span     lexer.Span
}

// parseRepetition: ('*' | '+' | '?' | '{' BOUNDS '}') ('greedy' | 'lazy')?
func parseRepetition(in In) (In, repetition, error) {
	rest, rep, err := combinator.Alt(
		fixedRepetition(lexer.KindStar, 0, ast.Unbounded),
		fixedRepetition(lexer.KindPlus, 1, ast.Unbounded),
		fixedRepetition(lexer.KindQuestionMark, 0, 1),
		combinator.Parser[In, repetition](parseBraces),
	)(in)
	if err != nil {
		return in, rep, err
	}

	rest, mode, err := combinator.Opt(combinator.Alt(keyword("greedy"), keyword("lazy")))(rest)
	if err != nil {
		return in, rep, err
	}
	if mode != nil {
		rep.lazy = mode.Text == "lazy"
	}
	rep.span = between(in, rest)
	return rest, rep, nil
}

func fixedRepetition(kind lexer.Kind, min, max int) combinator.Parser[In, repetition] {
	return combinator.Map(token(kind), func(input.Element) repetition {
		return repetition{min: min, max: max}
	})
}

// parseBraces: '{' (N | N? ',' M?) '}'
func parseBraces(in In) (In, repetition, error) {
	rest, _, err := token(lexer.KindOpenBrace)(in)
	if err != nil {
		return in, repetition{}, err
	}
	inner := rest

	rest, lower, err := combinator.Opt(combinator.Parser[In, int](parseNumber))(rest)
	if err != nil {
		return in, repetition{}, err
	}
	rest, comma, err := combinator.Opt(token(lexer.KindComma))(rest)
	if err != nil {
		return in, repetition{}, err
	}
	if lower == nil && comma == nil {
		return in, repetition{}, expected(inner, "a number or `,`")
	}

	var upper *int
	if comma != nil {
		if rest, upper, err = combinator.Opt(combinator.Parser[In, int](parseNumber))(rest); err != nil {
			return in, repetition{}, err
		}
	}

	if rest, _, err = expect(rest, lexer.KindCloseBrace, "`}`"); err != nil {
		return in, repetition{}, err
	}

	rep := repetition{max: ast.Unbounded}
	switch {
	case comma == nil:
		rep.min, rep.max = *lower, *lower
	default:
		if lower != nil {
			rep.min = *lower
		}
		if upper != nil {
			rep.max = *upper
		}
	}

	if rep.max != ast.Unbounded && rep.min > rep.max {
		return in, repetition{}, fail(diag.KindRepetitionOrder.At(between(in, rest)).
			WithDetail("{%d,%d}", rep.min, rep.max).
			WithHelp("switch the numbers"))
	}
	return rest, rep, nil
}
