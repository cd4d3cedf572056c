// Package input turns rulex source into a pre-lexed token cursor that the
// parser can slice, split and re-visit freely while backtracking.
package input

import (
	"fmt"
	"iter"
	"strings"

	"github.com/agenthands/rulex/pkg/compiler/combinator"
	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

// Element is a token together with the source text it was lexed from.
// Text is a substring of the original source, never a copy.
type Element struct {
	Token lexer.Token
	Text  string
}

// Kind is shorthand for e.Token.Kind.
func (e Element) Kind() lexer.Kind { return e.Token.Kind }

// Input is a read-only view over a contiguous run of token records and
// the source they point into. Copying an Input is the cheap clone: both
// copies share the buffer and neither affects the other.
type Input struct {
	source string
	tokens []lexer.Record
}

var _ combinator.Input[Input, Element] = Input{}

// Tokenize lexes source into buf, which must be empty, and returns a
// cursor over the whole buffer. The first error token in the buffer is
// reported as a *diag.Error located at its span. buf must outlive every
// cursor derived from the result.
func Tokenize(source string, buf *[]lexer.Record) (Input, error) {
	if len(*buf) != 0 {
		panic("input: Tokenize requires an empty token buffer")
	}

	for tok, span := range lexer.Spanned(source) {
		*buf = append(*buf, lexer.Record{Token: tok, Span: span})
	}

	for _, rec := range *buf {
		switch rec.Token.Kind {
		case lexer.KindError:
			return Input{}, diag.KindLexError.At(rec.Span)
		case lexer.KindErrorMsg:
			return Input{}, diag.LexErrorWithMessage(rec.Token.Msg, rec.Span)
		}
	}

	return Input{source: source, tokens: *buf}, nil
}

// IsEmpty reports whether no tokens are left in the view.
func (in Input) IsEmpty() bool {
	return len(in.tokens) == 0
}

// Span returns the span of the first token, or the empty span at the end
// of the source when the view is empty.
func (in Input) Span() lexer.Span {
	if len(in.tokens) == 0 {
		return lexer.Span{Start: len(in.source), End: len(in.source)}
	}
	return in.tokens[0].Span
}

// Extent returns the span from the start of the first token to the end of
// the last one. An empty view yields Span.
func (in Input) Extent() lexer.Span {
	if len(in.tokens) == 0 {
		return in.Span()
	}
	return lexer.Span{Start: in.tokens[0].Span.Start, End: in.tokens[len(in.tokens)-1].Span.End}
}

// Peek returns the first element without consuming it.
func (in Input) Peek() (Element, bool) {
	if len(in.tokens) == 0 {
		return Element{}, false
	}
	return in.element(0), true
}

// Next returns the first element and advances the view past it.
func (in *Input) Next() (Element, bool) {
	e, ok := in.Peek()
	if ok {
		in.tokens = in.tokens[1:]
	}
	return e, ok
}

func (in Input) element(i int) Element {
	rec := in.tokens[i]
	return Element{Token: rec.Token, Text: in.source[rec.Span.Start:rec.Span.End]}
}

// Elements iterates over an independent copy of the view.
func (in Input) Elements() iter.Seq[Element] {
	return func(yield func(Element) bool) {
		for it := in; ; {
			e, ok := it.Next()
			if !ok || !yield(e) {
				return
			}
		}
	}
}

// Indices is Elements with each element's 0-based index.
func (in Input) Indices() iter.Seq2[int, Element] {
	return func(yield func(int, Element) bool) {
		i := 0
		for e := range in.Elements() {
			if !yield(i, e) {
				return
			}
			i++
		}
	}
}

// Position returns the index of the first element accepted by pred.
func (in Input) Position(pred func(Element) bool) (int, bool) {
	for i, e := range in.Indices() {
		if pred(e) {
			return i, true
		}
	}
	return 0, false
}

// SliceIndex returns count if the view holds at least count tokens.
// Otherwise it reports how many more tokens would be needed.
func (in Input) SliceIndex(count int) (int, error) {
	if count <= len(in.tokens) {
		return count, nil
	}
	return 0, &combinator.Needed{Size: count - len(in.tokens)}
}

// Len returns the number of tokens in the view.
func (in Input) Len() int {
	return len(in.tokens)
}

// Take returns a view of the first count tokens. It panics if count
// exceeds Len.
func (in Input) Take(count int) Input {
	in.checkBounds(count)
	return Input{source: in.source, tokens: in.tokens[:count:count]}
}

// TakeSplit returns a view of the first count tokens and a view of the
// rest. It panics if count exceeds Len.
func (in Input) TakeSplit(count int) (Input, Input) {
	in.checkBounds(count)
	return Input{source: in.source, tokens: in.tokens[:count:count]},
		Input{source: in.source, tokens: in.tokens[count:]}
}

// Slicing up to the capacity would not panic on its own, so the bound is
// checked against the view length explicitly.
func (in Input) checkBounds(count int) {
	if count < 0 || count > len(in.tokens) {
		panic(fmt.Sprintf("input: count %d out of range for %d tokens", count, len(in.tokens)))
	}
}

// Equal reports whether both views hold the same tokens with the same
// text, regardless of where in their sources the tokens are.
func (in Input) Equal(other Input) bool {
	if len(in.tokens) != len(other.tokens) {
		return false
	}
	for i := range in.tokens {
		if in.element(i) != other.element(i) {
			return false
		}
	}
	return true
}

func (in Input) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, e := range in.Indices() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s %q", e.Token, e.Text)
	}
	b.WriteByte(']')
	return b.String()
}
