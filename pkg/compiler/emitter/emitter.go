// Package emitter turns a parsed rulex into a regular expression for one
// of several regex flavors.
package emitter

import (
	"maps"
	"slices"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/emirpasic/gods/v2/stacks/arraystack"

	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
)

// Options configures an Emitter.
type Options struct {
	Flavor Flavor
}

// Emitter writes the regex for a single rulex. It may be reused; every
// call to Emit starts from a clean state.
type Emitter struct {
	src  string
	opts Options

	out  strings.Builder
	lets map[string]*ast.Let
	// Variables currently being expanded, innermost on top.
	stack *arraystack.Stack[string]

	groupNames map[string]int
	groupTotal int
	groupCount int
	afterRef   bool

	// Span of the first capturing group whose kind (named or unnamed)
	// differs from an earlier one; empty while all groups agree.
	firstKind ast.CaptureKind
	mixedAt   *lexer.Span
}

// NewEmitter returns an Emitter for trees parsed from src. The source is
// only used to narrow error spans.
func NewEmitter(src string, opts Options) *Emitter {
	return &Emitter{
		src:   src,
		opts:  opts,
		stack: arraystack.New[string](),
	}
}

// precedence is how tightly the surrounding syntax binds a rule.
type precedence uint8

const (
	precAlt  precedence = iota // top level or directly inside parentheses
	precSeq                    // part of a sequence
	precAtom                   // operand of a quantifier
)

// Emit resolves variables and group references in r and returns the
// regex. Flavor restrictions are reported as diag.KindUnsupported.
func (e *Emitter) Emit(r *ast.Rulex) (string, error) {
	e.out.Reset()
	e.lets = make(map[string]*ast.Let, len(r.Lets))
	e.stack.Clear()
	e.groupNames = make(map[string]int)
	e.groupTotal, e.groupCount, e.afterRef = 0, 0, false
	e.firstKind, e.mixedAt = ast.CaptureNone, nil

	for _, l := range r.Lets {
		e.lets[l.Name] = l
	}

	if err := e.collect(r.Root); err != nil {
		return "", err
	}
	// Onigmo stops capturing unnamed groups once a named one exists.
	if e.mixedAt != nil && e.opts.Flavor == Ruby {
		return "", e.unsupported(*e.mixedAt, "named and unnamed groups in one pattern")
	}
	if err := e.emit(r.Root, precAlt); err != nil {
		return "", err
	}
	return e.out.String(), nil
}

// collect numbers the capturing groups in output order and validates
// variable uses before anything is written.
func (e *Emitter) collect(rule ast.Rule) error {
	switch r := rule.(type) {
	case *ast.Group:
		if r.Capture != ast.CaptureNone {
			e.groupTotal++
			switch {
			case e.firstKind == ast.CaptureNone:
				e.firstKind = r.Capture
			case e.firstKind != r.Capture && e.mixedAt == nil:
				span := r.Span
				e.mixedAt = &span
			}
		}
		if r.Capture == ast.CaptureNamed {
			if _, dup := e.groupNames[r.Name]; dup {
				return diag.KindDuplicateGroupName.At(r.Span).WithDetail("`%s`", r.Name)
			}
			e.groupNames[r.Name] = e.groupTotal
		}
		for _, p := range r.Parts {
			if err := e.collect(p); err != nil {
				return err
			}
		}
	case *ast.Alternation:
		for _, p := range r.Rules {
			if err := e.collect(p); err != nil {
				return err
			}
		}
	case *ast.Repetition:
		return e.collect(r.Rule)
	case *ast.Lookaround:
		return e.collect(r.Rule)
	case *ast.Variable:
		let, err := e.enter(r)
		if err != nil {
			return err
		}
		defer e.leave()
		return e.collect(let.Rule)
	}
	return nil
}

func (e *Emitter) enter(v *ast.Variable) (*ast.Let, error) {
	let, ok := e.lets[v.Name]
	if !ok {
		return nil, diag.KindUnknownVariable.At(v.Span).
			WithDetail("`%s`", v.Name).
			WithHelp(diag.Suggest(v.Name, slices.Sorted(maps.Keys(e.lets))))
	}
	if slices.Contains(e.stack.Values(), v.Name) {
		return nil, diag.KindRecursiveVariable.At(v.Span).WithDetail("`%s`", v.Name)
	}
	e.stack.Push(v.Name)
	return let, nil
}

func (e *Emitter) leave() {
	e.stack.Pop()
}

func (e *Emitter) emit(rule ast.Rule, prec precedence) error {
	switch r := rule.(type) {
	case *ast.Literal:
		if prec == precAtom && utf8.RuneCountInString(r.Value) != 1 {
			return e.nonCapturing(func() error { return e.emitLiteral(r) })
		}
		return e.emitLiteral(r)

	case *ast.CharClass:
		return e.emitClass(r)

	case *ast.Group:
		return e.emitGroup(r, prec)

	case *ast.Alternation:
		if prec != precAlt {
			return e.nonCapturing(func() error { return e.emitAlternation(r) })
		}
		return e.emitAlternation(r)

	case *ast.Repetition:
		if prec == precAtom {
			return e.nonCapturing(func() error { return e.emitRepetition(r) })
		}
		return e.emitRepetition(r)

	case *ast.Boundary:
		if prec == precAtom {
			return e.nonCapturing(func() error { return e.emitBoundary(r) })
		}
		return e.emitBoundary(r)

	case *ast.Lookaround:
		if prec == precAtom {
			return e.nonCapturing(func() error { return e.emitLookaround(r) })
		}
		return e.emitLookaround(r)

	case *ast.Reference:
		return e.emitReference(r)

	case *ast.Variable:
		let, err := e.enter(r)
		if err != nil {
			return err
		}
		defer e.leave()
		return e.emit(let.Rule, prec)
	}
	panic("emitter: unknown rule type")
}

func (e *Emitter) write(s string) {
	e.afterRef = false
	e.out.WriteString(s)
}

func (e *Emitter) nonCapturing(body func() error) error {
	e.write("(?:")
	if err := body(); err != nil {
		return err
	}
	e.write(")")
	return nil
}

func (e *Emitter) emitGroup(g *ast.Group, prec precedence) error {
	switch g.Capture {
	case ast.CaptureNumbered:
		e.groupCount++
		e.write("(")
	case ast.CaptureNamed:
		if err := e.checkGroupName(g); err != nil {
			return err
		}
		e.groupCount++
		e.write(e.opts.Flavor.namedGroup(g.Name))
	default:
		switch {
		case len(g.Parts) == 1:
			return e.emit(g.Parts[0], prec)
		case prec == precAtom:
			return e.nonCapturing(func() error { return e.emitParts(g.Parts) })
		}
		return e.emitParts(g.Parts)
	}

	if err := e.emitParts(g.Parts); err != nil {
		return err
	}
	e.write(")")
	return nil
}

func (e *Emitter) emitParts(parts []ast.Rule) error {
	prec := precSeq
	if len(parts) == 1 {
		prec = precAlt
	}
	for _, p := range parts {
		if err := e.emit(p, prec); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) checkGroupName(g *ast.Group) error {
	if e.opts.Flavor == Java && strings.ContainsRune(g.Name, '_') {
		return e.unsupported(g.Span, "group names with underscores")
	}
	return nil
}

func (e *Emitter) emitAlternation(a *ast.Alternation) error {
	for i, r := range a.Rules {
		if i > 0 {
			e.write("|")
		}
		if err := e.emit(r, precSeq); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitRepetition(r *ast.Repetition) error {
	if limit := e.opts.Flavor.maxRepetition(); limit > 0 && (r.Min > limit || r.Max > limit) {
		return e.unsupported(r.Span, "repetitions above "+strconv.Itoa(limit))
	}

	if err := e.emit(r.Rule, precAtom); err != nil {
		return err
	}

	switch {
	case r.Min == 0 && r.Max == ast.Unbounded:
		e.write("*")
	case r.Min == 1 && r.Max == ast.Unbounded:
		e.write("+")
	case r.Min == 0 && r.Max == 1:
		e.write("?")
	case r.Max == ast.Unbounded:
		e.write("{" + strconv.Itoa(r.Min) + ",}")
	case r.Min == r.Max:
		e.write("{" + strconv.Itoa(r.Min) + "}")
	default:
		e.write("{" + strconv.Itoa(r.Min) + "," + strconv.Itoa(r.Max) + "}")
	}
	if r.Lazy {
		e.write("?")
	}
	return nil
}

func (e *Emitter) emitBoundary(b *ast.Boundary) error {
	switch b.Kind {
	case ast.BoundaryStart:
		e.write("^")
	case ast.BoundaryEnd:
		e.write("$")
	case ast.BoundaryWord:
		e.write(`\b`)
	case ast.BoundaryNotWord:
		e.write(`\B`)
	}
	return nil
}

var lookaroundOpen = map[ast.LookaroundKind]string{
	ast.LookAhead:     "(?=",
	ast.LookAheadNeg:  "(?!",
	ast.LookBehind:    "(?<=",
	ast.LookBehindNeg: "(?<!",
}

func (e *Emitter) emitLookaround(l *ast.Lookaround) error {
	if !e.opts.Flavor.supportsLookaround() {
		return e.unsupported(l.Span, "lookarounds")
	}
	e.write(lookaroundOpen[l.Kind])
	if err := e.emit(l.Rule, precAlt); err != nil {
		return err
	}
	e.write(")")
	return nil
}

func (e *Emitter) emitReference(r *ast.Reference) error {
	var n int
	switch r.Kind {
	case ast.RefNumber:
		n = r.Number
	case ast.RefRelative:
		switch {
		case r.Number < 0:
			n = e.groupCount + r.Number + 1
		case r.Number > 0:
			n = e.groupCount + r.Number
		}
	case ast.RefName:
		num, ok := e.groupNames[r.Name]
		if !ok {
			return diag.KindUnknownGroupName.At(r.Span).
				WithDetail("`%s`", r.Name).
				WithHelp(diag.Suggest(r.Name, slices.Sorted(maps.Keys(e.groupNames))))
		}
		n = num
	}

	if n < 1 || n > e.groupTotal {
		return diag.KindUnknownGroupNumber.At(r.Span).WithDetail("there are %d capturing groups", e.groupTotal)
	}
	if !e.opts.Flavor.supportsBackreferences() {
		return e.unsupported(r.Span, "backreferences")
	}
	// .NET numbers unnamed groups before named ones.
	if r.Kind != ast.RefName && e.mixedAt != nil && e.opts.Flavor == DotNet {
		return e.unsupported(r.Span, "numeric references when named and unnamed groups are mixed")
	}
	if r.Kind != ast.RefName && len(e.groupNames) > 0 && e.opts.Flavor == Ruby {
		return e.unsupported(r.Span, "numeric references to named groups")
	}

	if r.Kind == ast.RefName {
		e.write(e.opts.Flavor.namedReference(r.Name))
		return nil
	}
	e.write(e.opts.Flavor.numberedReference(n))
	e.afterRef = true
	return nil
}

func (e *Emitter) emitLiteral(l *ast.Literal) error {
	for _, c := range l.Value {
		if c > e.opts.Flavor.maxCodePoint() {
			return e.unsupported(e.locate(l.Span, c), "code points above U+FFFF")
		}
		e.emitChar(c)
	}
	return nil
}

func (e *Emitter) emitChar(c rune) {
	// A digit right after a numbered backreference would extend it.
	if e.afterRef && c >= '0' && c <= '9' {
		e.write("(?:)")
	}
	e.write(e.escape(c, false))
}

// escape renders a single character either inside or outside brackets.
func (e *Emitter) escape(c rune, inClass bool) string {
	f := e.opts.Flavor
	switch {
	case c == '\n':
		return `\n`
	case c == '\r':
		return `\r`
	case c == '\t':
		return `\t`
	case !unicode.IsPrint(c):
		return f.codePoint(c)
	case inClass && f.metaInClass(c), !inClass && metaOutsideClass(c):
		return `\` + string(c)
	}
	return string(c)
}

// locate narrows span to the first occurrence of c in the source.
func (e *Emitter) locate(span lexer.Span, c rune) lexer.Span {
	if span.End > len(e.src) {
		return span
	}
	if i := strings.IndexRune(e.src[span.Start:span.End], c); i >= 0 {
		return lexer.Span{Start: span.Start + i, End: span.Start + i + utf8.RuneLen(c)}
	}
	return span
}

func (e *Emitter) unsupported(span lexer.Span, feature string) error {
	return diag.KindUnsupported.At(span).WithDetail("%s aren't supported in %s", feature, e.opts.Flavor)
}
