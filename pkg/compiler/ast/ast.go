package ast

import "github.com/agenthands/rulex/pkg/compiler/lexer"

// Rule represents any node of a parsed expression.
type Rule interface {
	Pos() lexer.Span
	ruleNode()
}

// Rulex is the root node: variable declarations followed by the expression.
type Rulex struct {
	Lets []*Let
	Root Rule
}

// Let: let NAME = RULE;
type Let struct {
	Name     string
	NameSpan lexer.Span
	Rule     Rule
	Span     lexer.Span
}

// Literal is a string literal with escapes already resolved.
type Literal struct {
	Value string
	Span  lexer.Span
}

func (l *Literal) Pos() lexer.Span { return l.Span }
func (l *Literal) ruleNode()       {}

// ClassItemKind distinguishes the members of a character class.
type ClassItemKind uint8

const (
	ClassChar  ClassItemKind = iota // 'a' or U+61
	ClassRange                      // 'a'-'z'
	ClassNamed                      // w, digit, Greek
	ClassDot                        // . (any character except newline)
)

// ClassItem is one member of a character class.
type ClassItem struct {
	Kind  ClassItemKind
	First rune
	Last  rune   // ClassRange only
	Name  string // ClassNamed only
	Span  lexer.Span
}

// CharClass: ![...] or [...]
type CharClass struct {
	Negated bool
	Items   []ClassItem
	Span    lexer.Span
}

func (c *CharClass) Pos() lexer.Span { return c.Span }
func (c *CharClass) ruleNode()       {}

// CaptureKind tells whether and how a group captures.
type CaptureKind uint8

const (
	CaptureNone CaptureKind = iota
	CaptureNumbered
	CaptureNamed
)

// Group is a sequence, optionally capturing: (...), :(...), :name(...).
// The implicit top-level sequence is a Group with CaptureNone.
type Group struct {
	Capture CaptureKind
	Name    string
	Parts   []Rule
	Span    lexer.Span
}

func (g *Group) Pos() lexer.Span { return g.Span }
func (g *Group) ruleNode()       {}

// Alternation: a | b | c
type Alternation struct {
	Rules []Rule
	Span  lexer.Span
}

func (a *Alternation) Pos() lexer.Span { return a.Span }
func (a *Alternation) ruleNode()       {}

// Unbounded is the Max of a repetition without an upper bound.
const Unbounded = -1

// Repetition: RULE*, RULE+, RULE?, RULE{n,m} with an optional lazy/greedy suffix.
type Repetition struct {
	Rule Rule
	Min  int
	Max  int
	Lazy bool
	Span lexer.Span
}

func (r *Repetition) Pos() lexer.Span { return r.Span }
func (r *Repetition) ruleNode()       {}

// BoundaryKind identifies an anchor.
type BoundaryKind uint8

const (
	BoundaryStart       BoundaryKind = iota // <%
	BoundaryEnd                             // %>
	BoundaryWord                            // %
	BoundaryNotWord                         // !%
)

// Boundary is an anchor or word boundary.
type Boundary struct {
	Kind BoundaryKind
	Span lexer.Span
}

func (b *Boundary) Pos() lexer.Span { return b.Span }
func (b *Boundary) ruleNode()       {}

// LookaroundKind identifies the direction and polarity of a lookaround.
type LookaroundKind uint8

const (
	LookAhead LookaroundKind = iota
	LookBehind
	LookAheadNeg
	LookBehindNeg
)

// Lookaround: >> RULE, << RULE, !>> RULE, !<< RULE
type Lookaround struct {
	Kind LookaroundKind
	Rule Rule
	Span lexer.Span
}

func (l *Lookaround) Pos() lexer.Span { return l.Span }
func (l *Lookaround) ruleNode()       {}

// ReferenceKind identifies how a backreference names its group.
type ReferenceKind uint8

const (
	RefNumber   ReferenceKind = iota // ::3
	RefName                          // ::name
	RefRelative                      // ::-1, ::+1
)

// Reference is a backreference to a capturing group.
type Reference struct {
	Kind   ReferenceKind
	Number int // group number, or offset for RefRelative
	Name   string
	Span   lexer.Span
}

func (r *Reference) Pos() lexer.Span { return r.Span }
func (r *Reference) ruleNode()       {}

// Variable is a use of a let-bound name.
type Variable struct {
	Name string
	Span lexer.Span
}

func (v *Variable) Pos() lexer.Span { return v.Span }
func (v *Variable) ruleNode()       {}
