// Package combinator is a small backtracking parser-combinator library.
// Parsers are written against the Input interface, so any sliceable
// stream of elements (tokens, runes, records) can be parsed.
package combinator

import (
	"errors"
	"fmt"
	"iter"
)

// Input is the set of capabilities a parser input must provide. I is the
// implementing type itself and E the element type.
type Input[I any, E any] interface {
	Sized
	Splitter[I]
	Elements() iter.Seq[E]
	Indices() iter.Seq2[int, E]
	Position(pred func(E) bool) (int, bool)
}

// Sized reports the number of elements left in an input.
type Sized interface {
	Len() int
}

// Taker can return a prefix of itself.
type Taker[I any] interface {
	Sized
	Take(count int) I
}

// Splitter slices an input by element count.
type Splitter[I any] interface {
	// SliceIndex returns count if at least count elements remain, or a
	// *Needed error reporting the deficit.
	SliceIndex(count int) (int, error)
	Take(count int) I
	// TakeSplit returns the first count elements and the remainder.
	TakeSplit(count int) (I, I)
}

// Parser consumes a prefix of its input and returns the remainder.
type Parser[I any, O any] func(in I) (I, O, error)

// Needed reports that a parser needed Size more elements than were available.
type Needed struct {
	Size int
}

func (n *Needed) Error() string {
	return fmt.Sprintf("combinator: %d more element(s) needed", n.Size)
}

// ErrorKind identifies the combinator that rejected the input.
type ErrorKind uint8

const (
	KindSatisfy ErrorKind = iota
	KindEOF
	KindAlt
	KindMany
	KindTakeUntil
)

var errorKindNames = [...]string{
	KindSatisfy:   "satisfy",
	KindEOF:       "eof",
	KindAlt:       "alt",
	KindMany:      "many",
	KindTakeUntil: "take until",
}

func (k ErrorKind) String() string {
	if int(k) < len(errorKindNames) {
		return errorKindNames[k]
	}
	return fmt.Sprintf("ErrorKind(%d)", k)
}

// Error is a recoverable mismatch: an enclosing Alt may try another branch.
type Error[I any] struct {
	Input I
	Kind  ErrorKind
}

func (e *Error[I]) Error() string {
	return "combinator: " + e.Kind.String() + " did not match"
}

// Failure wraps an error that must not be backtracked over.
type Failure struct {
	Err error
}

func (f *Failure) Error() string { return f.Err.Error() }
func (f *Failure) Unwrap() error { return f.Err }

// IsFailure reports whether err stops backtracking.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}
