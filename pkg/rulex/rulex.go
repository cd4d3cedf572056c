// Package rulex compiles rulex source into a regular expression.
package rulex

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/emitter"
	"github.com/agenthands/rulex/pkg/compiler/input"
	"github.com/agenthands/rulex/pkg/compiler/lexer"
	"github.com/agenthands/rulex/pkg/compiler/parser"
)

// Options selects the target regex flavor. The zero value is PCRE.
type Options struct {
	Flavor emitter.Flavor
}

// Compile turns src into a regex for opts.Flavor. Errors located in the
// source are *diag.Error values; pass them to diag.Render for display.
// Progress is logged at V(1) on the context's logger.
func Compile(ctx context.Context, src string, opts Options) (string, error) {
	logger := logr.FromContextOrDiscard(ctx).WithValues("flavor", opts.Flavor.String())

	var buf []lexer.Record
	in, err := input.Tokenize(src, &buf)
	if err != nil {
		return "", err
	}
	logger.V(1).Info("tokenized", "tokens", in.Len())

	tree, err := parser.ParseTokens(in)
	if err != nil {
		return "", err
	}
	logger.V(1).Info("parsed", "lets", len(tree.Lets))

	out, err := emitter.NewEmitter(src, emitter.Options{Flavor: opts.Flavor}).Emit(tree)
	if err != nil {
		return "", err
	}
	logger.V(1).Info("emitted", "length", len(out))
	return out, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(src string, opts Options) string {
	out, err := Compile(context.Background(), src, opts)
	if err != nil {
		panic(fmt.Sprintf("rulex: Compile(%q): %v", src, err))
	}
	return out
}

// Parse returns the syntax tree of src without emitting a regex.
func Parse(src string) (*ast.Rulex, error) {
	return parser.Parse(src)
}

// Tokens returns the debug listing of src's token cursor.
func Tokens(src string) (string, error) {
	var buf []lexer.Record
	in, err := input.Tokenize(src, &buf)
	if err != nil {
		return "", err
	}
	return in.String(), nil
}
