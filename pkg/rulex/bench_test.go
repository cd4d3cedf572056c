package rulex_test

import (
	"context"
	"testing"

	"github.com/agenthands/rulex/pkg/compiler/emitter"
	"github.com/agenthands/rulex/pkg/rulex"
)

const benchSource = `
let octet = ['0'-'9']{1,3};
let sep = '.' | ',';

<% :first(octet) (sep octet){3} ::first? %>
`

func BenchmarkTokens(b *testing.B) {
	b.ReportAllocs()
	for b.Loop() {
		if _, err := rulex.Tokens(benchSource); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile(b *testing.B) {
	ctx := context.Background()
	b.ReportAllocs()
	for b.Loop() {
		if _, err := rulex.Compile(ctx, benchSource, rulex.Options{Flavor: emitter.PCRE}); err != nil {
			b.Fatal(err)
		}
	}
}

func FuzzCompile(f *testing.F) {
	f.Add(benchSource)
	f.Add(`!['a'-'z' w] | :x('b'){2,} ::x`)
	f.Add(`let a = b; let b = a; a`)

	f.Fuzz(func(t *testing.T, src string) {
		for _, flavor := range emitter.Flavors() {
			// Must not panic; errors are expected for most inputs.
			_, _ = rulex.Compile(context.Background(), src, rulex.Options{Flavor: flavor})
		}
	})
}
