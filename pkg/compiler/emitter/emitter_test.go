package emitter_test

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/rulex/pkg/compiler/diag"
	"github.com/agenthands/rulex/pkg/compiler/emitter"
	"github.com/agenthands/rulex/pkg/compiler/parser"
)

func compile(src string, flavor emitter.Flavor) (string, error) {
	r, err := parser.Parse(src)
	if err != nil {
		return "", err
	}
	return emitter.NewEmitter(src, emitter.Options{Flavor: flavor}).Emit(r)
}

func TestEmitPCRE(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`'hello'`, `hello`},
		{`'a.b(c)'`, `a\.b\(c\)`},
		{`''`, ``},
		{`'ab'+`, `(?:ab)+`},
		{`'a'*`, `a*`},
		{`'a'{2,5} lazy`, `a{2,5}?`},
		{`'a'{3,}`, `a{3,}`},
		{`'a'{,3}`, `a{0,3}`},
		{`'a'{2}*`, `(?:a{2})*`},
		{`'a' | 'b' 'c'`, `a|bc`},
		{`'x' ('a' | 'b')`, `x(?:a|b)`},
		{`('a' | 'b')+`, `(?:a|b)+`},
		{`:('a') :name('b')`, `(a)(?<name>b)`},
		{`:('a' | 'b')`, `(a|b)`},
		{`:()`, `()`},
		{`<% 'a' %>`, `^a$`},
		{`% 'a' !%`, `\ba\B`},
		{`%*`, `(?:\b)*`},
		{`>> 'a'`, `(?=a)`},
		{`!>> 'a' | 'b'`, `(?!a)|b`},
		{`<< 'a'`, `(?<=a)`},
		{`!<< 'a' 'b'`, `(?<!ab)`},
		{`.`, `.`},
		{`'a' U+0`, `a\x{0}`},
		{`U+1F600`, "\U0001F600"},
		{`"tab\\"`, `tab\\`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := compile(tt.src, emitter.PCRE)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitClasses(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`['a'-'z' 'A'-'Z' '_']`, `[A-Z_a-z]`},
		{`['a'-'c' 'b'-'f']`, `[a-f]`},
		{`['a' 'b']`, `[ab]`},
		{`['abc']`, `[a-c]`},
		{`['x']`, `x`},
		{`['.']`, `\.`},
		{`!['x']`, `[^x]`},
		{`['-' ']' '^']`, `[\-\]\^]`},
		{`[w]`, `\w`},
		{`![w]`, `\W`},
		{`[d s]`, `[\d\s]`},
		{`![d s]`, `[^\d\s]`},
		{`[w '-']`, `[\-\w]`},
		{`[n]`, `\n`},
		{`[n r t]`, `[\t\n\r]`},
		{`[ascii_digit]`, `[0-9]`},
		{`[ascii_xdigit]`, `[0-9A-Fa-f]`},
		{`[Letter]`, `\p{L}`},
		{`![Lu]`, `\P{Lu}`},
		{`[Greek Latin]`, `[\p{Greek}\p{Latin}]`},
		{`![.]`, `[^\x{0}-\t\x{B}-\x{10FFFF}]`},
		{`['a' .]`, `[\x{0}-\t\x{B}-\x{10FFFF}]`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := compile(tt.src, emitter.PCRE)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitFlavorSyntax(t *testing.T) {
	tests := []struct {
		src    string
		flavor emitter.Flavor
		want   string
	}{
		{`:x('a') ::x`, emitter.PCRE, `(?<x>a)\k<x>`},
		{`:x('a') ::x`, emitter.Python, `(?P<x>a)(?P=x)`},
		{`:x('a')`, emitter.RE2, `(?P<x>a)`},
		{`:('a') ::1`, emitter.Ruby, `(a)\k<1>`},
		{`:a('x') :b('y') ::a`, emitter.Ruby, `(?<a>x)(?<b>y)\k<a>`},
		{`:a('x') :('y') ::a`, emitter.DotNet, `(?<a>x)(y)\k<a>`},
		{`:('x') :('y') ::-1`, emitter.DotNet, `(x)(y)\2`},
		{`[Greek]`, emitter.JavaScript, `\p{Script=Greek}`},
		{`![Greek]`, emitter.Java, `\P{IsGreek}`},
		{`[Greek]`, emitter.Rust, `\p{Greek}`},
		{`U+1`, emitter.Python, `\x01`},
		{`U+2028`, emitter.Python, `\u2028`},
		{`U+E0001`, emitter.Python, `\U000E0001`},
		{`U+1`, emitter.JavaScript, `\u{1}`},
		{`U+1`, emitter.DotNet, `\x01`},
		{`U+FFFE`, emitter.DotNet, `\uFFFE`},
		{`['&' 'z']`, emitter.Java, `[\&z]`},
		{`['&' 'z']`, emitter.JavaScript, `[&z]`},
	}

	for _, tt := range tests {
		t.Run(tt.flavor.String()+" "+tt.src, func(t *testing.T) {
			got, err := compile(tt.src, tt.flavor)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitReferences(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{`:('a') ::1`, `(a)\1`},
		{`:('a') ::1 '0'`, `(a)\1(?:)0`},
		{`:('a') ::1 ['0']`, `(a)\1(?:)0`},
		{`:('a') :('b') ::-1`, `(a)(b)\2`},
		{`:('a') :('b') ::-2`, `(a)(b)\1`},
		{`::+1 :('a')`, `\1(a)`},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := compile(tt.src, emitter.PCRE)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEmitVariables(t *testing.T) {
	got, err := compile(`let x = 'a' | 'b'; x 'c'`, emitter.PCRE)
	require.NoError(t, err)
	assert.Equal(t, `(?:a|b)c`, got)

	got, err = compile(`let d = [d]; let ip = d{1,3}; ip '.' ip`, emitter.PCRE)
	require.NoError(t, err)
	assert.Equal(t, `\d{1,3}\.\d{1,3}`, got)

	got, err = compile(`let g = :('a'); g ::2 g`, emitter.PCRE)
	require.NoError(t, err)
	assert.Equal(t, `(a)\2(a)`, got, "each use of a variable gets its own groups")
}

func TestEmitErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		flavor emitter.Flavor
		kind   diag.Kind
		help   string
	}{
		{"unknown variable", `let yy = 'a'; y`, emitter.PCRE, diag.KindUnknownVariable, "did you mean `yy`?"},
		{"recursive variable", `let a = b; let b = 'x' a; a`, emitter.PCRE, diag.KindRecursiveVariable, ""},
		{"unknown class", `[digt]`, emitter.PCRE, diag.KindUnknownClass, "did you mean `digit`?"},
		{"unknown group number", `:('a') ::2`, emitter.PCRE, diag.KindUnknownGroupNumber, ""},
		{"relative before any group", `::-1 :('a')`, emitter.PCRE, diag.KindUnknownGroupNumber, ""},
		{"zero offset", `:('a') ::+0`, emitter.PCRE, diag.KindUnknownGroupNumber, ""},
		{"unknown group name", `:name('a') ::nam`, emitter.PCRE, diag.KindUnknownGroupName, "did you mean `name`?"},
		{"duplicate group name", `:x('a') :x('b')`, emitter.PCRE, diag.KindDuplicateGroupName, ""},
		{"lookahead in RE2", `>> 'a'`, emitter.RE2, diag.KindUnsupported, ""},
		{"lookbehind in Rust", `<< 'a'`, emitter.Rust, diag.KindUnsupported, ""},
		{"backreference in RE2", `:('a') ::1`, emitter.RE2, diag.KindUnsupported, ""},
		{"astral code point in .NET", `'x' U+1F600`, emitter.DotNet, diag.KindUnsupported, ""},
		{"astral range in .NET", `[U+10000-U+10FFFF]`, emitter.DotNet, diag.KindUnsupported, ""},
		{"script in .NET", `[Greek]`, emitter.DotNet, diag.KindUnsupported, ""},
		{"category in Python", `[Letter]`, emitter.Python, diag.KindUnsupported, ""},
		{"large repetition in RE2", `'a'{1001}`, emitter.RE2, diag.KindUnsupported, ""},
		{"underscore group name in Java", `:first_name('a')`, emitter.Java, diag.KindUnsupported, ""},
		{"numbered reference to mixed groups in .NET", `:a('x') :('y') ::2`, emitter.DotNet, diag.KindUnsupported, ""},
		{"relative reference to mixed groups in .NET", `:a('x') :('y') ::-1`, emitter.DotNet, diag.KindUnsupported, ""},
		{"mixed groups in Ruby", `:a('x') :('y')`, emitter.Ruby, diag.KindUnsupported, ""},
		{"mixed groups in Ruby, unnamed first", `:('x') :a('y') ::a`, emitter.Ruby, diag.KindUnsupported, ""},
		{"numbered reference to named group in Ruby", `:a('x') ::1`, emitter.Ruby, diag.KindUnsupported, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compile(tt.src, tt.flavor)
			var d *diag.Error
			require.ErrorAs(t, err, &d)
			assert.Equal(t, tt.kind, d.Kind, d.Error())
			assert.Equal(t, tt.help, d.Help)
		})
	}
}

func TestUnsupportedLocatesCharacter(t *testing.T) {
	src := `'ab😀'`
	_, err := compile(src, emitter.DotNet)
	var d *diag.Error
	require.ErrorAs(t, err, &d)
	assert.Equal(t, "😀", src[d.Span.Start:d.Span.End])
	assert.Contains(t, d.Error(), "aren't supported in dotnet")
}

func TestEmitterIsReusable(t *testing.T) {
	src := `:x('a') ::x`
	r, err := parser.Parse(src)
	require.NoError(t, err)

	e := emitter.NewEmitter(src, emitter.Options{Flavor: emitter.PCRE})
	first, err := e.Emit(r)
	require.NoError(t, err)
	second, err := e.Emit(r)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRE2OutputCompiles(t *testing.T) {
	tests := []struct {
		src     string
		match   []string
		noMatch []string
	}{
		{
			src:     `<% :user([w '.']+) '@' :host([w]+ ('.' [w]+)*) %>`,
			match:   []string{"bob@example.com", "a.b@c"},
			noMatch: []string{"@example.com", "bob@", "bob@@x"},
		},
		{
			src:     `let octet = ['0'-'9']{1,3}; <% octet ('.' octet){3} %>`,
			match:   []string{"127.0.0.1"},
			noMatch: []string{"1.2.3", "1234.1.1.1"},
		},
		{
			src:     `<% !['a'-'c' '-']+ %>`,
			match:   []string{"xyz"},
			noMatch: []string{"xa", "-"},
		},
		{
			src:     `<% [Greek]+ ' ' ![.] %>`,
			match:   []string{"αβγ \n"},
			noMatch: []string{"abc \n", "αβγ x"},
		},
		{
			src:     `% 'is' %`,
			match:   []string{"this is it"},
			noMatch: []string{"this"},
		},
		{
			src:     `<% 'a'{2,3} lazy 'b'? '$' %>`,
			match:   []string{"aa$", "aaab$"},
			noMatch: []string{"a$", "aaaa$"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			out, err := compile(tt.src, emitter.RE2)
			require.NoError(t, err)

			re, err := regexp.Compile(out)
			require.NoError(t, err, out)
			for _, s := range tt.match {
				assert.True(t, re.MatchString(s), "%s should match %q", out, s)
			}
			for _, s := range tt.noMatch {
				assert.False(t, re.MatchString(s), "%s should not match %q", out, s)
			}
		})
	}
}

func TestParseFlavor(t *testing.T) {
	for _, f := range emitter.Flavors() {
		got, err := emitter.ParseFlavor(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}

	got, err := emitter.ParseFlavor("JavaScript")
	require.NoError(t, err)
	assert.Equal(t, emitter.JavaScript, got)

	got, err = emitter.ParseFlavor("Go")
	require.NoError(t, err)
	assert.Equal(t, emitter.RE2, got)

	_, err = emitter.ParseFlavor("pyhton")
	require.ErrorIs(t, err, emitter.ErrUnknownFlavor)
	assert.Contains(t, err.Error(), "did you mean `python`?")
}
