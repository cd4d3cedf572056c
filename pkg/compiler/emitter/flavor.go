package emitter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/agenthands/rulex/pkg/compiler/diag"
)

// Flavor is a target regex engine.
type Flavor uint8

const (
	PCRE Flavor = iota
	Python
	Java
	JavaScript
	DotNet
	Ruby
	Rust
	RE2 // Go regexp
)

var flavorNames = [...]string{
	PCRE:       "pcre",
	Python:     "python",
	Java:       "java",
	JavaScript: "javascript",
	DotNet:     "dotnet",
	Ruby:       "ruby",
	Rust:       "rust",
	RE2:        "re2",
}

var flavorAliases = map[string]Flavor{
	"js":   JavaScript,
	".net": DotNet,
	"go":   RE2,
}

// ErrUnknownFlavor is wrapped by ParseFlavor for names it doesn't know.
var ErrUnknownFlavor = errors.New("unknown regex flavor")

func (f Flavor) String() string {
	if int(f) < len(flavorNames) {
		return flavorNames[f]
	}
	return fmt.Sprintf("Flavor(%d)", f)
}

// Flavors lists every supported flavor.
func Flavors() []Flavor {
	out := make([]Flavor, len(flavorNames))
	for i := range flavorNames {
		out[i] = Flavor(i)
	}
	return out
}

// ParseFlavor looks a flavor up by name, ignoring case.
func ParseFlavor(name string) (Flavor, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for i, n := range flavorNames {
		if n == key {
			return Flavor(i), nil
		}
	}
	if f, ok := flavorAliases[key]; ok {
		return f, nil
	}

	err := fmt.Errorf("%w: %q", ErrUnknownFlavor, name)
	if help := diag.Suggest(key, flavorNames[:]); help != "" {
		err = fmt.Errorf("%w (%s)", err, help)
	}
	return PCRE, err
}

func (f Flavor) supportsLookaround() bool {
	return f != Rust && f != RE2
}

func (f Flavor) supportsBackreferences() bool {
	return f != Rust && f != RE2
}

func (f Flavor) supportsUnicodeProperties() bool {
	return f != Python
}

// maxRepetition is the largest repetition bound the engine accepts, or 0
// when it has no limit worth checking.
func (f Flavor) maxRepetition() int {
	if f == RE2 {
		return 1000
	}
	return 0
}

// maxCodePoint is the largest code point the engine can match as a single
// character.
func (f Flavor) maxCodePoint() rune {
	if f == DotNet {
		return 0xFFFF
	}
	return 0x10FFFF
}

func (f Flavor) namedGroup(name string) string {
	switch f {
	case Python, RE2:
		return "(?P<" + name + ">"
	}
	return "(?<" + name + ">"
}

func (f Flavor) namedReference(name string) string {
	if f == Python {
		return "(?P=" + name + ")"
	}
	return `\k<` + name + ">"
}

func (f Flavor) numberedReference(n int) string {
	if f == Ruby {
		return fmt.Sprintf(`\k<%d>`, n)
	}
	return fmt.Sprintf(`\%d`, n)
}

// codePoint escapes a character by its code point.
func (f Flavor) codePoint(r rune) string {
	switch f {
	case Python:
		switch {
		case r <= 0xFF:
			return fmt.Sprintf(`\x%02X`, r)
		case r <= 0xFFFF:
			return fmt.Sprintf(`\u%04X`, r)
		}
		return fmt.Sprintf(`\U%08X`, r)
	case DotNet:
		if r <= 0xFF {
			return fmt.Sprintf(`\x%02X`, r)
		}
		return fmt.Sprintf(`\u%04X`, r)
	case JavaScript, Ruby:
		return fmt.Sprintf(`\u{%X}`, r)
	}
	return fmt.Sprintf(`\x{%X}`, r)
}

// property formats a Unicode general category or script.
func (f Flavor) property(name string, script, negated bool) string {
	p := `\p`
	if negated {
		p = `\P`
	}
	if script {
		switch f {
		case JavaScript:
			name = "Script=" + name
		case Java:
			name = "Is" + name
		}
	}
	return p + "{" + name + "}"
}

// metaInClass reports whether c needs a backslash inside brackets.
func (f Flavor) metaInClass(c rune) bool {
	switch c {
	case '\\', ']', '[', '^', '-':
		return true
	case '&', '~', '|':
		// Class set operators in several engines; JavaScript rejects the
		// escapes in unicode mode.
		return f != JavaScript
	}
	return false
}

func metaOutsideClass(c rune) bool {
	return strings.ContainsRune(`\.+*?()|[]{}^$`, c)
}
