package emitter

import (
	"maps"
	"slices"

	"github.com/emirpasic/gods/v2/trees/redblacktree"
)

type classKind uint8

const (
	classShorthand classKind = iota // \w \d \s
	classCategory                   // Unicode general category
	classScript                     // Unicode script
	classRanges                     // fixed set of code points
)

type namedClass struct {
	kind   classKind
	value  string // shorthand letter, category or script name
	ranges []charRange
}

type charRange struct{ first, last rune }

func single(r rune) charRange { return charRange{r, r} }

var namedClasses = map[string]namedClass{
	"w":     {kind: classShorthand, value: "w"},
	"word":  {kind: classShorthand, value: "w"},
	"d":     {kind: classShorthand, value: "d"},
	"digit": {kind: classShorthand, value: "d"},
	"s":     {kind: classShorthand, value: "s"},
	"space": {kind: classShorthand, value: "s"},

	"n": {kind: classRanges, ranges: []charRange{single('\n')}},
	"r": {kind: classRanges, ranges: []charRange{single('\r')}},
	"t": {kind: classRanges, ranges: []charRange{single('\t')}},
	"f": {kind: classRanges, ranges: []charRange{single('\f')}},
	"v": {kind: classRanges, ranges: []charRange{single('\v')}},
	"a": {kind: classRanges, ranges: []charRange{single('\a')}},
	"e": {kind: classRanges, ranges: []charRange{single(0x1B)}},

	"h":           horizSpace,
	"horiz_space": horizSpace,
	"vert_space": {kind: classRanges, ranges: []charRange{
		{'\n', '\r'}, single(0x85), {0x2028, 0x2029},
	}},

	"ascii":        {kind: classRanges, ranges: []charRange{{0, 0x7F}}},
	"ascii_alpha":  {kind: classRanges, ranges: []charRange{{'A', 'Z'}, {'a', 'z'}}},
	"ascii_alnum":  {kind: classRanges, ranges: []charRange{{'0', '9'}, {'A', 'Z'}, {'a', 'z'}}},
	"ascii_blank":  {kind: classRanges, ranges: []charRange{single('\t'), single(' ')}},
	"ascii_cntrl":  {kind: classRanges, ranges: []charRange{{0, 0x1F}, single(0x7F)}},
	"ascii_digit":  {kind: classRanges, ranges: []charRange{{'0', '9'}}},
	"ascii_graph":  {kind: classRanges, ranges: []charRange{{'!', '~'}}},
	"ascii_lower":  {kind: classRanges, ranges: []charRange{{'a', 'z'}}},
	"ascii_print":  {kind: classRanges, ranges: []charRange{{' ', '~'}}},
	"ascii_punct":  {kind: classRanges, ranges: []charRange{{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'}}},
	"ascii_space":  {kind: classRanges, ranges: []charRange{{'\t', '\r'}, single(' ')}},
	"ascii_upper":  {kind: classRanges, ranges: []charRange{{'A', 'Z'}}},
	"ascii_word":   {kind: classRanges, ranges: []charRange{{'0', '9'}, {'A', 'Z'}, single('_'), {'a', 'z'}}},
	"ascii_xdigit": {kind: classRanges, ranges: []charRange{{'0', '9'}, {'A', 'F'}, {'a', 'f'}}},
}

var horizSpace = namedClass{kind: classRanges, ranges: []charRange{
	single('\t'), single(' '), single(0xA0), single(0x1680), {0x2000, 0x200A},
	single(0x202F), single(0x205F), single(0x3000),
}}

// General categories, long name to abbreviation.
var categories = map[string]string{
	"Letter":                "L",
	"Lowercase_Letter":      "Ll",
	"Uppercase_Letter":      "Lu",
	"Titlecase_Letter":      "Lt",
	"Modifier_Letter":       "Lm",
	"Other_Letter":          "Lo",
	"Mark":                  "M",
	"Nonspacing_Mark":       "Mn",
	"Spacing_Mark":          "Mc",
	"Enclosing_Mark":        "Me",
	"Number":                "N",
	"Decimal_Number":        "Nd",
	"Letter_Number":         "Nl",
	"Other_Number":          "No",
	"Punctuation":           "P",
	"Connector_Punctuation": "Pc",
	"Dash_Punctuation":      "Pd",
	"Open_Punctuation":      "Ps",
	"Close_Punctuation":     "Pe",
	"Initial_Punctuation":   "Pi",
	"Final_Punctuation":     "Pf",
	"Other_Punctuation":     "Po",
	"Symbol":                "S",
	"Math_Symbol":           "Sm",
	"Currency_Symbol":       "Sc",
	"Modifier_Symbol":       "Sk",
	"Other_Symbol":          "So",
	"Separator":             "Z",
	"Space_Separator":       "Zs",
	"Line_Separator":        "Zl",
	"Paragraph_Separator":   "Zp",
	"Other":                 "C",
	"Control":               "Cc",
	"Format":                "Cf",
	"Private_Use":           "Co",
	"Surrogate":             "Cs",
}

var scripts = []string{
	"Arabic", "Armenian", "Bengali", "Cherokee", "Common", "Cyrillic",
	"Devanagari", "Ethiopic", "Georgian", "Greek", "Gujarati", "Gurmukhi",
	"Han", "Hangul", "Hebrew", "Hiragana", "Inherited", "Kannada", "Katakana",
	"Khmer", "Lao", "Latin", "Malayalam", "Mongolian", "Myanmar", "Sinhala",
	"Tamil", "Telugu", "Thaana", "Thai", "Tibetan",
}

func init() {
	for long, short := range categories {
		c := namedClass{kind: classCategory, value: short}
		namedClasses[long] = c
		namedClasses[short] = c
	}
	for _, s := range scripts {
		namedClasses[s] = namedClass{kind: classScript, value: s}
	}
}

// classNames returns every known class name, sorted.
func classNames() []string {
	return slices.Sorted(maps.Keys(namedClasses))
}

// rangeSet collects code point ranges keyed by their first code point.
type rangeSet struct {
	tree *redblacktree.Tree[rune, rune]
}

func newRangeSet() *rangeSet {
	return &rangeSet{tree: redblacktree.New[rune, rune]()}
}

func (s *rangeSet) add(r charRange) {
	if last, ok := s.tree.Get(r.first); ok && last >= r.last {
		return
	}
	s.tree.Put(r.first, r.last)
}

func (s *rangeSet) empty() bool {
	return s.tree.Empty()
}

// ranges returns the set as sorted ranges with overlapping and adjacent
// ranges merged.
func (s *rangeSet) ranges() []charRange {
	var out []charRange
	it := s.tree.Iterator()
	for it.Next() {
		r := charRange{it.Key(), it.Value()}
		if n := len(out); n > 0 && r.first <= out[n-1].last+1 {
			out[n-1].last = max(out[n-1].last, r.last)
			continue
		}
		out = append(out, r)
	}
	return out
}
