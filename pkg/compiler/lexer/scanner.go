package lexer

import (
	"iter"
	"strings"
	"unicode/utf8"
)

// Scanner performs lexical analysis on rulex source.
type Scanner struct {
	source string
	cursor int
}

// NewScanner creates a new scanner for the given source.
func NewScanner(source string) *Scanner {
	return &Scanner{source: source}
}

// Reset re-initializes the scanner with new source for reuse.
func (s *Scanner) Reset(source string) {
	s.source = source
	s.cursor = 0
}

// Spanned lexes source lazily, yielding every token with its byte range.
// The EOF token is not yielded.
func Spanned(source string) iter.Seq2[Token, Span] {
	return func(yield func(Token, Span) bool) {
		s := NewScanner(source)
		for {
			tok, span := s.Next()
			if tok.Kind == KindEOF || !yield(tok, span) {
				return
			}
		}
	}
}

// Next returns the next token and its span. Whitespace and comments are
// skipped; at the end of input it returns KindEOF with an empty span.
func (s *Scanner) Next() (Token, Span) {
	s.skipTrivia()

	if s.cursor >= len(s.source) {
		return Token{Kind: KindEOF}, Span{Start: len(s.source), End: len(s.source)}
	}

	start := s.cursor
	ch := s.source[s.cursor]

	switch ch {
	case '\'', '"':
		return s.scanString()
	case '\\':
		return s.scanBackslash()
	case '(':
		if s.peek() == '?' {
			return s.scanGroupSyntax()
		}
		return s.emit(KindOpenParen, 1)
	case '<':
		switch s.peek() {
		case '%':
			return s.emit(KindStart, 2)
		case '<':
			return s.emit(KindLookBehind, 2)
		}
		return s.emit(KindError, 1)
	case '>':
		if s.peek() == '>' {
			return s.emit(KindLookAhead, 2)
		}
		return s.emit(KindError, 1)
	case '%':
		if s.peek() == '>' {
			return s.emit(KindEnd, 2)
		}
		return s.emit(KindPercent, 1)
	case ':':
		if s.peek() == ':' {
			return s.emit(KindDoubleColon, 2)
		}
		return s.emit(KindColon, 1)
	case '^':
		return s.emitMsg(MsgCaret, 1)
	case '$':
		return s.emitMsg(MsgDollar, 1)
	}

	if kind, ok := punctuation[ch]; ok {
		return s.emit(kind, 1)
	}

	if isDigit(ch) {
		return s.scanNumber()
	}

	if ch == 'U' && s.peek() == '+' && s.cursor+2 < len(s.source) && isHex(s.source[s.cursor+2]) {
		return s.scanCodePoint()
	}

	if isIdentStart(ch) {
		return s.scanIdentifier()
	}

	_, width := utf8.DecodeRuneInString(s.source[start:])
	return s.emit(KindError, width)
}

var punctuation = map[byte]Kind{
	'!': KindNot,
	')': KindCloseParen,
	'[': KindOpenBracket,
	']': KindCloseBracket,
	'{': KindOpenBrace,
	'}': KindCloseBrace,
	',': KindComma,
	'|': KindPipe,
	'*': KindStar,
	'+': KindPlus,
	'?': KindQuestionMark,
	'-': KindDash,
	'.': KindDot,
	'=': KindEquals,
	';': KindSemicolon,
}

func (s *Scanner) emit(kind Kind, width int) (Token, Span) {
	start := s.cursor
	s.cursor += width
	return Token{Kind: kind}, Span{Start: start, End: s.cursor}
}

func (s *Scanner) emitMsg(msg ErrorMsg, width int) (Token, Span) {
	start := s.cursor
	s.cursor += width
	return Token{Kind: KindErrorMsg, Msg: msg}, Span{Start: start, End: s.cursor}
}

func (s *Scanner) skipTrivia() {
	for s.cursor < len(s.source) {
		switch s.source[s.cursor] {
		case ' ', '\t', '\r', '\n', '\f':
			s.cursor++
		case '#':
			for s.cursor < len(s.source) && s.source[s.cursor] != '\n' {
				s.cursor++
			}
		default:
			return
		}
	}
}

// scanString handles 'raw' and "escaped" strings. Only double-quoted
// strings may contain backslash escapes.
func (s *Scanner) scanString() (Token, Span) {
	start := s.cursor
	quote := s.source[s.cursor]
	s.cursor++ // Skip opening quote
	for s.cursor < len(s.source) && s.source[s.cursor] != quote {
		if quote == '"' && s.source[s.cursor] == '\\' && s.cursor+1 < len(s.source) {
			s.cursor++
		}
		s.cursor++
	}

	if s.cursor >= len(s.source) {
		s.cursor = len(s.source)
		return Token{Kind: KindErrorMsg, Msg: MsgUnclosedString}, Span{Start: start, End: s.cursor}
	}

	s.cursor++ // Skip closing quote
	return Token{Kind: KindString}, Span{Start: start, End: s.cursor}
}

var groupSyntax = []struct {
	prefix string
	msg    ErrorMsg
}{
	{"(?:", MsgGroupNonCapture},
	{"(?=", MsgGroupLookahead},
	{"(?!", MsgGroupLookaheadNeg},
	{"(?<=", MsgGroupLookbehind},
	{"(?<!", MsgGroupLookbehindNeg},
	{"(?P<", MsgGroupNamedCapture},
	{"(?<", MsgGroupNamedCapture},
}

func (s *Scanner) scanGroupSyntax() (Token, Span) {
	rest := s.source[s.cursor:]
	for _, g := range groupSyntax {
		if strings.HasPrefix(rest, g.prefix) {
			return s.emitMsg(g.msg, len(g.prefix))
		}
	}
	return s.emitMsg(MsgGroupOther, 2)
}

func (s *Scanner) scanBackslash() (Token, Span) {
	start := s.cursor
	s.cursor++ // Skip '\'
	if s.cursor >= len(s.source) {
		return Token{Kind: KindErrorMsg, Msg: MsgBackslash}, Span{Start: start, End: s.cursor}
	}

	ch, width := utf8.DecodeRuneInString(s.source[s.cursor:])
	s.cursor += width

	msg := MsgBackslash
	switch ch {
	case 'u', 'x', 'U':
		msg = MsgBackslashUnicode
		if !s.skipBraced() {
			for s.cursor < len(s.source) && isHex(s.source[s.cursor]) {
				s.cursor++
			}
		}
	case 'p', 'P':
		msg = MsgBackslashProperty
		if !s.skipBraced() && s.cursor < len(s.source) && isIdentStart(s.source[s.cursor]) {
			s.cursor++
		}
	}
	return Token{Kind: KindErrorMsg, Msg: msg}, Span{Start: start, End: s.cursor}
}

// skipBraced consumes a {...} group if one starts at the cursor and is closed.
func (s *Scanner) skipBraced() bool {
	if s.cursor >= len(s.source) || s.source[s.cursor] != '{' {
		return false
	}
	end := strings.IndexByte(s.source[s.cursor:], '}')
	if end < 0 {
		return false
	}
	s.cursor += end + 1
	return true
}

func (s *Scanner) scanNumber() (Token, Span) {
	start := s.cursor
	for s.cursor < len(s.source) && isDigit(s.source[s.cursor]) {
		s.cursor++
	}
	return Token{Kind: KindNumber}, Span{Start: start, End: s.cursor}
}

func (s *Scanner) scanCodePoint() (Token, Span) {
	start := s.cursor
	s.cursor += 2 // Skip 'U+'
	for s.cursor < len(s.source) && isHex(s.source[s.cursor]) {
		s.cursor++
	}
	return Token{Kind: KindCodePoint}, Span{Start: start, End: s.cursor}
}

func (s *Scanner) scanIdentifier() (Token, Span) {
	start := s.cursor
	for s.cursor < len(s.source) && (isIdentStart(s.source[s.cursor]) || isDigit(s.source[s.cursor])) {
		s.cursor++
	}
	return Token{Kind: KindIdentifier}, Span{Start: start, End: s.cursor}
}

func (s *Scanner) peek() byte {
	if s.cursor+1 >= len(s.source) {
		return 0
	}
	return s.source[s.cursor+1]
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHex(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}
