package lexer

import "strconv"

// Kind represents the type of token identified by the scanner.
type Kind uint8

const (
	KindEOF Kind = iota
	KindError
	KindErrorMsg // Error carrying an ErrorMsg
	KindStart    // <%
	KindEnd      // %>
	KindPercent  // %
	KindLookAhead
	KindLookBehind
	KindNot         // !
	KindColon       // :
	KindDoubleColon // ::
	KindOpenParen
	KindCloseParen
	KindOpenBracket
	KindCloseBracket
	KindOpenBrace
	KindCloseBrace
	KindComma
	KindPipe
	KindStar
	KindPlus
	KindQuestionMark
	KindDash
	KindDot
	KindEquals
	KindSemicolon
	KindString
	KindCodePoint // U+1F600
	KindNumber
	KindIdentifier
)

var kindNames = [...]string{
	KindEOF:          "EOF",
	KindError:        "Error",
	KindErrorMsg:     "ErrorMsg",
	KindStart:        "`<%`",
	KindEnd:          "`%>`",
	KindPercent:      "`%`",
	KindLookAhead:    "`>>`",
	KindLookBehind:   "`<<`",
	KindNot:          "`!`",
	KindColon:        "`:`",
	KindDoubleColon:  "`::`",
	KindOpenParen:    "`(`",
	KindCloseParen:   "`)`",
	KindOpenBracket:  "`[`",
	KindCloseBracket: "`]`",
	KindOpenBrace:    "`{`",
	KindCloseBrace:   "`}`",
	KindComma:        "`,`",
	KindPipe:         "`|`",
	KindStar:         "`*`",
	KindPlus:         "`+`",
	KindQuestionMark: "`?`",
	KindDash:         "`-`",
	KindDot:          "`.`",
	KindEquals:       "`=`",
	KindSemicolon:    "`;`",
	KindString:       "string",
	KindCodePoint:    "code point",
	KindNumber:       "number",
	KindIdentifier:   "identifier",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// ErrorMsg explains why a piece of source could not be tokenized.
type ErrorMsg uint8

const (
	MsgNone ErrorMsg = iota
	MsgUnclosedString
	MsgCaret
	MsgDollar
	MsgGroupNonCapture
	MsgGroupLookahead
	MsgGroupLookaheadNeg
	MsgGroupLookbehind
	MsgGroupLookbehindNeg
	MsgGroupNamedCapture
	MsgGroupOther
	MsgBackslash
	MsgBackslashUnicode
	MsgBackslashProperty
)

var errorMsgs = [...]string{
	MsgNone:               "",
	MsgUnclosedString:     "This string literal doesn't have a closing quote",
	MsgCaret:              "`^` is not supported. Use `<%` to match the start of the string",
	MsgDollar:             "`$` is not supported. Use `%>` to match the end of the string",
	MsgGroupNonCapture:    "Non-capturing groups are just parentheses: `(...)`. Capturing groups use the `:(...)` syntax",
	MsgGroupLookahead:     "Lookahead uses the `>>` syntax. For example, `>> 'bob'` matches if the position is followed by bob",
	MsgGroupLookaheadNeg:  "Negative lookahead uses the `!>>` syntax. For example, `!>> 'bob'` matches if the position is not followed by bob",
	MsgGroupLookbehind:    "Lookbehind uses the `<<` syntax. For example, `<< 'bob'` matches if the position is preceded with bob",
	MsgGroupLookbehindNeg: "Negative lookbehind uses the `!<<` syntax. For example, `!<< 'bob'` matches if the position is not preceded with bob",
	MsgGroupNamedCapture:  "Named capturing groups use the `:name(...)` syntax",
	MsgGroupOther:         "This syntax is not supported",
	MsgBackslash:          "Backslash escapes are not supported. Use a string, a code point or a character class like `[w]` instead",
	MsgBackslashUnicode:   "Unicode escapes are not supported. Use a code point like `U+FFEF` instead",
	MsgBackslashProperty:  "Unicode properties use character classes, for example `[Greek]` or `![Letter]`",
}

func (m ErrorMsg) String() string {
	if int(m) < len(errorMsgs) {
		return errorMsgs[m]
	}
	return "ErrorMsg(" + strconv.Itoa(int(m)) + ")"
}

// Token is a classified lexical unit. Msg is only set for KindErrorMsg.
type Token struct {
	Kind Kind
	Msg  ErrorMsg
}

// IsError reports whether the token is one of the two error sentinels.
func (t Token) IsError() bool {
	return t.Kind == KindError || t.Kind == KindErrorMsg
}

func (t Token) String() string {
	if t.Kind == KindErrorMsg {
		return "ErrorMsg(" + t.Msg.String() + ")"
	}
	return t.Kind.String()
}

// Span is a half-open byte range [Start, End) into the source.
type Span struct {
	Start, End int
}

// Len is the span's length in bytes.
func (s Span) Len() int { return s.End - s.Start }

// IsEmpty reports a zero-width span, as used for the end of input.
func (s Span) IsEmpty() bool { return s.Start == s.End }

func (s Span) String() string {
	return strconv.Itoa(s.Start) + ".." + strconv.Itoa(s.End)
}

// Join returns the smallest span covering both s and o.
func (s Span) Join(o Span) Span {
	return Span{Start: min(s.Start, o.Start), End: max(s.End, o.End)}
}

// Record pairs a token with the bytes it was produced from.
type Record struct {
	Token Token
	Span  Span
}
