package emitter

import (
	"strings"

	"github.com/agenthands/rulex/pkg/compiler/ast"
	"github.com/agenthands/rulex/pkg/compiler/diag"
)

func (e *Emitter) emitClass(c *ast.CharClass) error {
	f := e.opts.Flavor
	if len(c.Items) == 1 && c.Items[0].Kind == ast.ClassDot && !c.Negated {
		e.write(".")
		return nil
	}

	set := newRangeSet()
	var named []namedClass
	for _, it := range c.Items {
		switch it.Kind {
		case ast.ClassChar, ast.ClassRange:
			last := it.First
			if it.Kind == ast.ClassRange {
				last = it.Last
			}
			if last > f.maxCodePoint() {
				return e.unsupported(it.Span, "code points above U+FFFF")
			}
			set.add(charRange{it.First, last})

		case ast.ClassDot:
			set.add(charRange{0, '\n' - 1})
			set.add(charRange{'\n' + 1, f.maxCodePoint()})

		case ast.ClassNamed:
			nc, ok := namedClasses[it.Name]
			if !ok {
				return diag.KindUnknownClass.At(it.Span).
					WithDetail("`%s`", it.Name).
					WithHelp(diag.Suggest(it.Name, classNames()))
			}
			switch nc.kind {
			case classRanges:
				for _, r := range nc.ranges {
					set.add(r)
				}
				continue
			case classCategory, classScript:
				if !f.supportsUnicodeProperties() {
					return e.unsupported(it.Span, "Unicode classes")
				}
				if nc.kind == classScript && f == DotNet {
					return e.unsupported(it.Span, "Unicode scripts")
				}
			}
			named = append(named, nc)
		}
	}

	if len(named) == 1 && set.empty() {
		e.write(e.namedEscape(named[0], c.Negated))
		return nil
	}

	ranges := set.ranges()
	if len(named) == 0 && !c.Negated && len(ranges) == 1 && ranges[0].first == ranges[0].last {
		e.emitChar(ranges[0].first)
		return nil
	}

	var b strings.Builder
	b.WriteByte('[')
	if c.Negated {
		b.WriteByte('^')
	}
	for _, r := range ranges {
		b.WriteString(e.escape(r.first, true))
		switch {
		case r.last == r.first:
		case r.last == r.first+1:
			b.WriteString(e.escape(r.last, true))
		default:
			b.WriteByte('-')
			b.WriteString(e.escape(r.last, true))
		}
	}
	for _, nc := range named {
		b.WriteString(e.namedEscape(nc, false))
	}
	b.WriteByte(']')
	e.write(b.String())
	return nil
}

func (e *Emitter) namedEscape(nc namedClass, negated bool) string {
	switch nc.kind {
	case classShorthand:
		if negated {
			return `\` + strings.ToUpper(nc.value)
		}
		return `\` + nc.value
	case classScript:
		return e.opts.Flavor.property(nc.value, true, negated)
	}
	return e.opts.Flavor.property(nc.value, false, negated)
}
