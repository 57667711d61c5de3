package parse

import (
	"strconv"
	"strings"
)

// Render produces the canonical textual form of a query. For any query q,
// Parse(Render(q)) yields an AST equal in meaning to q; Render does not
// reproduce the original source's whitespace, quote style, or redundant
// depth syntax.
func Render(q *Query) string {
	var b strings.Builder
	renderEntry(&b, q.Entry)
	if q.EntryFilter != nil {
		b.WriteByte(' ')
		renderFilter(&b, *q.EntryFilter)
	}
	for _, hop := range q.Hops {
		b.WriteByte(' ')
		renderHop(&b, hop)
	}
	return b.String()
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	b.WriteByte('"')
	return b.String()
}

func renderTypeList(types []string) string {
	return "type:" + strings.Join(types, ",")
}

func renderEntry(b *strings.Builder, e EntryPoint) {
	switch e.Kind {
	case EntrySemanticText:
		b.WriteString(quote(e.Text))
	case EntryExactID:
		b.WriteByte('@')
		b.WriteString(e.ID)
	case EntryTypeOnly:
		b.WriteString(renderTypeList(e.Types))
	case EntryTypePlusSemantic:
		b.WriteString(renderTypeList(e.Types))
		b.WriteByte('~')
		b.WriteString(quote(e.Text))
	}
}

func renderFilter(b *strings.Builder, f Filter) {
	switch f.Kind {
	case FilterSemanticText:
		b.WriteString(quote(f.Text))
	case FilterExactID:
		b.WriteByte('@')
		b.WriteString(f.ID)
	case FilterTypeSet:
		b.WriteString(renderTypeList(f.Types))
	case FilterTypeSetPlusSemantic:
		b.WriteString(renderTypeList(f.Types))
		b.WriteByte('~')
		b.WriteString(quote(f.Text))
	}
}

func renderDepth(b *strings.Builder, d DepthRange) {
	b.WriteByte('{')
	switch {
	case d.Min == d.Max:
		b.WriteString(strconv.Itoa(d.Min))
	case d.Unbounded():
		b.WriteString(strconv.Itoa(d.Min))
		b.WriteByte(',')
	default:
		b.WriteString(strconv.Itoa(d.Min))
		b.WriteByte(',')
		b.WriteString(strconv.Itoa(d.Max))
	}
	b.WriteByte('}')
}

func renderHop(b *strings.Builder, h Hop) {
	if h.Direction == DirOutgoing {
		b.WriteString("-[")
	} else {
		b.WriteString("<-[")
	}

	if h.Relation.Wildcard {
		b.WriteByte('*')
	} else {
		b.WriteString(strings.Join(h.Relation.Terms, ","))
	}
	b.WriteByte(']')

	if h.HasDepth {
		renderDepth(b, h.Depth)
	}

	if h.Direction == DirIncoming {
		b.WriteByte('-')
	} else {
		b.WriteString("->")
	}

	if h.Filter != nil {
		b.WriteByte(' ')
		renderFilter(b, *h.Filter)
	}
}
