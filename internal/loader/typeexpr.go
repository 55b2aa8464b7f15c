package loader

import (
	"fmt"
	"strings"
	"unicode"
)

// typeExpr is a parsed C# type expression such as
// "global::Acme.Box<int, List<string>>[]".
type typeExpr struct {
	// segments of a qualified name; nil for function pointers and tuples.
	segments []segment
	// raw holds the source text of constructs rendered verbatim.
	raw string
	fnptr    bool
	tuple    bool
	suffixes []suffix
}

type segment struct {
	name string
	args []*typeExpr
}

type suffix int

const (
	suffixArray suffix = iota
	suffixPointer
	suffixNullable
)

// path is the dotted name without generic arguments.
func (t *typeExpr) path() string {
	names := make([]string, len(t.segments))
	for i, s := range t.segments {
		names[i] = s.name
	}
	return strings.Join(names, ".")
}

func (t *typeExpr) last() segment {
	return t.segments[len(t.segments)-1]
}

type typeParser struct {
	src string
	pos int
}

func parseTypeExpr(src string) (*typeExpr, error) {
	p := &typeParser{src: src}
	t, err := p.parseType()
	if err != nil {
		return nil, fmt.Errorf("parse type %q: %w", src, err)
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, fmt.Errorf("parse type %q: unexpected %q at %d", src, p.src[p.pos:], p.pos)
	}
	return t, nil
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && unicode.IsSpace(rune(p.src[p.pos])) {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	p.skipSpace()
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *typeParser) expect(c byte) error {
	if p.peek() != c {
		return fmt.Errorf("expected %q at %d", c, p.pos)
	}
	p.pos++
	return nil
}

func (p *typeParser) parseType() (*typeExpr, error) {
	start := p.pos
	var t *typeExpr
	switch {
	case p.peek() == '(':
		if err := p.skipBalanced('(', ')'); err != nil {
			return nil, err
		}
		t = &typeExpr{tuple: true, raw: strings.TrimSpace(p.src[start:p.pos])}
	case strings.HasPrefix(p.src[p.pos:], "delegate*"):
		p.pos += len("delegate*")
		for p.peek() != '<' && p.pos < len(p.src) {
			p.pos++
		}
		if err := p.skipBalanced('<', '>'); err != nil {
			return nil, err
		}
		t = &typeExpr{fnptr: true, raw: strings.TrimSpace(p.src[start:p.pos])}
	default:
		segs, err := p.parseQualified()
		if err != nil {
			return nil, err
		}
		t = &typeExpr{segments: segs}
	}

	for {
		switch p.peek() {
		case '[':
			p.pos++
			for p.peek() == ',' {
				p.pos++
			}
			if err := p.expect(']'); err != nil {
				return nil, err
			}
			t.suffixes = append(t.suffixes, suffixArray)
		case '*':
			p.pos++
			t.suffixes = append(t.suffixes, suffixPointer)
		case '?':
			p.pos++
			t.suffixes = append(t.suffixes, suffixNullable)
		default:
			return t, nil
		}
	}
}

func (p *typeParser) parseQualified() ([]segment, error) {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], "global::") {
		p.pos += len("global::")
	}
	var segs []segment
	for {
		name := p.ident()
		if name == "" {
			return nil, fmt.Errorf("expected identifier at %d", p.pos)
		}
		seg := segment{name: name}
		if p.peek() == '<' {
			p.pos++
			for {
				arg, err := p.parseType()
				if err != nil {
					return nil, err
				}
				seg.args = append(seg.args, arg)
				if p.peek() == ',' {
					p.pos++
					continue
				}
				break
			}
			if err := p.expect('>'); err != nil {
				return nil, err
			}
		}
		segs = append(segs, seg)
		if p.peek() != '.' {
			return segs, nil
		}
		p.pos++
	}
}

func (p *typeParser) ident() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) {
		r := rune(p.src[p.pos])
		if r != '_' && r != '@' && !unicode.IsLetter(r) && !unicode.IsDigit(r) && r < 0x80 {
			break
		}
		p.pos++
	}
	return strings.TrimPrefix(p.src[start:p.pos], "@")
}

// skipBalanced consumes a bracketed run starting at the current open
// bracket, nesting included.
func (p *typeParser) skipBalanced(open, close byte) error {
	if err := p.expect(open); err != nil {
		return err
	}
	depth := 1
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case open:
			depth++
		case close:
			depth--
		}
		p.pos++
		if depth == 0 {
			return nil
		}
	}
	return fmt.Errorf("unbalanced %q", open)
}
