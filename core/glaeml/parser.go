package glaeml

import (
	"strings"

	"github.com/glaemscribe/glaemgo/core/errlog"
)

// Parse parses glaeml source text into a document tree. Parsing never stops
// at the first problem; all errors are returned together with whatever tree
// could be built.
func Parse(src string) (*Document, []*errlog.Error) {
	p := &parser{
		root: &Node{Type: ElementNode, Name: "glaeml", Line: 0},
	}
	p.stack = []*Node{p.root}

	for i, raw := range strings.Split(src, "\n") {
		p.parseLine(i+1, raw)
	}

	if len(p.stack) > 1 {
		open := p.stack[len(p.stack)-1]
		p.errorf(open.Line, "block element '%s' is never closed", open.Name)
	}

	return &Document{RootNode: p.root}, p.errors
}

type parser struct {
	root   *Node
	stack  []*Node
	errors []*errlog.Error
}

func (p *parser) errorf(line int, format string, args ...any) {
	p.errors = append(p.errors, errlog.Newf(errlog.KindParse, line, format, args...))
}

func (p *parser) top() *Node {
	return p.stack[len(p.stack)-1]
}

func (p *parser) parseLine(line int, raw string) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		return
	case strings.HasPrefix(trimmed, `\**`):
		// comment line
		return
	case strings.HasPrefix(trimmed, `\`):
		p.parseElementLine(line, trimmed[1:])
	default:
		// Free text belongs to the enclosing block, one node per line.
		p.top().Children = append(p.top().Children, &Node{
			Type: TextNode,
			Args: []string{raw},
			Line: line,
		})
	}
}

func (p *parser) parseElementLine(line int, rest string) {
	fields, ok := splitArgs(rest)
	if !ok {
		p.errorf(line, "unterminated quoted argument")
		return
	}
	if len(fields) == 0 {
		p.errorf(line, "empty element")
		return
	}

	name, args := fields[0], fields[1:]
	switch name {
	case "beg":
		if len(args) == 0 {
			p.errorf(line, "'beg' without an element name")
			return
		}
		node := &Node{Type: ElementNode, Name: args[0], Args: args[1:], Line: line}
		p.top().Children = append(p.top().Children, node)
		p.stack = append(p.stack, node)
	case "end":
		if len(p.stack) == 1 {
			p.errorf(line, "'end' without a matching 'beg'")
			return
		}
		p.stack = p.stack[:len(p.stack)-1]
	default:
		p.top().Children = append(p.top().Children, &Node{
			Type: ElementNode,
			Name: name,
			Args: args,
			Line: line,
		})
	}
}

// splitArgs splits an element line into whitespace separated fields; double
// quotes group a field and may contain spaces. Returns false on an
// unterminated quote.
func splitArgs(s string) ([]string, bool) {
	var fields []string
	var buf strings.Builder
	inQuote := false
	flush := func() {
		if buf.Len() > 0 {
			fields = append(fields, buf.String())
			buf.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				// closing quote: emit even when empty
				fields = append(fields, buf.String())
				buf.Reset()
				inQuote = false
			} else {
				flush()
				inQuote = true
			}
		case !inQuote && (r == ' ' || r == '\t'):
			flush()
		default:
			buf.WriteRune(r)
		}
	}
	if inQuote {
		return nil, false
	}
	flush()
	return fields, true
}
