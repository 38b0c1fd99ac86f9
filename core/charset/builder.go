package charset

import (
	"sort"
	"strconv"

	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/core/glaeml"
)

// FromDocument builds a charset from a parsed .cst document. All problems
// are accumulated; the returned charset is usable iff the error slice is
// empty.
func FromDocument(name string, doc *glaeml.Document) (*Charset, []*errlog.Error) {
	cs := New(name)
	var errs []*errlog.Error
	appendErr := func(line int, format string, args ...any) {
		errs = append(errs, errlog.Newf(errlog.KindCharset, line, format, args...))
	}

	for _, node := range doc.RootNode.Children {
		if !node.IsElement() {
			continue
		}
		switch node.Name {
		case "version":
			cs.Version = node.Arg(0)

		case "char":
			if len(node.Args) < 2 {
				appendErr(node.Line, "'char' wants a code point and at least one name")
				continue
			}
			code, err := strconv.ParseUint(node.Arg(0), 16, 32)
			if err != nil || code > 0x10FFFF {
				appendErr(node.Line, "invalid code point '%s'", node.Arg(0))
				continue
			}
			for _, charName := range node.Args[1:] {
				cs.Chars[charName] = string(rune(code))
			}

		case "virtual":
			v := buildVirtual(node, appendErr)
			if v != nil {
				cs.Virtuals[v.Name] = v
			}

		case "swap":
			if len(node.Args) < 2 {
				appendErr(node.Line, "'swap' wants a name and at least one target")
				continue
			}
			key := node.Arg(0)
			if cs.Swaps[key] == nil {
				cs.Swaps[key] = map[string]bool{}
			}
			for _, target := range node.Args[1:] {
				cs.Swaps[key][target] = true
			}

		case "sequence":
			if len(node.Args) < 2 {
				appendErr(node.Line, "'sequence' wants a name and at least one token")
				continue
			}
			cs.Sequences[node.Arg(0)] = append([]string(nil), node.Args[1:]...)

		default:
			appendErr(node.Line, "unknown charset element '%s'", node.Name)
		}
	}

	errs = append(errs, cs.validate()...)
	return cs, errs
}

func buildVirtual(node *glaeml.Node, appendErr func(int, string, ...any)) *VirtualChar {
	if len(node.Args) < 1 {
		appendErr(node.Line, "'virtual' wants a name")
		return nil
	}
	v := &VirtualChar{Name: node.Arg(0), Default: node.Arg(1)}

	for _, child := range node.Children {
		if !child.IsElement() {
			continue
		}
		switch child.Name {
		case "class":
			if len(child.Args) < 2 {
				appendErr(child.Line, "'class' wants a target and at least one trigger")
				continue
			}
			class := VirtualClass{Target: child.Arg(0), Triggers: map[string]bool{}}
			for _, trigger := range child.Args[1:] {
				class.Triggers[trigger] = true
			}
			v.Classes = append(v.Classes, class)
		case "reversed":
			v.Reversed = true
		case "default":
			v.Default = child.Arg(0)
		default:
			appendErr(child.Line, "unknown virtual element '%s'", child.Name)
		}
	}
	return v
}

// validate checks that virtual targets and sequence members resolve to
// known character names.
func (c *Charset) validate() []*errlog.Error {
	var errs []*errlog.Error
	for _, v := range c.Virtuals {
		for _, class := range v.Classes {
			if _, ok := c.Chars[class.Target]; !ok {
				errs = append(errs, errlog.Newf(errlog.KindCharset, 0,
					"virtual '%s': unknown class target '%s'", v.Name, class.Target))
			}
		}
		if v.Default != "" {
			if _, ok := c.Chars[v.Default]; !ok {
				errs = append(errs, errlog.Newf(errlog.KindCharset, 0,
					"virtual '%s': unknown default target '%s'", v.Name, v.Default))
			}
		}
	}
	for name, seq := range c.Sequences {
		for _, member := range seq {
			if _, ok := c.Chars[member]; !ok {
				if _, isVirtual := c.Virtuals[member]; !isVirtual {
					errs = append(errs, errlog.Newf(errlog.KindCharset, 0,
						"sequence '%s': unknown member '%s'", name, member))
				}
			}
		}
	}
	// Map iteration above is unordered; sort by message so repeated builds
	// of the same charset report identically.
	sort.Slice(errs, func(i, j int) bool { return errs[i].Message < errs[j].Message })
	return errs
}
