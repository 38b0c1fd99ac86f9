// Package parser builds a runtime mode from a parsed glaeml mode document.
package parser

import (
	"golang.org/x/mod/semver"

	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/core/glaeml"
	"github.com/glaemscribe/glaemgo/runtime/mode"
	"github.com/glaemscribe/glaemgo/runtime/rules"
	"github.com/glaemscribe/glaemgo/runtime/transcriber"
)

// CharsetRef is one `charset` declaration of a mode file: the charset name
// and whether it is the mode's default.
type CharsetRef struct {
	Name    string
	Default bool
	Line    int
}

// ModeFromDocument walks a parsed .glaem document and builds the mode.
// Structural problems land in the mode log; the caller decides whether to
// proceed to finalization. The returned charset references tell the caller
// which .cst files to load and attach.
func ModeFromDocument(name string, doc *glaeml.Document) (*mode.Mode, []CharsetRef) {
	m := mode.New(name)
	var charsets []CharsetRef

	for _, node := range doc.RootNode.Children {
		if !node.IsElement() {
			m.Log.Appendf(errlog.KindParse, node.Line, "stray text outside any block")
			continue
		}

		switch node.Name {
		case "version":
			m.Version = node.Arg(0)
			if !semver.IsValid("v" + m.Version) {
				m.Log.Appendf(errlog.KindParse, node.Line, "invalid version '%s'", m.Version)
			}

		case "language":
			m.Language = node.Arg(0)

		case "writing":
			m.Writing = node.Arg(0)

		case "option":
			if len(node.Args) < 2 {
				m.Log.Appendf(errlog.KindParse, node.Line, "'option' wants a name and a default value")
				continue
			}
			m.Options[node.Arg(0)] = mode.Option{
				Name:    node.Arg(0),
				Default: node.Arg(1),
				Line:    node.Line,
			}

		case "charset":
			if len(node.Args) == 0 {
				m.Log.Appendf(errlog.KindParse, node.Line, "'charset' wants a name")
				continue
			}
			charsets = append(charsets, CharsetRef{
				Name:    node.Arg(0),
				Default: node.Arg(1) == "true",
				Line:    node.Line,
			})

		case "preprocessor":
			buildPreprocessor(m, node)

		case "processor":
			buildProcessor(m, node)

		case "postprocessor":
			buildPostprocessor(m, node)

		default:
			m.Log.Appendf(errlog.KindParse, node.Line, "unknown element '%s'", node.Name)
		}
	}

	return m, charsets
}

// buildPreprocessor collects the ordered operator list of the preprocessor
// block. Operator arguments resolve {UNI_hhhh} escapes exactly once, here.
func buildPreprocessor(m *mode.Mode, block *glaeml.Node) {
	for _, child := range block.Children {
		if !child.IsElement() {
			continue
		}
		switch child.Name {
		case "substitute":
			pattern, replacement, ok := twoArgs(m, child)
			if !ok {
				continue
			}
			m.Pre.Ops = append(m.Pre.Ops, &transcriber.SubstituteOp{
				Pattern:     pattern,
				Replacement: replacement,
			})

		case "rx_substitute":
			pattern, replacement, ok := twoArgs(m, child)
			if !ok {
				continue
			}
			op, err := transcriber.NewRxSubstituteOp(pattern, replacement)
			if err != nil {
				m.Log.Appendf(errlog.KindParse, child.Line, "%s", err.Error())
				continue
			}
			m.Pre.Ops = append(m.Pre.Ops, op)

		case "downcase":
			m.Pre.Ops = append(m.Pre.Ops, &transcriber.DowncaseOp{})

		default:
			m.Log.Appendf(errlog.KindParse, child.Line,
				"unknown preprocessor operator '%s'", child.Name)
		}
	}
}

// twoArgs fetches the two operator arguments with unicode escapes resolved
func twoArgs(m *mode.Mode, node *glaeml.Node) (string, string, bool) {
	if len(node.Args) < 2 {
		m.Log.Appendf(errlog.KindParse, node.Line,
			"'%s' wants a pattern and a replacement", node.Name)
		return "", "", false
	}
	first, err := transcriber.ResolveUnicodeEscapes(node.Arg(0))
	if err != nil {
		m.Log.Appendf(errlog.KindResolution, node.Line, "%s", err.Error())
		return "", "", false
	}
	second, err := transcriber.ResolveUnicodeEscapes(node.Arg(1))
	if err != nil {
		m.Log.Appendf(errlog.KindResolution, node.Line, "%s", err.Error())
		return "", "", false
	}
	return first, second, true
}

// buildProcessor collects the rule groups of the processor block
func buildProcessor(m *mode.Mode, block *glaeml.Node) {
	for _, child := range block.Children {
		if !child.IsElement() {
			continue
		}
		if child.Name != "rules" {
			m.Log.Appendf(errlog.KindParse, child.Line,
				"unknown element '%s' in processor block", child.Name)
			continue
		}
		if len(child.Args) == 0 {
			m.Log.Appendf(errlog.KindParse, child.Line, "'rules' wants a group name")
			continue
		}
		group := rules.NewRuleGroup(child.Arg(0), m.Log)
		group.BuildCodeBlock(group.RootCodeBlock, child)
		m.AddRuleGroup(group)
	}
}

// buildPostprocessor collects the ordered operator list of the
// postprocessor block.
func buildPostprocessor(m *mode.Mode, block *glaeml.Node) {
	for _, child := range block.Children {
		if !child.IsElement() {
			continue
		}
		switch child.Name {
		case "charset_resolver":
			m.Post.Ops = append(m.Post.Ops, &transcriber.CharsetResolverOp{})
		default:
			m.Log.Appendf(errlog.KindParse, child.Line,
				"unknown postprocessor operator '%s'", child.Name)
		}
	}
}
