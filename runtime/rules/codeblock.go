package rules

import (
	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/core/glaeml"
)

// Term is one entry of a code block: a code line, a conditional, or a
// macro deployment.
type Term interface {
	termLine() int
}

// CodeLine is a single line of rule-group code (a variable declaration or
// a rule line), evaluated once transcription options are known.
type CodeLine struct {
	Expression string
	Line       int
}

func (c *CodeLine) termLine() int { return c.Line }

// IfTerm groups the branches of one if/elsif/else ladder
type IfTerm struct {
	ParentCodeBlock *CodeBlock
	Conds           []*IfCond
}

func (t *IfTerm) termLine() int {
	if len(t.Conds) > 0 {
		return t.Conds[0].Line
	}
	return 0
}

// IfCond is one branch of an if ladder: a boolean expression over
// transcription options and the block it guards.
type IfCond struct {
	Line           int
	Expression     string
	ParentIfTerm   *IfTerm
	ChildCodeBlock *CodeBlock
}

// DeployTerm instantiates a macro with argument expressions
type DeployTerm struct {
	MacroName string
	Line      int
	ArgExprs  []string
}

func (d *DeployTerm) termLine() int { return d.Line }

// CodeBlock is an ordered list of terms. Nested blocks remember the
// condition that guards them so elsif/else/endif can find their ladder.
type CodeBlock struct {
	Terms        []Term
	ParentIfCond *IfCond
}

func (b *CodeBlock) addTerm(t Term) {
	b.Terms = append(b.Terms, t)
}

func newIfCond(line int, expr string, ifTerm *IfTerm) *IfCond {
	cond := &IfCond{Line: line, Expression: expr, ParentIfTerm: ifTerm}
	cond.ChildCodeBlock = &CodeBlock{ParentIfCond: cond}
	ifTerm.Conds = append(ifTerm.Conds, cond)
	return cond
}

// BuildCodeBlock walks the children of a rules (or macro) element and
// builds the block tree: text children become code lines, if/elsif/else/
// endif shape the ladder, macro children define macros on the group, and
// deploy children become deployment terms.
func (g *RuleGroup) BuildCodeBlock(root *CodeBlock, element *glaeml.Node) {
	current := root

	for _, child := range element.Children {
		if child.IsText() {
			current.addTerm(&CodeLine{Expression: child.Text(), Line: child.Line})
			continue
		}

		switch child.Name {
		case "if":
			ifTerm := &IfTerm{ParentCodeBlock: current}
			current.addTerm(ifTerm)
			cond := newIfCond(child.Line, child.Arg(0), ifTerm)
			current = cond.ChildCodeBlock

		case "elsif":
			ifTerm := enclosingIfTerm(current)
			if ifTerm == nil {
				g.Log.Appendf(errlog.KindParse, child.Line, "'elsif' without an 'if'")
				return
			}
			cond := newIfCond(child.Line, child.Arg(0), ifTerm)
			current = cond.ChildCodeBlock

		case "else":
			ifTerm := enclosingIfTerm(current)
			if ifTerm == nil {
				g.Log.Appendf(errlog.KindParse, child.Line, "'else' without an 'if'")
				return
			}
			cond := newIfCond(child.Line, "true", ifTerm)
			current = cond.ChildCodeBlock

		case "endif":
			ifTerm := enclosingIfTerm(current)
			if ifTerm == nil {
				g.Log.Appendf(errlog.KindParse, child.Line, "'endif' without an 'if'")
				return
			}
			current = ifTerm.ParentCodeBlock

		case "macro":
			g.defineMacro(child)

		case "deploy":
			if len(child.Args) == 0 {
				g.Log.Appendf(errlog.KindParse, child.Line, "'deploy' without a macro name")
				continue
			}
			current.addTerm(&DeployTerm{
				MacroName: child.Arg(0),
				Line:      child.Line,
				ArgExprs:  child.Args[1:],
			})

		default:
			g.Log.Appendf(errlog.KindParse, child.Line,
				"unknown element '%s' in rules block", child.Name)
		}
	}

	if current != root {
		g.Log.Appendf(errlog.KindParse, element.Line, "unclosed 'if' in rules block")
	}
}

func enclosingIfTerm(block *CodeBlock) *IfTerm {
	if block.ParentIfCond == nil {
		return nil
	}
	return block.ParentIfCond.ParentIfTerm
}
