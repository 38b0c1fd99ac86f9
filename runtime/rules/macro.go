package rules

import (
	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/core/glaeml"
)

// Macro binds argument names to a body code block. Deploying it defines
// {ARG} with the raw argument expression and {_ARG_} with the expression
// evaluated at the deploy site, protected from re-expansion inside the
// body.
type Macro struct {
	Name          string
	ArgNames      []string
	Line          int
	RootCodeBlock *CodeBlock
}

// defineMacro registers a macro from its glaeml block element.
// Redefinition is a compile error.
func (g *RuleGroup) defineMacro(element *glaeml.Node) {
	if len(element.Args) == 0 {
		g.Log.Appendf(errlog.KindParse, element.Line, "'macro' without a name")
		return
	}
	name := element.Arg(0)
	if _, exists := g.Macros[name]; exists {
		g.Log.Appendf(errlog.KindCompile, element.Line, "macro '%s' is already defined", name)
		return
	}

	macro := &Macro{
		Name:          name,
		ArgNames:      append([]string(nil), element.Args[1:]...),
		Line:          element.Line,
		RootCodeBlock: &CodeBlock{},
	}
	g.Macros[name] = macro
	g.BuildCodeBlock(macro.RootCodeBlock, element)
}

// deploy instantiates a macro: argument variables are bound, then the body
// block is evaluated in place.
func (g *RuleGroup) deploy(term *DeployTerm, opts map[string]string) {
	macro, ok := g.Macros[term.MacroName]
	if !ok {
		g.Log.Appendf(errlog.KindCompile, term.Line, "macro '%s' is not defined", term.MacroName)
		return
	}
	if len(term.ArgExprs) != len(macro.ArgNames) {
		g.Log.Appendf(errlog.KindCompile, term.Line,
			"macro '%s' wants %d argument(s), got %d",
			macro.Name, len(macro.ArgNames), len(term.ArgExprs))
		return
	}

	for i, argName := range macro.ArgNames {
		expr := term.ArgExprs[i]
		g.AddVar(argName, expr, false)
		g.AddVar("_"+argName+"_", g.ApplyVars(term.Line, expr, true), false)
	}

	g.descendCodeBlock(macro.RootCodeBlock, opts)
}
