package rules

import (
	"strings"

	"github.com/glaemscribe/glaemgo/core/errlog"
)

const ruleSeparator = "-->"

// identitySchema marks a cross rule whose schema is a no-op; it is
// normalized away during finalization.
const identitySchema = "identity"

// RuleGroup is one named group of transcription rules: a variable table,
// macros, and a tree of code blocks evaluated once transcription options
// are known. Rules accumulate on finalization.
type RuleGroup struct {
	Name          string
	Log           *errlog.Log
	Vars          map[string]*RuleGroupVar
	Macros        map[string]*Macro
	RootCodeBlock *CodeBlock
	Rules         []*Rule

	finalized bool
}

// NewRuleGroup creates an empty rule group reporting into the given log
func NewRuleGroup(name string, log *errlog.Log) *RuleGroup {
	return &RuleGroup{
		Name:          name,
		Log:           log,
		Vars:          map[string]*RuleGroupVar{},
		Macros:        map[string]*Macro{},
		RootCodeBlock: &CodeBlock{},
	}
}

// Finalize evaluates the group's code blocks under the given transcription
// options, expanding every reachable rule line into sub-rules.
func (g *RuleGroup) Finalize(opts map[string]string) {
	if g.finalized {
		return
	}
	g.finalized = true
	g.descendCodeBlock(g.RootCodeBlock, opts)
}

// SubRules returns every sub-rule of every rule, in declaration order
func (g *RuleGroup) SubRules() []*SubRule {
	var out []*SubRule
	for _, rule := range g.Rules {
		out = append(out, rule.SubRules...)
	}
	return out
}

func (g *RuleGroup) descendCodeBlock(block *CodeBlock, opts map[string]string) {
	for _, term := range block.Terms {
		switch t := term.(type) {
		case *CodeLine:
			g.processCodeLine(t)
		case *IfTerm:
			g.processIfTerm(t, opts)
		case *DeployTerm:
			g.deploy(t, opts)
		}
	}
}

// processIfTerm evaluates the ladder's conditions in order; the first true
// branch contributes its block, the rest are pruned.
func (g *RuleGroup) processIfTerm(t *IfTerm, opts map[string]string) {
	for _, cond := range t.Conds {
		v, err := evalCondition(cond.Expression, opts)
		if err != nil {
			g.Log.Appendf(errlog.KindParse, cond.Line,
				"bad condition '%s': %s", cond.Expression, err.Error())
			return
		}
		if v {
			g.descendCodeBlock(cond.ChildCodeBlock, opts)
			return
		}
	}
}

func (g *RuleGroup) processCodeLine(code *CodeLine) {
	line := strings.TrimSpace(code.Expression)
	if line == "" {
		return
	}

	if m := pointerVarDeclRx.FindStringSubmatch(line); m != nil {
		g.AddVar(m[1], m[2], true)
		return
	}
	if m := varDeclRx.FindStringSubmatch(line); m != nil {
		g.AddVar(m[1], m[2], false)
		return
	}

	if strings.Contains(line, ruleSeparator) {
		g.processRuleLine(code.Line, line)
		return
	}

	g.Log.Appendf(errlog.KindParse, code.Line, "unparsable code line: %s", line)
}

// processRuleLine handles the two rule shapes: `SRC --> DST` and
// `SRC --> SCHEMA --> DST`.
func (g *RuleGroup) processRuleLine(line int, text string) {
	parts := strings.Split(text, ruleSeparator)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	var srcExpr, dstExpr, schemaExpr string
	switch len(parts) {
	case 2:
		srcExpr, dstExpr = parts[0], parts[1]
	case 3:
		srcExpr, schemaExpr, dstExpr = parts[0], parts[1], parts[2]
	default:
		g.Log.Appendf(errlog.KindParse, line, "malformed rule line: %s", text)
		return
	}
	if srcExpr == "" || dstExpr == "" {
		g.Log.Appendf(errlog.KindParse, line, "malformed rule line: %s", text)
		return
	}

	if schemaExpr != "" {
		schemaExpr = g.ApplyVars(line, schemaExpr, false)
		if schemaExpr == identitySchema {
			schemaExpr = ""
		}
	}

	srcResolved := g.ApplyVars(line, srcExpr, true)
	dstResolved := g.ApplyVars(line, dstExpr, true)

	rule := &Rule{
		Line:     line,
		Group:    g,
		SrcChain: g.ParseSheafChain(line, srcResolved),
		DstChain: g.ParseSheafChain(line, dstResolved),
	}
	rule.Finalize(schemaExpr)
	g.Rules = append(g.Rules, rule)
}
