package rules

import (
	"strings"

	"github.com/glaemscribe/glaemgo/core/errlog"
)

// Sheaf is the alternation unit of a rule side: an ordered list of
// alternative fragments at one position. A pointer sheaf takes its
// fragments from a pointer variable and enumerates them in lockstep with
// the other pointer sheaves of the chain.
type Sheaf struct {
	Fragments  []string
	PointerVar string // "" for a plain sheaf
}

// IsPointer reports whether the sheaf came from a pointer variable
func (s *Sheaf) IsPointer() bool {
	return s.PointerVar != ""
}

// Arity is the number of alternatives the sheaf offers
func (s *Sheaf) Arity() int {
	return len(s.Fragments)
}

// SheafChain is the concatenation of sheaves forming one side of a rule
type SheafChain struct {
	Sheaves []*Sheaf
}

// SheafProto is the shape of one sheaf: how many alternatives it offers
// and whether it enumerates as part of the pointer lockstep unit.
type SheafProto struct {
	Arity   int
	Pointer bool
}

// Prototype returns the shape of the chain, one entry per sheaf
func (c *SheafChain) Prototype() []SheafProto {
	protos := make([]SheafProto, len(c.Sheaves))
	for i, s := range c.Sheaves {
		protos[i] = SheafProto{Arity: s.Arity(), Pointer: s.IsPointer()}
	}
	return protos
}

// ParseSheafChain parses a rule side into a chain. The expression must
// already have had its non-pointer variables applied; remaining {NAME}
// references are pointer variables and become pointer sheaves. Bracket
// groups become sheaves whose alternatives are comma separated; maximal
// bare runs become single-alternative sheaves.
func (g *RuleGroup) ParseSheafChain(line int, expr string) *SheafChain {
	chain := &SheafChain{}
	runes := []rune(expr)
	var bare strings.Builder

	flushBare := func() {
		text := strings.TrimSpace(bare.String())
		bare.Reset()
		if text == "" {
			return
		}
		for _, sheaf := range g.splitPointerRun(line, text) {
			chain.Sheaves = append(chain.Sheaves, sheaf)
		}
	}

	for i := 0; i < len(runes); i++ {
		if runes[i] != '[' {
			bare.WriteRune(runes[i])
			continue
		}
		flushBare()
		end := -1
		for j := i + 1; j < len(runes); j++ {
			if runes[j] == ']' {
				end = j
				break
			}
		}
		if end == -1 {
			g.Log.Appendf(errlog.KindParse, line, "in expression: %s: unterminated '['", expr)
			return chain
		}
		content := string(runes[i+1 : end])
		chain.Sheaves = append(chain.Sheaves, g.buildSheaf(line, content))
		i = end
	}
	flushBare()

	if len(chain.Sheaves) == 0 {
		g.Log.Appendf(errlog.KindParse, line, "empty rule side: %s", expr)
	}
	return chain
}

// buildSheaf turns the content of one bracket group into a sheaf
func (g *RuleGroup) buildSheaf(line int, content string) *Sheaf {
	trimmed := strings.TrimSpace(content)
	if v := g.pointerVarFor(trimmed); v != nil {
		return &Sheaf{Fragments: splitAlternatives(v.Value), PointerVar: v.Name}
	}
	if varNameRx.MatchString(trimmed) && g.containsPointerRef(trimmed) {
		g.Log.Appendf(errlog.KindCompile, line,
			"pointer variable must stand alone in its sheaf: [%s]", content)
	}
	return &Sheaf{Fragments: splitAlternatives(content)}
}

// splitPointerRun cuts a bare (bracketless) run into sheaves: each
// standalone pointer reference becomes its own pointer sheaf, the literal
// text around them becomes single-alternative sheaves.
func (g *RuleGroup) splitPointerRun(line int, text string) []*Sheaf {
	var sheaves []*Sheaf
	rest := text
	for rest != "" {
		loc := varNameRx.FindStringIndex(rest)
		if loc == nil {
			sheaves = append(sheaves, &Sheaf{Fragments: []string{rest}})
			break
		}
		ref := rest[loc[0]:loc[1]]
		v := g.pointerVarFor(ref)
		if v == nil {
			// Unknown name survived ApplyVars; it already reported the
			// resolution error, treat the reference as literal text.
			sheaves = append(sheaves, &Sheaf{Fragments: []string{rest}})
			break
		}
		if before := rest[:loc[0]]; before != "" {
			sheaves = append(sheaves, &Sheaf{Fragments: []string{before}})
		}
		sheaves = append(sheaves, &Sheaf{
			Fragments:  splitAlternatives(v.Value),
			PointerVar: v.Name,
		})
		rest = rest[loc[1]:]
	}
	return sheaves
}

// pointerVarFor returns the pointer variable referenced by a standalone
// {NAME} expression, nil otherwise.
func (g *RuleGroup) pointerVarFor(expr string) *RuleGroupVar {
	m := varNameRx.FindStringSubmatch(expr)
	if m == nil || m[0] != expr {
		return nil
	}
	v := g.Vars[m[1]]
	if v == nil || !v.IsPointer {
		return nil
	}
	return v
}

func (g *RuleGroup) containsPointerRef(expr string) bool {
	for _, m := range varNameRx.FindAllStringSubmatch(expr, -1) {
		if v := g.Vars[m[1]]; v != nil && v.IsPointer {
			return true
		}
	}
	return false
}

// splitAlternatives splits a pointer variable value or bracket content into
// its comma separated alternatives. Surrounding brackets on a pointer value
// are stripped first.
func splitAlternatives(value string) []string {
	trimmed := strings.TrimSpace(value)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}
