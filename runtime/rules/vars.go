package rules

import (
	"regexp"
	"strconv"

	"github.com/glaemscribe/glaemgo/core/errlog"
)

// maxVarPasses bounds variable expansion; running out of passes while still
// substituting means the variable table is cyclic.
const maxVarPasses = 32

var (
	varNameRx        = regexp.MustCompile(`\{([0-9A-Z_]+)\}`)
	unicodeVarRx     = regexp.MustCompile(`^UNI_([0-9A-F]{1,6})$`)
	varDeclRx        = regexp.MustCompile(`^\s*\{([0-9A-Z_]+)\}\s+===\s+(.+?)\s*$`)
	pointerVarDeclRx = regexp.MustCompile(`^\s*\{([0-9A-Z_]+)\}\s+<=>\s+(.+?)\s*$`)
)

// RuleGroupVar is one variable of a rule group. Pointer variables are not
// substituted textually; they enumerate one alternative at a time, in
// lockstep with the other pointer variables of the same rule side.
type RuleGroupVar struct {
	Name      string
	Value     string
	IsPointer bool
}

// AddVar defines or overwrites a variable in the group
func (g *RuleGroup) AddVar(name, value string, isPointer bool) {
	g.Vars[name] = &RuleGroupVar{Name: name, Value: value, IsPointer: isPointer}
}

// ApplyVars resolves {NAME} references in an expression. Non-pointer
// variables are substituted repeatedly until a pass changes nothing;
// pointer variables are left in place for the sheaf parser. {UNI_hhhh}
// escapes resolve to their code point when allowUnicode is set and are a
// resolution error otherwise.
func (g *RuleGroup) ApplyVars(line int, expr string, allowUnicode bool) string {
	ret := expr
	reported := map[string]bool{}

	for pass := 0; ; pass++ {
		if pass == maxVarPasses {
			g.Log.Appendf(errlog.KindResolution, line,
				"in expression: %s: variable expansion did not settle after %d passes (cyclic definition?)",
				expr, maxVarPasses)
			return ret
		}
		replaced := false
		ret = varNameRx.ReplaceAllStringFunc(ret, func(capture string) string {
			name := capture[1 : len(capture)-1]

			if v, ok := g.Vars[name]; ok {
				if v.IsPointer {
					return capture
				}
				replaced = true
				return v.Value
			}

			if m := unicodeVarRx.FindStringSubmatch(name); m != nil {
				if !allowUnicode {
					if !reported[name] {
						reported[name] = true
						g.Log.Appendf(errlog.KindResolution, line,
							"in expression: %s: making wrong use of unicode variable: %s; unicode vars are only valid in rule sources, variable definitions and destination literals",
							expr, capture)
					}
					return capture
				}
				code, err := strconv.ParseUint(m[1], 16, 32)
				if err != nil || code > 0x10FFFF {
					if !reported[name] {
						reported[name] = true
						g.Log.Appendf(errlog.KindResolution, line,
							"in expression: %s: unicode variable out of range: %s", expr, capture)
					}
					return capture
				}
				return string(rune(code))
			}

			if !reported[name] {
				reported[name] = true
				g.Log.Appendf(errlog.KindResolution, line,
					"in expression: %s: failed to evaluate variable: %s", expr, capture)
			}
			return capture
		})
		if !replaced {
			return ret
		}
	}
}
