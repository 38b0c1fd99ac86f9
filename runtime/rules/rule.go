package rules

import (
	"strconv"
	"strings"

	"github.com/glaemscribe/glaemgo/core/errlog"
)

// nullToken marks an empty destination in rule text; it contributes no
// output tokens.
const nullToken = "NULL"

// SubRule is a fully concrete (source tokens, destination groups, cross
// schema) triple derived from a rule by enumeration. Source tokens are
// single characters; destination groups hold the output tokens contributed
// by each source sheaf, keyed by source position so a cross schema can
// reorder them at match time.
type SubRule struct {
	Rule        *Rule
	Src         []string
	DstGroups   [][]string
	CrossSchema []int
}

// SrcText returns the source combination as one string
func (s *SubRule) SrcText() string {
	return strings.Join(s.Src, "")
}

// Replacement flattens the destination groups into the token stream the
// match emits, applying the cross schema when present.
func (s *SubRule) Replacement() []string {
	var out []string
	if s.CrossSchema == nil {
		for _, group := range s.DstGroups {
			out = append(out, group...)
		}
		return out
	}
	for _, src := range s.CrossSchema {
		out = append(out, s.DstGroups[src-1]...)
	}
	return out
}

// Rule is one rule line: source and destination sheaf chains plus an
// optional cross schema, expanded into sub-rules at finalization.
type Rule struct {
	Line     int
	Group    *RuleGroup
	SrcChain *SheafChain
	DstChain *SheafChain
	Schema   []int
	SubRules []*SubRule
}

// Finalize enumerates the rule into sub-rules. Prototype or schema
// problems abort the rule and land in the group's log.
func (r *Rule) Finalize(schemaExpr string) {
	log := r.Group.Log

	srcIt := NewSheafChainIterator(r.Line, r.SrcChain, "")
	dstIt := NewSheafChainIterator(r.Line, r.DstChain, schemaExpr)
	if errs := srcIt.Errors(); len(errs) > 0 {
		log.Extend(errs)
		return
	}
	if errs := dstIt.Errors(); len(errs) > 0 {
		log.Extend(errs)
		return
	}
	r.Schema = dstIt.Schema()

	srcProto := srcIt.Prototype()
	dstProto := dstIt.Prototype()
	if !protoEqual(srcProto, dstProto) {
		log.Appendf(errlog.KindCompile, r.Line,
			"source and destination are not compatible (%s vs %s)",
			protoString(srcProto), protoString(dstProto))
		return
	}

	for {
		srcCombos := srcIt.Combinations()
		dstCombos := dstIt.Combinations()
		var dstGroups [][]string
		if len(dstCombos) > 0 {
			dstGroups = tokenizeGroups(dstCombos[0])
		}

		for _, srcCombo := range srcCombos {
			src := explode(strings.Join(srcCombo, ""))
			if len(src) == 0 {
				log.Appendf(errlog.KindCompile, r.Line, "rule enumerates an empty source combination")
				continue
			}
			r.SubRules = append(r.SubRules, &SubRule{
				Rule:        r,
				Src:         src,
				DstGroups:   dstGroups,
				CrossSchema: r.Schema,
			})
		}

		dstIt.Iterate()
		if !srcIt.Iterate() {
			break
		}
	}
}

// tokenizeGroups splits each destination fragment into its whitespace
// separated tokens, dropping NULL markers.
func tokenizeGroups(fragments []string) [][]string {
	groups := make([][]string, len(fragments))
	for i, frag := range fragments {
		var tokens []string
		for _, tok := range strings.Fields(frag) {
			if tok == nullToken {
				continue
			}
			tokens = append(tokens, tok)
		}
		groups[i] = tokens
	}
	return groups
}

// explode splits a source combination into single-character tokens
func explode(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}

func protoEqual(a, b []SheafProto) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func protoString(protos []SheafProto) string {
	parts := make([]string, len(protos))
	for i, p := range protos {
		parts[i] = strconv.Itoa(p.Arity)
		if p.Pointer {
			parts[i] += "p"
		}
	}
	return "[" + strings.Join(parts, " ") + "]"
}
