package rules

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/glaemscribe/glaemgo/core/errlog"
)

// SheafChainIterator enumerates the concrete combinations of a chain.
//
// Pointer sheaves form a single lockstep unit: they all use the same
// alternative index, and Iterate advances that index as a unit. For one
// pointer state, Combinations expands the full cartesian product of the
// plain sheaves. Chains without pointer sheaves have exactly one state.
//
// A destination iterator may carry a cross schema; it then reports its
// prototype and combinations in source-sheaf order (position k holds the
// sheaf that pairs with source sheaf k), so the caller can compare shapes
// positionally and store replacements keyed by source group.
type SheafChainIterator struct {
	chain       *SheafChain
	schema      []int // output position j takes source group schema[j]; nil when absent
	pointerIdx  int
	pointerCard int
	done        bool
	errors      []*errlog.Error
}

// NewSheafChainIterator builds an iterator, validating pointer cardinality
// and the cross schema shape. Construction errors are collected on the
// iterator.
func NewSheafChainIterator(line int, chain *SheafChain, schemaExpr string) *SheafChainIterator {
	it := &SheafChainIterator{chain: chain, pointerCard: 1}

	for _, sheaf := range chain.Sheaves {
		if !sheaf.IsPointer() {
			continue
		}
		if it.pointerCard == 1 {
			it.pointerCard = sheaf.Arity()
		} else if sheaf.Arity() != it.pointerCard {
			it.appendErrorf(line, errlog.KindCompile,
				"pointer variables have mismatched cardinality (%d vs %d in '{%s}')",
				it.pointerCard, sheaf.Arity(), sheaf.PointerVar)
		}
	}

	if schemaExpr != "" {
		schema, err := ParseCrossSchema(schemaExpr, len(chain.Sheaves))
		if err != nil {
			it.appendErrorf(line, errlog.KindCompile, "%s", err.Error())
		} else {
			it.schema = schema
		}
	}
	return it
}

func (it *SheafChainIterator) appendErrorf(line int, kind, format string, args ...any) {
	it.errors = append(it.errors, errlog.Newf(kind, line, format, args...))
}

// Errors returns construction errors
func (it *SheafChainIterator) Errors() []*errlog.Error {
	return it.errors
}

// Schema returns the parsed cross schema, nil when absent
func (it *SheafChainIterator) Schema() []int {
	return it.schema
}

// Prototype returns the chain shape in iteration order (source-sheaf order
// when a schema is present).
func (it *SheafChainIterator) Prototype() []SheafProto {
	protos := it.chain.Prototype()
	if it.schema == nil {
		return protos
	}
	normalized := make([]SheafProto, len(protos))
	for j, src := range it.schema {
		normalized[src-1] = protos[j]
	}
	return normalized
}

// Combinations expands every combination reachable in the current pointer
// state. Each combination holds the chosen fragment per sheaf, reordered to
// source-sheaf order when a schema is present.
func (it *SheafChainIterator) Combinations() [][]string {
	combos := [][]string{{}}
	for _, sheaf := range it.chain.Sheaves {
		if sheaf.IsPointer() {
			idx := it.pointerIdx
			if idx >= sheaf.Arity() {
				idx = sheaf.Arity() - 1
			}
			for i := range combos {
				combos[i] = append(combos[i], sheaf.Fragments[idx])
			}
			continue
		}
		next := make([][]string, 0, len(combos)*sheaf.Arity())
		for _, combo := range combos {
			for _, frag := range sheaf.Fragments {
				widened := make([]string, len(combo), len(combo)+1)
				copy(widened, combo)
				next = append(next, append(widened, frag))
			}
		}
		combos = next
	}
	if it.schema == nil {
		return combos
	}
	for i, combo := range combos {
		normalized := make([]string, len(combo))
		for j, src := range it.schema {
			normalized[src-1] = combo[j]
		}
		combos[i] = normalized
	}
	return combos
}

// Iterate advances the pointer unit. It reports false once every pointer
// state has been consumed.
func (it *SheafChainIterator) Iterate() bool {
	it.pointerIdx++
	if it.pointerIdx >= it.pointerCard {
		it.done = true
		return false
	}
	return true
}

// IsLast reports whether the iterator sits on its final pointer state
func (it *SheafChainIterator) IsLast() bool {
	return it.pointerIdx >= it.pointerCard-1
}

// ParseCrossSchema parses and validates a "i1,i2,…,iN" cross schema
// against the given chain arity. The schema must be a bijection on 1..N.
func ParseCrossSchema(expr string, arity int) ([]int, error) {
	parts := strings.Split(expr, ",")
	if len(parts) != arity {
		return nil, fmt.Errorf("cross schema '%s' has %d entries for %d sheaves", expr, len(parts), arity)
	}
	schema := make([]int, len(parts))
	seen := make([]bool, arity)
	for j, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 || n > arity {
			return nil, fmt.Errorf("cross schema '%s' is not a permutation of 1..%d", expr, arity)
		}
		if seen[n-1] {
			return nil, fmt.Errorf("cross schema '%s' repeats position %d", expr, n)
		}
		seen[n-1] = true
		schema[j] = n
	}
	return schema, nil
}
