package transcriber

import (
	"strings"
	"unicode/utf8"

	"github.com/glaemscribe/glaemgo/core/charset"
	"github.com/glaemscribe/glaemgo/core/errlog"
)

// DefaultMaxWarnings caps the unmapped-token warnings reported per call;
// past the cap output continues with sentinels silently.
const DefaultMaxWarnings = 16

// PostOp is one post-processor operator. The implementation set is closed;
// the charset resolver is currently its only member and always runs last.
type PostOp interface {
	Apply(tokens []string, cs *charset.Charset, sink *warningSink) []string
	postOp()
}

// warningSink counts unmapped-token warnings against the per-call cap
type warningSink struct {
	max      int
	warnings []*errlog.Error
	dropped  int
}

func (w *warningSink) warnf(format string, args ...any) {
	if len(w.warnings) >= w.max {
		w.dropped++
		return
	}
	w.warnings = append(w.warnings, errlog.Newf(errlog.KindRuntimeWarning, 0, format, args...))
}

// CharsetResolverOp turns the token stream into charset characters:
// sequences expand in place, swap pairs reorder, virtual characters
// resolve against their neighbor, and character names map to code points.
type CharsetResolverOp struct{}

func (o *CharsetResolverOp) postOp() {}

func (o *CharsetResolverOp) Apply(tokens []string, cs *charset.Charset, sink *warningSink) []string {
	tokens = expandSequences(tokens, cs)
	tokens = applySwaps(tokens, cs)
	tokens = resolveVirtuals(tokens, cs)

	out := make([]string, len(tokens))
	for i, tok := range tokens {
		out[i] = resolveToken(tok, cs, sink)
	}
	return out
}

// expandSequences splices named sequences into their member names
func expandSequences(tokens []string, cs *charset.Charset) []string {
	var out []string
	for _, tok := range tokens {
		if members, ok := cs.Sequence(tok); ok {
			out = append(out, members...)
			continue
		}
		out = append(out, tok)
	}
	return out
}

// applySwaps rewrites ordered pairs (a, b) with b in swaps[a] to (b, a).
// Single pass, leftmost first.
func applySwaps(tokens []string, cs *charset.Charset) []string {
	for i := 0; i+1 < len(tokens); i++ {
		if targets := cs.SwapTargets(tokens[i]); targets != nil && targets[tokens[i+1]] {
			tokens[i], tokens[i+1] = tokens[i+1], tokens[i]
			i++
		}
	}
	return tokens
}

// resolveVirtuals replaces virtual character tokens with their contextual
// target. Non-reversed virtuals look at the previous token and resolve
// left to right, so a resolved virtual can trigger the next one; reversed
// virtuals look at the next token and resolve right to left.
func resolveVirtuals(tokens []string, cs *charset.Charset) []string {
	for i, tok := range tokens {
		v, ok := cs.Virtual(tok)
		if !ok || v.Reversed {
			continue
		}
		neighbor := ""
		if i > 0 {
			neighbor = tokens[i-1]
		}
		tokens[i] = v.Resolve(neighbor)
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		v, ok := cs.Virtual(tokens[i])
		if !ok || !v.Reversed {
			continue
		}
		neighbor := ""
		if i+1 < len(tokens) {
			neighbor = tokens[i+1]
		}
		tokens[i] = v.Resolve(neighbor)
	}
	return tokens
}

// resolveToken maps one character name to its code point. Single-rune
// tokens are literal code points and pass through; anything else without a
// charset entry degrades to the sentinel with a warning.
func resolveToken(tok string, cs *charset.Charset, sink *warningSink) string {
	if cp, ok := cs.Codepoint(tok); ok {
		return cp
	}
	if utf8.RuneCountInString(tok) == 1 {
		return tok
	}
	sink.warnf("charset '%s' has no character named '%s'", cs.Name, tok)
	return charset.UnknownCharOutput
}

// PostProcessor applies its operators in declaration order and guarantees
// a final charset resolution pass.
type PostProcessor struct {
	Ops []PostOp
}

// Apply resolves the token stream against the given charset. It returns
// the final output string and the bounded runtime warnings.
func (p *PostProcessor) Apply(tokens []string, cs *charset.Charset, maxWarnings int) (string, []*errlog.Error) {
	if maxWarnings <= 0 {
		maxWarnings = DefaultMaxWarnings
	}
	sink := &warningSink{max: maxWarnings}

	resolved := false
	work := tokens
	for _, op := range p.Ops {
		work = op.Apply(work, cs, sink)
		if _, ok := op.(*CharsetResolverOp); ok {
			resolved = true
		}
	}
	if !resolved {
		work = (&CharsetResolverOp{}).Apply(work, cs, sink)
	}

	return strings.Join(work, ""), sink.warnings
}
