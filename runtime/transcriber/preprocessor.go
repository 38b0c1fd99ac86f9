// Package transcriber implements the three transcription stages: ordered
// text substitutions, the per-word trie traversal, and token-to-character
// post-processing.
package transcriber

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/coregx/coregex"
)

var unicodeEscapeRx = regexp.MustCompile(`\{UNI_([0-9A-F]{1,6})\}`)

// ResolveUnicodeEscapes rewrites {UNI_hhhh} escapes in operator arguments
// to their literal code point. Escapes are resolved exactly once, before
// any regex engine sees the text.
func ResolveUnicodeEscapes(s string) (string, error) {
	var firstErr error
	out := unicodeEscapeRx.ReplaceAllStringFunc(s, func(capture string) string {
		hex := capture[5 : len(capture)-1]
		code, err := strconv.ParseUint(hex, 16, 32)
		if err != nil || code > 0x10FFFF {
			if firstErr == nil {
				firstErr = fmt.Errorf("unicode escape out of range: %s", capture)
			}
			return capture
		}
		return string(rune(code))
	})
	return out, firstErr
}

// PreOp is one preprocessor operator. The set of implementations is closed:
// substitute, rx_substitute, downcase.
type PreOp interface {
	Apply(text string) string
	preOp()
}

// SubstituteOp replaces every occurrence of a literal pattern,
// leftmost-first and non-overlapping. An index loop instead of a regex
// keeps pattern metacharacters literal.
type SubstituteOp struct {
	Pattern     string
	Replacement string
}

func (o *SubstituteOp) preOp() {}

func (o *SubstituteOp) Apply(text string) string {
	if o.Pattern == "" {
		return text
	}
	var out strings.Builder
	rest := text
	for {
		idx := strings.Index(rest, o.Pattern)
		if idx == -1 {
			break
		}
		out.WriteString(rest[:idx])
		out.WriteString(o.Replacement)
		rest = rest[idx+len(o.Pattern):]
	}
	out.WriteString(rest)
	return out.String()
}

// RxSubstituteOp replaces every match of a regex pattern. The replacement
// supports backreferences \1..\9.
type RxSubstituteOp struct {
	re          *coregex.Regex
	replacement string
}

func (o *RxSubstituteOp) preOp() {}

// NewRxSubstituteOp compiles the pattern eagerly so malformed regexes
// surface at mode finalization rather than mid-transcription.
func NewRxSubstituteOp(pattern, replacement string) (*RxSubstituteOp, error) {
	re, err := coregex.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad rx_substitute pattern '%s': %w", pattern, err)
	}
	return &RxSubstituteOp{re: re, replacement: replacement}, nil
}

func (o *RxSubstituteOp) Apply(text string) string {
	var out strings.Builder
	rest := text
	for rest != "" {
		loc := o.re.FindStringSubmatchIndex(rest)
		if loc == nil {
			break
		}
		out.WriteString(rest[:loc[0]])
		out.WriteString(expandBackrefs(o.replacement, rest, loc))
		if loc[1] == loc[0] {
			// empty match: copy one rune forward to guarantee progress
			_, size := utf8.DecodeRuneInString(rest[loc[1]:])
			if size == 0 {
				break
			}
			out.WriteString(rest[loc[1] : loc[1]+size])
			rest = rest[loc[1]+size:]
			continue
		}
		rest = rest[loc[1]:]
	}
	out.WriteString(rest)
	return out.String()
}

// expandBackrefs substitutes \1..\9 in the replacement with the captured
// submatches of one match. \\ escapes a literal backslash.
func expandBackrefs(replacement, text string, loc []int) string {
	var out strings.Builder
	for i := 0; i < len(replacement); i++ {
		c := replacement[i]
		if c != '\\' || i+1 >= len(replacement) {
			out.WriteByte(c)
			continue
		}
		next := replacement[i+1]
		switch {
		case next >= '1' && next <= '9':
			group := int(next - '0')
			if 2*group+1 < len(loc) && loc[2*group] >= 0 {
				out.WriteString(text[loc[2*group]:loc[2*group+1]])
			}
			i++
		case next == '\\':
			out.WriteByte('\\')
			i++
		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}

// DowncaseOp lowercases the whole input
type DowncaseOp struct{}

func (o *DowncaseOp) preOp() {}

func (o *DowncaseOp) Apply(text string) string {
	return strings.ToLower(text)
}

// Preprocessor applies its operators in declaration order
type Preprocessor struct {
	Ops []PreOp
}

// Apply runs the whole operator list over the input
func (p *Preprocessor) Apply(text string) string {
	out := text
	for _, op := range p.Ops {
		out = op.Apply(out)
	}
	return out
}
