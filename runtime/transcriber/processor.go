package transcriber

import (
	"strings"

	"github.com/glaemscribe/glaemgo/runtime/trie"
)

// WordBreaker is the user-visible delimiter forcing word splits. It never
// aliases the in-language boundary or the internal tree boundary.
const WordBreaker = "|"

// wordSeparatorToken is emitted between processed words. It is a literal
// code point token and passes through the post-processor untouched.
const wordSeparatorToken = " "

// Processor drives the per-word longest-match traversal of the
// transcription trie. It holds no mutable state; every call owns its
// transient cursor.
type Processor struct {
	Tree *trie.Trie
}

// Apply splits the preprocessed input into words on the word breaker and
// on whitespace, transcribes each word independently and joins the token
// streams with a word separator token.
func (p *Processor) Apply(text string) []string {
	words := splitWords(text)
	var out []string
	for i, word := range words {
		if i > 0 {
			out = append(out, wordSeparatorToken)
		}
		out = append(out, p.transcribeWord(word)...)
	}
	return out
}

func splitWords(text string) []string {
	replaced := strings.ReplaceAll(text, WordBreaker, " ")
	return strings.Fields(replaced)
}

// transcribeWord walks one word through the trie, longest match first. The
// tree boundary token is injected at the virtual start and end of the word
// so rules anchored with the in-language boundary can match the edges.
func (p *Processor) transcribeWord(word string) []string {
	tokens := make([]string, 0, len(word)+2)
	tokens = append(tokens, trie.WordBoundaryTree)
	for _, r := range word {
		tokens = append(tokens, string(r))
	}
	tokens = append(tokens, trie.WordBoundaryTree)

	var out []string
	cursor := 0
	for cursor < len(tokens) {
		var best trie.NodeRef
		bestLen := 0

		node := p.Tree.Root()
		for probe := cursor; probe < len(tokens); probe++ {
			child, ok := node.Child(tokens[probe])
			if !ok {
				break
			}
			node = child
			if node.Effective() {
				best = node
				bestLen = probe - cursor + 1
			}
		}

		if bestLen > 0 {
			out = append(out, best.Emit()...)
			cursor += bestLen
			continue
		}

		// No rule matched here. Boundary injections vanish silently;
		// real characters pass through as opaque tokens.
		if tokens[cursor] != trie.WordBoundaryTree {
			out = append(out, tokens[cursor])
		}
		cursor++
	}
	return out
}
