package mode_test

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/glaemscribe/glaemgo/core/charset"
	"github.com/glaemscribe/glaemgo/core/glaeml"
	"github.com/glaemscribe/glaemgo/runtime/mode"
	"github.com/glaemscribe/glaemgo/runtime/parser"
)

// testCharsetSrc maps the token names used across these tests to ASCII
// code points so outputs stay readable.
const testCharsetSrc = "\\char 0041 A_CHAR\n" +
	"\\char 0042 B_CHAR\n" +
	"\\char 0043 C_CHAR\n" +
	"\\char 0058 X_CHAR\n" +
	"\\char 0059 Y_CHAR\n" +
	"\\char 005A Z_CHAR\n"

// buildMode parses, attaches the shared test charset and finalizes
func buildMode(t *testing.T, src string, opts map[string]string) *mode.Mode {
	t.Helper()
	m := buildModeNoFinalize(t, src)
	if err := m.Finalize(opts); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return m
}

func buildModeNoFinalize(t *testing.T, src string) *mode.Mode {
	t.Helper()
	doc, errs := glaeml.Parse(src)
	if len(errs) != 0 {
		t.Fatalf("glaeml parse errors: %v", errs)
	}
	m, _ := parser.ModeFromDocument("test-mode", doc)

	csDoc, errs := glaeml.Parse(testCharsetSrc)
	if len(errs) != 0 {
		t.Fatalf("charset parse errors: %v", errs)
	}
	cs, csErrs := charset.FromDocument("test-cs", csDoc)
	if len(csErrs) != 0 {
		t.Fatalf("charset build errors: %v", csErrs)
	}
	m.AttachCharset(cs, true)
	return m
}

func transcribe(t *testing.T, m *mode.Mode, text string) string {
	t.Helper()
	res, err := m.Transcribe(text, mode.TranscribeOptions{})
	if err != nil {
		t.Fatalf("transcribe %q: %v", text, err)
	}
	return res.Output
}

const minimalMode = "\\version 0.1.0\n" +
	"\\language test\n" +
	"\\writing test\n" +
	"\\beg processor\n" +
	"\\beg rules main\n" +
	"a --> A_CHAR\n" +
	"b --> B_CHAR\n" +
	"c --> C_CHAR\n" +
	"\\end\n" +
	"\\end\n"

func TestMinimalModeTranscription(t *testing.T) {
	m := buildMode(t, minimalMode, nil)
	if got := transcribe(t, m, "abc"); got != "ABC" {
		t.Errorf("got %q, want %q", got, "ABC")
	}
}

func TestWordBreakerProducesBoundary(t *testing.T) {
	m := buildMode(t, minimalMode, nil)
	got := transcribe(t, m, "abc|abc")
	if got != "ABC ABC" {
		t.Errorf("got %q, want a word boundary between the words", got)
	}
}

func TestCrossRuleEndToEnd(t *testing.T) {
	src := "\\version 0.1.0\n" +
		"\\language test\n" +
		"\\writing test\n" +
		"\\beg processor\n" +
		"\\beg rules main\n" +
		"[a][b] --> 2,1 --> [B_CHAR][A_CHAR]\n" +
		"\\end\n" +
		"\\end\n"
	m := buildMode(t, src, nil)

	res, err := m.Transcribe("ab", mode.TranscribeOptions{})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if diff := cmp.Diff([]string{"B_CHAR", "A_CHAR"}, res.Tokens); diff != "" {
		t.Errorf("token stream mismatch (-want +got):\n%s", diff)
	}
	if res.Output != "BA" {
		t.Errorf("output = %q, want %q", res.Output, "BA")
	}
}

func TestLongestMatchEndToEnd(t *testing.T) {
	src := "\\version 0.1.0\n" +
		"\\language test\n" +
		"\\writing test\n" +
		"\\beg processor\n" +
		"\\beg rules main\n" +
		"a --> A_CHAR\n" +
		"ab --> X_CHAR\n" +
		"\\end\n" +
		"\\end\n"
	m := buildMode(t, src, nil)

	res, err := m.Transcribe("ab", mode.TranscribeOptions{})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if diff := cmp.Diff([]string{"X_CHAR"}, res.Tokens); diff != "" {
		t.Errorf("longest match must win (-want +got):\n%s", diff)
	}
}

func TestPreprocessorFeedsProcessor(t *testing.T) {
	src := "\\version 0.1.0\n" +
		"\\language test\n" +
		"\\writing test\n" +
		"\\beg preprocessor\n" +
		"\\downcase\n" +
		"\\substitute k c\n" +
		"\\rx_substitute \"b+\" \"b\"\n" +
		"\\end\n" +
		"\\beg processor\n" +
		"\\beg rules main\n" +
		"a --> A_CHAR\n" +
		"b --> B_CHAR\n" +
		"c --> C_CHAR\n" +
		"\\end\n" +
		"\\end\n"
	m := buildMode(t, src, nil)

	if got := transcribe(t, m, "KaBBB"); got != "CAB" {
		t.Errorf("got %q, want %q", got, "CAB")
	}
}

func TestOptionsSelectRules(t *testing.T) {
	src := "\\version 0.1.0\n" +
		"\\language test\n" +
		"\\writing test\n" +
		"\\option style classical\n" +
		"\\beg processor\n" +
		"\\beg rules main\n" +
		"\\if \"style == classical\"\n" +
		"a --> X_CHAR\n" +
		"\\else\n" +
		"a --> Y_CHAR\n" +
		"\\endif\n" +
		"\\end\n" +
		"\\end\n"

	m := buildMode(t, src, nil)
	if got := transcribe(t, m, "a"); got != "X" {
		t.Errorf("default option: got %q, want %q", got, "X")
	}

	m = buildMode(t, src, map[string]string{"style": "other"})
	if got := transcribe(t, m, "a"); got != "Y" {
		t.Errorf("override: got %q, want %q", got, "Y")
	}
}

func TestUnknownOptionOverrideFailsFinalize(t *testing.T) {
	m := buildModeNoFinalize(t, minimalMode)
	if err := m.Finalize(map[string]string{"nope": "x"}); err == nil {
		t.Error("unknown option override must abort finalization")
	}
}

func TestDuplicateRuleAbortsFinalize(t *testing.T) {
	src := "\\version 0.1.0\n" +
		"\\language test\n" +
		"\\writing test\n" +
		"\\beg processor\n" +
		"\\beg rules main\n" +
		"a --> A_CHAR\n" +
		"a --> B_CHAR\n" +
		"\\end\n" +
		"\\end\n"
	m := buildModeNoFinalize(t, src)
	err := m.Finalize(nil)
	if err == nil {
		t.Fatal("conflicting duplicate rules must abort finalization")
	}
	if !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("error should mention the duplicate, got %q", err.Error())
	}
}

func TestDuplicateAcrossGroupsAborts(t *testing.T) {
	src := "\\version 0.1.0\n" +
		"\\language test\n" +
		"\\writing test\n" +
		"\\beg processor\n" +
		"\\beg rules first\n" +
		"a --> A_CHAR\n" +
		"\\end\n" +
		"\\beg rules second\n" +
		"a --> B_CHAR\n" +
		"\\end\n" +
		"\\end\n"
	m := buildModeNoFinalize(t, src)
	if err := m.Finalize(nil); err == nil {
		t.Error("rule groups share one trie; conflicting sources must abort")
	}
}

func TestTranscribeIsPure(t *testing.T) {
	m := buildMode(t, minimalMode, nil)
	first := transcribe(t, m, "abc|cba")
	for i := 0; i < 5; i++ {
		if got := transcribe(t, m, "abc|cba"); got != first {
			t.Fatalf("call %d diverged: %q vs %q", i, got, first)
		}
	}
}

func TestTranscribeUnknownCharset(t *testing.T) {
	m := buildMode(t, minimalMode, nil)
	if _, err := m.Transcribe("a", mode.TranscribeOptions{Charset: "nope"}); err == nil {
		t.Error("unsupported charset must be an error")
	}
}

func TestTranscribeBeforeFinalize(t *testing.T) {
	m := buildModeNoFinalize(t, minimalMode)
	if _, err := m.Transcribe("a", mode.TranscribeOptions{}); err == nil {
		t.Error("transcribing an unfinalized mode must fail")
	}
}

func TestDebugTreeAttached(t *testing.T) {
	m := buildMode(t, minimalMode, nil)
	res, err := m.Transcribe("a", mode.TranscribeOptions{Debug: true})
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if res.Debug == nil {
		t.Fatal("debug tree missing")
	}
	if res.Debug.Character != "ROOT" {
		t.Errorf("debug root = %q, want ROOT", res.Debug.Character)
	}
	if res.Debug.ChildCount != 3 {
		t.Errorf("debug root children = %d, want 3", res.Debug.ChildCount)
	}
}

// TestRandomizedRuleSets generates rule sets and inputs, checking the
// invariants that hold for any compiled mode: non-empty sub-rule sources,
// purity, and the longest-match law.
func TestRandomizedRuleSets(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcd")

	for round := 0; round < 20; round++ {
		ruleCount := 1 + rng.Intn(50)
		seen := map[string]bool{}
		var lines []string
		dests := []string{"A_CHAR", "B_CHAR", "C_CHAR", "X_CHAR", "Y_CHAR", "Z_CHAR"}
		for len(lines) < ruleCount {
			srcLen := 1 + rng.Intn(3)
			var sb strings.Builder
			for i := 0; i < srcLen; i++ {
				sb.WriteRune(alphabet[rng.Intn(len(alphabet))])
			}
			src := sb.String()
			if seen[src] {
				continue
			}
			seen[src] = true
			lines = append(lines, fmt.Sprintf("%s --> %s", src, dests[rng.Intn(len(dests))]))
		}

		modeSrc := "\\version 0.1.0\n\\language t\n\\writing t\n" +
			"\\beg processor\n\\beg rules main\n" +
			strings.Join(lines, "\n") + "\n" +
			"\\end\n\\end\n"
		m := buildMode(t, modeSrc, nil)

		// Sub-rule sources are never empty.
		for _, g := range m.Groups {
			for _, sub := range g.SubRules() {
				if len(sub.Src) == 0 {
					t.Fatalf("round %d: empty sub-rule source", round)
				}
			}
		}

		inputLen := rng.Intn(100)
		var in strings.Builder
		for i := 0; i < inputLen; i++ {
			in.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		input := in.String()

		first := transcribe(t, m, input)
		if second := transcribe(t, m, input); second != first {
			t.Fatalf("round %d: output not deterministic", round)
		}

		// Longest-match law, checked against a naive reference matcher.
		if want := naiveTranscribe(lines, input); first != want {
			t.Fatalf("round %d: input %q: engine %q, reference %q", round, input, first, want)
		}
	}
}

// naiveTranscribe reimplements greedy longest-match directly over the rule
// lines, resolving N_CHAR destinations to their single test-charset
// letter.
func naiveTranscribe(lines []string, input string) string {
	ruleMap := map[string]string{}
	maxLen := 0
	for _, line := range lines {
		src, dst, _ := strings.Cut(line, " --> ")
		ruleMap[src] = strings.TrimSuffix(dst, "_CHAR")
		if len(src) > maxLen {
			maxLen = len(src)
		}
	}

	var out strings.Builder
	runes := []rune(input)
	for i := 0; i < len(runes); {
		matched := false
		for l := min(maxLen, len(runes)-i); l > 0; l-- {
			if dst, ok := ruleMap[string(runes[i:i+l])]; ok {
				out.WriteString(dst)
				i += l
				matched = true
				break
			}
		}
		if !matched {
			out.WriteRune(runes[i])
			i++
		}
	}
	return out.String()
}
