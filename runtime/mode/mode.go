// Package mode assembles compiled transcription modes: options, rule
// groups, processors and supported charsets. A finalized mode is immutable
// and safe to share across concurrent transcription calls.
package mode

import (
	"fmt"
	"sort"

	"github.com/glaemscribe/glaemgo/core/charset"
	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/runtime/rules"
	"github.com/glaemscribe/glaemgo/runtime/transcriber"
	"github.com/glaemscribe/glaemgo/runtime/trie"
)

// Option is one recognized transcription option with its default value
type Option struct {
	Name    string
	Default string
	Line    int
}

// Mode is a named transcription unit: language and writing tags, options,
// ordered rule groups, processor operator lists and supported charsets.
// Build it through the runtime/parser package, then Finalize before
// transcribing.
type Mode struct {
	Name     string
	Language string
	Writing  string
	Version  string

	Options    map[string]Option
	GroupOrder []string
	Groups     map[string]*rules.RuleGroup

	Pre  *transcriber.Preprocessor
	Post *transcriber.PostProcessor

	// Declared charset support; charsets attach before finalization
	DefaultCharset string
	Charsets       map[string]*charset.Charset

	Log *errlog.Log

	tree      *trie.Trie
	finalized bool
}

// New creates an empty mode
func New(name string) *Mode {
	return &Mode{
		Name:     name,
		Options:  map[string]Option{},
		Groups:   map[string]*rules.RuleGroup{},
		Pre:      &transcriber.Preprocessor{},
		Post:     &transcriber.PostProcessor{},
		Charsets: map[string]*charset.Charset{},
		Log:      &errlog.Log{},
	}
}

// AddRuleGroup registers a group, keeping declaration order
func (m *Mode) AddRuleGroup(g *rules.RuleGroup) {
	if _, exists := m.Groups[g.Name]; exists {
		m.Log.Appendf(errlog.KindCompile, 0, "rule group '%s' is declared twice", g.Name)
		return
	}
	m.GroupOrder = append(m.GroupOrder, g.Name)
	m.Groups[g.Name] = g
}

// AttachCharset makes a loaded charset available to transcription. The
// first attached charset becomes the default unless one was flagged.
func (m *Mode) AttachCharset(cs *charset.Charset, isDefault bool) {
	m.Charsets[cs.Name] = cs
	if isDefault || m.DefaultCharset == "" {
		m.DefaultCharset = cs.Name
	}
}

// Finalize evaluates every rule group under the given option overrides and
// builds the transcription trie. All compile-stage errors accumulate in
// the mode log; any of them aborts activation.
func (m *Mode) Finalize(optionOverrides map[string]string) error {
	if m.finalized {
		return fmt.Errorf("mode '%s' is already finalized", m.Name)
	}

	opts := map[string]string{}
	for name, opt := range m.Options {
		opts[name] = opt.Default
	}
	for name, value := range optionOverrides {
		if _, known := m.Options[name]; !known {
			m.Log.Appendf(errlog.KindCompile, 0, "unknown transcription option '%s'", name)
			continue
		}
		opts[name] = value
	}

	tree := trie.New()
	for _, name := range m.GroupOrder {
		group := m.Groups[name]
		group.Finalize(opts)
		for _, sub := range group.SubRules() {
			if err := tree.Insert(sub); err != nil {
				m.Log.Append(err)
			}
		}
	}

	if m.Log.HasErrors() {
		return m.Log.Err()
	}
	m.tree = tree
	m.finalized = true
	return nil
}

// Finalized reports whether the mode was successfully finalized
func (m *Mode) Finalized() bool {
	return m.finalized
}

// DebugTree serializes the compiled trie for cross-implementation diffing
func (m *Mode) DebugTree() (*trie.DebugNode, error) {
	if !m.finalized {
		return nil, fmt.Errorf("mode '%s' is not finalized", m.Name)
	}
	return m.tree.DebugTree(), nil
}

// SupportedCharsets lists the attached charset names, sorted
func (m *Mode) SupportedCharsets() []string {
	names := make([]string, 0, len(m.Charsets))
	for name := range m.Charsets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TranscribeOptions tunes one transcription call
type TranscribeOptions struct {
	// Charset selects a supported charset by name; empty means default
	Charset string
	// Debug attaches the serialized trie to the result
	Debug bool
	// MaxWarnings caps unmapped-token warnings; 0 means the default cap
	MaxWarnings int
}

// Result is the outcome of one transcription call
type Result struct {
	Output   string
	Tokens   []string
	Warnings []*errlog.Error
	Debug    *trie.DebugNode
}

// Transcribe runs the full pipeline over the input text. The output
// depends only on (text, mode, charset, options); runtime problems degrade
// to sentinels and warnings, never errors.
func (m *Mode) Transcribe(text string, topts TranscribeOptions) (*Result, error) {
	if !m.finalized {
		return nil, fmt.Errorf("mode '%s' is not finalized", m.Name)
	}

	csName := topts.Charset
	if csName == "" {
		csName = m.DefaultCharset
	}
	cs, ok := m.Charsets[csName]
	if !ok {
		return nil, fmt.Errorf("mode '%s' does not support charset '%s'", m.Name, csName)
	}

	preprocessed := m.Pre.Apply(text)

	processor := &transcriber.Processor{Tree: m.tree}
	tokens := processor.Apply(preprocessed)

	output, warnings := m.Post.Apply(tokens, cs, topts.MaxWarnings)

	result := &Result{Output: output, Tokens: tokens, Warnings: warnings}
	if topts.Debug {
		result.Debug = m.tree.DebugTree()
	}
	return result, nil
}
