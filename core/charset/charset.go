// Package charset models the target writing system: named code points,
// contextually resolved virtual characters, named sequences and swap pairs.
package charset

// UnknownCharOutput is emitted when a virtual character cannot be resolved
// or a token has no charset entry.
const UnknownCharOutput = "?"

// VirtualClass is one resolution class of a virtual character: the target
// character name selected when the neighboring token is in Triggers.
type VirtualClass struct {
	Target   string
	Triggers map[string]bool
}

// VirtualChar is an abstract glyph whose concrete character depends on the
// neighboring token. For non-reversed virtuals the previous token decides;
// for reversed virtuals the next one does.
type VirtualChar struct {
	Name     string
	Classes  []VirtualClass
	Default  string
	Reversed bool
}

// Resolve returns the character name selected by the given neighboring
// token. Classes are scanned in declaration order; the first trigger hit
// wins. Falls back to the default target, then to UnknownCharOutput.
func (v *VirtualChar) Resolve(neighbor string) string {
	for _, class := range v.Classes {
		if class.Triggers[neighbor] {
			return class.Target
		}
	}
	if v.Default != "" {
		return v.Default
	}
	return UnknownCharOutput
}

// Charset maps character names to code point strings, plus the virtual
// character, sequence and swap tables of one .cst file.
type Charset struct {
	Name      string
	Version   string
	Chars     map[string]string
	Virtuals  map[string]*VirtualChar
	Sequences map[string][]string
	Swaps     map[string]map[string]bool
}

// New creates an empty charset
func New(name string) *Charset {
	return &Charset{
		Name:      name,
		Chars:     map[string]string{},
		Virtuals:  map[string]*VirtualChar{},
		Sequences: map[string][]string{},
		Swaps:     map[string]map[string]bool{},
	}
}

// Codepoint looks up the code point string for a character name
func (c *Charset) Codepoint(name string) (string, bool) {
	s, ok := c.Chars[name]
	return s, ok
}

// Virtual looks up a virtual character by name
func (c *Charset) Virtual(name string) (*VirtualChar, bool) {
	v, ok := c.Virtuals[name]
	return v, ok
}

// Sequence looks up a named sequence of character names
func (c *Charset) Sequence(name string) ([]string, bool) {
	s, ok := c.Sequences[name]
	return s, ok
}

// SwapTargets returns the set of names that swap with the given name, or
// nil when the name heads no swap pair.
func (c *Charset) SwapTargets(name string) map[string]bool {
	return c.Swaps[name]
}
