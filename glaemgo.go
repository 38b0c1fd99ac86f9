// Package glaemgo loads transcription modes and charsets from disk and
// exposes the high-level transcription entry points.
//
// A mode file (.glaem) declares rules for turning text in a natural
// language into a stream of glyph tokens; a charset file (.cst) maps those
// tokens to code points. Typical use:
//
//	m, err := glaemgo.LoadMode("quenya.glaem")
//	if err != nil { ... }
//	if err := m.Finalize(nil); err != nil { ... }
//	res, err := m.Transcribe("Elen síla", mode.TranscribeOptions{})
package glaemgo

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/glaemscribe/glaemgo/core/charset"
	"github.com/glaemscribe/glaemgo/core/errlog"
	"github.com/glaemscribe/glaemgo/core/glaeml"
	"github.com/glaemscribe/glaemgo/runtime/mode"
	"github.com/glaemscribe/glaemgo/runtime/parser"
)

// Version of the glaemgo engine
const Version = "0.1.0"

// ParseMode builds a mode from glaeml source text. Charset references are
// returned for the caller to resolve; structural errors accumulate in the
// mode log.
func ParseMode(name, src string) (*mode.Mode, []parser.CharsetRef) {
	doc, errs := glaeml.Parse(src)
	m, refs := parser.ModeFromDocument(name, doc)
	m.Log.Extend(errs)
	return m, refs
}

// ParseCharset builds a charset from .cst source text
func ParseCharset(name, src string) (*charset.Charset, error) {
	doc, parseErrs := glaeml.Parse(src)
	cs, buildErrs := charset.FromDocument(name, doc)
	log := &errlog.Log{}
	log.Extend(parseErrs)
	log.Extend(buildErrs)
	if err := log.Err(); err != nil {
		return nil, err
	}
	return cs, nil
}

// LoadCharset reads and builds a charset file
func LoadCharset(path string) (*charset.Charset, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading charset: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ParseCharset(name, string(content))
}

// LoadMode reads a mode file and attaches every charset it declares,
// looking for "<name>.cst" next to the mode file and then in the extra
// charset directories. The mode is returned unfinalized so the caller can
// pass transcription options to Finalize.
func LoadMode(path string, charsetDirs ...string) (*mode.Mode, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading mode: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	m, refs := ParseMode(name, string(content))

	searchDirs := append([]string{filepath.Dir(path)}, charsetDirs...)
	for _, ref := range refs {
		csPath, found := findCharsetFile(ref.Name, searchDirs)
		if !found {
			m.Log.Appendf(errlog.KindCharset, ref.Line,
				"charset file '%s.cst' not found", ref.Name)
			continue
		}
		cs, err := LoadCharset(csPath)
		if err != nil {
			m.Log.Appendf(errlog.KindCharset, ref.Line,
				"charset '%s': %s", ref.Name, err.Error())
			continue
		}
		m.AttachCharset(cs, ref.Default)
		slog.Debug("charset attached", "mode", m.Name, "charset", cs.Name, "path", csPath)
	}

	slog.Debug("mode loaded",
		"mode", m.Name,
		"language", m.Language,
		"writing", m.Writing,
		"groups", len(m.GroupOrder),
		"charsets", len(m.Charsets))
	return m, nil
}

func findCharsetFile(name string, dirs []string) (string, bool) {
	for _, dir := range dirs {
		candidate := filepath.Join(dir, name+".cst")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}
