package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glaemscribe/glaemgo/core/glaeml"
	"github.com/glaemscribe/glaemgo/runtime/mode"
)

func parseMode(t *testing.T, src string) (*mode.Mode, []CharsetRef) {
	t.Helper()
	doc, errs := glaeml.Parse(src)
	require.Empty(t, errs, "glaeml must parse")
	return ModeFromDocument("test", doc)
}

func TestModeMetadata(t *testing.T) {
	src := "\\version 1.2.3\n" +
		"\\language sindarin\n" +
		"\\writing tengwar\n" +
		"\\option implicit_a false\n" +
		"\\option style beleriand\n" +
		"\\charset cst_main true\n" +
		"\\charset cst_alt\n"
	m, refs := parseMode(t, src)

	assert.False(t, m.Log.HasErrors(), "errors: %v", m.Log.Errors())
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, "sindarin", m.Language)
	assert.Equal(t, "tengwar", m.Writing)

	require.Contains(t, m.Options, "implicit_a")
	assert.Equal(t, "false", m.Options["implicit_a"].Default)

	require.Len(t, refs, 2)
	assert.Equal(t, CharsetRef{Name: "cst_main", Default: true, Line: 6}, refs[0])
	assert.Equal(t, "cst_alt", refs[1].Name)
	assert.False(t, refs[1].Default)
}

func TestInvalidVersion(t *testing.T) {
	m, _ := parseMode(t, "\\version not.a.version\n")
	assert.True(t, m.Log.HasErrors())
}

func TestPreprocessorOperators(t *testing.T) {
	src := "\\beg preprocessor\n" +
		"\\downcase\n" +
		"\\substitute x y\n" +
		"\\rx_substitute \"y+\" z\n" +
		"\\end\n"
	m, _ := parseMode(t, src)

	require.False(t, m.Log.HasErrors(), "errors: %v", m.Log.Errors())
	require.Len(t, m.Pre.Ops, 3)
	// downcase, then x -> y, then y+ -> z, in declaration order
	assert.Equal(t, "zb z", mustApply(m, "XXb xx"))
}

// mustApply runs only the preprocessor stage
func mustApply(m *mode.Mode, text string) string {
	return m.Pre.Apply(text)
}

func TestPreprocessorUnicodeArgs(t *testing.T) {
	src := "\\beg preprocessor\n" +
		"\\substitute \"{UNI_00E9}\" e\n" +
		"\\end\n"
	m, _ := parseMode(t, src)

	require.False(t, m.Log.HasErrors(), "errors: %v", m.Log.Errors())
	assert.Equal(t, "ele", m.Pre.Apply("élé"))
}

func TestPreprocessorErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad regex", "\\beg preprocessor\n\\rx_substitute \"(oops\" x\n\\end\n"},
		{"missing args", "\\beg preprocessor\n\\substitute x\n\\end\n"},
		{"unknown operator", "\\beg preprocessor\n\\uppercase\n\\end\n"},
		{"out of range escape", "\\beg preprocessor\n\\substitute \"{UNI_FFFFFF}\" x\n\\end\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := parseMode(t, tt.src)
			assert.True(t, m.Log.HasErrors())
		})
	}
}

func TestProcessorRuleGroups(t *testing.T) {
	src := "\\beg processor\n" +
		"\\beg rules first\n" +
		"a --> A_CHAR\n" +
		"\\end\n" +
		"\\beg rules second\n" +
		"b --> B_CHAR\n" +
		"\\end\n" +
		"\\end\n"
	m, _ := parseMode(t, src)

	require.False(t, m.Log.HasErrors(), "errors: %v", m.Log.Errors())
	assert.Equal(t, []string{"first", "second"}, m.GroupOrder)
}

func TestDuplicateRuleGroupName(t *testing.T) {
	src := "\\beg processor\n" +
		"\\beg rules main\na --> A_CHAR\n\\end\n" +
		"\\beg rules main\nb --> B_CHAR\n\\end\n" +
		"\\end\n"
	m, _ := parseMode(t, src)
	assert.True(t, m.Log.HasErrors())
}

func TestPostprocessorOperators(t *testing.T) {
	m, _ := parseMode(t, "\\beg postprocessor\n\\charset_resolver\n\\end\n")
	require.False(t, m.Log.HasErrors(), "errors: %v", m.Log.Errors())
	assert.Len(t, m.Post.Ops, 1)

	m, _ = parseMode(t, "\\beg postprocessor\n\\frobnicate\n\\end\n")
	assert.True(t, m.Log.HasErrors())
}

func TestUnknownTopLevelElement(t *testing.T) {
	m, _ := parseMode(t, "\\wibble\n")
	assert.True(t, m.Log.HasErrors())
}
