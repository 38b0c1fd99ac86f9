package glaeml

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseSingleLineElements(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *Node
	}{
		{
			name:  "bare args",
			input: `\language quenya`,
			expected: &Node{
				Type: ElementNode, Name: "language", Args: []string{"quenya"}, Line: 1,
			},
		},
		{
			name:  "quoted arg with spaces",
			input: `\substitute "a b" x`,
			expected: &Node{
				Type: ElementNode, Name: "substitute", Args: []string{"a b", "x"}, Line: 1,
			},
		},
		{
			name:  "empty quoted arg survives",
			input: `\substitute x ""`,
			expected: &Node{
				Type: ElementNode, Name: "substitute", Args: []string{"x", ""}, Line: 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, errs := Parse(tt.input)
			if len(errs) != 0 {
				t.Fatalf("unexpected errors: %v", errs)
			}
			if len(doc.RootNode.Children) != 1 {
				t.Fatalf("got %d children, want 1", len(doc.RootNode.Children))
			}
			if diff := cmp.Diff(tt.expected, doc.RootNode.Children[0]); diff != "" {
				t.Errorf("node mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseBlocks(t *testing.T) {
	input := "\\beg rules litteral\n" +
		"a --> A_CHAR\n" +
		"\\if \"x == true\"\n" +
		"b --> B_CHAR\n" +
		"\\endif\n" +
		"\\end\n"

	doc, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	rules := doc.RootNode.FirstChildNamed("rules")
	if rules == nil {
		t.Fatal("rules block not found")
	}
	if got := rules.Arg(0); got != "litteral" {
		t.Errorf("block arg = %q, want %q", got, "litteral")
	}
	if len(rules.Children) != 4 {
		t.Fatalf("got %d children, want 4", len(rules.Children))
	}
	if !rules.Children[0].IsText() || rules.Children[0].Text() != "a --> A_CHAR" {
		t.Errorf("first child = %+v, want text 'a --> A_CHAR'", rules.Children[0])
	}
	if rules.Children[1].Name != "if" || rules.Children[1].Arg(0) != "x == true" {
		t.Errorf("second child = %+v, want if element", rules.Children[1])
	}
	if rules.Children[3].Name != "endif" {
		t.Errorf("fourth child = %+v, want endif element", rules.Children[3])
	}
}

func TestParseNestedBlocks(t *testing.T) {
	input := "\\beg processor\n" +
		"\\beg rules main\n" +
		"x --> X_CHAR\n" +
		"\\end\n" +
		"\\end\n"

	doc, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}

	processor := doc.RootNode.FirstChildNamed("processor")
	if processor == nil {
		t.Fatal("processor block not found")
	}
	rules := processor.FirstChildNamed("rules")
	if rules == nil {
		t.Fatal("nested rules block not found")
	}
	if rules.Line != 2 {
		t.Errorf("rules line = %d, want 2", rules.Line)
	}
}

func TestParseCommentsAndBlankLines(t *testing.T) {
	input := "\\** a comment line\n" +
		"\n" +
		"\\language sindarin\n"

	doc, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(doc.RootNode.Children) != 1 {
		t.Fatalf("got %d children, want 1 (comments and blanks dropped)", len(doc.RootNode.Children))
	}
	if doc.RootNode.Children[0].Line != 3 {
		t.Errorf("line = %d, want 3", doc.RootNode.Children[0].Line)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unclosed block", "\\beg rules main\na --> X\n"},
		{"stray end", "\\end\n"},
		{"unterminated quote", "\\substitute \"abc\n"},
		{"beg without name", "\\beg\n\\end\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, errs := Parse(tt.input)
			if len(errs) == 0 {
				t.Errorf("expected parse errors for %q, got none", tt.input)
			}
		})
	}
}

func TestTextNodesKeepRawContent(t *testing.T) {
	input := "\\beg rules main\n" +
		"  {VOWELS} === [a,e,i,o,u]\n" +
		"\\end\n"

	doc, errs := Parse(input)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	text := doc.RootNode.Children[0].Children[0]
	if diff := cmp.Diff("  {VOWELS} === [a,e,i,o,u]", text.Text()); diff != "" {
		t.Errorf("text content mismatch (-want +got):\n%s", diff)
	}
}
