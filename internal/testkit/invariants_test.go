package testkit

import (
	"strings"
	"testing"

	"cguard/internal/cparse"
	"cguard/internal/directive"
	"cguard/internal/guard"
	"cguard/internal/source"
)

func TestCheckFindingsAcceptsScannerOutput(t *testing.T) {
	text := "int a;\r\n  #define X\r\nint l = __LINE__;\nlast\r"
	fs := source.NewFileSet()
	file := fs.Get(fs.Add("a.c", []byte(text), source.FileVirtual))

	findings := guard.NewScanner(nil).FindAll(text)
	if len(findings) != 2 {
		t.Fatalf("findings = %d, want 2", len(findings))
	}
	if err := CheckFindings(file, findings); err != nil {
		t.Fatalf("CheckFindings: %v", err)
	}
}

func TestCheckFindingsRejects(t *testing.T) {
	fs := source.NewFileSet()
	file := fs.Get(fs.Add("a.c", []byte("#undef A\n#undef B\n"), source.FileVirtual))
	good := guard.Finding{Line: 0, Text: "#undef A", Kind: directive.Undef, Start: 0, End: 6}

	tests := []struct {
		name     string
		findings []guard.Finding
		want     string
	}{
		{"kind", []guard.Finding{{Kind: directive.Kind(99)}}, "invalid kind"},
		{"order", []guard.Finding{good, good}, "not after"},
		{"offset", []guard.Finding{{Line: 1, Text: "#undef B", Kind: directive.Undef, Offset: 12}}, "outside content"},
		{"text", []guard.Finding{{Line: 0, Text: "#undef B", Kind: directive.Undef}}, "content at offset"},
		{"range", []guard.Finding{{Line: 0, Text: "#undef A", Kind: directive.Undef, Start: 4, End: 20}}, "keyword range"},
	}
	for _, tt := range tests {
		err := CheckFindings(file, tt.findings)
		if err == nil || !strings.Contains(err.Error(), tt.want) {
			t.Errorf("%s: err = %v, want %q", tt.name, err, tt.want)
		}
	}
}

func TestCheckDecls(t *testing.T) {
	content := []byte("int a;\nint b;\n")
	ok := []cparse.Decl{
		{Kind: "declaration", Name: "a", Start: 0, End: 6, Line: 1},
		{Kind: "declaration", Name: "b", Start: 7, End: 13, Line: 2},
	}
	if err := CheckDecls(content, ok); err != nil {
		t.Fatalf("CheckDecls: %v", err)
	}
	overlap := []cparse.Decl{ok[1], ok[0]}
	if err := CheckDecls(content, overlap); err == nil {
		t.Error("expected an error for out-of-order decls")
	}
	if err := CheckDecls(content, []cparse.Decl{{Kind: "declaration", Start: 0, End: 99, Line: 1}}); err == nil {
		t.Error("expected an error for a span past the content")
	}
}

func TestCheckIssues(t *testing.T) {
	content := []byte("int f( {\n")
	if err := CheckIssues(content, []cparse.SyntaxIssue{{Start: 7, End: 8}}); err != nil {
		t.Fatalf("CheckIssues: %v", err)
	}
	if err := CheckIssues(content, []cparse.SyntaxIssue{{Start: 3, End: 2}}); err == nil {
		t.Error("expected an error for an inverted span")
	}
	if err := CheckIssues(content, []cparse.SyntaxIssue{{Start: 1, End: 1, Missing: true}}); err == nil {
		t.Error("expected an error for an unnamed missing node")
	}
}
