package guard

import (
	"errors"
	"reflect"
	"slices"
	"strings"
	"sync"
	"testing"

	"cguard/internal/directive"
)

func TestScanScenarios(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		wantLine int
		wantText string
		wantKind directive.Kind
		clean    bool
	}{
		{
			name:  "plain program",
			text:  "int main(void){\n  return 0;\n}\n",
			clean: true,
		},
		{
			name:     "include on first line",
			text:     "#include<stdio.h>\nint main(void){return 0;}\n",
			wantLine: 0,
			wantText: "#include<stdio.h>",
			wantKind: directive.Include,
		},
		{
			name:     "line macro inside printf",
			text:     "int main(void){\n  printf(\"%d\\n\", __LINE__);\n  return 0;\n}\n",
			wantLine: 1,
			wantText: "  printf(\"%d\\n\", __LINE__);",
			wantKind: directive.Line,
		},
		{
			name:  "empty input",
			text:  "",
			clean: true,
		},
		{
			name:     "leading blank line shifts index",
			text:     "\n#include<stdio.h>\nint main(void){}\n",
			wantLine: 1,
			wantText: "#include<stdio.h>",
			wantKind: directive.Include,
		},
		{
			name:     "no trailing newline",
			text:     "int x;\n   #define FOO",
			wantLine: 1,
			wantText: "   #define FOO",
			wantKind: directive.Define,
		},
		{
			name:     "crlf terminators are stripped",
			text:     "int x;\r\n#pragma once\r\nint y;\r\n",
			wantLine: 1,
			wantText: "#pragma once",
			wantKind: directive.Pragma,
		},
		{
			name:     "first offending line wins",
			text:     "int a = __LINE__;\n#define B 2\n",
			wantLine: 0,
			wantText: "int a = __LINE__;",
			wantKind: directive.Line,
		},
		{
			name:     "lowest identity wins on one line",
			text:     "#define HERE __FILE__\n",
			wantLine: 0,
			wantText: "#define HERE __FILE__",
			wantKind: directive.Define,
		},
		{
			name:  "directive text after code is not a directive",
			text:  "  x = 5; // #define not real\nint x = 5;\n",
			clean: true,
		},
		{
			name:     "string literal is a known false positive",
			text:     "const char *s = \"__DATE__\";\n",
			wantLine: 0,
			wantText: "const char *s = \"__DATE__\";",
			wantKind: directive.Date,
		},
	}

	s := NewScanner(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Scan(tt.text)
			if tt.clean {
				if err != nil {
					t.Fatalf("Scan: unexpected error %v", err)
				}
				return
			}

			var de *DirectiveError
			if !errors.As(err, &de) {
				t.Fatalf("expected *DirectiveError, got %T (%v)", err, err)
			}
			if de.Line != tt.wantLine || de.Text != tt.wantText || de.Kind != tt.wantKind {
				t.Errorf("got line %d %q kind %v, want line %d %q kind %v",
					de.Line, de.Text, de.Kind, tt.wantLine, tt.wantText, tt.wantKind)
			}
			if !errors.Is(err, ErrDirectiveDetected) {
				t.Errorf("%v is not ErrDirectiveDetected", err)
			}
		})
	}
}

func TestDirectiveErrorMessage(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"int main(void){\n  printf(\"%d\\n\", __LINE__);\n}\n", "On line 1, cannot have preprocessor macro __LINE__"},
		{"#include<stdio.h>\n", "On line 0, cannot have preprocessor macro #include"},
	}
	for _, tt := range tests {
		err := Scan(tt.text)
		if err == nil {
			t.Fatalf("Scan(%q) = nil", tt.text)
		}
		if err.Error() != tt.want {
			t.Errorf("Scan(%q) = %q, want %q", tt.text, err.Error(), tt.want)
		}
	}
}

func TestFindOffsets(t *testing.T) {
	text := "int a;\r\nint b;\n  #ifdef X\n"
	f, ok := NewScanner(nil).Find(text)
	if !ok {
		t.Fatal("no finding")
	}
	if f.Line != 2 || f.Kind != directive.Ifdef {
		t.Errorf("got line %d kind %v, want 2 #ifdef", f.Line, f.Kind)
	}
	if want := len("int a;\r\nint b;\n"); f.Offset != want {
		t.Errorf("offset = %d, want %d", f.Offset, want)
	}
	if got := f.Text[f.Start:f.End]; got != "#ifdef" {
		t.Errorf("keyword in line = %q", got)
	}
	if got := text[f.Offset+f.Start : f.Offset+f.End]; got != "#ifdef" {
		t.Errorf("keyword in text = %q", got)
	}
}

func TestLoneCarriageReturnIsKept(t *testing.T) {
	f, ok := NewScanner(nil).Find("int x = __LINE__;\r")
	if !ok {
		t.Fatal("no finding")
	}
	if f.Text != "int x = __LINE__;\r" {
		t.Errorf("text = %q", f.Text)
	}
}

func TestScanIsIdempotent(t *testing.T) {
	text := "int x;\n#if 0\n#endif\n"
	s := NewScanner(nil)
	first := s.Scan(text)
	second := s.Scan(text)
	if first == nil {
		t.Fatal("Scan = nil")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated Scan differs: %v vs %v", first, second)
	}
}

func TestFindAll(t *testing.T) {
	text := strings.Join([]string{
		"#ifndef GUARD_H",
		"#define GUARD_H",
		"int f(void);",
		"const char *w = __FILE__;",
		"#endif",
	}, "\n")
	all := NewScanner(nil).FindAll(text)
	if len(all) != 4 {
		t.Fatalf("FindAll = %d findings, want 4", len(all))
	}

	lines := make([]int, len(all))
	kinds := make([]directive.Kind, len(all))
	for i, f := range all {
		lines[i] = f.Line
		kinds[i] = f.Kind
	}
	if want := []int{0, 1, 3, 4}; !slices.Equal(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if want := []directive.Kind{directive.Ifndef, directive.Define, directive.File, directive.Endif}; !slices.Equal(kinds, want) {
		t.Errorf("kinds = %v, want %v", kinds, want)
	}
	if got := NewScanner(nil).FindAll("int x;\n"); len(got) != 0 {
		t.Errorf("clean text produced %v", got)
	}
}

func TestScannerWithRE2Catalog(t *testing.T) {
	c, err := directive.NewCatalog(directive.WithEngine(directive.EngineRE2))
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	s := NewScanner(c)
	if s.Catalog() != c {
		t.Error("scanner does not use the given catalog")
	}

	f, ok := s.Find("int main(void){\n  printf(\"%d\\n\", __LINE__);\n}\n")
	if !ok || f.Line != 1 || f.Kind != directive.Line {
		t.Errorf("Find = %+v, %v; want line 1 __LINE__", f, ok)
	}
}

func TestConcurrentScansShareCatalog(t *testing.T) {
	s := NewScanner(nil)
	inputs := []string{
		"int main(void){return 0;}\n",
		"#include <stdio.h>\n",
		"int x = __STDC__;\n",
	}
	want := make([]error, len(inputs))
	for i, in := range inputs {
		want[i] = s.Scan(in)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i, in := range inputs {
				if got := s.Scan(in); !reflect.DeepEqual(got, want[i]) {
					t.Errorf("Scan(%q) = %v, want %v", in, got, want[i])
				}
			}
		}()
	}
	wg.Wait()
}

func TestParseError(t *testing.T) {
	inner := errors.New("unexpected token `}`")
	err := error(&ParseError{Err: inner})

	if !errors.Is(err, ErrParseFailed) || !errors.Is(err, inner) {
		t.Errorf("%v does not match ErrParseFailed and its cause", err)
	}
	if errors.Is(err, ErrDirectiveDetected) {
		t.Errorf("%v matches ErrDirectiveDetected", err)
	}
	if got := err.Error(); got != "C syntax error: unexpected token `}`" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&ParseError{}).Error(); got != "C syntax error" {
		t.Errorf("empty ParseError = %q", got)
	}
}
