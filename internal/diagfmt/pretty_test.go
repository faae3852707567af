package diagfmt

import (
	"bytes"
	"strings"
	"testing"

	"cguard/internal/diag"
	"cguard/internal/source"
)

func guardBag(fs *source.FileSet, path, content string, start, end uint32, msg string) *diag.Bag {
	fileID := fs.AddVirtual(path, []byte(content))
	bag := diag.NewBag(10)
	d := diag.NewError(diag.GuardDirective, source.Span{File: fileID, Start: start, End: end}, msg)
	line := fs.Get(fileID).GetLine(1 + uint32(strings.Count(content[:start], "\n")))
	d = d.WithNote(source.Span{File: fileID, Start: start, End: end}, line)
	bag.Add(d)
	return bag
}

func TestPrettyGuardDiagnostic(t *testing.T) {
	fs := source.NewFileSet()
	bag := guardBag(fs, "test.c", "int a;\n#define X 1\nint b;\n", 7, 14,
		"On line 1, cannot have preprocessor macro #define")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, ShowNotes: true})

	want := "test.c:2:1: ERROR G1001: On line 1, cannot have preprocessor macro #define\n" +
		"2 | #define X 1\n" +
		"  | ^~~~~~~\n" +
		"  note: test.c:2:1: #define X 1\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyContextLines(t *testing.T) {
	fs := source.NewFileSet()
	content := "a\nb\nc\n#if 1\nd\ne\n"
	bag := guardBag(fs, "ctx.c", content, 6, 9, "On line 3, cannot have preprocessor macro #if")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Context: 1})

	want := "ctx.c:4:1: ERROR G1001: On line 3, cannot have preprocessor macro #if\n" +
		"3 | c\n" +
		"4 | #if 1\n" +
		"  | ^~~\n" +
		"5 | d\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestPrettyCaretAlignment(t *testing.T) {
	tests := []struct {
		name    string
		content string
		start   uint32
		end     uint32
		caret   string
	}{
		{"tab indent", "\t#define X\n", 1, 8, "  |     ^~~~~~~"},
		{"wide runes", "\u6f22\u5b57 __FILE__\n", 7, 15, "  |" + strings.Repeat(" ", 6) + "^~~~~~~~"},
		{"two-byte rune", "\u00e9 __LINE__\n", 3, 11, "  |   ^~~~~~~~"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := source.NewFileSet()
			bag := guardBag(fs, "a.c", tt.content, tt.start, tt.end, "m")

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
			lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
			if len(lines) != 3 {
				t.Fatalf("expected 3 lines, got:\n%s", buf.String())
			}
			if lines[2] != tt.caret {
				t.Errorf("caret line = %q, want %q", lines[2], tt.caret)
			}
		})
	}
}

func TestPrettyWidthClipsLongLines(t *testing.T) {
	fs := source.NewFileSet()
	content := "int x = __LINE__; /* " + strings.Repeat("x", 80) + " */\n"
	bag := guardBag(fs, "long.c", content, 8, 16, "m")

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename, Width: 20})
	lines := strings.Split(buf.String(), "\n")
	if !strings.HasSuffix(lines[1], "…") {
		t.Errorf("source line not clipped: %q", lines[1])
	}
	if lines[2] != "  |"+strings.Repeat(" ", 9)+"^~~~~~~~" {
		t.Errorf("caret line = %q", lines[2])
	}
}

func TestPrettyColor(t *testing.T) {
	fs := source.NewFileSet()
	bag := guardBag(fs, "c.c", "#pragma once\n", 0, 7, "m")

	var plain, colored bytes.Buffer
	Pretty(&plain, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	Pretty(&colored, bag, fs, PrettyOpts{PathMode: PathModeBasename, Color: true})

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output contains escapes:\n%q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output has no escapes:\n%q", colored.String())
	}
}

// TestPathModes checks the path rendering modes.
func TestPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	fileID := fs.AddVirtual("/home/user/project/src/test.c", []byte("#include <stdio.h>\n"))

	bag := diag.NewBag(10)
	bag.Add(diag.NewError(diag.GuardDirective, source.Span{File: fileID, Start: 0, End: 8}, "On line 0, cannot have preprocessor macro #include"))

	tests := []struct {
		name     string
		mode     PathMode
		contains string
	}{
		{"Absolute path", PathModeAbsolute, "/home/user/project/src/test.c:1:1"},
		{"Relative path", PathModeRelative, "src/test.c:1:1"},
		{"Basename only", PathModeBasename, "test.c:1:1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: tt.mode})
			output := buf.String()

			if !strings.Contains(output, tt.contains) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.contains, output)
			}
			if !strings.Contains(output, "ERROR G1001") {
				t.Error("Expected severity and code in output")
			}
		})
	}
}

// TestPathModeAuto checks automatic path selection.
func TestPathModeAuto(t *testing.T) {
	fs := source.NewFileSet()

	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{"Short path - as is", "test.c", "test.c:"},
		{"Long absolute path - basename", "/very/long/absolute/path/to/some/nested/directory/file.c", "\nfile.c:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fileID := fs.AddVirtual(tt.path, []byte("int __DATE__;\n"))

			bag := diag.NewBag(10)
			bag.Add(diag.New(diag.SevWarning, diag.GuardMacro, source.Span{File: fileID, Start: 4, End: 12}, "Test warning"))

			var buf bytes.Buffer
			Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeAuto})
			output := "\n" + buf.String()

			if !strings.Contains(output, tt.expected) {
				t.Errorf("Expected output to contain %q, got:\n%s", tt.expected, output)
			}
		})
	}
}

func TestPrettyWithoutFile(t *testing.T) {
	bag := diag.NewBag(2)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: 7}, "open missing.c: no such file or directory"))

	var buf bytes.Buffer
	Pretty(&buf, bag, source.NewFileSet(), PrettyOpts{})
	if got, want := buf.String(), "ERROR IO4001: open missing.c: no such file or directory\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParsePathMode(t *testing.T) {
	for _, m := range []PathMode{PathModeAuto, PathModeAbsolute, PathModeRelative, PathModeBasename} {
		got, err := ParsePathMode(m.String())
		if err != nil || got != m {
			t.Errorf("ParsePathMode(%q) = %v, %v", m.String(), got, err)
		}
	}
	if _, err := ParsePathMode("nope"); err == nil {
		t.Error("ParsePathMode(nope) succeeded")
	}
}

func TestPrettyEmptyFileHasNoSnippet(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.Add("gone.c", nil, source.FileVirtual)
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.IOLoadFileError, source.Span{File: fileID}, "failed to load file: missing"))

	var buf bytes.Buffer
	Pretty(&buf, bag, fs, PrettyOpts{PathMode: PathModeBasename})
	if got, want := buf.String(), "gone.c:1:1: ERROR IO4001: failed to load file: missing\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
