package diagfmt

import (
	"bytes"
	"encoding/json"
	"testing"

	"cguard/internal/diag"
	"cguard/internal/source"
)

// TestJSONBasic checks basic JSON formatting.
func TestJSONBasic(t *testing.T) {
	fs := source.NewFileSet()
	bag := guardBag(fs, "test.c", "int a;\n#define X 1\n", 7, 14,
		"On line 1, cannot have preprocessor macro #define")

	var buf bytes.Buffer
	opts := JSONOpts{
		IncludePositions: true,
		PathMode:         PathModeBasename,
		IncludeNotes:     true,
	}
	if err := JSON(&buf, bag, fs, opts); err != nil {
		t.Fatalf("JSON() error: %v", err)
	}

	var output DiagnosticsOutput
	if err := json.Unmarshal(buf.Bytes(), &output); err != nil {
		t.Fatalf("Invalid JSON output: %v\nOutput: %s", err, buf.String())
	}
	if output.Count != 1 || len(output.Diagnostics) != 1 {
		t.Fatalf("Expected 1 diagnostic, got count=%d len=%d", output.Count, len(output.Diagnostics))
	}

	d := output.Diagnostics[0]
	if d.Severity != "ERROR" {
		t.Errorf("Expected severity=ERROR, got %s", d.Severity)
	}
	if d.Code != "G1001" {
		t.Errorf("Expected code=G1001, got %s", d.Code)
	}
	if d.Message != "On line 1, cannot have preprocessor macro #define" {
		t.Errorf("unexpected message %q", d.Message)
	}
	want := LocationJSON{File: "test.c", StartByte: 7, EndByte: 14, StartLine: 2, StartCol: 1, EndLine: 2, EndCol: 8}
	if d.Location != want {
		t.Errorf("Location = %+v, want %+v", d.Location, want)
	}
	if len(d.Notes) != 1 || d.Notes[0].Message != "#define X 1" {
		t.Errorf("Notes = %+v", d.Notes)
	}
}

func TestJSONWithoutPositionsOrNotes(t *testing.T) {
	fs := source.NewFileSet()
	bag := guardBag(fs, "test.c", "__TIME__\n", 0, 8, "m")

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: PathModeBasename})
	d := output.Diagnostics[0]
	if d.Location.StartLine != 0 || d.Location.StartCol != 0 {
		t.Errorf("positions leaked: %+v", d.Location)
	}
	if d.Notes != nil {
		t.Errorf("notes leaked: %+v", d.Notes)
	}

	var buf bytes.Buffer
	if err := JSON(&buf, bag, fs, JSONOpts{PathMode: PathModeBasename}); err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(buf.Bytes(), &raw); err != nil {
		t.Fatal(err)
	}
	loc := raw["diagnostics"].([]any)[0].(map[string]any)["location"].(map[string]any)
	if _, ok := loc["start_line"]; ok {
		t.Error("start_line should be omitted")
	}
}

func TestJSONMaxLimit(t *testing.T) {
	fs := source.NewFileSet()
	fileID := fs.AddVirtual("many.c", []byte("#if\n#if\n#if\n#if\n#if\n"))
	bag := diag.NewBag(10)
	for i := range uint32(5) {
		bag.Add(diag.NewError(diag.GuardDirective, source.Span{File: fileID, Start: i * 4, End: i*4 + 3}, "m"))
	}

	output := BuildDiagnosticsOutput(bag, fs, JSONOpts{Max: 3})
	if output.Count != 3 || len(output.Diagnostics) != 3 {
		t.Errorf("Max not applied: count=%d", output.Count)
	}
	if bag.Len() != 5 {
		t.Errorf("bag was truncated to %d", bag.Len())
	}
}

func TestJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, nil, source.NewFileSet(), JSONOpts{}); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "{\n  \"diagnostics\": [],\n  \"count\": 0\n}\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestJSONPathModes(t *testing.T) {
	fs := source.NewFileSetWithBase("/home/user/project")
	fileID := fs.AddVirtual("/home/user/project/src/main.c", []byte("__STDC__\n"))
	bag := diag.NewBag(1)
	bag.Add(diag.NewError(diag.GuardMacro, source.Span{File: fileID, Start: 0, End: 8}, "m"))

	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAbsolute, "/home/user/project/src/main.c"},
		{PathModeRelative, "src/main.c"},
		{PathModeBasename, "main.c"},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			output := BuildDiagnosticsOutput(bag, fs, JSONOpts{PathMode: tt.mode})
			if got := output.Diagnostics[0].Location.File; got != tt.want {
				t.Errorf("File = %q, want %q", got, tt.want)
			}
		})
	}
}
