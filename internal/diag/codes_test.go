package diag

import "testing"

func TestCodeID(t *testing.T) {
	tests := []struct {
		code Code
		want string
	}{
		{GuardDirective, "G1001"},
		{GuardMacro, "G1002"},
		{ParseSyntax, "P2001"},
		{ParseMissing, "P2002"},
		{IOLoadFileError, "IO4001"},
		{ObsTimings, "OBS6001"},
		{UnknownCode, "E0000"},
	}
	for _, tt := range tests {
		if got := tt.code.ID(); got != tt.want {
			t.Errorf("%d.ID() = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestEveryCodeHasTitle(t *testing.T) {
	seen := map[string]Code{}
	for _, c := range Codes() {
		if _, ok := codeDescription[c]; !ok {
			t.Errorf("code %d has no description", c)
		}
		if prev, dup := seen[c.ID()]; dup {
			t.Errorf("codes %d and %d share id %s", prev, c, c.ID())
		}
		seen[c.ID()] = c
	}
	if got := Code(9999).Title(); got != codeDescription[UnknownCode] {
		t.Errorf("unknown code title = %q", got)
	}
}

func TestCodeString(t *testing.T) {
	if got, want := GuardDirective.String(), "[G1001]: Preprocessor directive is not allowed"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"error": SevError, "WARN": SevWarning, " Info ": SevInfo} {
		got, err := ParseSeverity(in)
		if err != nil || got != want {
			t.Errorf("ParseSeverity(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseSeverity("fatal"); err == nil {
		t.Error("ParseSeverity(fatal) succeeded")
	}
}
