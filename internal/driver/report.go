package driver

import (
	"fmt"

	"cguard/internal/cparse"
	"cguard/internal/diag"
	"cguard/internal/directive"
	"cguard/internal/guard"
	"cguard/internal/source"
)

// reportFinding emits the canonical guard message on the keyword with a
// note carrying the literal offending line.
func reportFinding(r diag.Reporter, file *source.File, f guard.Finding) {
	code := diag.GuardDirective
	if f.Kind.Class() == directive.ClassMacro {
		code = diag.GuardMacro
	}
	primary := file.Span(f.Offset+f.Start, f.Offset+f.End)
	line := file.Span(f.Offset, f.Offset+len(f.Text))
	diag.ReportError(r, code, primary, f.Err().Error()).
		WithNote(line, f.Text).
		Emit()
}

func reportSyntax(r diag.Reporter, file *source.File, syn *cparse.SyntaxError) {
	for _, issue := range syn.Issues {
		code, msg := diag.ParseSyntax, "C syntax error: unexpected input"
		if issue.Missing {
			code, msg = diag.ParseMissing, fmt.Sprintf("C syntax error: missing %q", issue.Node)
		}
		diag.ReportError(r, code, file.Span(int(issue.Start), int(issue.End)), msg).Emit()
	}
}

func reportLoadError(r diag.Reporter, file *source.File, err error) {
	d := diag.NewError(diag.IOLoadFileError, file.Span(0, 0), "failed to load file: "+err.Error())
	r.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes)
}
