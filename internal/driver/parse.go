package driver

import (
	"context"
	"errors"
	"fmt"

	"cguard/internal/cparse"
	"cguard/internal/diag"
	"cguard/internal/guard"
	"cguard/internal/observ"
	"cguard/internal/source"
	"cguard/internal/trace"
)

// Result is the outcome of Parse.
type Result struct {
	FileSet *source.FileSet
	FileID  source.FileID
	Tree    *cparse.Tree // nil unless Parse returned a nil error
	Bag     *diag.Bag    // the rejection, rendered as diagnostics
	Timing  observ.Report
}

// Close releases the syntax tree.
func (r *Result) Close() {
	if r != nil && r.Tree != nil {
		r.Tree.Close()
	}
}

// Parse guards and then parses one file. A file holding a directive or
// predefined macro yields a *guard.DirectiveError for its first offending
// line; a file the grammar rejects yields a *guard.ParseError wrapping a
// *cparse.SyntaxError. In both cases the returned Result still carries the
// loaded file and a Bag describing the rejection. The caller must Close the
// result.
func Parse(ctx context.Context, path string, opts Options) (*Result, error) {
	opts = opts.withDefaults()
	catalog, err := catalogFor(opts.Engine)
	if err != nil {
		return nil, err
	}
	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "parse", trace.CurrentSpan(ctx).SpanID)
	defer root.End("")

	timer := opts.timer()
	fs := source.NewFileSet(source.WithBaseDir(opts.BaseDir), source.WithNFC(opts.NFC))

	span := trace.Begin(tracer, trace.ScopePass, "load", root.ID())
	idx := timer.Begin("load")
	id, err := fs.Load(path)
	timer.End(idx, "")
	span.End("")
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	file := fs.Get(id)
	res := &Result{FileSet: fs, FileID: id, Bag: diag.NewBag(opts.MaxDiagnostics)}
	reporter := diag.BagReporter{Bag: res.Bag}

	span = trace.Begin(tracer, trace.ScopePass, "guard", root.ID())
	idx = timer.Begin("guard")
	f, found := guard.NewScanner(catalog).Find(file.Text())
	timer.End(idx, "")
	if found {
		span.End(f.Err().Error())
		reportFinding(reporter, file, f)
		res.Timing = timer.Report()
		return res, f.Err()
	}
	span.End("clean")

	span = trace.Begin(tracer, trace.ScopePass, "parse", root.ID())
	idx = timer.Begin("parse")
	p := cparse.NewParser()
	defer p.Close()
	tree, err := p.Parse(ctx, file.Content)
	timer.End(idx, "")
	res.Timing = timer.Report()

	var syn *cparse.SyntaxError
	switch {
	case errors.As(err, &syn):
		span.End(syn.Error())
		reportSyntax(diag.NewDedupReporter(reporter), file, syn)
		return res, &guard.ParseError{Err: syn}
	case err != nil:
		span.End(err.Error())
		return res, fmt.Errorf("parse %s: %w", path, err)
	}
	span.End("ok")
	res.Tree = tree
	return res, nil
}
