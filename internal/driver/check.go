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

// CheckResult is the outcome for one file.
type CheckResult struct {
	Path     string
	FileSet  *source.FileSet
	FileID   source.FileID
	Bag      *diag.Bag
	Findings []guard.Finding
	Decls    []cparse.Decl // top-level declarations when the parser ran
	Parsed   bool
	Cached   bool
	LoadErr  error
	Timing   observ.Report
}

// Blocked reports whether the guard or the parser rejected the file.
func (r *CheckResult) Blocked() bool {
	return len(r.Findings) > 0 || r.Bag.HasErrors() && r.LoadErr == nil
}

// Stage returns the terminal stage for the file.
func (r *CheckResult) Stage() Stage {
	switch {
	case r.LoadErr != nil:
		return StageError
	case r.Blocked():
		return StageBlocked
	default:
		return StageDone
	}
}

// Check loads path, scans it and, with opts.Parse, parses it. Findings and
// syntax errors become diagnostics in the result's Bag; unreadable files
// become an IOLoadFileError diagnostic. The error is non-nil only for a
// bad option, a cancelled context or a parser failure unrelated to syntax.
func Check(ctx context.Context, path string, opts Options) (*CheckResult, error) {
	opts = opts.withDefaults()
	c, err := newChecker(opts)
	if err != nil {
		return nil, err
	}
	fs := source.NewFileSet(source.WithBaseDir(opts.BaseDir), source.WithNFC(opts.NFC))
	timer := opts.timer()

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopePass, "load", trace.CurrentSpan(ctx).SpanID)
	idx := timer.Begin("load")
	id, loadErr := fs.Load(path)
	timer.End(idx, "")
	span.End("")

	if loadErr != nil {
		return c.loadFailure(ctx, fs, path, loadErr, timer), nil
	}
	return c.checkFile(ctx, fs, id, timer)
}

type checker struct {
	opts    Options
	scanner *guard.Scanner
}

func newChecker(opts Options) (*checker, error) {
	catalog, err := catalogFor(opts.Engine)
	if err != nil {
		return nil, err
	}
	return &checker{opts: opts, scanner: guard.NewScanner(catalog)}, nil
}

func (c *checker) loadFailure(ctx context.Context, fs *source.FileSet, path string, err error, timer *observ.Timer) *CheckResult {
	id := fs.Add(path, nil, source.FileVirtual)
	bag := diag.NewBag(c.opts.MaxDiagnostics)
	reportLoadError(diag.BagReporter{Bag: bag}, fs.Get(id), err)
	emit(ctx, c.opts.Events, Event{Path: fs.Get(id).Path, Stage: StageError, Detail: err.Error()})
	return &CheckResult{
		Path:    fs.Get(id).Path,
		FileSet: fs,
		FileID:  id,
		Bag:     bag,
		LoadErr: err,
		Timing:  timer.Report(),
	}
}

// checkFile runs the guard and the parser on an already loaded file.
// It only reads fs, so several calls may share one FileSet.
func (c *checker) checkFile(ctx context.Context, fs *source.FileSet, id source.FileID, timer *observ.Timer) (*CheckResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := fs.Get(id)
	res := &CheckResult{
		Path:    file.Path,
		FileSet: fs,
		FileID:  id,
		Bag:     diag.NewBag(c.opts.MaxDiagnostics),
	}

	tracer := trace.FromContext(ctx)
	span := trace.Begin(tracer, trace.ScopeFile, "file:"+file.Path, trace.CurrentSpan(ctx).SpanID)
	defer func() {
		span.Set("stage", res.Stage().String()).End(fmt.Sprintf("findings=%d", len(res.Findings)))
	}()

	key := verdictKey(Digest(file.Hash), c.opts)
	if c.restore(res, file, key) {
		span.Set("cached", "true")
		res.Timing = timer.Report()
		emit(ctx, c.opts.Events, Event{Path: file.Path, Stage: res.Stage(), Detail: "cached"})
		return res, nil
	}

	emit(ctx, c.opts.Events, Event{Path: file.Path, Stage: StageScanning})
	idx := timer.Begin("guard")
	res.Findings = c.scan(file.Text())
	timer.End(idx, fmt.Sprintf("findings=%d", len(res.Findings)))

	reporter := diag.BagReporter{Bag: res.Bag}
	for _, f := range res.Findings {
		reportFinding(reporter, file, f)
		trace.Point(tracer, trace.ScopeLine, "finding", f.Err().Error(), span.ID())
	}

	var issues []cparse.SyntaxIssue
	if len(res.Findings) == 0 && c.opts.Parse {
		emit(ctx, c.opts.Events, Event{Path: file.Path, Stage: StageParsing})
		idx = timer.Begin("parse")
		decls, err := parseDecls(ctx, file.Content)
		timer.End(idx, fmt.Sprintf("decls=%d", len(decls)))

		var syn *cparse.SyntaxError
		switch {
		case errors.As(err, &syn):
			issues = syn.Issues
			reportSyntax(diag.NewDedupReporter(reporter), file, syn)
		case err != nil:
			return nil, fmt.Errorf("parse %s: %w", file.Path, err)
		}
		res.Parsed = true
		res.Decls = decls
	}

	c.store(key, res, issues)
	res.Timing = timer.Report()
	emit(ctx, c.opts.Events, Event{Path: file.Path, Stage: res.Stage()})
	return res, nil
}

func (c *checker) scan(text string) []guard.Finding {
	if c.opts.All {
		return c.scanner.FindAll(text)
	}
	if f, ok := c.scanner.Find(text); ok {
		return []guard.Finding{f}
	}
	return nil
}

func parseDecls(ctx context.Context, content []byte) ([]cparse.Decl, error) {
	p := cparse.NewParser()
	defer p.Close()
	tree, err := p.Parse(ctx, content)
	if err != nil {
		return nil, err
	}
	defer tree.Close()
	return tree.TopLevel(), nil
}

func (c *checker) restore(res *CheckResult, file *source.File, key Digest) bool {
	v, ok, err := c.opts.Cache.Get(key)
	if err != nil || !ok {
		return false
	}
	findings, ok := restoreFindings(v.Findings)
	if !ok {
		return false
	}
	reporter := diag.BagReporter{Bag: res.Bag}
	for _, f := range findings {
		reportFinding(reporter, file, f)
	}
	if len(v.Issues) > 0 {
		reportSyntax(diag.NewDedupReporter(reporter), file, &cparse.SyntaxError{Issues: v.Issues})
	}
	res.Findings = findings
	res.Parsed = v.Parsed
	res.Decls = v.Decls
	res.Cached = true
	return true
}

func (c *checker) store(key Digest, res *CheckResult, issues []cparse.SyntaxIssue) {
	if c.opts.Cache == nil {
		return
	}
	v := &Verdict{
		Engine:   c.opts.Engine.String(),
		Findings: cacheFindings(res.Findings),
		Parsed:   res.Parsed,
		Issues:   issues,
		Decls:    res.Decls,
	}
	if err := c.opts.Cache.Put(key, v); err != nil {
		diag.ReportWarning(diag.BagReporter{Bag: res.Bag}, diag.IOCacheError,
			source.Span{File: res.FileID}, "verdict cache: "+err.Error()).Emit()
	}
}
