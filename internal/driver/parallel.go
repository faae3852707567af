package driver

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"cguard/internal/diag"
	"cguard/internal/observ"
	"cguard/internal/source"
	"cguard/internal/trace"
)

// DirResult holds the per-file results of CheckPaths, sorted by path.
type DirResult struct {
	FileSet *source.FileSet
	Files   []*CheckResult
	Timing  observ.Report
}

// Bag merges every file's diagnostics for display, sorted and truncated to
// limit. Errors are kept ahead of warnings and notes when truncating; the
// exit status must still come from HasErrors, which sees every file.
func (r *DirResult) Bag(limit int) *diag.Bag {
	all := make([]diag.Diagnostic, 0, len(r.Files))
	for _, f := range r.Files {
		all = append(all, f.Bag.Items()...)
	}
	bag := diag.NewBag(limit)
	if len(all) > int(bag.Cap()) {
		slices.SortStableFunc(all, func(a, b diag.Diagnostic) int {
			return cmp.Compare(b.Severity, a.Severity)
		})
	}
	for _, d := range all {
		if !bag.Add(d) {
			break
		}
	}
	bag.Sort()
	return bag
}

// HasErrors reports whether any file produced an error diagnostic.
func (r *DirResult) HasErrors() bool {
	for _, f := range r.Files {
		if f.Bag.HasErrors() {
			return true
		}
	}
	return false
}

// Count returns the number of files ending in each terminal stage.
func (r *DirResult) Count() map[Stage]int {
	out := make(map[Stage]int, 3)
	for _, f := range r.Files {
		out[f.Stage()]++
	}
	return out
}

// CheckDir checks every file under dir whose extension is listed in
// opts.Extensions.
func CheckDir(ctx context.Context, dir string, opts Options) (*DirResult, error) {
	if opts.BaseDir == "" {
		opts.BaseDir = dir
	}
	return CheckPaths(ctx, []string{dir}, opts)
}

// CheckPaths checks files and directories. Directories are walked for
// opts.Extensions; explicit files are checked whatever their suffix. Files
// are loaded up front into one FileSet and then checked in parallel, at most
// opts.Jobs at a time.
func CheckPaths(ctx context.Context, paths []string, opts Options) (*DirResult, error) {
	opts = opts.withDefaults()
	c, err := newChecker(opts)
	if err != nil {
		return nil, err
	}

	tracer := trace.FromContext(ctx)
	root := trace.Begin(tracer, trace.ScopeDriver, "check", trace.CurrentSpan(ctx).SpanID)
	defer root.End("")
	ctx = trace.WithSpanContext(ctx, trace.SpanContext{SpanID: root.ID()})

	files, err := collectFiles(paths, opts.Extensions)
	if err != nil {
		return nil, err
	}

	fileSet := source.NewFileSet(source.WithBaseDir(opts.BaseDir), source.WithNFC(opts.NFC))
	result := &DirResult{FileSet: fileSet, Files: make([]*CheckResult, len(files))}
	if len(files) == 0 {
		return result, nil
	}

	// FileSet is not safe for concurrent writes: load everything first.
	loadTimer := opts.timer()
	span := trace.Begin(tracer, trace.ScopePass, "load", root.ID())
	loadIdx := loadTimer.Begin("load")
	fileIDs := make([]source.FileID, len(files))
	loadErrors := make(map[int]error)
	for i, path := range files {
		emit(ctx, opts.Events, Event{Path: path, Stage: StageQueued})
		id, loadErr := fileSet.Load(path)
		if loadErr != nil {
			loadErrors[i] = loadErr
			continue
		}
		fileIDs[i] = id
	}
	loadTimer.End(loadIdx, fmt.Sprintf("files=%d", len(files)))
	span.Set("files", fmt.Sprint(len(files))).End("")

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(files))))

	for i, path := range files {
		if loadErr, failed := loadErrors[i]; failed {
			// Sequential: loadFailure adds to the FileSet.
			result.Files[i] = c.loadFailure(ctx, fileSet, path, loadErr, nil)
		}
	}
	for i := range files {
		if result.Files[i] != nil {
			continue
		}
		g.Go(func() error {
			// index i is unique to this goroutine
			res, err := c.checkFile(gctx, fileSet, fileIDs[i], opts.timer())
			if err != nil {
				return err
			}
			result.Files[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Timing = loadTimer.Report()
	for _, f := range result.Files {
		result.Timing = result.Timing.Merge(f.Timing)
	}
	return result, nil
}

// collectFiles expands directories into their matching files and returns a
// sorted, de-duplicated list.
func collectFiles(paths []string, exts []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		p = filepath.ToSlash(filepath.Clean(p))
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Missing files surface later as load diagnostics.
			files = append(files, p)
			continue
		}
		found, err := listSourceFiles(p, exts)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// listSourceFiles returns the sorted files under dir with one of exts.
// Hidden directories are skipped.
func listSourceFiles(dir string, exts []string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if slices.Contains(exts, strings.ToLower(filepath.Ext(path))) {
			files = append(files, filepath.ToSlash(path))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slices.Sort(files)
	return files, nil
}
