package driver

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cguard/internal/diag"
	"cguard/internal/testkit"
)

func sampleTree(t *testing.T) string {
	return writeTree(t, map[string]string{
		"src/main.c":      "int main(void) { return 0; }\n",
		"src/util.c":      "int util(void) { return __LINE__; }\n",
		"include/util.h":  "#pragma once\nint util(void);\n",
		"include/clean.h": "int clean(void);\n",
		"docs/readme.txt": "#define is not checked here\n",
		".git/hook.c":     "#include <hidden.h>\n",
	})
}

func TestCheckDirSortedResults(t *testing.T) {
	dir := sampleTree(t)

	res, err := CheckDir(context.Background(), dir, Options{Jobs: 2, Parse: true})
	require.NoError(t, err)

	var rel []string
	for _, f := range res.Files {
		rel = append(rel, res.FileSet.Get(f.FileID).FormatPath("relative", dir))
	}
	assert.Equal(t, []string{"include/clean.h", "include/util.h", "src/main.c", "src/util.c"}, rel)

	counts := res.Count()
	assert.Equal(t, 2, counts[StageDone])
	assert.Equal(t, 2, counts[StageBlocked])
	assert.True(t, res.HasErrors())

	bag := res.Bag(100)
	require.Equal(t, 2, bag.Len())
	assert.Equal(t, diag.GuardDirective, bag.Items()[0].Code)
	assert.Equal(t, diag.GuardMacro, bag.Items()[1].Code)
}

func TestCheckDirDeterministic(t *testing.T) {
	dir := sampleTree(t)
	want := ""
	for i := range 5 {
		res, err := CheckDir(context.Background(), dir, Options{Jobs: 4, All: true})
		require.NoError(t, err)
		got := diag.FormatShort(res.Bag(100).Items(), res.FileSet, true)
		if i == 0 {
			want = got
			continue
		}
		assert.Equal(t, want, got)
	}
	assert.Contains(t, want, "include/util.h:1:1 On line 0, cannot have preprocessor macro #pragma")
}

func TestCheckDirExtensions(t *testing.T) {
	dir := sampleTree(t)
	res, err := CheckDir(context.Background(), dir, Options{Extensions: []string{"TXT"}})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.True(t, res.Files[0].Blocked())
}

func TestCheckPathsMixed(t *testing.T) {
	dir := sampleTree(t)
	paths := []string{
		filepath.Join(dir, "src"),
		filepath.Join(dir, "include", "util.h"),
		filepath.Join(dir, "src", "main.c"),
		filepath.Join(dir, "nope.c"),
	}
	res, err := CheckPaths(context.Background(), paths, Options{})
	require.NoError(t, err)
	require.Len(t, res.Files, 4)

	counts := res.Count()
	assert.Equal(t, 1, counts[StageError])
	assert.Equal(t, 2, counts[StageBlocked])
	assert.Equal(t, 1, counts[StageDone])
}

func TestCheckDirEvents(t *testing.T) {
	dir := sampleTree(t)
	events := make(chan Event)
	var (
		mu   sync.Mutex
		seen = map[string][]Stage{}
		wg   sync.WaitGroup
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for ev := range events {
			mu.Lock()
			seen[ev.Path] = append(seen[ev.Path], ev.Stage)
			mu.Unlock()
		}
	}()

	_, err := CheckDir(context.Background(), dir, Options{Jobs: 3, Parse: true, Events: events})
	close(events)
	wg.Wait()
	require.NoError(t, err)

	require.Len(t, seen, 4)
	for path, stages := range seen {
		require.NotEmpty(t, stages, path)
		assert.Equal(t, StageQueued, stages[0], path)
		last := stages[len(stages)-1]
		assert.True(t, last.Terminal(), "%s ended in %s", path, last)
	}
}

func TestCheckDirEmpty(t *testing.T) {
	res, err := CheckDir(context.Background(), t.TempDir(), Options{})
	require.NoError(t, err)
	assert.Empty(t, res.Files)
	assert.False(t, res.HasErrors())
}

func TestCheckDirTimings(t *testing.T) {
	dir := sampleTree(t)
	res, err := CheckDir(context.Background(), dir, Options{Timings: true, Parse: true})
	require.NoError(t, err)

	var names []string
	for _, p := range res.Timing.Phases {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"load", "guard", "parse"}, names)

	bag := diag.NewBag(4)
	AppendTiming(bag, "check", dir, res.Timing)
	AppendTiming(bag, "check", dir, res.Timing)
	assert.Equal(t, 2, bag.Len())
	assert.Equal(t, diag.ObsTimings, bag.Items()[0].Code)
}

func TestCheckDirTestdata(t *testing.T) {
	dir := filepath.Join("..", "..", "testdata")
	res, err := CheckDir(context.Background(), dir, Options{All: true, Parse: true, Jobs: 3})
	require.NoError(t, err)

	counts := res.Count()
	assert.Equal(t, 2, counts[StageDone])
	assert.Equal(t, 5, counts[StageBlocked])

	want := strings.Join([]string{
		"error G1001 blocked/comment.c:3:3 On line 2, cannot have preprocessor macro #pragma",
		"error G1001 blocked/crlf.c:2:2 On line 1, cannot have preprocessor macro #error",
		"error G1001 blocked/guard.h:1:1 On line 0, cannot have preprocessor macro #ifndef",
		"error G1001 blocked/guard.h:2:1 On line 1, cannot have preprocessor macro #define",
		"error G1001 blocked/guard.h:4:1 On line 3, cannot have preprocessor macro #endif",
		"error G1001 blocked/include.c:2:1 On line 1, cannot have preprocessor macro #include",
		"error G1002 blocked/macro.c:1:33 On line 0, cannot have preprocessor macro __DATE__",
	}, "\n")
	assert.Equal(t, want, diag.FormatShort(res.Bag(100).Items(), res.FileSet, false))

	for _, f := range res.Files {
		file := res.FileSet.Get(f.FileID)
		require.NoError(t, testkit.CheckFindings(file, f.Findings), f.Path)
		require.NoError(t, testkit.CheckDecls(file.Content, f.Decls), f.Path)
	}
}
