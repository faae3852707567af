package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"cguard/internal/cparse"
	"cguard/internal/directive"
	"cguard/internal/guard"
)

// Current schema version - increment when Verdict format changes
const cacheSchemaVersion uint16 = 1

// Cache stores per-file verdicts on disk keyed by content digest and the
// options that shape the verdict. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// CachedFinding is the stored form of a guard.Finding.
type CachedFinding struct {
	Line   int
	Kind   uint8
	Offset int
	Start  int
	End    int
	Text   string
}

// Verdict is what a check concluded about one file.
type Verdict struct {
	// Schema version for safe invalidation when format changes
	Schema uint16

	Engine   string
	Findings []CachedFinding

	// Parser outcome; Parsed is false when the parser did not run.
	Parsed bool
	Issues []cparse.SyntaxIssue
	Decls  []cparse.Decl
}

// OpenCache opens the cache under $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache opens a cache rooted at dir, creating it if needed.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "verdicts", key.String()+".mp")
}

// Put serializes and writes a verdict, replacing any previous one atomically.
func (c *Cache) Put(key Digest, v *Verdict) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err = os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	v.Schema = cacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(v); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a verdict. It reports false when none is stored or the stored
// one has another schema.
func (c *Cache) Get(key Digest) (*Verdict, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var v Verdict
	if err := msgpack.Unmarshal(data, &v); err != nil {
		return nil, false, fmt.Errorf("decode verdict %s: %w", key, err)
	}
	if v.Schema != cacheSchemaVersion {
		return nil, false, nil
	}
	return &v, true, nil
}

// DropAll removes every stored verdict.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	verdicts := filepath.Join(c.dir, "verdicts")
	old := verdicts + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(verdicts, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

func cacheFindings(fs []guard.Finding) []CachedFinding {
	if len(fs) == 0 {
		return nil
	}
	out := make([]CachedFinding, len(fs))
	for i, f := range fs {
		out[i] = CachedFinding{
			Line:   f.Line,
			Kind:   uint8(f.Kind),
			Offset: f.Offset,
			Start:  f.Start,
			End:    f.End,
			Text:   f.Text,
		}
	}
	return out
}

func restoreFindings(cf []CachedFinding) ([]guard.Finding, bool) {
	if len(cf) == 0 {
		return nil, true
	}
	out := make([]guard.Finding, len(cf))
	for i, f := range cf {
		k := directive.Kind(f.Kind)
		if !k.Valid() {
			return nil, false
		}
		out[i] = guard.Finding{
			Line:   f.Line,
			Text:   f.Text,
			Kind:   k,
			Offset: f.Offset,
			Start:  f.Start,
			End:    f.End,
		}
	}
	return out, true
}
