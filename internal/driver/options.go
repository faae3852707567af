package driver

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"cguard/internal/directive"
	"cguard/internal/observ"
)

// DefaultExtensions are the file suffixes CheckDir picks up.
var DefaultExtensions = []string{".c", ".h"}

const defaultMaxDiagnostics = 100

// Options configures Parse, Check and CheckPaths.
type Options struct {
	MaxDiagnostics int
	// Parse runs the C grammar after a clean guard scan. Parse always does.
	Parse bool
	// All reports every offending line instead of stopping at the first.
	All        bool
	Engine     directive.Engine
	NFC        bool
	Jobs       int      // 0 means GOMAXPROCS
	Extensions []string // suffixes picked up when walking directories
	BaseDir    string   // relative paths are rendered against it
	Cache      *Cache   // nil disables the verdict cache
	Timings    bool
	// Events receives progress updates. Sends block until received or the
	// context is done.
	Events chan<- Event
}

func (o Options) withDefaults() Options {
	if o.MaxDiagnostics <= 0 {
		o.MaxDiagnostics = defaultMaxDiagnostics
	}
	if len(o.Extensions) == 0 {
		o.Extensions = DefaultExtensions
	}
	o.Extensions = normalizeExtensions(o.Extensions)
	return o
}

func (o Options) timer() *observ.Timer {
	if !o.Timings {
		return nil
	}
	return observ.NewTimer()
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		out = append(out, e)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

var re2Catalog = sync.OnceValues(func() (*directive.Catalog, error) {
	return directive.NewCatalog(directive.WithEngine(directive.EngineRE2))
})

func catalogFor(e directive.Engine) (*directive.Catalog, error) {
	switch e {
	case directive.EngineStd:
		return directive.Default(), nil
	case directive.EngineRE2:
		return re2Catalog()
	}
	return nil, fmt.Errorf("unknown pattern engine %v", e)
}
