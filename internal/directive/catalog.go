package directive

import (
	"fmt"
	"strings"
	"sync"
)

// Catalog is the compiled, read-only form of the directive table.
type Catalog struct {
	engine   Engine
	entries  [kindCount]Entry
	patterns [kindCount]matcher
	// prefilter is the alternation of every pattern; a line it rejects
	// cannot match any single row.
	prefilter matcher
}

// Option configures NewCatalog.
type Option func(*Catalog)

// WithEngine selects the regex engine used to compile the patterns.
func WithEngine(e Engine) Option {
	return func(c *Catalog) {
		c.engine = e
	}
}

// NewCatalog compiles every row of the table.
func NewCatalog(opts ...Option) (*Catalog, error) {
	c := &Catalog{engine: EngineStd}
	for _, opt := range opts {
		opt(c)
	}

	alts := make([]string, 0, kindCount)
	for i := range table {
		row := table[i]
		if row.Display == "" || row.Pattern == "" {
			return nil, fmt.Errorf("directive: catalog row %d has no pattern", i)
		}
		row.Kind = Kind(i)
		m, err := c.engine.compile(row.Pattern)
		if err != nil {
			return nil, fmt.Errorf("directive: compile %s: %w", row.Display, err)
		}
		c.entries[i] = row
		c.patterns[i] = m
		alts = append(alts, "(?:"+row.Pattern+")")
	}

	pre, err := c.engine.compile(strings.Join(alts, "|"))
	if err != nil {
		return nil, fmt.Errorf("directive: compile prefilter: %w", err)
	}
	c.prefilter = pre
	return c, nil
}

var defaultCatalog = sync.OnceValues(func() (*Catalog, error) {
	return NewCatalog()
})

// Default returns the process-wide catalog on the standard engine, building
// it on first use.
func Default() *Catalog {
	c, err := defaultCatalog()
	if err != nil {
		panic(err)
	}
	return c
}

// Engine reports the engine the catalog was compiled with.
func (c *Catalog) Engine() Engine {
	return c.engine
}

// Entries returns a copy of the table in identity order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries[:])
	return out
}

// Match returns every kind whose pattern matches line, in identity order.
// line is expected to hold a single physical line without its terminator.
func (c *Catalog) Match(line string) []Kind {
	if !c.prefilter.MatchString(line) {
		return nil
	}
	var kinds []Kind
	for i, m := range c.patterns {
		if m.MatchString(line) {
			kinds = append(kinds, Kind(i))
		}
	}
	return kinds
}

// First returns the lowest-identity kind matching line. It gives the same
// answer as Match(line)[0] without evaluating the rows after the winner.
func (c *Catalog) First(line string) (Kind, bool) {
	if !c.prefilter.MatchString(line) {
		return 0, false
	}
	for i, m := range c.patterns {
		if m.MatchString(line) {
			return Kind(i), true
		}
	}
	return 0, false
}

// Locate returns the byte range of k's keyword or token inside line.
// Leading whitespace before a directive is not part of the range.
func (c *Catalog) Locate(k Kind, line string) (start, end int, ok bool) {
	if !k.Valid() {
		return 0, 0, false
	}
	loc := c.patterns[k].FindStringIndex(line)
	if loc == nil {
		return 0, 0, false
	}
	start, end = loc[0], loc[1]
	if c.entries[k].Class == ClassDirective {
		start = end - len(c.entries[k].Display)
	}
	return start, end, true
}
