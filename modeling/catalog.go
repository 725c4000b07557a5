// Package modeling answers whether a class is already provided by a base
// modeling language. Known classes are imported by generated code instead of
// being regenerated.
package modeling

import (
	"bufio"
	_ "embed"
	"sort"
	"strings"
)

// Classification is the answer a Catalog gives for a class name.
type Classification int

const (
	// Generated means the class is not provided and must be generated.
	Generated Classification = iota
	// Known means the class is provided and is imported.
	Known
	// Ambiguous means the catalog cannot decide, e.g. the name only matches
	// a known class when case is ignored.
	Ambiguous
)

func (c Classification) String() string {
	switch c {
	case Known:
		return "known"
	case Generated:
		return "generated"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Catalog classifies class names.
type Catalog interface {
	Lookup(name string) Classification
}

// Canonicalizer is implemented by catalogs that can spell out the known
// name an ambiguous class matched.
type Canonicalizer interface {
	Canonical(name string) (string, bool)
}

// CatalogFunc adapts a function to Catalog.
type CatalogFunc func(name string) Classification

// Lookup implements Catalog.
func (f CatalogFunc) Lookup(name string) Classification { return f(name) }

//go:embed uml.txt
var umlNames string

// StaticCatalog is a fixed set of known names.
type StaticCatalog struct {
	names map[string]struct{}
	// folded maps a lowercased name to the first known spelling of it.
	folded map[string]string
}

// NewStaticCatalog returns a catalog knowing exactly names.
func NewStaticCatalog(names ...string) *StaticCatalog {
	c := &StaticCatalog{
		names:  make(map[string]struct{}, len(names)),
		folded: make(map[string]string, len(names)),
	}
	c.Add(names...)
	return c
}

// UML returns a catalog of the UML metaclasses provided by gaphor.UML.
func UML() *StaticCatalog {
	return NewStaticCatalog(parseNames(umlNames)...)
}

// Add extends the catalog. Blank names are ignored.
func (c *StaticCatalog) Add(names ...string) {
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		c.names[n] = struct{}{}
		if _, ok := c.folded[strings.ToLower(n)]; !ok {
			c.folded[strings.ToLower(n)] = n
		}
	}
}

// Lookup implements Catalog. An exact match is Known; a match that only
// holds ignoring case is Ambiguous.
func (c *StaticCatalog) Lookup(name string) Classification {
	if _, ok := c.names[name]; ok {
		return Known
	}
	if _, ok := c.folded[strings.ToLower(name)]; ok {
		return Ambiguous
	}
	return Generated
}

// Canonical returns the known spelling of name: name itself on an exact
// match, the case-folded match otherwise. ok is false for unknown names.
func (c *StaticCatalog) Canonical(name string) (string, bool) {
	if _, ok := c.names[name]; ok {
		return name, true
	}
	known, ok := c.folded[strings.ToLower(name)]
	return known, ok
}

// Names returns the known names, sorted.
func (c *StaticCatalog) Names() []string {
	out := make([]string, 0, len(c.names))
	for n := range c.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Len returns the number of known names.
func (c *StaticCatalog) Len() int { return len(c.names) }

func parseNames(text string) []string {
	var out []string
	sc := bufio.NewScanner(strings.NewReader(text))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out
}
