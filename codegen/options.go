package codegen

import (
	"strings"

	"github.com/teranos/mmgen/errors"
)

// AmbiguousPolicy decides what happens to a class the catalog cannot
// classify.
type AmbiguousPolicy string

const (
	// AmbiguousGenerate treats the class as generated and logs a warning.
	AmbiguousGenerate AmbiguousPolicy = "generate"
	// AmbiguousImport treats the class as known.
	AmbiguousImport AmbiguousPolicy = "import"
	// AmbiguousError fails the run.
	AmbiguousError AmbiguousPolicy = "error"
)

// Options controls graph building and emission.
type Options struct {
	// PrivateMarker excludes classes whose name starts with it.
	PrivateMarker string
	// BaseClassAttribute names the stereotype attribute that extends a
	// metaclass. It is never rendered.
	BaseClassAttribute string
	// BaseModule is the Python module known classes are imported from.
	BaseModule string
	// PropertiesModule provides attribute, association, relation_one and
	// relation_many.
	PropertiesModule string
	Ambiguous        AmbiguousPolicy
}

// DefaultOptions returns the options matching gaphor's own layout.
func DefaultOptions() Options {
	return Options{
		PrivateMarker:      "~",
		BaseClassAttribute: "baseClass",
		BaseModule:         "gaphor.UML",
		PropertiesModule:   "gaphor.core.modeling.properties",
		Ambiguous:          AmbiguousGenerate,
	}
}

// Validate checks the options for values emission cannot work with.
func (o Options) Validate() error {
	if o.BaseClassAttribute == "" {
		return errors.New("base class attribute must not be empty")
	}
	if o.BaseModule == "" || o.PropertiesModule == "" {
		return errors.New("import modules must not be empty")
	}
	switch o.Ambiguous {
	case AmbiguousGenerate, AmbiguousImport, AmbiguousError:
	default:
		return errors.WithHintf(
			errors.Newf("invalid ambiguous policy %q", o.Ambiguous),
			"use %q, %q or %q", AmbiguousGenerate, AmbiguousImport, AmbiguousError)
	}
	return nil
}

func (o Options) isPrivate(name string) bool {
	return o.PrivateMarker != "" && strings.HasPrefix(name, o.PrivateMarker)
}
