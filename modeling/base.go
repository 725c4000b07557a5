package modeling

import (
	"github.com/teranos/mmgen/errors"
)

// Base catalog names accepted by NewCatalog.
const (
	BaseUML  = "uml"
	BaseNone = "none"
)

// NewCatalog builds the catalog for a run: the named base catalog extended
// with extra known names.
func NewCatalog(base string, extra []string) (*StaticCatalog, error) {
	var c *StaticCatalog
	switch base {
	case BaseUML, "":
		c = UML()
	case BaseNone:
		c = NewStaticCatalog()
	default:
		return nil, errors.WithHintf(
			errors.Newf("unknown base catalog %q", base),
			"use %q or %q", BaseUML, BaseNone)
	}
	c.Add(extra...)
	return c, nil
}
