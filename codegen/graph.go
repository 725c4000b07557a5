package codegen

import (
	"sort"

	"go.uber.org/zap"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/model"
	"github.com/teranos/mmgen/modeling"
)

// Store is the read-only view of a model the generator needs.
type Store interface {
	SelectClasses(pred model.ClassPredicate) []*model.Class
	FilterAttributes(cls *model.Class, pred model.PropertyPredicate) []*model.Property
}

// ClassGraph is the classified model for one run. Every supertype recorded
// for a generated class is itself generated or known.
type ClassGraph struct {
	// Known classes in name order. They are imported, never generated.
	Known []*model.Class
	// Generated classes in name order.
	Generated []*model.Class

	supertypes map[*model.Class][]*model.Class
	referenced map[*model.Class]bool
	known      map[*model.Class]bool
	// importNames holds the catalog spelling of known classes imported
	// under a name that differs from the model's.
	importNames map[*model.Class]string
	renamed     map[string]string
}

func newClassGraph() *ClassGraph {
	return &ClassGraph{
		supertypes:  make(map[*model.Class][]*model.Class),
		referenced:  make(map[*model.Class]bool),
		known:       make(map[*model.Class]bool),
		importNames: make(map[*model.Class]string),
		renamed:     make(map[string]string),
	}
}

// Supertypes returns the ordered direct supertypes of a generated class.
func (g *ClassGraph) Supertypes(c *model.Class) []*model.Class {
	return g.supertypes[c]
}

// IsGenerated reports whether c gets a generated class body.
func (g *ClassGraph) IsGenerated(c *model.Class) bool {
	_, ok := g.supertypes[c]
	return ok
}

// IsKnown reports whether c is imported.
func (g *ClassGraph) IsKnown(c *model.Class) bool {
	return g.known[c]
}

// Name returns the name c is referred to by in generated code: the catalog
// spelling for an imported class, the model name otherwise.
func (g *ClassGraph) Name(c *model.Class) string {
	if name, ok := g.importNames[c]; ok {
		return name
	}
	return c.Name
}

// IsReferenced reports whether any generated class lists c as a supertype.
func (g *ClassGraph) IsReferenced(c *model.Class) bool {
	return g.referenced[c]
}

// BuildGraph classifies every public class in store and records the ordered
// supertypes of the generated ones: explicit generalizations first, then
// metaclasses extended through the base class attribute.
func BuildGraph(store Store, catalog modeling.Catalog, opts Options, log *zap.SugaredLogger) (*ClassGraph, error) {
	if log == nil {
		log = logger.Logger
	}

	classes := store.SelectClasses(func(c *model.Class) bool {
		return !opts.isPrivate(c.Name)
	})
	sortClasses(classes)

	g := newClassGraph()
	for _, cls := range classes {
		class, importName := classify(catalog, cls, opts, log)
		switch class {
		case modeling.Known:
			g.Known = append(g.Known, cls)
			g.known[cls] = true
			if importName != cls.Name {
				g.importNames[cls] = importName
				g.renamed[cls.Name] = importName
			}
		case modeling.Ambiguous:
			return nil, errors.WithHintf(
				errors.Wrapf(errors.ErrAmbiguous, "class %q", cls.Name),
				"rename the class or set generator.ambiguous to %q or %q",
				AmbiguousGenerate, AmbiguousImport)
		default:
			g.Generated = append(g.Generated, cls)
			g.supertypes[cls] = nil
		}
	}

	for _, cls := range g.Generated {
		var sups []*model.Class
		seen := make(map[*model.Class]bool)
		add := func(sup *model.Class, via string) {
			switch {
			case sup == cls:
				log.Warnw("Ignoring self generalization",
					logger.FieldClass, cls.Name, "via", via)
				return
			case opts.isPrivate(sup.Name):
				log.Debugw("Dropping private supertype",
					logger.FieldClass, cls.Name, logger.FieldSupertype, sup.Name)
				return
			case seen[sup]:
				return
			}
			seen[sup] = true
			sups = append(sups, sup)
			g.referenced[sup] = true
		}

		for _, sup := range cls.General() {
			add(sup, "generalization")
		}
		for _, meta := range extensionTargets(store, cls, opts, log) {
			add(meta, "extension")
		}
		g.supertypes[cls] = sups
	}

	return g, nil
}

// classify applies the ambiguity policy to the catalog answer. For a known
// class it also returns the name to import it by.
func classify(catalog modeling.Catalog, cls *model.Class, opts Options, log *zap.SugaredLogger) (modeling.Classification, string) {
	c := catalog.Lookup(cls.Name)
	if c != modeling.Ambiguous {
		return c, cls.Name
	}
	switch opts.Ambiguous {
	case AmbiguousImport:
		name := cls.Name
		if canon, ok := catalog.(modeling.Canonicalizer); ok {
			if known, ok := canon.Canonical(cls.Name); ok {
				name = known
			}
		}
		log.Warnw("Importing ambiguous class",
			logger.FieldClass, cls.Name, "import", name, logger.FieldPolicy, opts.Ambiguous)
		return modeling.Known, name
	case AmbiguousError:
		return modeling.Ambiguous, cls.Name
	default:
		log.Warnw("Generating ambiguous class", logger.FieldClass, cls.Name, logger.FieldPolicy, AmbiguousGenerate)
		return modeling.Generated, cls.Name
	}
}

// extensionTargets resolves the metaclasses a stereotype extends. An
// extension with a missing association, owned end or class is skipped.
func extensionTargets(store Store, cls *model.Class, opts Options, log *zap.SugaredLogger) []*model.Class {
	var out []*model.Class
	for _, attr := range store.FilterAttributes(cls, model.NameIs(opts.BaseClassAttribute)) {
		if attr.Association == nil || attr.Association.OwnedEnd == nil || attr.Association.OwnedEnd.Class == nil {
			log.Warnw("Skipping incomplete extension",
				logger.FieldClass, cls.Name, logger.FieldAttribute, attr.Name)
			continue
		}
		out = append(out, attr.Association.OwnedEnd.Class)
	}
	return out
}

// sortClasses orders by name, then by ID so equal names stay reproducible.
func sortClasses(classes []*model.Class) {
	sort.SliceStable(classes, func(i, j int) bool {
		if classes[i].Name != classes[j].Name {
			return classes[i].Name < classes[j].Name
		}
		return classes[i].ID < classes[j].ID
	})
}
