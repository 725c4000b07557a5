package codegen

import (
	"fmt"
	"io"
	"strings"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/model"
)

// Header is the first line of every generated module.
const Header = "# Code generated by mmgen. DO NOT EDIT."

// propertyNames are imported from Options.PropertiesModule.
var propertyNames = []string{"attribute", "association", "relation_one", "relation_many"}

// errWriter keeps the first write error so emission code can write freely
// and check once.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}

// runContext is the state of a single emission. It is created per run and
// never shared.
type runContext struct {
	graph *ClassGraph
	store Store
	opts  Options
	out   *errWriter

	// written is the write-once set, seeded with the known classes.
	written    map[*model.Class]bool
	inProgress map[*model.Class]bool
	order      []*model.Class
}

func newRunContext(g *ClassGraph, store Store, opts Options, w io.Writer) *runContext {
	rc := &runContext{
		graph:      g,
		store:      store,
		opts:       opts,
		out:        &errWriter{w: w},
		written:    make(map[*model.Class]bool, len(g.Known)+len(g.Generated)),
		inProgress: make(map[*model.Class]bool),
	}
	for _, cls := range g.Known {
		rc.written[cls] = true
	}
	return rc
}

// emitAll writes the import block followed by every generated class.
func (rc *runContext) emitAll() error {
	rc.writeImports()
	for _, cls := range rc.graph.Generated {
		if err := rc.emit(cls); err != nil {
			return err
		}
	}
	return rc.out.err
}

func (rc *runContext) writeImports() {
	rc.out.printf("%s\n\n", Header)
	rc.out.printf("from %s import %s\n", rc.opts.PropertiesModule, strings.Join(propertyNames, ", "))
	imported := make(map[string]bool, len(rc.graph.Known))
	for _, cls := range rc.graph.Known {
		name := rc.graph.Name(cls)
		if imported[name] {
			continue
		}
		imported[name] = true
		rc.out.printf("from %s import %s\n", rc.opts.BaseModule, name)
	}
}

// emit writes cls after its supertypes. Classes already written are skipped.
func (rc *runContext) emit(cls *model.Class) error {
	if rc.written[cls] {
		return nil
	}
	if rc.inProgress[cls] {
		return errors.Wrapf(errors.ErrCycle, "class %q requires itself", cls.Name)
	}
	rc.inProgress[cls] = true

	sups := rc.graph.Supertypes(cls)
	for _, sup := range sups {
		if err := rc.emit(sup); err != nil {
			return err
		}
	}

	supNames := make([]string, len(sups))
	for i, sup := range sups {
		supNames[i] = rc.graph.Name(sup)
	}
	rc.out.printf("\nclass %s(%s):\n", cls.Name, strings.Join(supNames, ", "))
	rc.writeBody(cls)

	delete(rc.inProgress, cls)
	rc.written[cls] = true
	rc.order = append(rc.order, cls)
	return rc.out.err
}

// typeName renders a declared type, following the import spelling of
// ambiguous classes.
func (rc *runContext) typeName(raw string) string {
	if name, ok := rc.graph.renamed[raw]; ok {
		return name
	}
	return renderType(raw, rc.opts)
}

// writeBody renders plain attributes, then association ends, then
// operations. A class without any of them gets a pass body. Ends pointing
// at a private class are left out.
func (rc *runContext) writeBody(cls *model.Class) {
	features := 0

	for _, a := range rc.store.FilterAttributes(cls, model.NoAssociation) {
		rc.out.printf("    %s: attribute[%s]\n", a.Name, rc.typeName(a.TypeValue))
		features++
	}

	for _, a := range rc.store.FilterAttributes(cls, model.NamedAssociationEnd) {
		if a.Name == rc.opts.BaseClassAttribute || rc.opts.isPrivate(a.TypeValue) {
			continue
		}
		relation := "relation_many"
		if a.UpperValue == "1" {
			relation = "relation_one"
		}
		rc.out.printf("    %s: %s[%s]\n", a.Name, relation, rc.typeName(a.TypeValue))
		features++
	}

	for _, o := range cls.Operations {
		rc.out.printf("    %s: operation\n", o.Name)
		features++
	}

	if features == 0 {
		rc.out.printf("    pass\n")
	}
}
