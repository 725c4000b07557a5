package codegen

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/teranos/mmgen/model"
	"github.com/teranos/mmgen/modeling"
)

// fixture builds models for tests.
type fixture struct {
	t *testing.T
	f *model.ElementFactory
	n int
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, f: model.NewElementFactory()}
}

func (fx *fixture) id(kind string) string {
	fx.n++
	return fmt.Sprintf("%s-%d", kind, fx.n)
}

func (fx *fixture) class(name string, generals ...*model.Class) *model.Class {
	fx.t.Helper()
	c := &model.Class{ID: fx.id("class"), Name: name}
	require.NoError(fx.t, fx.f.Add(c))
	for _, g := range generals {
		_, err := fx.f.Generalize(fx.id("gen"), c, g)
		require.NoError(fx.t, err)
	}
	return c
}

func (fx *fixture) attr(c *model.Class, name, typ string) *model.Property {
	fx.t.Helper()
	p := &model.Property{ID: fx.id("attr"), Name: name, TypeValue: typ}
	require.NoError(fx.t, fx.f.AddAttribute(c, p))
	return p
}

func (fx *fixture) op(c *model.Class, name string) {
	fx.t.Helper()
	require.NoError(fx.t, fx.f.AddOperation(c, &model.Operation{ID: fx.id("op"), Name: name}))
}

// assoc links an end on a (typed b) with an end on b (typed a).
func (fx *fixture) assoc(a *model.Class, aName, aUpper string, b *model.Class, bName, bUpper string) {
	fx.t.Helper()
	require.NoError(fx.t, fx.f.Associate(&model.Association{ID: fx.id("assoc")},
		&model.Property{ID: fx.id("end"), Name: aName, TypeValue: b.Name, UpperValue: aUpper, Class: a},
		&model.Property{ID: fx.id("end"), Name: bName, TypeValue: a.Name, UpperValue: bUpper, Class: b},
	))
}

// extend makes stereo extend meta through a baseClass attribute.
func (fx *fixture) extend(stereo, meta *model.Class) {
	fx.t.Helper()
	require.NoError(fx.t, fx.f.Associate(&model.Association{ID: fx.id("ext")},
		&model.Property{ID: fx.id("end"), Name: "baseClass", TypeValue: meta.Name, UpperValue: "1", Class: stereo},
		&model.Property{ID: fx.id("end"), Name: "extension_" + stereo.Name, TypeValue: stereo.Name, Class: meta, Owned: true},
	))
}

var nothingKnown = modeling.CatalogFunc(func(string) modeling.Classification {
	return modeling.Generated
})

func testGenerator(t *testing.T, catalog modeling.Catalog) *Generator {
	return &Generator{
		Catalog: catalog,
		Options: DefaultOptions(),
		Logger:  zaptest.NewLogger(t).Sugar(),
	}
}

func generateString(t *testing.T, gen *Generator, store Store) string {
	t.Helper()
	var buf bytes.Buffer
	_, err := gen.Generate(context.Background(), store, &buf)
	require.NoError(t, err)
	return buf.String()
}

// scenarioModel is the reference model: Element, SubClass(Element) with a
// text attribute, C and D(C), and three associations between them.
func scenarioModel(t *testing.T) *model.ElementFactory {
	fx := newFixture(t)
	element := fx.class("Element")
	sub := fx.class("SubClass", element)
	c := fx.class("C")
	d := fx.class("D", c)

	fx.attr(sub, "value", "String")
	fx.assoc(c, "name1", "1", sub, "name2", "*")
	fx.assoc(d, "name3", "1", sub, "name4", "*")
	fx.assoc(c, "base", "*", sub, "abstract", "*")
	return fx.f
}
