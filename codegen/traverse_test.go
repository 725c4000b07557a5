package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRootNodes(t *testing.T) {
	g, err := BuildGraph(scenarioModel(t), nothingKnown, DefaultOptions(), nil)
	require.NoError(t, err)

	// Element and C are referenced roots; D and SubClass have supertypes.
	assert.Equal(t, []string{"C", "Element"}, names(FindRootNodes(g)))
}

func TestFindRootNodes_UnreferencedIsNotARoot(t *testing.T) {
	fx := newFixture(t)
	fx.class("Lonely")
	g, err := BuildGraph(fx.f, nothingKnown, DefaultOptions(), nil)
	require.NoError(t, err)
	assert.Empty(t, FindRootNodes(g))
}

func TestBreadthFirstSearch(t *testing.T) {
	fx := newFixture(t)
	root := fx.class("Root")
	b := fx.class("B", root)
	a := fx.class("A", root)
	fx.class("C", a)
	fx.class("Diamond", a, b)
	fx.class("Unrelated")

	g, err := BuildGraph(fx.f, nothingKnown, DefaultOptions(), nil)
	require.NoError(t, err)

	// FIFO: direct subtypes (graph order) before their subtypes; Diamond once.
	assert.Equal(t,
		[]string{"Root", "A", "B", "C", "Diamond"},
		names(BreadthFirstSearch(g, root)))
}

func TestBreadthFirstSearch_Leaf(t *testing.T) {
	g, err := BuildGraph(scenarioModel(t), nothingKnown, DefaultOptions(), nil)
	require.NoError(t, err)
	leaf := g.Generated[1] // D
	require.Equal(t, "D", leaf.Name)
	assert.Equal(t, []string{"D"}, names(BreadthFirstSearch(g, leaf)))
}
