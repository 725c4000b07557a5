package modeling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticCatalog_Lookup(t *testing.T) {
	c := NewStaticCatalog("Element", "NamedElement", " ")

	tests := []struct {
		name string
		want Classification
	}{
		{"Element", Known},
		{"NamedElement", Known},
		{"element", Ambiguous},
		{"NAMEDELEMENT", Ambiguous},
		{"Block", Generated},
		{"", Generated},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Lookup(tt.name))
		})
	}
	assert.Equal(t, 2, c.Len())
}

func TestStaticCatalog_Canonical(t *testing.T) {
	c := NewStaticCatalog("Element", "NamedElement", "ELEMENT")

	tests := []struct {
		name   string
		want   string
		wantOK bool
	}{
		{"Element", "Element", true},
		{"ELEMENT", "ELEMENT", true},
		{"element", "Element", true},
		{"namedelement", "NamedElement", true},
		{"Block", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Canonical(tt.name)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}

	var _ Canonicalizer = c
}

func TestUMLCatalog(t *testing.T) {
	c := UML()

	// Every metaclass the SysML profile builds on must be known.
	for _, name := range []string{
		"Abstraction", "AcceptEventAction", "ActivityEdge", "ActivityPartition",
		"Behavior", "Class", "Classifier", "Comment", "Connector", "ConnectorEnd",
		"DataType", "Dependency", "DirectedRelationship", "Element", "Feature",
		"Generalization", "InstanceSpecification", "InvocationAction",
		"NamedElement", "ObjectNode", "Operation", "Optional", "Parameter",
		"Port", "Property", "StructuralFeature", "Trigger",
	} {
		assert.Equal(t, Known, c.Lookup(name), name)
	}
	assert.Equal(t, Generated, c.Lookup("Block"))
	assert.Equal(t, Generated, c.Lookup("AbstractRequirement"))

	names := c.Names()
	assert.IsIncreasing(t, names)
	assert.NotContains(t, names, "# UML metaclasses provided by gaphor.UML. One name per line.")
}

func TestNewCatalog(t *testing.T) {
	c, err := NewCatalog(BaseUML, []string{"Block"})
	require.NoError(t, err)
	assert.Equal(t, Known, c.Lookup("Element"))
	assert.Equal(t, Known, c.Lookup("Block"))

	c, err = NewCatalog(BaseNone, []string{"Element"})
	require.NoError(t, err)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, Generated, c.Lookup("Class"))

	_, err = NewCatalog("sysml", nil)
	assert.Error(t, err)
}

func TestCatalogFunc(t *testing.T) {
	var c Catalog = CatalogFunc(func(name string) Classification {
		if name == "Element" {
			return Known
		}
		return Generated
	})
	assert.Equal(t, Known, c.Lookup("Element"))
	assert.Equal(t, "generated", c.Lookup("X").String())
	assert.Equal(t, "ambiguous", Ambiguous.String())
}
