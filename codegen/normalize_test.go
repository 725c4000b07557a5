package codegen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		raw    string
		want   string
		wantOK bool
	}{
		{"", "", false},
		{"Boolean", "int", true},
		{"boolean", "int", true},
		{"BOOLEAN", "int", true},
		{"Integer", "int", true},
		{"UnlimitedNatural", "int", true},
		{"unlimitednatural", "int", true},
		{"String", "str", true},
		{"string", "str", true},
		{"VisibilityKind", "", false},
		{"AggregationKind", "", false},
		{"MessageSort", "", false},
		{"Kind", "", false},
		{"Kindness", "Kindness", true},
		{"Sortable", "Sortable", true},
		{"KIND", "KIND", true},
		{"SubClass", "SubClass", true},
		{"Real", "Real", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, ok := NormalizeType(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestRenderType(t *testing.T) {
	opts := DefaultOptions()

	tests := []struct {
		raw  string
		want string
	}{
		{"", "None"},
		{"ParameterDirectionKind", "None"},
		{"Boolean", "int"},
		{"NamedElement", "NamedElement"},
		{"~Hidden", "None"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, renderType(tt.raw, opts))
		})
	}

	opts.PrivateMarker = ""
	assert.Equal(t, "~Hidden", renderType("~Hidden", opts), "no marker, nothing is private")
}
