package storage

import (
	"encoding/json"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/teranos/mmgen/errors"
)

// Bound is a multiplicity upper bound literal such as "1" or "*".
// Documents may write it as a string or an integer.
type Bound string

// UnmarshalJSON accepts strings and numbers.
func (b *Bound) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = Bound(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Newf("upper bound must be a string or integer, got %s", data)
	}
	*b = Bound(n.String())
	return nil
}

// UnmarshalYAML keeps the scalar text, so 1 and "1" are the same bound.
func (b *Bound) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return errors.Newf("line %d: upper bound must be a scalar", node.Line)
	}
	*b = Bound(node.Value)
	return nil
}

// UnmarshalTOML accepts strings and integers.
func (b *Bound) UnmarshalTOML(v interface{}) error {
	switch x := v.(type) {
	case string:
		*b = Bound(x)
	case int64:
		*b = Bound(strconv.FormatInt(x, 10))
	default:
		return errors.Newf("upper bound must be a string or integer, got %T", v)
	}
	return nil
}
