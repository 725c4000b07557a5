package codegen

import "strings"

// NoneType is how an unresolved type is rendered.
const NoneType = "None"

// NormalizeType maps a declared type name to the name used in generated
// code. ok is false when the type is unresolved and renders as None: the
// type is absent, or it follows the enumeration naming convention.
func NormalizeType(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	switch strings.ToLower(raw) {
	case "boolean", "integer", "unlimitednatural":
		return "int", true
	case "string":
		return "str", true
	}
	if strings.HasSuffix(raw, "Kind") || strings.HasSuffix(raw, "Sort") {
		return "", false
	}
	return raw, true
}

// renderType is NormalizeType for emission. Private classes are never
// generated, so a reference to one renders as None.
func renderType(raw string, opts Options) string {
	if opts.isPrivate(raw) {
		return NoneType
	}
	if t, ok := NormalizeType(raw); ok {
		return t
	}
	return NoneType
}
