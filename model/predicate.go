package model

// ClassPredicate selects classes.
type ClassPredicate func(*Class) bool

// PropertyPredicate selects owned attributes.
type PropertyPredicate func(*Property) bool

// AnyClass selects every class.
func AnyClass(*Class) bool { return true }

// NoAssociation selects plain attributes.
func NoAssociation(p *Property) bool { return p.Association == nil }

// NamedAssociationEnd selects association ends that carry a name.
func NamedAssociationEnd(p *Property) bool {
	return p.Association != nil && p.Name != ""
}

// NameIs selects properties with the given name.
func NameIs(name string) PropertyPredicate {
	return func(p *Property) bool { return p.Name == name }
}
