// Package model holds the in-memory snapshot of a metamodel: classes, their
// owned attributes and operations, associations and generalizations.
//
// Elements are compared by identity (pointer or ID), never by name. A loaded
// model is read-only for the generator.
package model

// Element is anything the ElementFactory can store.
type Element interface {
	ElementID() string
}

// Class is a metamodel class.
type Class struct {
	ID              string
	Name            string
	Attributes      []*Property
	Operations      []*Operation
	Generalizations []*Generalization
}

// ElementID implements Element.
func (c *Class) ElementID() string { return c.ID }

// General returns the direct supertypes in generalization order.
func (c *Class) General() []*Class {
	if len(c.Generalizations) == 0 {
		return nil
	}
	out := make([]*Class, 0, len(c.Generalizations))
	for _, g := range c.Generalizations {
		if g.General != nil {
			out = append(out, g.General)
		}
	}
	return out
}

func (c *Class) String() string { return c.Name }

// Property is an owned attribute or an association end. Association is nil
// for plain attributes. TypeValue and UpperValue are "" when absent.
type Property struct {
	ID          string
	Name        string
	TypeValue   string
	UpperValue  string
	Association *Association
	// Class is the class owning this property.
	Class *Class
	// Owned marks an end owned by its association rather than by a class.
	Owned bool
}

// ElementID implements Element.
func (p *Property) ElementID() string { return p.ID }

// IsAssociationEnd reports whether p belongs to an association.
func (p *Property) IsAssociationEnd() bool { return p.Association != nil }

// Association connects two or more properties.
type Association struct {
	ID         string
	Name       string
	MemberEnds []*Property
	OwnedEnd   *Property
}

// ElementID implements Element.
func (a *Association) ElementID() string { return a.ID }

// Opposite returns the member end that is not p, or nil.
func (a *Association) Opposite(p *Property) *Property {
	for _, end := range a.MemberEnds {
		if end != p {
			return end
		}
	}
	return nil
}

// Operation is a behavioral feature. Only its name is used.
type Operation struct {
	ID    string
	Name  string
	Class *Class
}

// ElementID implements Element.
func (o *Operation) ElementID() string { return o.ID }

func (o *Operation) String() string { return o.Name }

// Generalization is a directed is-a edge from Specific to General.
type Generalization struct {
	ID       string
	Specific *Class
	General  *Class
}

// ElementID implements Element.
func (g *Generalization) ElementID() string { return g.ID }
