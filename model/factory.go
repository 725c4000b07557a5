package model

import (
	"sync"

	"github.com/teranos/mmgen/errors"
)

// ElementFactory is the model store. It keeps elements in insertion order so
// that every selection is reproducible.
type ElementFactory struct {
	mu       sync.RWMutex
	elements map[string]Element
	order    []Element
}

// NewElementFactory returns an empty store.
func NewElementFactory() *ElementFactory {
	return &ElementFactory{elements: make(map[string]Element)}
}

// Add stores e. IDs must be unique within a factory.
func (f *ElementFactory) Add(e Element) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := e.ElementID()
	if id == "" {
		return errors.NewInvalidModelError("element without id: %T", e)
	}
	if _, exists := f.elements[id]; exists {
		return errors.NewInvalidModelError("duplicate element id %q", id)
	}
	f.elements[id] = e
	f.order = append(f.order, e)
	return nil
}

// Lookup returns the element with the given id.
func (f *ElementFactory) Lookup(id string) (Element, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	e, ok := f.elements[id]
	if !ok {
		return nil, errors.Wrapf(errors.ErrNotFound, "element %q", id)
	}
	return e, nil
}

// Size returns the number of stored elements.
func (f *ElementFactory) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.order)
}

// SelectClasses returns the classes matching pred in insertion order.
// A nil pred selects every class.
func (f *ElementFactory) SelectClasses(pred ClassPredicate) []*Class {
	if pred == nil {
		pred = AnyClass
	}
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*Class
	for _, e := range f.order {
		if c, ok := e.(*Class); ok && pred(c) {
			out = append(out, c)
		}
	}
	return out
}

// Associations returns every association in insertion order.
func (f *ElementFactory) Associations() []*Association {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var out []*Association
	for _, e := range f.order {
		if a, ok := e.(*Association); ok {
			out = append(out, a)
		}
	}
	return out
}

// FilterAttributes returns the attributes owned by cls that match pred, in
// declaration order.
func (f *ElementFactory) FilterAttributes(cls *Class, pred PropertyPredicate) []*Property {
	var out []*Property
	for _, p := range cls.Attributes {
		if pred == nil || pred(p) {
			out = append(out, p)
		}
	}
	return out
}

// Generalize records that specific is a subtype of general.
func (f *ElementFactory) Generalize(id string, specific, general *Class) (*Generalization, error) {
	g := &Generalization{ID: id, Specific: specific, General: general}
	if err := f.Add(g); err != nil {
		return nil, err
	}
	specific.Generalizations = append(specific.Generalizations, g)
	return g, nil
}

// AddAttribute appends p to cls and stores it.
func (f *ElementFactory) AddAttribute(cls *Class, p *Property) error {
	if err := f.Add(p); err != nil {
		return err
	}
	p.Class = cls
	cls.Attributes = append(cls.Attributes, p)
	return nil
}

// AddOperation appends o to cls and stores it.
func (f *ElementFactory) AddOperation(cls *Class, o *Operation) error {
	if err := f.Add(o); err != nil {
		return err
	}
	o.Class = cls
	cls.Operations = append(cls.Operations, o)
	return nil
}

// Shutdown drops every element. The factory may be reused afterwards.
func (f *ElementFactory) Shutdown() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.elements = make(map[string]Element)
	f.order = nil
}

// Associate stores a and its ends. Every end must already carry its Class.
// Class-owned ends are appended to that class's attributes; an end marked
// Owned becomes the association's OwnedEnd and is not listed on the class.
func (f *ElementFactory) Associate(a *Association, ends ...*Property) error {
	if err := f.Add(a); err != nil {
		return err
	}
	for _, end := range ends {
		if end.Class == nil {
			return errors.NewInvalidModelError("association %q end %q has no class", a.ID, end.ID)
		}
		end.Association = a
		a.MemberEnds = append(a.MemberEnds, end)
		if end.Owned {
			if a.OwnedEnd != nil {
				return errors.NewInvalidModelError("association %q has more than one owned end", a.ID)
			}
			if err := f.Add(end); err != nil {
				return err
			}
			a.OwnedEnd = end
			continue
		}
		if err := f.AddAttribute(end.Class, end); err != nil {
			return err
		}
	}
	return nil
}
