package storage

import (
	"encoding/xml"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/logger"
	"github.com/teranos/mmgen/model"
)

// Element kinds read from .gaphor files. Everything else (diagrams,
// packages, comments) is ignored.
var (
	gaphorClassKinds = map[string]bool{
		"Class": true, "Stereotype": true, "Component": true, "Node": true,
		"Device": true, "ExecutionEnvironment": true, "Behavior": true,
		"Activity": true, "Interaction": true, "StateMachine": true,
		"ProtocolStateMachine": true, "OpaqueBehavior": true, "FunctionBehavior": true,
	}
	gaphorPropertyKinds    = map[string]bool{"Property": true, "ExtensionEnd": true, "Port": true}
	gaphorAssociationKinds = map[string]bool{"Association": true, "Extension": true}
)

type gaphorDocument struct {
	XMLName  xml.Name        `xml:"gaphor"`
	Version  string          `xml:"version,attr"`
	Elements []gaphorElement `xml:",any"`
}

type gaphorElement struct {
	XMLName xml.Name
	ID      string        `xml:"id,attr"`
	Fields  []gaphorField `xml:",any"`
}

type gaphorField struct {
	XMLName xml.Name
	Val     *string     `xml:"val"`
	Ref     *gaphorRef  `xml:"ref"`
	RefList []gaphorRef `xml:"reflist>ref"`
}

type gaphorRef struct {
	RefID string `xml:"refid,attr"`
}

func (e *gaphorElement) kind() string { return e.XMLName.Local }

func (e *gaphorElement) field(name string) *gaphorField {
	for i := range e.Fields {
		if e.Fields[i].XMLName.Local == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// val returns the text value of a field, "" when absent.
func (e *gaphorElement) val(name string) string {
	if f := e.field(name); f != nil && f.Val != nil {
		return strings.TrimSpace(*f.Val)
	}
	return ""
}

// ref returns the single reference of a field, "" when absent.
func (e *gaphorElement) ref(name string) string {
	f := e.field(name)
	if f == nil {
		return ""
	}
	if f.Ref != nil {
		return f.Ref.RefID
	}
	if len(f.RefList) == 1 {
		return f.RefList[0].RefID
	}
	return ""
}

// refs returns every reference of a field in document order.
func (e *gaphorElement) refs(name string) []string {
	f := e.field(name)
	if f == nil {
		return nil
	}
	if f.Ref != nil {
		return []string{f.Ref.RefID}
	}
	out := make([]string, 0, len(f.RefList))
	for _, r := range f.RefList {
		out = append(out, r.RefID)
	}
	return out
}

// DecodeGaphor reads a Gaphor model file. Property types come from
// typeValue, falling back to the name of the referenced type element.
// Dangling references are logged and skipped.
func DecodeGaphor(r io.Reader, log *zap.SugaredLogger) (*model.ElementFactory, error) {
	if log == nil {
		log = logger.Logger
	}
	var doc gaphorDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "failed to parse Gaphor model")
	}
	b := &gaphorBuilder{
		log:          log,
		f:            model.NewElementFactory(),
		elements:     make(map[string]*gaphorElement, len(doc.Elements)),
		classes:      make(map[string]*model.Class),
		properties:   make(map[string]*model.Property),
		associations: make(map[string]*model.Association),
	}
	for i := range doc.Elements {
		e := &doc.Elements[i]
		if e.ID != "" {
			b.elements[e.ID] = e
		}
	}
	if err := b.build(doc.Elements); err != nil {
		return nil, err
	}
	log.Debugw("Parsed Gaphor model",
		"gaphor_version", doc.Version,
		logger.FieldCount, b.f.Size())
	return b.f, nil
}

type gaphorBuilder struct {
	log          *zap.SugaredLogger
	f            *model.ElementFactory
	elements     map[string]*gaphorElement
	classes      map[string]*model.Class
	properties   map[string]*model.Property
	associations map[string]*model.Association
}

func (b *gaphorBuilder) build(elements []gaphorElement) error {
	// Classes first so that every other element can refer to them.
	for i := range elements {
		e := &elements[i]
		if !gaphorClassKinds[e.kind()] {
			continue
		}
		cls := &model.Class{ID: e.ID, Name: e.val("name")}
		if err := b.f.Add(cls); err != nil {
			return err
		}
		b.classes[e.ID] = cls
	}

	for i := range elements {
		e := &elements[i]
		switch {
		case gaphorAssociationKinds[e.kind()]:
			a := &model.Association{ID: e.ID, Name: e.val("name")}
			if err := b.f.Add(a); err != nil {
				return err
			}
			b.associations[e.ID] = a
		case gaphorPropertyKinds[e.kind()]:
			p := &model.Property{
				ID:         e.ID,
				Name:       e.val("name"),
				TypeValue:  b.typeName(e),
				UpperValue: e.val("upperValue"),
			}
			if err := b.f.Add(p); err != nil {
				return err
			}
			b.properties[e.ID] = p
		}
	}

	b.linkAssociations(elements)
	if err := b.linkClasses(elements); err != nil {
		return err
	}
	return nil
}

func (b *gaphorBuilder) typeName(e *gaphorElement) string {
	if t := e.val("typeValue"); t != "" {
		return t
	}
	if ref := e.ref("type"); ref != "" {
		if target, ok := b.elements[ref]; ok {
			return target.val("name")
		}
	}
	return ""
}

func (b *gaphorBuilder) linkAssociations(elements []gaphorElement) {
	for i := range elements {
		e := &elements[i]
		a, ok := b.associations[e.ID]
		if !ok {
			continue
		}
		for _, ref := range e.refs("memberEnd") {
			p, ok := b.properties[ref]
			if !ok {
				b.log.Warnw("Skipping dangling member end", "association", e.ID, "ref", ref)
				continue
			}
			p.Association = a
			a.MemberEnds = append(a.MemberEnds, p)
		}
		for _, ref := range e.refs("ownedEnd") {
			if p, ok := b.properties[ref]; ok {
				p.Owned = true
				if p.Association == nil {
					p.Association = a
					a.MemberEnds = append(a.MemberEnds, p)
				}
				a.OwnedEnd = p
			}
		}
	}
}

func (b *gaphorBuilder) linkClasses(elements []gaphorElement) error {
	listed := make(map[string]bool)

	for i := range elements {
		e := &elements[i]
		cls, ok := b.classes[e.ID]
		if !ok {
			continue
		}
		for _, ref := range e.refs("ownedAttribute") {
			p, ok := b.properties[ref]
			if !ok || p.Owned {
				continue
			}
			p.Class = cls
			cls.Attributes = append(cls.Attributes, p)
			listed[ref] = true
		}
		for _, ref := range e.refs("ownedOperation") {
			opElem, ok := b.elements[ref]
			if !ok {
				continue
			}
			op := &model.Operation{ID: ref, Name: opElem.val("name"), Class: cls}
			if err := b.f.Add(op); err != nil {
				return err
			}
			cls.Operations = append(cls.Operations, op)
		}
	}

	for i := range elements {
		e := &elements[i]
		switch {
		case e.kind() == "Generalization":
			specific, okS := b.classes[e.ref("specific")]
			general, okG := b.classes[e.ref("general")]
			if !okS || !okG {
				b.log.Debugw("Skipping generalization between non-classes", "id", e.ID)
				continue
			}
			if _, err := b.f.Generalize(e.ID, specific, general); err != nil {
				return err
			}
		case gaphorPropertyKinds[e.kind()]:
			p := b.properties[e.ID]
			classRef := e.ref("class_")
			if p.Owned {
				p.Class = b.ownedEndClass(p, classRef)
				continue
			}
			if listed[e.ID] || classRef == "" {
				continue
			}
			if cls, ok := b.classes[classRef]; ok {
				p.Class = cls
				cls.Attributes = append(cls.Attributes, p)
			}
		}
	}
	return nil
}

// ownedEndClass resolves the class of an association-owned end: its own
// class_ reference, or else the class the opposite end is typed by, which
// for an extension is the extended metaclass.
func (b *gaphorBuilder) ownedEndClass(p *model.Property, classRef string) *model.Class {
	if cls, ok := b.classes[classRef]; ok {
		return cls
	}
	if p.Association == nil {
		return nil
	}
	opposite := p.Association.Opposite(p)
	if opposite == nil {
		return nil
	}
	if e, ok := b.elements[opposite.ID]; ok {
		if cls, ok := b.classes[e.ref("type")]; ok {
			return cls
		}
	}
	return nil
}
