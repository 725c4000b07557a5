package storage

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/teranos/mmgen/errors"
	"github.com/teranos/mmgen/model"
)

// DefaultBaseClassAttribute names the stereotype attribute created for
// ClassDoc.Extends.
const DefaultBaseClassAttribute = "baseClass"

// Document is the YAML, JSON and TOML model format.
//
//	format_version: "^1"
//	classes:
//	  - name: Element
//	  - name: SubClass
//	    generals: [Element]
//	    attributes:
//	      - {name: value, type: String}
//	associations:
//	  - ends:
//	      - {class: C, name: name1, type: SubClass, upper: 1}
//	      - {class: SubClass, name: name2, type: C, upper: "*"}
//
// Classes are referenced by id, which defaults to the class name.
type Document struct {
	// FormatVersion is a semver constraint the reading mmgen must satisfy.
	FormatVersion string           `yaml:"format_version,omitempty" json:"format_version,omitempty" toml:"format_version,omitempty"`
	Name          string           `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Classes       []ClassDoc       `yaml:"classes" json:"classes" toml:"classes"`
	Associations  []AssociationDoc `yaml:"associations,omitempty" json:"associations,omitempty" toml:"associations,omitempty"`
}

// ClassDoc declares a class.
type ClassDoc struct {
	ID       string   `yaml:"id,omitempty" json:"id,omitempty" toml:"id,omitempty"`
	Name     string   `yaml:"name" json:"name" toml:"name"`
	Generals []string `yaml:"generals,omitempty" json:"generals,omitempty" toml:"generals,omitempty"`
	// Extends lists metaclasses this stereotype extends. Each entry becomes
	// a base class attribute plus an extension association.
	Extends    []string       `yaml:"extends,omitempty" json:"extends,omitempty" toml:"extends,omitempty"`
	Attributes []AttributeDoc `yaml:"attributes,omitempty" json:"attributes,omitempty" toml:"attributes,omitempty"`
	Operations []string       `yaml:"operations,omitempty" json:"operations,omitempty" toml:"operations,omitempty"`
}

// AttributeDoc declares a plain attribute.
type AttributeDoc struct {
	ID    string `yaml:"id,omitempty" json:"id,omitempty" toml:"id,omitempty"`
	Name  string `yaml:"name" json:"name" toml:"name"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty"`
	Upper Bound  `yaml:"upper,omitempty" json:"upper,omitempty" toml:"upper,omitempty"`
}

// AssociationDoc declares an association and its ends.
type AssociationDoc struct {
	ID   string   `yaml:"id,omitempty" json:"id,omitempty" toml:"id,omitempty"`
	Name string   `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Ends []EndDoc `yaml:"ends" json:"ends" toml:"ends"`
}

// EndDoc declares an association end. Class is the owning class; an Owned
// end belongs to the association and is not listed on that class.
type EndDoc struct {
	ID    string `yaml:"id,omitempty" json:"id,omitempty" toml:"id,omitempty"`
	Class string `yaml:"class" json:"class" toml:"class"`
	Name  string `yaml:"name,omitempty" json:"name,omitempty" toml:"name,omitempty"`
	Type  string `yaml:"type,omitempty" json:"type,omitempty" toml:"type,omitempty"`
	Upper Bound  `yaml:"upper,omitempty" json:"upper,omitempty" toml:"upper,omitempty"`
	Owned bool   `yaml:"owned,omitempty" json:"owned,omitempty" toml:"owned,omitempty"`
}

// DecodeDocument reads a document in one of the document formats. Unknown
// keys are rejected so that typos do not silently drop model content.
func DecodeDocument(r io.Reader, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&doc); err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "failed to parse YAML model")
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON model")
		}
	case FormatTOML:
		md, err := toml.NewDecoder(r).Decode(&doc)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse TOML model")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.Newf("unknown TOML model key %q", undecoded[0].String())
		}
	default:
		return nil, errors.Wrapf(errors.ErrUnsupportedFormat, "%q is not a document format", format)
	}
	return &doc, nil
}

// Build creates the model described by d. baseClassAttr names the attribute
// generated for Extends; empty means DefaultBaseClassAttribute.
func (d *Document) Build(baseClassAttr string) (*model.ElementFactory, error) {
	if baseClassAttr == "" {
		baseClassAttr = DefaultBaseClassAttribute
	}
	if err := checkFormatConstraint(d.FormatVersion); err != nil {
		return nil, err
	}

	f := model.NewElementFactory()
	classes := make(map[string]*model.Class, len(d.Classes))
	resolve := func(ref, context string) (*model.Class, error) {
		cls, ok := classes[ref]
		if !ok {
			return nil, errors.NewInvalidModelError("%s references unknown class %q", context, ref)
		}
		return cls, nil
	}

	for i, cd := range d.Classes {
		if cd.Name == "" {
			return nil, errors.NewInvalidModelError("class #%d has no name", i+1)
		}
		cls := &model.Class{ID: firstNonEmpty(cd.ID, cd.Name), Name: cd.Name}
		if err := f.Add(cls); err != nil {
			return nil, err
		}
		classes[cls.ID] = cls
	}

	for _, cd := range d.Classes {
		cls := classes[firstNonEmpty(cd.ID, cd.Name)]
		for i, ref := range cd.Generals {
			general, err := resolve(ref, "class "+cls.Name+" generals")
			if err != nil {
				return nil, err
			}
			if _, err := f.Generalize(idf("%s:general:%d", cls.ID, i), cls, general); err != nil {
				return nil, err
			}
		}
		for _, ad := range cd.Attributes {
			if ad.Name == "" {
				return nil, errors.NewInvalidModelError("class %s has an attribute without a name", cls.Name)
			}
			p := &model.Property{
				ID:         firstNonEmpty(ad.ID, cls.ID+"."+ad.Name),
				Name:       ad.Name,
				TypeValue:  ad.Type,
				UpperValue: string(ad.Upper),
			}
			if err := f.AddAttribute(cls, p); err != nil {
				return nil, err
			}
		}
		for _, name := range cd.Operations {
			op := &model.Operation{ID: cls.ID + "." + name + "()", Name: name}
			if err := f.AddOperation(cls, op); err != nil {
				return nil, err
			}
		}
		for _, ref := range cd.Extends {
			meta, err := resolve(ref, "class "+cls.Name+" extends")
			if err != nil {
				return nil, err
			}
			assocID := idf("%s:extension:%s", cls.ID, meta.ID)
			err = f.Associate(&model.Association{ID: assocID},
				&model.Property{ID: assocID + ":base", Name: baseClassAttr, TypeValue: meta.Name, UpperValue: "1", Class: cls},
				&model.Property{ID: assocID + ":end", Name: "extension_" + cls.Name, TypeValue: cls.Name, UpperValue: "1", Class: meta, Owned: true},
			)
			if err != nil {
				return nil, err
			}
		}
	}

	for i, ad := range d.Associations {
		assoc := &model.Association{ID: firstNonEmpty(ad.ID, idf("association:%d", i)), Name: ad.Name}
		ends := make([]*model.Property, 0, len(ad.Ends))
		for j, ed := range ad.Ends {
			cls, err := resolve(ed.Class, "association "+assoc.ID+" end")
			if err != nil {
				return nil, err
			}
			ends = append(ends, &model.Property{
				ID:         firstNonEmpty(ed.ID, idf("%s:end:%d", assoc.ID, j)),
				Name:       ed.Name,
				TypeValue:  ed.Type,
				UpperValue: string(ed.Upper),
				Class:      cls,
				Owned:      ed.Owned,
			})
		}
		if err := f.Associate(assoc, ends...); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func idf(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}
