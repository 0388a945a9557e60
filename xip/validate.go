package xip

import "fmt"

// Validate checks referential integrity across the whole catalog: every
// parentRef, informationObjectRef, contentObjectRef, and Generation bitstream
// path must resolve. Representation and Generation cross-references are
// checked eagerly on append; Validate additionally re-checks Generation
// bitstream paths, since a Generation is commonly appended before its
// Bitstream entries exist, and re-validates parsed (open-append) catalogs
// whose entities were not built through the Add* methods.
func (c *Catalog) Validate() error {
	for _, so := range c.structuralObjects {
		if so.Parent == "" {
			continue
		}
		if k, ok := c.Kind(so.Parent); ok && k != KindStructuralObject {
			return fmt.Errorf("xip: validate: StructuralObject %s has parent %s of kind %s, want StructuralObject", so.Ref, so.Parent, k)
		}
	}
	for _, io := range c.informationObjects {
		if k, ok := c.Kind(io.Parent); !ok || k != KindStructuralObject {
			return fmt.Errorf("xip: validate: InformationObject %s has dangling parent %s", io.Ref, io.Parent)
		}
	}
	for _, co := range c.contentObjects {
		if k, ok := c.Kind(co.Parent); !ok || k != KindInformationObject {
			return fmt.Errorf("xip: validate: ContentObject %s has dangling parent %s", co.Ref, co.Parent)
		}
	}
	for _, r := range c.representations {
		if k, ok := c.Kind(r.InformationObject); !ok || k != KindInformationObject {
			return fmt.Errorf("xip: validate: Representation %s has dangling informationObjectRef %s", r.Name, r.InformationObject)
		}
		for _, coRef := range r.ContentObjects.ContentObject {
			co, ok := c.contentObject(coRef)
			if !ok {
				return fmt.Errorf("xip: validate: Representation %s references unknown ContentObject %s", r.Name, coRef)
			}
			if co.Parent != r.InformationObject {
				return fmt.Errorf("xip: validate: Representation %s ContentObject %s belongs to a different InformationObject", r.Name, coRef)
			}
		}
	}
	for _, g := range c.generations {
		if k, ok := c.Kind(g.ContentObject); !ok || k != KindContentObject {
			return fmt.Errorf("xip: validate: Generation %s has dangling contentObjectRef %s", g.Label, g.ContentObject)
		}
		for _, p := range g.Bitstreams.Bitstream {
			if _, ok := c.bitstreamByKey[p]; !ok {
				return fmt.Errorf("xip: validate: Generation %s references unresolved bitstream path %q", g.Label, p)
			}
		}
	}
	for _, o := range c.others {
		switch e := o.(type) {
		case *Identifier:
			if _, ok := c.Kind(e.Entity); !ok {
				return fmt.Errorf("xip: validate: Identifier references dangling entity %s", e.Entity)
			}
		case *Metadata:
			if _, ok := c.Kind(e.Entity); !ok {
				return fmt.Errorf("xip: validate: Metadata %s references dangling entity %s", e.Ref, e.Entity)
			}
		}
	}
	return nil
}
