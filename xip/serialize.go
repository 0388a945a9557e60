package xip

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"sort"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8" standalone="true"?>` + "\n"

// Serialize renders the catalog as the canonical XIP document: UTF-8, XML
// declaration, standalone="true", pretty-printed, entities ordered per the
// rules below.
//
// Order: StructuralObject (insertion), InformationObject (insertion),
// Representation (by Name, descending), ContentObject (insertion),
// Generation (insertion), Bitstream (insertion), then any Identifier or
// Metadata entries in their original insertion order.
func (c *Catalog) Serialize() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)

	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "XIP"},
		Attr: []xml.Attr{{Name: xml.Name{Local: "xmlns"}, Value: Namespace}},
	}
	if err := enc.EncodeToken(root); err != nil {
		return nil, fmt.Errorf("xip: serialize: %w", err)
	}

	for _, so := range c.structuralObjects {
		if err := enc.Encode(so); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}
	for _, io := range c.informationObjects {
		if err := enc.Encode(io); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}
	for _, r := range sortedRepresentations(c.representations) {
		if err := enc.Encode(r); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}
	for _, co := range c.contentObjects {
		if err := enc.Encode(co); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}
	for _, g := range c.generations {
		if err := enc.Encode(g); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}
	for _, b := range c.bitstreams {
		if err := enc.Encode(b); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}
	for _, o := range c.others {
		if err := enc.Encode(o); err != nil {
			return nil, fmt.Errorf("xip: serialize: %w", err)
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, fmt.Errorf("xip: serialize: %w", err)
	}
	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("xip: serialize: %w", err)
	}
	return buf.Bytes(), nil
}

// sortedRepresentations returns a copy of reps sorted by Name, descending.
func sortedRepresentations(reps []*Representation) []*Representation {
	out := make([]*Representation, len(reps))
	copy(out, reps)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Name > out[j].Name
	})
	return out
}
