package xip

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path"
)

// Parse reconstructs a Catalog from a previously serialized XIP document,
// for the Package Builder's open-append mode. Entity insertion order within
// the document is preserved, including the interleaving of Identifier and
// Metadata fragments.
func Parse(data []byte) (*Catalog, error) {
	c := NewCatalog()
	dec := xml.NewDecoder(bytes.NewReader(data))

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("xip: parse: %w", err)
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if se.Name.Local == "XIP" {
			continue
		}
		if err := c.decodeChild(dec, se); err != nil {
			return nil, fmt.Errorf("xip: parse: %w", err)
		}
	}
	return c, nil
}

func (c *Catalog) decodeChild(dec *xml.Decoder, se xml.StartElement) error {
	switch se.Name.Local {
	case "StructuralObject":
		var so StructuralObject
		if err := dec.DecodeElement(&so, &se); err != nil {
			return err
		}
		c.structuralObjects = append(c.structuralObjects, &so)
		c.refs[so.Ref] = ref{kind: KindStructuralObject, index: len(c.structuralObjects) - 1}
		c.soTitleToRef[so.Title] = so.Ref
	case "InformationObject":
		var io InformationObject
		if err := dec.DecodeElement(&io, &se); err != nil {
			return err
		}
		c.informationObjects = append(c.informationObjects, &io)
		c.refs[io.Ref] = ref{kind: KindInformationObject, index: len(c.informationObjects) - 1}
	case "Representation":
		var r Representation
		if err := dec.DecodeElement(&r, &se); err != nil {
			return err
		}
		c.representations = append(c.representations, &r)
	case "ContentObject":
		var co ContentObject
		if err := dec.DecodeElement(&co, &se); err != nil {
			return err
		}
		c.contentObjects = append(c.contentObjects, &co)
		c.refs[co.Ref] = ref{kind: KindContentObject, index: len(c.contentObjects) - 1}
	case "Generation":
		var g Generation
		if err := dec.DecodeElement(&g, &se); err != nil {
			return err
		}
		c.generations = append(c.generations, &g)
	case "Bitstream":
		var b Bitstream
		if err := dec.DecodeElement(&b, &se); err != nil {
			return err
		}
		c.bitstreams = append(c.bitstreams, &b)
		key := path.Join(b.PhysicalLocation, b.Filename)
		c.bitstreamByKey[key] = &b
	case "Identifier":
		var id Identifier
		if err := dec.DecodeElement(&id, &se); err != nil {
			return err
		}
		c.others = append(c.others, &id)
	case "Metadata":
		var m Metadata
		if err := dec.DecodeElement(&m, &se); err != nil {
			return err
		}
		c.others = append(c.others, &m)
		c.refs[m.Ref] = ref{kind: KindMetadata, index: len(c.others) - 1}
	default:
		return dec.Skip()
	}
	return nil
}
