package xip

// StructuralObjectByTitle resolves a StructuralObject's ref from its title.
func (c *Catalog) StructuralObjectByTitle(title string) (string, bool) {
	r, ok := c.soTitleToRef[title]
	return r, ok
}

// StructuralObjectTitle resolves a StructuralObject's title from its ref.
func (c *Catalog) StructuralObjectTitle(r string) (string, bool) {
	e, ok := c.refs[r]
	if !ok || e.kind != KindStructuralObject {
		return "", false
	}
	return c.structuralObjects[e.index].Title, true
}

// InformationObjectTitle resolves an InformationObject's title from its ref.
func (c *Catalog) InformationObjectTitle(r string) (string, bool) {
	e, ok := c.refs[r]
	if !ok || e.kind != KindInformationObject {
		return "", false
	}
	return c.informationObjects[e.index].Title, true
}

// InformationObjectByTitle returns the ref of the first InformationObject
// with the given title, mirroring the original implementation's reverse
// lookup over its title map.
func (c *Catalog) InformationObjectByTitle(title string) (string, bool) {
	for _, io := range c.informationObjects {
		if io.Title == title {
			return io.Ref, true
		}
	}
	return "", false
}

// FixitiesByFilename returns the fixity map recorded for the first Bitstream
// with the given filename.
func (c *Catalog) FixitiesByFilename(filename string) (map[string]string, bool) {
	for _, b := range c.bitstreams {
		if b.Filename == filename {
			out := make(map[string]string, len(b.Fixities.Fixity))
			for _, f := range b.Fixities.Fixity {
				out[f.Algorithm] = f.Value
			}
			return out, true
		}
	}
	return nil, false
}

// Element is any one of the tree-structured entity kinds (SO, IO, CO).
type Element struct {
	Ref         string
	Kind        Kind
	Title       string
	SecurityTag string
	Parent      string
}

// Children returns the SO/IO/CO entities whose Parent equals ref.
func (c *Catalog) Children(ref string) []Element {
	var out []Element
	for _, so := range c.structuralObjects {
		if so.Parent == ref {
			out = append(out, Element{Ref: so.Ref, Kind: KindStructuralObject, Title: so.Title, SecurityTag: so.SecurityTag, Parent: so.Parent})
		}
	}
	for _, io := range c.informationObjects {
		if io.Parent == ref {
			out = append(out, Element{Ref: io.Ref, Kind: KindInformationObject, Title: io.Title, SecurityTag: io.SecurityTag, Parent: io.Parent})
		}
	}
	for _, co := range c.contentObjects {
		if co.Parent == ref {
			out = append(out, Element{Ref: co.Ref, Kind: KindContentObject, Title: co.Title, SecurityTag: co.SecurityTag, Parent: co.Parent})
		}
	}
	return out
}

// TopLevel returns every SO/IO/CO whose parent reference is absent from this
// catalog (e.g. the root SO, whose parentRef names an external destination
// folder rather than an entity in this package).
func (c *Catalog) TopLevel() []Element {
	var out []Element
	for _, so := range c.structuralObjects {
		if so.Parent == "" {
			out = append(out, Element{Ref: so.Ref, Kind: KindStructuralObject, Title: so.Title, SecurityTag: so.SecurityTag})
			continue
		}
		if _, ok := c.refs[so.Parent]; !ok {
			out = append(out, Element{Ref: so.Ref, Kind: KindStructuralObject, Title: so.Title, SecurityTag: so.SecurityTag, Parent: so.Parent})
		}
	}
	for _, io := range c.informationObjects {
		if _, ok := c.refs[io.Parent]; !ok {
			out = append(out, Element{Ref: io.Ref, Kind: KindInformationObject, Title: io.Title, SecurityTag: io.SecurityTag, Parent: io.Parent})
		}
	}
	for _, co := range c.contentObjects {
		if _, ok := c.refs[co.Parent]; !ok {
			out = append(out, Element{Ref: co.Ref, Kind: KindContentObject, Title: co.Title, SecurityTag: co.SecurityTag, Parent: co.Parent})
		}
	}
	return out
}

// BitstreamEntry is a flattened (path, size) view of a Bitstream entity.
type BitstreamEntry struct {
	Path string
	Size int64
}

// BitstreamEntries returns every Bitstream's content-relative path and
// uncompressed size, in insertion order.
func (c *Catalog) BitstreamEntries() []BitstreamEntry {
	out := make([]BitstreamEntry, 0, len(c.bitstreams))
	for _, b := range c.bitstreams {
		p := b.Filename
		if b.PhysicalLocation != "" {
			p = b.PhysicalLocation + "/" + b.Filename
		}
		out = append(out, BitstreamEntry{Path: p, Size: b.FileSize})
	}
	return out
}

// RepresentationCount returns the number of Representations of repType
// already attached to ioRef, used to auto-number new representation names.
func (c *Catalog) RepresentationCount(ioRef string, repType RepresentationType) int {
	n := 0
	for _, r := range c.representations {
		if r.InformationObject == ioRef && r.Type == repType {
			n++
		}
	}
	return n
}
