// Package xip models the in-memory, ordered, typed catalog tree of a
// Submission Information Package: structural folders, information objects,
// representations, content objects, generations, and bitstreams. The model
// is pure data — it performs no I/O of its own.
package xip

import (
	"bytes"
	"encoding/xml"
	"path"
	"sort"
	"strings"

	"github.com/google/uuid"
)

var allowedFixityAlgorithms = map[string]bool{
	"MD5": true, "SHA1": true, "SHA256": true, "SHA512": true,
}

type ref struct {
	kind  Kind
	index int // index into the slice for kind; for Identifier/Metadata, index into others
}

// Catalog is a forest of StructuralObject, InformationObject, Representation,
// ContentObject, Generation, and Bitstream entities, plus any number of
// Identifier and Metadata fragments attached to SO/IO/CO entities.
//
// References into the tree are opaque UUID strings; callers cannot corrupt
// the tree by retaining them.
type Catalog struct {
	structuralObjects  []*StructuralObject
	informationObjects []*InformationObject
	representations    []*Representation
	contentObjects     []*ContentObject
	generations        []*Generation
	bitstreams         []*Bitstream
	others             []any // *Identifier or *Metadata, insertion order

	refs           map[string]ref
	soTitleToRef   map[string]string
	bitstreamByKey map[string]*Bitstream // posix "dir/filename" -> bitstream
}

// NewCatalog returns an empty catalog ready for appends.
func NewCatalog() *Catalog {
	return &Catalog{
		refs:           make(map[string]ref),
		soTitleToRef:   make(map[string]string),
		bitstreamByKey: make(map[string]*Bitstream),
	}
}

func newRef() string {
	return uuid.NewString()
}

// Kind returns the entity kind registered under ref, if any.
func (c *Catalog) Kind(r string) (Kind, bool) {
	e, ok := c.refs[r]
	if !ok {
		return "", false
	}
	return e.kind, true
}

// AddStructuralObject appends a StructuralObject. A root SO's parentRef is
// the external destination folder and need not resolve within this catalog;
// any other parentRef must already name an SO in this catalog.
func (c *Catalog) AddStructuralObject(title, parentRef, securityTag string) (string, error) {
	if securityTag == "" {
		securityTag = "open"
	}
	if parentRef != "" {
		if k, ok := c.Kind(parentRef); ok && k != KindStructuralObject {
			return "", validationErrorf("AddStructuralObject", "parent %s is a %s, not a StructuralObject", parentRef, k)
		}
	}
	r := newRef()
	c.structuralObjects = append(c.structuralObjects, &StructuralObject{
		Ref: r, Title: title, SecurityTag: securityTag, Parent: parentRef,
	})
	c.refs[r] = ref{kind: KindStructuralObject, index: len(c.structuralObjects) - 1}
	c.soTitleToRef[title] = r
	return r, nil
}

// AddInformationObject appends an InformationObject under an existing SO.
func (c *Catalog) AddInformationObject(title, parentRef, securityTag string) (string, error) {
	if securityTag == "" {
		securityTag = "open"
	}
	if k, ok := c.Kind(parentRef); !ok || k != KindStructuralObject {
		return "", validationErrorf("AddInformationObject", "parent %s does not resolve to a StructuralObject", parentRef)
	}
	r := newRef()
	c.informationObjects = append(c.informationObjects, &InformationObject{
		Ref: r, Title: title, SecurityTag: securityTag, Parent: parentRef,
	})
	c.refs[r] = ref{kind: KindInformationObject, index: len(c.informationObjects) - 1}
	return r, nil
}

// AddContentObject appends a ContentObject under an existing IO.
func (c *Catalog) AddContentObject(filename, parentRef, securityTag string) (string, error) {
	if securityTag == "" {
		securityTag = "open"
	}
	if k, ok := c.Kind(parentRef); !ok || k != KindInformationObject {
		return "", validationErrorf("AddContentObject", "parent %s does not resolve to an InformationObject", parentRef)
	}
	r := newRef()
	c.contentObjects = append(c.contentObjects, &ContentObject{
		Ref: r, Title: filename, SecurityTag: securityTag, Parent: parentRef,
	})
	c.refs[r] = ref{kind: KindContentObject, index: len(c.contentObjects) - 1}
	return r, nil
}

// AddRepresentation appends a Representation grouping coRefs (in the given
// order) under ioRef. Representation has no ref of its own.
func (c *Catalog) AddRepresentation(name, ioRef string, coRefs []string, repType RepresentationType) error {
	if repType != Preservation && repType != Access {
		return validationErrorf("AddRepresentation", "type must be Preservation or Access, got %q", repType)
	}
	if k, ok := c.Kind(ioRef); !ok || k != KindInformationObject {
		return validationErrorf("AddRepresentation", "informationObjectRef %s does not resolve to an InformationObject", ioRef)
	}
	for _, coRef := range coRefs {
		co, ok := c.contentObject(coRef)
		if !ok {
			return validationErrorf("AddRepresentation", "contentObjectRef %s does not resolve to a ContentObject", coRef)
		}
		if co.Parent != ioRef {
			return validationErrorf("AddRepresentation", "contentObjectRef %s belongs to InformationObject %s, not %s", coRef, co.Parent, ioRef)
		}
	}
	c.representations = append(c.representations, &Representation{
		InformationObject: ioRef,
		Name:              name,
		Type:              repType,
		ContentObjects:    contentObjectRefs{ContentObject: append([]string(nil), coRefs...)},
	})
	return nil
}

// AddGeneration appends a Generation for coRef. bitstreamPaths are relative,
// POSIX-normalized paths; cross-resolution against actual Bitstream entries
// is checked by Validate (typically invoked at serialise time), since
// bitstreams are commonly appended after their Generation.
func (c *Catalog) AddGeneration(coRef, label string, bitstreamPaths []string, original, active bool) error {
	if k, ok := c.Kind(coRef); !ok || k != KindContentObject {
		return validationErrorf("AddGeneration", "contentObjectRef %s does not resolve to a ContentObject", coRef)
	}
	for _, p := range bitstreamPaths {
		if path.IsAbs(p) || strings.HasPrefix(p, "/") {
			return validationErrorf("AddGeneration", "bitstream path %q must be relative", p)
		}
	}
	c.generations = append(c.generations, &Generation{
		Original:      boolAttr(original),
		Active:        boolAttr(active),
		ContentObject: coRef,
		Label:         label,
		EffectiveDate: isoNow(),
		Bitstreams:    bitstreamRefs{Bitstream: append([]string(nil), bitstreamPaths...)},
	})
	return nil
}

// AddBitstream appends a Bitstream entry for a file already staged at
// relPath with the given fixities. The catalog performs no file I/O; the
// Package Builder computes fileSize and copies the physical file.
func (c *Catalog) AddBitstream(relPath string, fileSize int64, fixities map[string]string) error {
	if path.IsAbs(relPath) || strings.HasPrefix(relPath, "/") {
		return validationErrorf("AddBitstream", "bitstream path %q must be relative", relPath)
	}
	cleaned := path.Clean(relPath)
	dir := path.Dir(cleaned)
	if dir == "." {
		dir = ""
	}
	name := path.Base(cleaned)

	algs := make([]string, 0, len(fixities))
	for alg := range fixities {
		algs = append(algs, alg)
	}
	sort.Strings(algs)
	fl := make([]Fixity, 0, len(algs))
	for _, alg := range algs {
		upper := strings.ToUpper(alg)
		if !allowedFixityAlgorithms[upper] {
			return validationErrorf("AddBitstream", "unsupported fixity algorithm %q", alg)
		}
		fl = append(fl, Fixity{Algorithm: upper, Value: strings.ToLower(fixities[alg])})
	}

	b := &Bitstream{
		Filename:         name,
		FileSize:         fileSize,
		PhysicalLocation: dir,
		Fixities:         fixityList{Fixity: fl},
	}
	c.bitstreams = append(c.bitstreams, b)
	c.bitstreamByKey[cleaned] = b
	return nil
}

// AddIdentifier attaches a value of the given type to entityRef. There is no
// uniqueness constraint; many identifiers may share an entity.
func (c *Catalog) AddIdentifier(entityRef, value, idType string) error {
	if idType == "" {
		idType = "code"
	}
	if _, ok := c.Kind(entityRef); !ok {
		return validationErrorf("AddIdentifier", "entity %s does not resolve", entityRef)
	}
	c.others = append(c.others, &Identifier{Type: idType, Value: value, Entity: entityRef})
	return nil
}

// AddMetadata attaches an opaque XML fragment to entityRef, deriving the
// fragment's schemaUri from its root element's namespace.
func (c *Catalog) AddMetadata(entityRef string, fragment []byte) (string, error) {
	if _, ok := c.Kind(entityRef); !ok {
		return "", validationErrorf("AddMetadata", "entity %s does not resolve", entityRef)
	}
	schemaURI, err := fragmentNamespace(fragment)
	if err != nil {
		return "", validationErrorf("AddMetadata", "cannot parse fragment: %v", err)
	}
	r := newRef()
	m := &Metadata{SchemaURI: schemaURI, Ref: r, Entity: entityRef, Content: rawXML(fragment)}
	c.others = append(c.others, m)
	c.refs[r] = ref{kind: KindMetadata, index: len(c.others) - 1}
	return r, nil
}

func fragmentNamespace(fragment []byte) (string, error) {
	dec := xml.NewDecoder(bytes.NewReader(fragment))
	for {
		tok, err := dec.Token()
		if err != nil {
			return "", err
		}
		if se, ok := tok.(xml.StartElement); ok {
			return se.Name.Space, nil
		}
	}
}

func (c *Catalog) contentObject(r string) (*ContentObject, bool) {
	e, ok := c.refs[r]
	if !ok || e.kind != KindContentObject {
		return nil, false
	}
	return c.contentObjects[e.index], true
}
