package xip

import (
	"bytes"
	"encoding/xml"
	"io"
)

// Namespace is the XML namespace of the XIP catalog document.
const Namespace = "http://preservica.com/XIP/v6.0"

// ExtendedNamespace is the namespace of the ExtendedXIP metadata schema.
const ExtendedNamespace = "http://preservica.com/ExtendedXIP/v6.0"

// Kind identifies one of the six entity kinds that make up the catalog.
type Kind string

const (
	KindStructuralObject  Kind = "StructuralObject"
	KindInformationObject Kind = "InformationObject"
	KindRepresentation    Kind = "Representation"
	KindContentObject     Kind = "ContentObject"
	KindGeneration        Kind = "Generation"
	KindBitstream         Kind = "Bitstream"
	KindIdentifier        Kind = "Identifier"
	KindMetadata          Kind = "Metadata"
)

// RepresentationType is the classification of a Representation.
type RepresentationType string

const (
	Preservation RepresentationType = "Preservation"
	Access       RepresentationType = "Access"
)

// boolAttr marshals a Go bool as the literal strings "true"/"false", which
// is the form the Generation original/active attributes require.
type boolAttr bool

func (b boolAttr) MarshalXMLAttr(name xml.Name) (xml.Attr, error) {
	v := "false"
	if b {
		v = "true"
	}
	return xml.Attr{Name: name, Value: v}, nil
}

// StructuralObject is a node of the archival tree's directory structure.
type StructuralObject struct {
	XMLName     xml.Name `xml:"StructuralObject"`
	Ref         string   `xml:"Ref"`
	Title       string   `xml:"Title"`
	SecurityTag string   `xml:"SecurityTag"`
	Parent      string   `xml:"Parent,omitempty"`
}

// InformationObject is a logically atomic asset held by a StructuralObject.
type InformationObject struct {
	XMLName     xml.Name `xml:"InformationObject"`
	Ref         string   `xml:"Ref"`
	Title       string   `xml:"Title"`
	SecurityTag string   `xml:"SecurityTag"`
	Parent      string   `xml:"Parent"`
}

// ContentObject is a logically atomic piece of content within an
// InformationObject.
type ContentObject struct {
	XMLName     xml.Name `xml:"ContentObject"`
	Ref         string   `xml:"Ref"`
	Title       string   `xml:"Title"`
	SecurityTag string   `xml:"SecurityTag"`
	Parent      string   `xml:"Parent"`
}

type contentObjectRefs struct {
	ContentObject []string `xml:"ContentObject"`
}

// Representation is a named, ordered grouping of ContentObjects belonging
// to one InformationObject.
type Representation struct {
	XMLName           xml.Name           `xml:"Representation"`
	InformationObject string             `xml:"InformationObject"`
	Name              string             `xml:"Name"`
	Type              RepresentationType `xml:"Type"`
	ContentObjects    contentObjectRefs  `xml:"ContentObjects"`
}

type bitstreamRefs struct {
	Bitstream []string `xml:"Bitstream"`
}

// Generation is a dated view of a ContentObject's content in one format.
type Generation struct {
	XMLName       xml.Name      `xml:"Generation"`
	Original      boolAttr      `xml:"original,attr"`
	Active        boolAttr      `xml:"active,attr"`
	ContentObject string        `xml:"ContentObject"`
	Label         string        `xml:"Label"`
	EffectiveDate string        `xml:"EffectiveDate"`
	Bitstreams    bitstreamRefs `xml:"Bitstreams"`
	Formats       struct{}      `xml:"Formats"`
	Properties    struct{}      `xml:"Properties"`
}

// Fixity is an (algorithm, hex digest) attestation of bitstream integrity.
type Fixity struct {
	Algorithm string `xml:"FixityAlgorithmRef"`
	Value     string `xml:"FixityValue"`
}

type fixityList struct {
	Fixity []Fixity `xml:"Fixity"`
}

// Bitstream is the physical file payload referenced by a Generation.
type Bitstream struct {
	XMLName          xml.Name   `xml:"Bitstream"`
	Filename         string     `xml:"Filename"`
	FileSize         int64      `xml:"FileSize"`
	PhysicalLocation string     `xml:"PhysicalLocation"`
	Fixities         fixityList `xml:"Fixities"`
}

// Identifier is a type/value pair attached to an SO, IO, or CO.
type Identifier struct {
	XMLName xml.Name `xml:"Identifier"`
	Type    string   `xml:"Type"`
	Value   string   `xml:"Value"`
	Entity  string   `xml:"Entity"`
}

// rawXML re-emits a pre-serialized XML fragment verbatim when marshaled,
// instead of escaping it as character data.
type rawXML []byte

func (r rawXML) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if err := e.EncodeToken(start); err != nil {
		return err
	}
	dec := xml.NewDecoder(bytes.NewReader(r))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if err := e.EncodeToken(xml.CopyToken(tok)); err != nil {
			return err
		}
	}
	return e.EncodeToken(start.End())
}

// UnmarshalXML captures the raw inner XML of the element, preserving nested
// markup instead of collapsing it to character data.
func (r *rawXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var capture struct {
		Inner []byte `xml:",innerxml"`
	}
	if err := d.DecodeElement(&capture, &start); err != nil {
		return err
	}
	*r = rawXML(capture.Inner)
	return nil
}

// Metadata is an opaque XML fragment attached to an SO, IO, or CO.
type Metadata struct {
	XMLName   xml.Name `xml:"Metadata"`
	SchemaURI string   `xml:"schemaUri,attr"`
	Ref       string   `xml:"Ref"`
	Entity    string   `xml:"Entity"`
	Content   rawXML   `xml:"Content"`
}
