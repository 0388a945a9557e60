package client

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/lglanville/gopreservica/internal/dcontext"
)

// Entity is the parsed form of an entity document returned by the
// repository: the typed XIP envelope plus the additional-information block
// of navigation links.
type Entity struct {
	Kind        string // canonical plural form, e.g. "information-objects"
	Ref         string
	Title       string
	SecurityTag string
	ParentRef   string
	URI         string
	ParentURI   string
	ChildrenURI string
	Metadata    []MetadataFragment

	envelope    []byte // raw XIP envelope, reused by UpdateXIPMeta
	envelopeTag string
}

// MetadataFragment names one metadata fragment attached to an entity.
type MetadataFragment struct {
	Schema string
	URI    string
}

type xipEnvelope struct {
	XMLName     xml.Name
	Ref         string `xml:"Ref"`
	Title       string `xml:"Title"`
	SecurityTag string `xml:"SecurityTag"`
	Parent      string `xml:"Parent"`
	Raw         []byte `xml:",innerxml"`
}

type entityResponse struct {
	XMLName               xml.Name
	StructuralObject      *xipEnvelope `xml:"StructuralObject"`
	InformationObject     *xipEnvelope `xml:"InformationObject"`
	ContentObject         *xipEnvelope `xml:"ContentObject"`
	AdditionalInformation struct {
		Self     string `xml:"Self"`
		Parent   string `xml:"Parent"`
		Children string `xml:"Children"`
		Metadata struct {
			Fragment []struct {
				Schema string `xml:"schema,attr"`
				URI    string `xml:",chardata"`
			} `xml:"Fragment"`
		} `xml:"Metadata"`
	} `xml:"AdditionalInformation"`
}

func canonicalKind(envelopeTag string) string {
	switch envelopeTag {
	case "InformationObject":
		return "information-objects"
	case "StructuralObject":
		return "structural-objects"
	case "ContentObject":
		return "content-objects"
	default:
		return envelopeTag
	}
}

func parseEntityResponse(data []byte) (*Entity, error) {
	var resp entityResponse
	if err := xml.Unmarshal(data, &resp); err != nil {
		return nil, err
	}
	env := resp.StructuralObject
	if env == nil {
		env = resp.InformationObject
	}
	if env == nil {
		env = resp.ContentObject
	}
	if env == nil {
		return nil, &xml.SyntaxError{Msg: "entity response has no recognized envelope element"}
	}

	e := &Entity{
		Kind:        canonicalKind(env.XMLName.Local),
		Ref:         env.Ref,
		Title:       env.Title,
		SecurityTag: env.SecurityTag,
		ParentRef:   env.Parent,
		URI:         resp.AdditionalInformation.Self,
		ParentURI:   resp.AdditionalInformation.Parent,
		ChildrenURI: resp.AdditionalInformation.Children,
		envelope:    env.Raw,
		envelopeTag: env.XMLName.Local,
	}
	for _, f := range resp.AdditionalInformation.Metadata.Fragment {
		e.Metadata = append(e.Metadata, MetadataFragment{Schema: f.Schema, URI: f.URI})
	}
	return e, nil
}

// GetObject fetches and parses the entity document at uri.
func (s *Session) GetObject(ctx context.Context, uri string) (*Entity, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		dcontext.GetLogger(ctx).WithField("uri", uri).WithField("status", resp.StatusCode).Error("request for entity failed")
		return nil, httpErrorFor("GetObject", uri, resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseEntityResponse(body)
}

type byIdentifierResponse struct {
	XMLName  xml.Name
	Entities []struct {
		Type  string `xml:"type,attr"`
		Ref   string `xml:"ref,attr"`
		Title string `xml:"title,attr"`
		URI   string `xml:",chardata"`
	} `xml:"Entities>Entity"`
}

// kindFromShortType maps the by-identifier listing's short entity type
// (IO, SO, CO) to the canonical plural kind used elsewhere in this package.
func kindFromShortType(short string) string {
	switch short {
	case "IO":
		return "information-objects"
	case "SO":
		return "structural-objects"
	case "CO":
		return "content-objects"
	default:
		return short
	}
}

// GetObjectsByID resolves an identifier (type defaults to "code" when
// empty) to the matching (kind, ref, title, uri) tuples, parsed entirely
// from the by-identifier listing itself; it does not fetch each entity.
func (s *Session) GetObjectsByID(ctx context.Context, value, idType string) ([]Entity, error) {
	if idType == "" {
		idType = "code"
	}
	endpoint := s.entityURL + "/entities/by-identifier"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	q := req.URL.Query()
	q.Set("type", idType)
	q.Set("value", value)
	req.URL.RawQuery = q.Encode()

	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, httpErrorFor("GetObjectsByID", endpoint, resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var listing byIdentifierResponse
	if err := xml.Unmarshal(body, &listing); err != nil {
		return nil, err
	}

	entities := make([]Entity, 0, len(listing.Entities))
	for _, ent := range listing.Entities {
		entities = append(entities, Entity{
			Kind:  kindFromShortType(ent.Type),
			Ref:   ent.Ref,
			Title: ent.Title,
			URI:   ent.URI,
		})
	}
	return entities, nil
}

// GetObjectsByIDGrouped is GetObjectsByID with the results grouped by
// canonical kind, convenient for callers that branch on entity type.
func (s *Session) GetObjectsByIDGrouped(ctx context.Context, value, idType string) (map[string][]Entity, error) {
	entities, err := s.GetObjectsByID(ctx, value, idType)
	if err != nil {
		return nil, err
	}
	grouped := make(map[string][]Entity)
	for _, e := range entities {
		grouped[e.Kind] = append(grouped[e.Kind], e)
	}
	return grouped, nil
}

type childrenResponse struct {
	XMLName  xml.Name
	Children []struct {
		URI string `xml:",chardata"`
	} `xml:"Children>Child"`
}

// GetChildren resolves e's children collection.
func (s *Session) GetChildren(ctx context.Context, e *Entity) ([]Entity, error) {
	if e.ChildrenURI == "" {
		return nil, nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.ChildrenURI, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		dcontext.GetLogger(ctx).WithField("entity", e.Ref).WithField("status", resp.StatusCode).Error("request for children failed")
		return nil, httpErrorFor("GetChildren", e.ChildrenURI, resp)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	var listing childrenResponse
	if err := xml.Unmarshal(body, &listing); err != nil {
		return nil, err
	}

	children := make([]Entity, 0, len(listing.Children))
	for _, ref := range listing.Children {
		child, err := s.GetObject(ctx, ref.URI)
		if err != nil {
			return nil, err
		}
		children = append(children, *child)
	}
	return children, nil
}
