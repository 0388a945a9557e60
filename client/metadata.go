package client

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"net/http"

	"github.com/lglanville/gopreservica/internal/dcontext"
)

const (
	xipNamespace         = "http://preservica.com/XIP/v6.0"
	extendedXIPNamespace = "http://preservica.com/ExtendedXIP/v6.0"
)

// PostMetadata appends a new metadata fragment to e.
func (s *Session) PostMetadata(ctx context.Context, e *Entity, fragment []byte) error {
	endpoint := e.URI + "/metadata"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(fragment))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/xml")
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		dcontext.GetLogger(ctx).WithField("entity", e.Ref).WithField("status", resp.StatusCode).Error("adding metadata failed")
		return httpErrorFor("PostMetadata", endpoint, resp)
	}
	dcontext.GetLogger(ctx).WithField("entity", e.Ref).Info("added metadata fragment")
	return nil
}

// ReplaceMetadata overwrites the fragment at fragmentURI.
func (s *Session) ReplaceMetadata(ctx context.Context, fragmentURI string, fragment []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fragmentURI, bytes.NewReader(fragment))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/xml")
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		dcontext.GetLogger(ctx).WithField("uri", fragmentURI).WithField("status", resp.StatusCode).Error("replacing metadata fragment failed")
		return httpErrorFor("ReplaceMetadata", fragmentURI, resp)
	}
	dcontext.GetLogger(ctx).WithField("uri", fragmentURI).Info("replaced metadata fragment")
	return nil
}

// UpdateXIPMeta mutates a single field of e's XIP envelope and PUTs the
// whole envelope back.
func (s *Session) UpdateXIPMeta(ctx context.Context, e *Entity, tag, text string) error {
	patched, err := replaceElementText(e.envelope, tag, text)
	if err != nil {
		return err
	}
	var body bytes.Buffer
	body.WriteString("<" + e.envelopeTag + ` xmlns="` + xipNamespace + `">`)
	body.Write(patched)
	body.WriteString("</" + e.envelopeTag + ">")

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.URI, &body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/xml")
	resp, err := s.do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return httpErrorFor("UpdateXIPMeta", e.URI, resp)
	}
	e.envelope = patched
	dcontext.GetLogger(ctx).WithField("entity", e.Ref).WithField("field", tag).Info("updated XIP field")
	return nil
}

// replaceElementText rewrites the character content of the first element
// named tag found in raw, leaving every other token untouched.
func replaceElementText(raw []byte, tag, text string) ([]byte, error) {
	dec := xml.NewDecoder(bytes.NewReader(raw))
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)

	depth := 0
	targetDepth := 0 // 0 means "not currently inside the target element"
	replaced := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			depth++
			if t.Name.Local == tag && targetDepth == 0 && !replaced {
				targetDepth = depth
				replaced = true
			}
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
		case xml.EndElement:
			if targetDepth == depth {
				targetDepth = 0
			}
			depth--
			if err := enc.EncodeToken(t); err != nil {
				return nil, err
			}
		case xml.CharData:
			if targetDepth != 0 {
				if err := enc.EncodeToken(xml.CharData([]byte(text))); err != nil {
					return nil, err
				}
			} else if err := enc.EncodeToken(t.Copy()); err != nil {
				return nil, err
			}
		default:
			if err := enc.EncodeToken(tok); err != nil {
				return nil, err
			}
		}
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UpdateExtendedXIP is an upsert of the ExtendedXIP temporal-coverage
// fragment on the entity at uri: replaces the existing fragment if one of
// that schema is already attached, otherwise posts a new one.
func (s *Session) UpdateExtendedXIP(ctx context.Context, uri, earliestISO, latestISO string, surrogate bool) error {
	e, err := s.GetObject(ctx, uri)
	if err != nil {
		return err
	}
	fragment := buildExtendedXIPFragment(earliestISO, latestISO, surrogate)

	for _, f := range e.Metadata {
		if f.Schema == extendedXIPNamespace {
			return s.ReplaceMetadata(ctx, f.URI, fragment)
		}
	}
	return s.PostMetadata(ctx, e, fragment)
}

type extendedXIPFragment struct {
	XMLName          xml.Name `xml:"ExtendedXIP"`
	Xmlns            string   `xml:"xmlns,attr"`
	DigitalSurrogate string   `xml:"DigitalSurrogate"`
	CoverageFrom     string   `xml:"CoverageFrom"`
	CoverageTo       string   `xml:"CoverageTo"`
}

func buildExtendedXIPFragment(earliestISO, latestISO string, surrogate bool) []byte {
	surrogateStr := "false"
	if surrogate {
		surrogateStr = "true"
	}
	doc := extendedXIPFragment{
		Xmlns:            extendedXIPNamespace,
		DigitalSurrogate: surrogateStr,
		CoverageFrom:     earliestISO,
		CoverageTo:       latestISO,
	}
	var buf bytes.Buffer
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	_ = enc.Encode(doc)
	_ = enc.Flush()
	return buf.Bytes()
}
