package sip

import (
	"bytes"
	"encoding/xml"

	"github.com/lglanville/gopreservica/xip"
)

type extendedXIP struct {
	XMLName          xml.Name `xml:"ExtendedXIP"`
	Xmlns            string   `xml:"xmlns,attr"`
	DigitalSurrogate string   `xml:"DigitalSurrogate"`
	CoverageFrom     string   `xml:"CoverageFrom"`
	CoverageTo       string   `xml:"CoverageTo"`
}

func buildExtendedXIP(earliestISO, latestISO string, surrogate bool) []byte {
	surrogateStr := "false"
	if surrogate {
		surrogateStr = "true"
	}
	doc := extendedXIP{
		Xmlns:            xip.ExtendedNamespace,
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
