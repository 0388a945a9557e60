package sip

import (
	"bytes"
	"encoding/xml"
	"os/user"
)

const protocolNamespace = "http://www.tessella.com/xipcreateprotocol/v1"

// protocolDoc mirrors the original implementation's element names and
// order. The original swaps size and files (assigning the file count to
// <size> and the byte total to <files>); this corrects that, per the
// mapping decided for ambiguous cases: <size> holds total bytes, <files>
// holds the entry count.
type protocolDoc struct {
	XMLName        xml.Name `xml:"http://www.tessella.com/xipcreateprotocol/v1 protocol"`
	DateCreated    string   `xml:"dateCreated"`
	Size           int64    `xml:"size"`
	Files          int      `xml:"files"`
	SubmissionName string   `xml:"submissionName"`
	CatalogueName  string   `xml:"catalogueName"`
	LocalAIP       string   `xml:"localAIP"`
	GlobalAIP      string   `xml:"globalAIP"`
	CreatedBy      string   `xml:"createdBy"`
}

func buildProtocol(sipRef, parentRef, name string, totalSize int64, fileCount int) []byte {
	doc := protocolDoc{
		DateCreated:    isoNow(),
		Size:           totalSize,
		Files:          fileCount,
		SubmissionName: name,
		CatalogueName:  name,
		LocalAIP:       sipRef,
		GlobalAIP:      parentRef,
		CreatedBy:      createdBy(),
	}
	var buf bytes.Buffer
	buf.WriteString(xmlDeclaration)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	_ = enc.Encode(doc)
	_ = enc.Flush()
	return buf.Bytes()
}

func createdBy() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "unknown"
}
