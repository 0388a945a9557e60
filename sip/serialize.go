package sip

import (
	"context"
	"path"

	"github.com/lglanville/gopreservica/internal/dcontext"
)

// Serialise validates the catalog, writes the canonical metadata.xml and
// the sibling .protocol document, and closes the package. A Builder is not
// usable for further Add* calls after Serialise returns successfully; call
// Serialise exactly once per build.
func (b *Builder) Serialise() error {
	if b.serialised {
		return ioErrorf("Serialise", alreadySerialisedError{})
	}
	if err := b.catalog.Validate(); err != nil {
		return err
	}

	metadata, err := b.catalog.Serialize()
	if err != nil {
		return err
	}
	w, err := b.zw.Create(b.metadataPath())
	if err != nil {
		return ioErrorf("Serialise", err)
	}
	if _, err := w.Write(metadata); err != nil {
		return ioErrorf("Serialise", err)
	}

	totalSize, fileCount := b.payloadStats()
	protocol := buildProtocol(b.sipRef, b.parentRef, b.name, totalSize, fileCount)
	pw, err := b.zw.Create(b.protocolPath())
	if err != nil {
		return ioErrorf("Serialise", err)
	}
	if _, err := pw.Write(protocol); err != nil {
		return ioErrorf("Serialise", err)
	}

	if err := b.zw.Close(); err != nil {
		return ioErrorf("Serialise", err)
	}
	if err := b.f.Close(); err != nil {
		return ioErrorf("Serialise", err)
	}
	b.serialised = true

	b.log().WithField("size", totalSize).WithField("files", fileCount).Info("serialised SIP")
	return nil
}

// payloadStats returns the total uncompressed payload size and the entry
// count (unique directories plus files) under the content/ prefix, combining
// bitstreams already present when the package was opened for append with
// those added in this session.
func (b *Builder) payloadStats() (totalSize int64, fileCount int) {
	dirs := map[string]bool{}
	for _, e := range b.catalog.BitstreamEntries() {
		totalSize += e.Size
		fileCount++
		for dir := path.Dir(e.Path); dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
			dirs[dir] = true
		}
	}
	return totalSize, fileCount + len(dirs)
}

type alreadySerialisedError struct{}

func (alreadySerialisedError) Error() string { return "package already serialised" }
