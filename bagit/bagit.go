// Package bagit defines the checksum lookup contract a BagIt reader must
// satisfy to feed a package build. No BagIt reader is implemented here;
// this package exists so sip.Builder callers can depend on an interface
// rather than a concrete bag library.
package bagit

import "strings"

// ChecksumProvider exposes a BagIt bag's payload manifest as a
// path-to-algorithm-to-digest lookup, replacing the linear scan the
// original implementation did per file with a single pre-built map.
type ChecksumProvider interface {
	// PayloadEntries returns every payload file's relative path mapped to
	// its recorded algorithm-to-hex-digest checksums.
	PayloadEntries() map[string]map[string]string

	// Identifier returns the bag's own identifier, taken from its
	// bag-info.txt, for use as the root StructuralObject's title.
	Identifier() string
}

// ChecksumsFor is a convenience lookup against a ChecksumProvider,
// returning the checksums recorded for relPath with algorithm names
// normalized to uppercase, matching the fixity algorithm discipline used
// throughout the catalog model.
func ChecksumsFor(p ChecksumProvider, relPath string) (map[string]string, bool) {
	entries, ok := p.PayloadEntries()[relPath]
	if !ok {
		return nil, false
	}
	out := make(map[string]string, len(entries))
	for alg, digest := range entries {
		out[strings.ToUpper(alg)] = digest
	}
	return out, true
}
