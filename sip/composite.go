package sip

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lglanville/gopreservica/internal/fixity"
	"github.com/lglanville/gopreservica/xip"
)

// AddAssetTree is a convenience composite that builds an
// InformationObject -> ContentObject -> Representation("Preservation-1") ->
// Generation -> Bitstream hierarchy from a single file. If checksums is nil,
// a SHA256 digest is computed from the file.
func (b *Builder) AddAssetTree(parentRef, filePath, securityTag string, checksums map[string]string) (string, error) {
	base := filepath.Base(filePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))

	ioRef, err := b.AddInformationObject(stem, parentRef, securityTag)
	if err != nil {
		return "", err
	}
	coRef, err := b.AddContentObject(base, ioRef, securityTag)
	if err != nil {
		return "", err
	}
	if err := b.AddRepresentation("Preservation-1", ioRef, []string{coRef}, xip.Preservation); err != nil {
		return "", err
	}
	if err := b.AddGeneration(coRef, "", []string{base}, true, true); err != nil {
		return "", err
	}
	if checksums == nil {
		checksums, err = fixity.HashFile(filePath, []string{"SHA256"})
		if err != nil {
			return "", ioErrorf("AddAssetTree", err)
		}
	}
	if err := b.AddBitstream(filePath, base, checksums, true, ""); err != nil {
		return "", err
	}
	return ioRef, nil
}

// ManifestationFile pairs a physical file with precomputed checksums (nil to
// have the builder compute a SHA256 digest).
type ManifestationFile struct {
	Path      string
	Checksums map[string]string
}

// AddManifestation adds one ContentObject + Generation + Bitstream per file,
// then a single Representation grouping them in input order. If name is
// empty, it is auto-numbered as "<type>-<n>" where n is one greater than the
// number of existing representations of that type already on ioRef.
func (b *Builder) AddManifestation(ioRef string, files []ManifestationFile, repType xip.RepresentationType, securityTag, name string) (string, error) {
	if name == "" {
		n := b.catalog.RepresentationCount(ioRef, repType) + 1
		name = fmt.Sprintf("%s-%d", repType, n)
	}

	coRefs := make([]string, 0, len(files))
	for _, file := range files {
		base := filepath.Base(file.Path)
		coRef, err := b.AddContentObject(base, ioRef, securityTag)
		if err != nil {
			return "", err
		}
		if err := b.AddGeneration(coRef, "", []string{base}, true, true); err != nil {
			return "", err
		}
		checksums := file.Checksums
		if checksums == nil {
			var err error
			checksums, err = fixity.HashFile(file.Path, []string{"SHA256"})
			if err != nil {
				return "", ioErrorf("AddManifestation", err)
			}
		}
		if err := b.AddBitstream(file.Path, base, checksums, true, ""); err != nil {
			return "", err
		}
		coRefs = append(coRefs, coRef)
	}

	if err := b.AddRepresentation(name, ioRef, coRefs, repType); err != nil {
		return "", err
	}
	return name, nil
}
