package sip

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/lglanville/gopreservica/internal/dcontext"
	"github.com/lglanville/gopreservica/xip"
)

// AddStructuralObject appends a StructuralObject. The root SO of a package
// has parentRef equal to the external destination folder.
func (b *Builder) AddStructuralObject(title, parentRef, securityTag string) (string, error) {
	ref, err := b.catalog.AddStructuralObject(title, parentRef, securityTag)
	if err != nil {
		return "", err
	}
	b.log().WithField("ref", ref).WithField("title", title).Info("added StructuralObject")
	return ref, nil
}

// AddInformationObject appends an InformationObject under parentRef.
func (b *Builder) AddInformationObject(title, parentRef, securityTag string) (string, error) {
	ref, err := b.catalog.AddInformationObject(title, parentRef, securityTag)
	if err != nil {
		return "", err
	}
	b.log().WithField("ref", ref).WithField("title", title).Info("added InformationObject")
	return ref, nil
}

// AddContentObject appends a ContentObject under parentRef.
func (b *Builder) AddContentObject(filename, parentRef, securityTag string) (string, error) {
	ref, err := b.catalog.AddContentObject(filename, parentRef, securityTag)
	if err != nil {
		return "", err
	}
	b.log().WithField("ref", ref).WithField("filename", filename).Info("added ContentObject")
	return ref, nil
}

// AddRepresentation appends a Representation. repType must be Preservation
// or Access.
func (b *Builder) AddRepresentation(name, ioRef string, coRefs []string, repType xip.RepresentationType) error {
	if err := b.catalog.AddRepresentation(name, ioRef, coRefs, repType); err != nil {
		return err
	}
	b.log().WithField("name", name).WithField("informationObject", ioRef).Info("added Representation")
	return nil
}

// AddGeneration appends a Generation for coRef, stamping EffectiveDate with
// the current timestamp. Absolute bitstream paths are rejected.
func (b *Builder) AddGeneration(coRef, label string, bitstreamPaths []string, original, active bool) error {
	if err := b.catalog.AddGeneration(coRef, label, bitstreamPaths, original, active); err != nil {
		return err
	}
	b.log().WithField("contentObject", coRef).WithField("label", label).Info("added Generation")
	return nil
}

// AddBitstream registers a Bitstream for relPath and, if write is true,
// copies the physical file at fpath into the zip under
// <sipRef>/content/<arcname or relPath>. fileSize is read from the
// filesystem. Absolute paths and unknown fixity algorithms are rejected and
// leave the builder unchanged.
func (b *Builder) AddBitstream(fpath, relPath string, checksums map[string]string, write bool, arcname string) error {
	if arcname == "" {
		arcname = relPath
	}
	if b.existingContentPaths[arcname] {
		return ioErrorf("AddBitstream", alreadyPresentError(path.Clean(arcname)))
	}

	info, err := os.Stat(fpath)
	if err != nil {
		return ioErrorf("AddBitstream", err)
	}

	if err := b.catalog.AddBitstream(relPath, info.Size(), checksums); err != nil {
		return err
	}

	if write {
		if err := b.writeContentFile(fpath, arcname); err != nil {
			return err
		}
		b.existingContentPaths[arcname] = true
	}
	b.log().WithField("path", relPath).WithField("size", info.Size()).Info("added Bitstream")
	return nil
}

func (b *Builder) writeContentFile(fpath, arcname string) error {
	src, err := os.Open(fpath)
	if err != nil {
		return ioErrorf("AddBitstream", err)
	}
	defer src.Close()

	w, err := b.zw.Create(b.contentPath(filepath.ToSlash(arcname)))
	if err != nil {
		return ioErrorf("AddBitstream", err)
	}
	if _, err := io.Copy(w, src); err != nil {
		return ioErrorf("AddBitstream", err)
	}
	return nil
}

// AddIdentifier attaches a value of the given type to entityRef.
func (b *Builder) AddIdentifier(entityRef, value, idType string) error {
	if err := b.catalog.AddIdentifier(entityRef, value, idType); err != nil {
		return err
	}
	b.log().WithField("entity", entityRef).WithField("value", value).Info("added Identifier")
	return nil
}

// AddMetadata attaches an opaque XML fragment to entityRef, deriving
// schemaUri from the fragment's namespace.
func (b *Builder) AddMetadata(entityRef string, fragment []byte) (string, error) {
	ref, err := b.catalog.AddMetadata(entityRef, fragment)
	if err != nil {
		return "", err
	}
	b.log().WithField("entity", entityRef).WithField("ref", ref).Info("added Metadata")
	return ref, nil
}

// AddExtendedXIP attaches the ExtendedXIP temporal-coverage fragment to
// entityRef.
func (b *Builder) AddExtendedXIP(entityRef, earliestISO, latestISO string, surrogate bool) (string, error) {
	fragment := buildExtendedXIP(earliestISO, latestISO, surrogate)
	return b.AddMetadata(entityRef, fragment)
}

func (b *Builder) log() dcontext.Logger {
	return dcontext.GetLogger(context.Background()).WithField("sipRef", b.sipRef)
}

type alreadyPresentError string

func (e alreadyPresentError) Error() string {
	return "bitstream path already present in package: " + string(e)
}
