// Package sip builds, inspects, and serializes Submission Information
// Packages: a zip container bundling digital assets (bitstreams) with a
// structured XIP catalog. Builder exclusively owns the zip handle and the
// catalog tree for the lifetime of a build; it is not safe to share one
// Builder across goroutines.
package sip

import (
	"archive/zip"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/lglanville/gopreservica/internal/dcontext"
	"github.com/lglanville/gopreservica/xip"
)

const contentDirName = "content"

// Builder wraps a zip archive and an xip.Catalog, enforcing the package's
// referential invariants as entities and bitstreams are appended.
type Builder struct {
	path      string
	sipRef    string
	parentRef string // destination folder in the target repository
	name      string // submission name, defaults to the package filename stem
	catalog   *xip.Catalog

	f  *os.File
	zw *zip.Writer

	// existingContentPaths records bitstream content paths already written
	// to the zip, both those present when opened in append mode and those
	// added since; re-adding one is rejected.
	existingContentPaths map[string]bool

	serialised bool
}

// Create opens a brand-new package at path. parentRef is the destination
// folder in the target repository; name defaults to the filename stem.
func Create(path, parentRef, name string) (*Builder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, ioErrorf("Create", err)
	}
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	b := &Builder{
		path:                 path,
		sipRef:               uuid.NewString(),
		parentRef:            parentRef,
		name:                 name,
		catalog:              xip.NewCatalog(),
		f:                    f,
		zw:                   zip.NewWriter(f),
		existingContentPaths: map[string]bool{},
	}
	dcontext.GetLogger(context.Background()).WithField("path", path).WithField("sipRef", b.sipRef).Info("creating new SIP")
	return b, nil
}

// Open opens path for further appending if it exists, or creates a new
// package there if it does not, matching the original implementation's
// single constructor that auto-detects existing packages.
func Open(path, parentRef, name string) (*Builder, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Create(path, parentRef, name)
	} else if err != nil {
		return nil, ioErrorf("Open", err)
	}
	return openAppend(path, parentRef, name)
}

// SIPRef returns the package's UUID.
func (b *Builder) SIPRef() string { return b.sipRef }

// Catalog returns the underlying XIP catalog for read-only inspection.
func (b *Builder) Catalog() *xip.Catalog { return b.catalog }

func (b *Builder) contentPath(arcname string) string {
	return fmt.Sprintf("%s/%s/%s", b.sipRef, contentDirName, arcname)
}

func (b *Builder) metadataPath() string {
	return fmt.Sprintf("%s/metadata.xml", b.sipRef)
}

func (b *Builder) protocolPath() string {
	return fmt.Sprintf("%s.protocol", b.sipRef)
}
