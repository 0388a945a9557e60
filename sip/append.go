package sip

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/lglanville/gopreservica/internal/dcontext"
	"github.com/lglanville/gopreservica/xip"
)

// openAppend reopens an existing package for further appending.
//
// archive/zip's Writer only ever writes forward, so there is no direct
// equivalent of Python's zipfile 'a' mode. Instead we read the existing
// archive's directory, then rewrite the file from scratch: every existing
// entry except the old metadata.xml and *.protocol is copied across
// untouched via CreateRaw/OpenRaw (no re-compression), and the old XIP and
// protocol documents are dropped since Serialise regenerates them fresh.
func openAppend(path, parentRef, name string) (*Builder, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, ioErrorf("Open", err)
	}
	defer zr.Close()

	var sipRef, protocolName, metadataName string
	for _, zf := range zr.File {
		if strings.HasSuffix(zf.Name, ".protocol") {
			protocolName = zf.Name
			sipRef = strings.TrimSuffix(filepath.Base(zf.Name), ".protocol")
		}
	}
	if sipRef == "" {
		return nil, ioErrorf("Open", fmt.Errorf("no *.protocol entry found in %s", path))
	}
	metadataName = sipRef + "/metadata.xml"

	var catalog *xip.Catalog
	existingContentPaths := map[string]bool{}
	contentPrefix := sipRef + "/" + contentDirName + "/"

	// Buffer the non-metadata entries so we can close the reader before
	// truncating and reopening the same path for writing.
	type bufferedEntry struct {
		header *zip.FileHeader
		data   []byte
	}
	var buffered []bufferedEntry

	for _, zf := range zr.File {
		switch {
		case zf.Name == metadataName:
			rc, err := zf.Open()
			if err != nil {
				return nil, ioErrorf("Open", err)
			}
			raw, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, ioErrorf("Open", err)
			}
			catalog, err = xip.Parse(raw)
			if err != nil {
				return nil, ioErrorf("Open", err)
			}
		case zf.Name == protocolName:
			// dropped; Serialise regenerates it.
		default:
			rc, err := zf.OpenRaw()
			if err != nil {
				return nil, ioErrorf("Open", err)
			}
			raw, err := io.ReadAll(rc)
			if err != nil {
				return nil, ioErrorf("Open", err)
			}
			fh := zf.FileHeader
			buffered = append(buffered, bufferedEntry{header: &fh, data: raw})
			if strings.HasPrefix(zf.Name, contentPrefix) {
				existingContentPaths[strings.TrimPrefix(zf.Name, contentPrefix)] = true
			}
		}
	}
	if catalog == nil {
		return nil, ioErrorf("Open", fmt.Errorf("no %s entry found in %s", metadataName, path))
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, ioErrorf("Open", err)
	}
	zw := zip.NewWriter(f)
	for _, be := range buffered {
		w, err := zw.CreateRaw(be.header)
		if err != nil {
			return nil, ioErrorf("Open", err)
		}
		if _, err := w.Write(be.data); err != nil {
			return nil, ioErrorf("Open", err)
		}
	}

	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	b := &Builder{
		path:                 path,
		sipRef:               sipRef,
		parentRef:            parentRef,
		name:                 name,
		catalog:              catalog,
		f:                    f,
		zw:                   zw,
		existingContentPaths: existingContentPaths,
	}
	dcontext.GetLogger(context.Background()).WithField("path", path).WithField("sipRef", sipRef).Info("opened existing SIP for append")
	return b, nil
}
