package sip

import (
	"archive/zip"
	"encoding/xml"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lglanville/gopreservica/xip"
)

func writeTempFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return p
}

func TestCreateAndSerialiseSingleAsset(t *testing.T) {
	dir := t.TempDir()
	assetPath := writeTempFile(t, dir, "image.tif", []byte("tiff-bytes"))

	pkgPath := filepath.Join(dir, "package.zip")
	b, err := Create(pkgPath, "dest-folder", "")
	require.NoError(t, err)
	assert.Equal(t, "package", b.name)

	soRef, err := b.AddStructuralObject("root", "dest-folder", "open")
	require.NoError(t, err)
	_, err = b.AddAssetTree(soRef, assetPath, "open", nil)
	require.NoError(t, err)
	require.NoError(t, b.Serialise())

	zr, err := zip.OpenReader(pkgPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Contains(t, names, b.SIPRef()+"/metadata.xml")
	assert.Contains(t, names, b.SIPRef()+".protocol")
	assert.Contains(t, names, b.SIPRef()+"/content/image.tif")
}

func TestSerialiseProtocolCountsMatchPayload(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.tif", []byte("0123456789"))
	bFile := writeTempFile(t, dir, "b.tif", []byte("01234"))

	pkgPath := filepath.Join(dir, "package.zip")
	builder, err := Create(pkgPath, "dest-folder", "")
	require.NoError(t, err)

	soRef, err := builder.AddStructuralObject("root", "dest-folder", "open")
	require.NoError(t, err)
	ioRef, err := builder.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)
	_, err = builder.AddManifestation(ioRef, []ManifestationFile{
		{Path: a}, {Path: bFile},
	}, xip.Preservation, "open", "")
	require.NoError(t, err)
	require.NoError(t, builder.Serialise())

	zr, err := zip.OpenReader(pkgPath)
	require.NoError(t, err)
	defer zr.Close()

	var protocolData []byte
	for _, zf := range zr.File {
		if zf.Name == builder.SIPRef()+".protocol" {
			rc, err := zf.Open()
			require.NoError(t, err)
			protocolData, err = io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close()
		}
	}
	require.NotNil(t, protocolData)

	var doc protocolDoc
	require.NoError(t, xml.Unmarshal(protocolData, &doc))
	assert.Equal(t, int64(15), doc.Size)  // 10 + 5 bytes
	assert.Equal(t, 2, doc.Files)
}

func TestAddBitstreamRejectsDuplicateArcname(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.tif", []byte("hello"))

	pkgPath := filepath.Join(dir, "package.zip")
	b, err := Create(pkgPath, "dest-folder", "")
	require.NoError(t, err)

	soRef, err := b.AddStructuralObject("root", "dest-folder", "open")
	require.NoError(t, err)
	_, err = b.AddAssetTree(soRef, a, "open", nil)
	require.NoError(t, err)

	err = b.AddBitstream(a, "a.tif", map[string]string{"MD5": "x"}, true, "")
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestOpenAppendsToExistingPackage(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.tif", []byte("first-file"))
	bFile := writeTempFile(t, dir, "b.tif", []byte("second-file"))

	pkgPath := filepath.Join(dir, "package.zip")
	builder, err := Create(pkgPath, "dest-folder", "")
	require.NoError(t, err)
	sipRef := builder.SIPRef()

	soRef, err := builder.AddStructuralObject("root", "dest-folder", "open")
	require.NoError(t, err)
	_, err = builder.AddAssetTree(soRef, a, "open", nil)
	require.NoError(t, err)
	require.NoError(t, builder.Serialise())

	reopened, err := Open(pkgPath, "dest-folder", "")
	require.NoError(t, err)
	assert.Equal(t, sipRef, reopened.SIPRef())

	_, err = reopened.AddAssetTree(soRef, bFile, "open", nil)
	require.NoError(t, err)
	require.NoError(t, reopened.Serialise())

	zr, err := zip.OpenReader(pkgPath)
	require.NoError(t, err)
	defer zr.Close()

	var names []string
	for _, zf := range zr.File {
		names = append(names, zf.Name)
	}
	assert.Contains(t, names, sipRef+"/content/a.tif")
	assert.Contains(t, names, sipRef+"/content/b.tif")

	var metadataRaw []byte
	for _, zf := range zr.File {
		if zf.Name == sipRef+"/metadata.xml" {
			rc, err := zf.Open()
			require.NoError(t, err)
			metadataRaw, err = io.ReadAll(rc)
			require.NoError(t, err)
			rc.Close()
		}
	}
	require.NotNil(t, metadataRaw)
	catalog, err := xip.Parse(metadataRaw)
	require.NoError(t, err)
	require.NoError(t, catalog.Validate())
	assert.Len(t, catalog.BitstreamEntries(), 2)
}

func TestSerialiseRejectsSecondCall(t *testing.T) {
	dir := t.TempDir()
	a := writeTempFile(t, dir, "a.tif", []byte("data"))

	pkgPath := filepath.Join(dir, "package.zip")
	b, err := Create(pkgPath, "dest-folder", "")
	require.NoError(t, err)
	soRef, err := b.AddStructuralObject("root", "dest-folder", "open")
	require.NoError(t, err)
	_, err = b.AddAssetTree(soRef, a, "open", nil)
	require.NoError(t, err)
	require.NoError(t, b.Serialise())

	err = b.Serialise()
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}
