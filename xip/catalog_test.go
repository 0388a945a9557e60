package xip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddInformationObjectRejectsNonStructuralParent(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)
	ioRef, err := c.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)

	_, err = c.AddInformationObject("nested", ioRef, "open")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddContentObjectRequiresInformationObjectParent(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)

	_, err = c.AddContentObject("file.tif", soRef, "open")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddRepresentationRejectsForeignContentObject(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)
	ioRef, err := c.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)
	otherIORef, err := c.AddInformationObject("other", soRef, "open")
	require.NoError(t, err)
	coRef, err := c.AddContentObject("file.tif", otherIORef, "open")
	require.NoError(t, err)

	err = c.AddRepresentation("preservation", ioRef, []string{coRef}, Preservation)
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddRepresentationRejectsBadType(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)
	ioRef, err := c.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)

	err = c.AddRepresentation("rep", ioRef, nil, RepresentationType("Derived"))
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddBitstreamRejectsAbsolutePath(t *testing.T) {
	c := NewCatalog()
	err := c.AddBitstream("/content/file.tif", 10, map[string]string{"MD5": "abc"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddBitstreamRejectsUnsupportedAlgorithm(t *testing.T) {
	c := NewCatalog()
	err := c.AddBitstream("content/file.tif", 10, map[string]string{"CRC32": "abc"})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddBitstreamUppercasesAlgorithmAndLowercasesValue(t *testing.T) {
	c := NewCatalog()
	err := c.AddBitstream("content/file.tif", 10, map[string]string{"md5": "ABCDEF"})
	require.NoError(t, err)

	b, ok := c.bitstreamByKey["content/file.tif"]
	require.True(t, ok)
	require.Len(t, b.Fixities.Fixity, 1)
	assert.Equal(t, "MD5", b.Fixities.Fixity[0].Algorithm)
	assert.Equal(t, "abcdef", b.Fixities.Fixity[0].Value)
}

func TestAddBitstreamSortsFixityAlgorithms(t *testing.T) {
	c := NewCatalog()
	err := c.AddBitstream("content/file.tif", 10, map[string]string{
		"SHA256": "b",
		"MD5":    "a",
		"SHA1":   "c",
	})
	require.NoError(t, err)

	b := c.bitstreamByKey["content/file.tif"]
	require.Len(t, b.Fixities.Fixity, 3)
	assert.Equal(t, "MD5", b.Fixities.Fixity[0].Algorithm)
	assert.Equal(t, "SHA1", b.Fixities.Fixity[1].Algorithm)
	assert.Equal(t, "SHA256", b.Fixities.Fixity[2].Algorithm)
}

func TestAddIdentifierRequiresResolvableEntity(t *testing.T) {
	c := NewCatalog()
	err := c.AddIdentifier("nonexistent-ref", "1234", "code")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestAddMetadataDerivesSchemaFromFragmentNamespace(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)

	fragment := []byte(`<ExtendedXIP xmlns="http://preservica.com/ExtendedXIP/v6.0"><Surrogate>false</Surrogate></ExtendedXIP>`)
	ref, err := c.AddMetadata(soRef, fragment)
	require.NoError(t, err)

	kind, ok := c.Kind(ref)
	require.True(t, ok)
	assert.Equal(t, KindMetadata, kind)

	m, ok := c.others[len(c.others)-1].(*Metadata)
	require.True(t, ok)
	assert.Equal(t, ExtendedNamespace, m.SchemaURI)
}

func TestValidateCatchesGenerationWithUnresolvedBitstream(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)
	ioRef, err := c.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)
	coRef, err := c.AddContentObject("file.tif", ioRef, "open")
	require.NoError(t, err)

	err = c.AddGeneration(coRef, "master", []string{"content/file.tif"}, true, true)
	require.NoError(t, err)

	err = c.Validate()
	assert.Error(t, err)

	err = c.AddBitstream("content/file.tif", 100, map[string]string{"MD5": "abc"})
	require.NoError(t, err)
	assert.NoError(t, c.Validate())
}

func buildSampleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)
	ioRef, err := c.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)
	coRef, err := c.AddContentObject("file.tif", ioRef, "open")
	require.NoError(t, err)
	err = c.AddRepresentation("preservation", ioRef, []string{coRef}, Preservation)
	require.NoError(t, err)
	err = c.AddGeneration(coRef, "master", []string{"content/file.tif"}, true, true)
	require.NoError(t, err)
	err = c.AddBitstream("content/file.tif", 100, map[string]string{"SHA256": "abc"})
	require.NoError(t, err)
	err = c.AddIdentifier(soRef, "1234", "code")
	require.NoError(t, err)
	return c
}

func TestSerializeProducesWellFormedRootAndOrder(t *testing.T) {
	c := buildSampleCatalog(t)
	require.NoError(t, c.Validate())

	data, err := c.Serialize()
	require.NoError(t, err)

	s := string(data)
	assert.Contains(t, s, `<?xml version="1.0" encoding="UTF-8" standalone="true"?>`)
	assert.Contains(t, s, `xmlns="http://preservica.com/XIP/v6.0"`)

	soIdx := indexOf(s, "<StructuralObject>")
	ioIdx := indexOf(s, "<InformationObject>")
	repIdx := indexOf(s, "<Representation>")
	coIdx := indexOf(s, "<ContentObject>")
	genIdx := indexOf(s, "<Generation ")
	bsIdx := indexOf(s, "<Bitstream>")
	idIdx := indexOf(s, "<Identifier>")

	assert.True(t, soIdx < ioIdx, "StructuralObject should precede InformationObject")
	assert.True(t, ioIdx < repIdx, "InformationObject should precede Representation")
	assert.True(t, repIdx < coIdx, "Representation should precede ContentObject")
	assert.True(t, coIdx < genIdx, "ContentObject should precede Generation")
	assert.True(t, genIdx < bsIdx, "Generation should precede Bitstream")
	assert.True(t, bsIdx < idIdx, "Bitstream should precede Identifier")
}

func TestSerializeOrdersRepresentationsByNameDescending(t *testing.T) {
	c := NewCatalog()
	soRef, err := c.AddStructuralObject("root", "", "open")
	require.NoError(t, err)
	ioRef, err := c.AddInformationObject("asset", soRef, "open")
	require.NoError(t, err)

	require.NoError(t, c.AddRepresentation("alpha", ioRef, nil, Preservation))
	require.NoError(t, c.AddRepresentation("zeta", ioRef, nil, Access))

	data, err := c.Serialize()
	require.NoError(t, err)
	s := string(data)
	assert.True(t, indexOf(s, "zeta") < indexOf(s, "alpha"))
}

func TestParseRoundTripsSerializedCatalog(t *testing.T) {
	c := buildSampleCatalog(t)
	data, err := c.Serialize()
	require.NoError(t, err)

	parsed, err := Parse(data)
	require.NoError(t, err)
	require.NoError(t, parsed.Validate())

	reserialized, err := parsed.Serialize()
	require.NoError(t, err)
	assert.Equal(t, data, reserialized)
}

func indexOf(s, substr string) int {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return i
		}
	}
	return -1
}
