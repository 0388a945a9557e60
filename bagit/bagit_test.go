package bagit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeBag struct {
	entries map[string]map[string]string
	id      string
}

func (b *fakeBag) PayloadEntries() map[string]map[string]string { return b.entries }
func (b *fakeBag) Identifier() string                            { return b.id }

var _ ChecksumProvider = (*fakeBag)(nil)


func TestChecksumsForNormalizesAlgorithmNames(t *testing.T) {
	bag := &fakeBag{
		id: "bag-1",
		entries: map[string]map[string]string{
			"data/image.tif": {"md5": "abc123", "sha256": "def456"},
		},
	}

	checksums, ok := ChecksumsFor(bag, "data/image.tif")
	require := assert.New(t)
	require.True(ok)
	require.Equal("abc123", checksums["MD5"])
	require.Equal("def456", checksums["SHA256"])
}

func TestChecksumsForMissingPathReturnsFalse(t *testing.T) {
	bag := &fakeBag{entries: map[string]map[string]string{}}
	_, ok := ChecksumsFor(bag, "data/missing.tif")
	assert.False(t, ok)
}

func TestChecksumProviderIdentifier(t *testing.T) {
	bag := &fakeBag{id: "urn:bag:42"}
	var p ChecksumProvider = bag
	assert.Equal(t, "urn:bag:42", p.Identifier())
}
