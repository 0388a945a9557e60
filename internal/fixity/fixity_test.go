package fixity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashReaderKnownVectors(t *testing.T) {
	sums, err := HashReader(strings.NewReader("abc"), []string{"md5", "sha1", "sha256"})
	require.NoError(t, err)
	assert.Equal(t, "900150983cd24fb0d6963f7d28e17f72", sums["MD5"])
	assert.Equal(t, "a9993e364706816aba3e25717850c26c9cd0d89d", sums["SHA1"])
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", sums["SHA256"])
}

func TestHashFileMatchesHashReader(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.tif")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	fromFile, err := HashFile(path, []string{"SHA256"})
	require.NoError(t, err)
	fromReader, err := HashReader(strings.NewReader("0123456789"), []string{"SHA256"})
	require.NoError(t, err)
	assert.Equal(t, fromReader["SHA256"], fromFile["SHA256"])
}

func TestHashReaderUnsupportedAlgorithm(t *testing.T) {
	_, err := HashReader(strings.NewReader("x"), []string{"CRC32"})
	var unsupported *UnsupportedAlgorithmError
	assert.ErrorAs(t, err, &unsupported)
}

func TestHashFileMissingFile(t *testing.T) {
	_, err := HashFile("/nonexistent/path/a.tif", []string{"SHA256"})
	var ioErr *IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestNormalizeIsCaseInsensitive(t *testing.T) {
	assert.Equal(t, "SHA256", Normalize("sha256"))
	assert.Equal(t, "MD5", Normalize("Md5"))
}

func TestToDigestSet(t *testing.T) {
	sums, err := HashReader(strings.NewReader("abc"), []string{"SHA256"})
	require.NoError(t, err)
	digests, err := ToDigestSet(sums)
	require.NoError(t, err)
	assert.Equal(t, "sha256:"+sums["SHA256"], digests["SHA256"].String())
}
