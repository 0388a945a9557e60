// Package fixity streams a file through one or more digest algorithms in a
// single pass, producing the hex checksums used to fixity-stamp a Bitstream.
package fixity

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"

	digest "github.com/opencontainers/go-digest"
)

// BlockSize is the read buffer used when streaming a file through the
// configured digests.
const BlockSize = 512 * 1024

var newHash = map[string]func() hash.Hash{
	"MD5":    md5.New,
	"SHA1":   sha1.New,
	"SHA256": sha256.New,
	"SHA512": sha512.New,
}

// digestAlgorithm maps an uppercase fixity algorithm name to the
// lowercase form used by github.com/opencontainers/go-digest.
var digestAlgorithm = map[string]digest.Algorithm{
	"MD5":    "md5",
	"SHA1":   "sha1",
	"SHA256": digest.SHA256,
	"SHA512": digest.SHA512,
}

// UnsupportedAlgorithmError is returned when a caller requests a digest
// algorithm outside {MD5, SHA1, SHA256, SHA512}.
type UnsupportedAlgorithmError struct {
	Algorithm string
}

func (e *UnsupportedAlgorithmError) Error() string {
	return fmt.Sprintf("fixity: unsupported algorithm %q", e.Algorithm)
}

// IOError wraps a filesystem error encountered while hashing.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("fixity: cannot read %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// Normalize upper-cases an algorithm name for lookup against the allowed set.
func Normalize(algorithm string) string {
	return strings.ToUpper(strings.TrimSpace(algorithm))
}

// HashFile opens path and streams it through every requested algorithm in a
// single pass, returning a map of uppercase algorithm name to lowercase hex
// digest. Algorithms outside {MD5, SHA1, SHA256, SHA512} return
// UnsupportedAlgorithmError before the file is even opened.
func HashFile(path string, algorithms []string) (map[string]string, error) {
	hashers, order, err := newHashers(algorithms)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	defer f.Close()

	if err := copyInto(f, hashers); err != nil {
		return nil, &IOError{Path: path, Err: err}
	}

	return sums(hashers, order), nil
}

// HashReader streams r through every requested algorithm, for callers that
// already have an open stream (e.g. content staged in memory or fetched from
// a remote source) rather than a filesystem path.
func HashReader(r io.Reader, algorithms []string) (map[string]string, error) {
	hashers, order, err := newHashers(algorithms)
	if err != nil {
		return nil, err
	}
	if err := copyInto(r, hashers); err != nil {
		return nil, err
	}
	return sums(hashers, order), nil
}

func newHashers(algorithms []string) (map[string]hash.Hash, []string, error) {
	hashers := make(map[string]hash.Hash, len(algorithms))
	order := make([]string, 0, len(algorithms))
	for _, raw := range algorithms {
		alg := Normalize(raw)
		ctor, ok := newHash[alg]
		if !ok {
			return nil, nil, &UnsupportedAlgorithmError{Algorithm: raw}
		}
		if _, seen := hashers[alg]; seen {
			continue
		}
		hashers[alg] = ctor()
		order = append(order, alg)
	}
	return hashers, order, nil
}

func copyInto(r io.Reader, hashers map[string]hash.Hash) error {
	writers := make([]io.Writer, 0, len(hashers))
	for _, h := range hashers {
		writers = append(writers, h)
	}
	mw := io.MultiWriter(writers...)
	buf := make([]byte, BlockSize)
	_, err := io.CopyBuffer(mw, r, buf)
	return err
}

func sums(hashers map[string]hash.Hash, order []string) map[string]string {
	out := make(map[string]string, len(order))
	for _, alg := range order {
		out[alg] = fmt.Sprintf("%x", hashers[alg].Sum(nil))
	}
	return out
}

// ToDigestSet converts a {algorithm -> hex} map produced by HashFile into
// the github.com/opencontainers/go-digest representation used by callers
// that want a single typed alg:hex token instead of a raw map, e.g. when
// logging or comparing against a digest.Digest received from elsewhere.
func ToDigestSet(sums map[string]string) (map[string]digest.Digest, error) {
	out := make(map[string]digest.Digest, len(sums))
	for alg, hex := range sums {
		da, ok := digestAlgorithm[Normalize(alg)]
		if !ok {
			return nil, &UnsupportedAlgorithmError{Algorithm: alg}
		}
		out[Normalize(alg)] = digest.NewDigestFromEncoded(da, hex)
	}
	return out, nil
}
