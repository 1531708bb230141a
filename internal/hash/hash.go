package hash

import (
	"crypto/md5"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"path/filepath"

	"github.com/spf13/afero"
)

// Sum is the digest of an image computed with one algorithm.
type Sum struct {
	Algorithm string `json:"algorithm" yaml:"algorithm"`
	Hex       string `json:"value" yaml:"value"`
}

type algorithm struct {
	label string
	new   func() hash.Hash
}

var algorithms = map[string]algorithm{
	"md5":    {label: "MD5", new: md5.New},
	"sha256": {label: "SHA-256", new: sha256.New},
	"sha512": {label: "SHA-512", new: sha512.New},
}

// Label returns the display name of alg, as used in hash file names.
func Label(alg string) string {
	if a, ok := algorithms[alg]; ok {
		return a.label
	}
	return alg
}

// Compute hashes r in a single pass with every requested algorithm.
// If progress is not nil, every chunk read is also written to it.
func Compute(r io.Reader, algs []string, progress io.Writer, bufSize int) ([]Sum, error) {
	if len(algs) == 0 {
		return nil, nil
	}

	hashers := make([]hash.Hash, len(algs))
	writers := make([]io.Writer, 0, len(algs)+1)
	for i, name := range algs {
		a, ok := algorithms[name]
		if !ok {
			return nil, fmt.Errorf("unsupported hash algorithm %q", name)
		}
		hashers[i] = a.new()
		writers = append(writers, hashers[i])
	}
	if progress != nil {
		writers = append(writers, progress)
	}

	if bufSize <= 0 {
		bufSize = 1 << 20
	}
	if _, err := io.CopyBuffer(io.MultiWriter(writers...), r, make([]byte, bufSize)); err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	sums := make([]Sum, len(algs))
	for i, name := range algs {
		sums[i] = Sum{
			Algorithm: Label(name),
			Hex:       hex.EncodeToString(hashers[i].Sum(nil)),
		}
	}
	return sums, nil
}

// FileName returns "<ALGORITHM>-<image basename>.txt".
func FileName(s Sum, imagePath string) string {
	return fmt.Sprintf("%s-%s.txt", s.Algorithm, filepath.Base(imagePath))
}

// Save writes each digest to its own file in dir and returns the written paths.
func Save(afs afero.Fs, dir, imagePath string, sums []Sum) ([]string, error) {
	paths := make([]string, 0, len(sums))
	for _, s := range sums {
		path := filepath.Join(dir, FileName(s, imagePath))
		if err := afero.WriteFile(afs, path, []byte(s.Hex), 0644); err != nil {
			return paths, fmt.Errorf("failed to save %s hash: %w", s.Algorithm, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
