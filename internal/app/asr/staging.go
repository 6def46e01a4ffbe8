package asr

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// DefaultSuffix is used when the upload has no usable filename extension.
const DefaultSuffix = ".wav"

const maxSuffixLen = 16

// StagedFile is an upload written to a uniquely named temporary file. It is
// owned by exactly one request.
type StagedFile struct {
	Path   string
	Size   int64
	SHA256 string
}

// Stager writes uploads to temporary files.
type Stager struct {
	dir      string
	maxBytes int64
}

// NewStager creates a stager writing into dir (the OS temp dir when empty).
// maxBytes <= 0 disables the size cap.
func NewStager(dir string, maxBytes int64) *Stager {
	return &Stager{dir: dir, maxBytes: maxBytes}
}

// SuffixFor returns the staging suffix for a declared filename.
func SuffixFor(filename string) string {
	ext := filepath.Ext(filepath.Base(filename))
	if len(ext) <= 1 || len(ext) > maxSuffixLen {
		return DefaultSuffix
	}
	for _, r := range ext[1:] {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return DefaultSuffix
		}
	}
	return strings.ToLower(ext)
}

// Stage copies r into a new temporary file. On error no file is left behind.
func (s *Stager) Stage(r io.Reader, filename string) (*StagedFile, error) {
	f, err := os.CreateTemp(s.dir, "asr-*"+SuffixFor(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to create temporary file: %w", err)
	}
	path := f.Name()

	staged, err := s.copyTo(f, r)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = fmt.Errorf("failed to close temporary file: %w", closeErr)
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	staged.Path = path
	return staged, nil
}

func (s *Stager) copyTo(f *os.File, r io.Reader) (*StagedFile, error) {
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}

	hash := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, hash), src)
	if err != nil {
		return nil, fmt.Errorf("failed to write temporary file: %w", err)
	}
	if n == 0 {
		return nil, ErrEmptyUpload
	}
	if s.maxBytes > 0 && n > s.maxBytes {
		return nil, fmt.Errorf("%w (%d MB)", ErrUploadTooLarge, s.maxBytes>>20)
	}

	return &StagedFile{Size: n, SHA256: hex.EncodeToString(hash.Sum(nil))}, nil
}
