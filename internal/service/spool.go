package service

import (
	"fmt"
	"io"
	"os"
)

// spool is a per-upload temporary buffer. It is owned by exactly one
// in-flight publish call and must be released on every exit path.
type spool struct {
	file *os.File
	size int64
}

// newSpool copies r to completion into a fresh temp file and rewinds it so
// the content can be streamed to the object store with a known size.
func newSpool(r io.Reader) (*spool, error) {
	f, err := os.CreateTemp("", "mediafeed-upload-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	size, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("buffer upload: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("rewind temp file: %w", err)
	}
	return &spool{file: f, size: size}, nil
}

// Reader exposes the buffered content from the start.
func (s *spool) Reader() io.Reader { return s.file }

// Size is the exact number of buffered bytes.
func (s *spool) Size() int64 { return s.size }

// Close releases the temp file. Safe to defer; the file is removed even if
// the pipeline failed mid-way.
func (s *spool) Close() error {
	err := s.file.Close()
	if rmErr := os.Remove(s.file.Name()); err == nil {
		err = rmErr
	}
	return err
}
