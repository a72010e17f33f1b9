package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/custodia-labs/docsync/internal/core/domain"
)

// errTooLarge is returned when content exceeds the spool limit.
var errTooLarge = errors.New("document exceeds size limit")

// Content is fetched document content held between fetch and extraction.
// Release must be called exactly once on every exit path.
type Content interface {
	io.ReadSeeker

	// Size returns the number of bytes held.
	Size() int64

	// Release frees the buffer or removes the backing file.
	Release() error
}

// Spool acquires Content from fetched streams, in memory or on disk.
type Spool struct {
	mode     domain.SpoolMode
	dir      string
	maxBytes int64
}

// NewSpool creates a spool. dir is only used in disk mode; empty means the
// system temp directory. maxBytes <= 0 disables the size limit.
func NewSpool(mode domain.SpoolMode, dir string, maxBytes int64) *Spool {
	if mode == "" {
		mode = domain.SpoolMemory
	}
	return &Spool{mode: mode, dir: dir, maxBytes: maxBytes}
}

// Acquire reads r to completion into a new Content.
// Nothing is left behind when Acquire returns an error.
func (s *Spool) Acquire(r io.Reader) (Content, error) {
	src := r
	if s.maxBytes > 0 {
		src = io.LimitReader(r, s.maxBytes+1)
	}

	if s.mode == domain.SpoolDisk {
		return s.acquireFile(src)
	}
	return s.acquireMemory(src)
}

func (s *Spool) acquireMemory(r io.Reader) (Content, error) {
	var buf bytes.Buffer
	n, err := buf.ReadFrom(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if s.exceeds(n) {
		return nil, fmt.Errorf("%w: more than %d bytes", errTooLarge, s.maxBytes)
	}
	return &memoryContent{reader: bytes.NewReader(buf.Bytes()), size: n}, nil
}

func (s *Spool) acquireFile(r io.Reader) (Content, error) {
	f, err := os.CreateTemp(s.dir, "docsync-*")
	if err != nil {
		return nil, fmt.Errorf("create spool file: %w", err)
	}
	content := &fileContent{file: f}

	n, err := io.Copy(f, r)
	if err == nil && s.exceeds(n) {
		err = fmt.Errorf("%w: more than %d bytes", errTooLarge, s.maxBytes)
	}
	if err == nil {
		_, err = f.Seek(0, io.SeekStart)
	}
	if err != nil {
		_ = content.Release()
		return nil, fmt.Errorf("spool content: %w", err)
	}

	content.size = n
	return content, nil
}

func (s *Spool) exceeds(n int64) bool {
	return s.maxBytes > 0 && n > s.maxBytes
}

type memoryContent struct {
	reader *bytes.Reader
	size   int64
}

func (c *memoryContent) Read(p []byte) (int, error) { return c.reader.Read(p) }
func (c *memoryContent) Size() int64                { return c.size }

func (c *memoryContent) Seek(offset int64, whence int) (int64, error) {
	return c.reader.Seek(offset, whence)
}

func (c *memoryContent) Release() error {
	c.reader.Reset(nil)
	return nil
}

type fileContent struct {
	file *os.File
	size int64
}

func (c *fileContent) Read(p []byte) (int, error) { return c.file.Read(p) }
func (c *fileContent) Size() int64                { return c.size }

func (c *fileContent) Seek(offset int64, whence int) (int64, error) {
	return c.file.Seek(offset, whence)
}

func (c *fileContent) Release() error {
	closeErr := c.file.Close()
	removeErr := os.Remove(c.file.Name())
	if removeErr != nil && !errors.Is(removeErr, os.ErrNotExist) {
		return fmt.Errorf("remove spool file: %w", removeErr)
	}
	if closeErr != nil && !errors.Is(closeErr, os.ErrClosed) {
		return fmt.Errorf("close spool file: %w", closeErr)
	}
	return nil
}
