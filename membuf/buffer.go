// Package membuf carries serialized modules as immutable named byte
// buffers, the handoff format between the verifier boundary and a backend.
package membuf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Buffer is an immutable named byte region. The zero value is an empty
// unnamed buffer.
type Buffer struct {
	name string
	data []byte
}

// FromBytes wraps data without copying. The caller must not modify data
// afterwards.
func FromBytes(name string, data []byte) *Buffer {
	return &Buffer{name: name, data: data}
}

// FromBytesCopy wraps a private copy of data.
func FromBytesCopy(name string, data []byte) *Buffer {
	return &Buffer{name: name, data: append([]byte(nil), data...)}
}

// FromFile reads a whole file into a buffer named after its base name.
func FromFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	return &Buffer{name: filepath.Base(path), data: data}, nil
}

// FromReader drains r into a buffer.
func FromReader(name string, r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read buffer: %w", err)
	}
	return &Buffer{name: name, data: data}, nil
}

// Name returns the buffer name.
func (b *Buffer) Name() string { return b.name }

// Bytes returns the underlying bytes. Callers must not modify them.
func (b *Buffer) Bytes() []byte { return b.data }

// Size returns the buffer length in bytes.
func (b *Buffer) Size() int { return len(b.data) }

// WriteTo writes the buffer contents to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.data)
	return int64(n), err
}

// Link concatenates the given buffers into one named buffer. The inputs
// are copied, not aliased.
func Link(name string, bufs ...*Buffer) *Buffer {
	total := 0
	for _, b := range bufs {
		total += b.Size()
	}
	data := make([]byte, 0, total)
	for _, b := range bufs {
		data = append(data, b.data...)
	}
	return &Buffer{name: name, data: data}
}
