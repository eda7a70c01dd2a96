package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// Compress gzips data.
func Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decompress reverses Compress.
func Decompress(data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document: %w", err)
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress document: %w", err)
	}
	return out, nil
}

// isGzip reports whether data starts with the gzip magic number.
func isGzip(data []byte) bool {
	return len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b
}

// Compressed wraps a store so documents are gzipped at rest. Documents
// stored uncompressed by an older writer are still readable.
func Compressed(s Store) Store {
	return &compressedStore{Store: s}
}

type compressedStore struct {
	Store
}

func (c *compressedStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := c.Store.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if !isGzip(data) {
		return data, nil
	}
	return Decompress(data)
}

func (c *compressedStore) Put(ctx context.Context, name string, data []byte) error {
	packed, err := Compress(data)
	if err != nil {
		return err
	}
	return c.Store.Put(ctx, name, packed)
}

func (c *compressedStore) Close() error {
	if closer, ok := c.Store.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
