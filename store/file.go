package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

const fileExt = ".json"

// FileStore keeps one file per document in a directory.
type FileStore struct {
	fs  afero.Fs
	dir string
}

// NewFileStore creates a store rooted at dir on the OS file system.
func NewFileStore(dir string) (*FileStore, error) {
	return NewFileStoreWithFs(afero.NewOsFs(), dir)
}

// NewFileStoreWithFs creates a store rooted at dir on fsys. The directory is
// created if needed.
func NewFileStoreWithFs(fsys afero.Fs, dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("file store needs a directory")
	}
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create store directory: %w", err)
	}
	return &FileStore{fs: fsys, dir: dir}, nil
}

func (f *FileStore) path(name string) string {
	return filepath.Join(f.dir, name+fileExt)
}

func (f *FileStore) Get(ctx context.Context, name string) ([]byte, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	if err := ValidateName(name); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(f.fs, f.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, notFound(name)
	}
	return data, err
}

// Put writes to a temporary file first so readers never see a partial
// document.
func (f *FileStore) Put(ctx context.Context, name string, data []byte) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	tmp := f.path(name) + ".tmp"
	if err := afero.WriteFile(f.fs, tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := f.fs.Rename(tmp, f.path(name)); err != nil {
		_ = f.fs.Remove(tmp)
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) Delete(ctx context.Context, name string) error {
	if err := checkContext(ctx); err != nil {
		return err
	}
	if err := ValidateName(name); err != nil {
		return err
	}
	err := f.fs.Remove(f.path(name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (f *FileStore) List(ctx context.Context) ([]string, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}
	entries, err := afero.ReadDir(f.fs, f.dir)
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), fileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), fileExt))
	}
	sort.Strings(names)
	return names, nil
}

func (f *FileStore) Exists(ctx context.Context, name string) (bool, error) {
	if err := checkContext(ctx); err != nil {
		return false, err
	}
	if err := ValidateName(name); err != nil {
		return false, err
	}
	return afero.Exists(f.fs, f.path(name))
}
