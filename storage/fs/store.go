package fs

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/storage"
)

// DocumentExtension is the only file extension the store serves.
const DocumentExtension = ".pdf"

// Store serves PDF documents from a single flat directory.
type Store struct {
	dir    string
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store) error

// WithLogger sets the logger used by the store.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		s.logger = logger
		return nil
	}
}

// NewStore creates a document store rooted at dir.
// The directory must already exist.
//
// Returns storage.DocumentStore interface to enforce abstraction.
func NewStore(dir string, opts ...Option) (storage.DocumentStore, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", abs)
	}

	s := &Store{
		dir:    abs,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "document-store")
	return s, nil
}

// Dir returns the absolute directory the store serves.
func (s *Store) Dir() string {
	return s.dir
}

// Open resolves name and hashes the file contents into the document ID.
func (s *Store) Open(ctx context.Context, name string) (core.Document, error) {
	clean, err := CleanName(name)
	if err != nil {
		return core.Document{}, err
	}
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}

	path := filepath.Join(s.dir, clean)
	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return core.Document{}, fmt.Errorf("%w: %s", storage.ErrNotFound, clean)
	}
	if err != nil {
		return core.Document{}, err
	}
	if !info.Mode().IsRegular() {
		return core.Document{}, fmt.Errorf("%w: %s", storage.ErrNotFound, clean)
	}

	id, err := ReadID(path)
	if err != nil {
		return core.Document{}, err
	}
	s.logger.Debug("opened document", "name", clean, "id", id, "size", info.Size())

	return core.Document{
		ID:   id,
		Name: clean,
		Path: path,
		Size: info.Size(),
	}, nil
}

// List returns the names of the PDF files in the store directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.Type().IsRegular() {
			continue
		}
		if _, err := CleanName(entry.Name()); err != nil {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)
	return names, nil
}

// CleanName validates a requested document name.
// Only bare, non-hidden file names with a .pdf extension are accepted.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	switch {
	case name == "":
		return "", fmt.Errorf("%w: empty name", storage.ErrInvalidName)
	case strings.ContainsAny(name, `/\`) || name != filepath.Base(name):
		return "", fmt.Errorf("%w: %q contains a path", storage.ErrInvalidName, name)
	case strings.HasPrefix(name, "."):
		return "", fmt.Errorf("%w: %q is hidden", storage.ErrInvalidName, name)
	case !strings.EqualFold(filepath.Ext(name), DocumentExtension):
		return "", fmt.Errorf("%w: %q is not a PDF", storage.ErrInvalidName, name)
	}
	return name, nil
}

// ReadID computes the content ID of the file at path without loading it
// into memory at once. It matches core.IDFromBytes over the same bytes.
func ReadID(path string) (core.ID, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	h, err := blake2b.New(8, nil)
	if err != nil {
		return 0, err
	}
	if _, err := io.Copy(h, f); err != nil {
		return 0, err
	}
	return core.ID(binary.LittleEndian.Uint64(h.Sum(nil))), nil
}
