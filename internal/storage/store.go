package storage

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

const (
	originalName   = "original.srt"
	translatedName = "translated.srt"
)

// Store keeps subtitle documents under one root directory, one subdirectory
// per document id holding the original upload and, once a translation run has
// finished, the translated copy.
type Store struct {
	fs   afero.Fs
	root string
}

// NewStore opens a store on the real filesystem, creating root if needed.
func NewStore(root string) (*Store, error) {
	return NewStoreWithFs(afero.NewOsFs(), root)
}

// NewStoreWithFs opens a store on an arbitrary filesystem. Tests use
// afero.NewMemMapFs().
func NewStoreWithFs(fs afero.Fs, root string) (*Store, error) {
	if err := fs.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage root: %w", err)
	}
	return &Store{fs: fs, root: root}, nil
}

// SaveOriginal writes the uploaded subtitle content for a new document.
func (s *Store) SaveOriginal(id, content string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	if err := s.fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create document directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, originalName), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write original: %w", err)
	}
	return nil
}

// ReadOriginal returns the uploaded subtitle content.
func (s *Store) ReadOriginal(id string) (string, error) {
	dir, err := s.dir(id)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, filepath.Join(dir, originalName))
	if err != nil {
		return "", fmt.Errorf("failed to read original: %w", err)
	}
	return string(data), nil
}

// WriteTranslated stores the rendered translation next to the original,
// replacing any previous translation.
func (s *Store) WriteTranslated(id, content string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, translatedName), []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write translation: %w", err)
	}
	return nil
}

// ReadTranslated returns the rendered translation.
func (s *Store) ReadTranslated(id string) (string, error) {
	dir, err := s.dir(id)
	if err != nil {
		return "", err
	}
	data, err := afero.ReadFile(s.fs, filepath.Join(dir, translatedName))
	if err != nil {
		return "", fmt.Errorf("failed to read translation: %w", err)
	}
	return string(data), nil
}

// HasTranslated reports whether a translation has been written for id.
func (s *Store) HasTranslated(id string) bool {
	dir, err := s.dir(id)
	if err != nil {
		return false
	}
	ok, err := afero.Exists(s.fs, filepath.Join(dir, translatedName))
	return err == nil && ok
}

// Remove deletes a document and everything stored for it.
func (s *Store) Remove(id string) error {
	dir, err := s.dir(id)
	if err != nil {
		return err
	}
	if err := s.fs.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to remove document: %w", err)
	}
	return nil
}

// TranslatedPath returns where the translation for id lives. The file may not
// exist yet.
func (s *Store) TranslatedPath(id string) string {
	return filepath.Join(s.root, id, translatedName)
}

// dir validates the id and maps it to the document directory. Ids are
// server-generated, but anything that could escape root is rejected anyway.
func (s *Store) dir(id string) (string, error) {
	if id == "" || id == "." || id == ".." ||
		strings.ContainsAny(id, "/\\") {
		return "", fmt.Errorf("invalid document id %q", id)
	}
	return filepath.Join(s.root, id), nil
}
