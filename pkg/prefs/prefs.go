// Package prefs provides the process-wide preference store the exporter
// uses to remember state across invocations, such as the last directory a
// figure was saved into.
package prefs

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Store is a key/value preference store. A missing key reads as "".
type Store interface {
	Get(key string) string
	Set(key, value string) error
	Delete(key string) error
}

// Memory is a map-backed Store for tests and headless embedding.
type Memory struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{values: make(map[string]string)}
}

func (m *Memory) Get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key]
}

func (m *Memory) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *Memory) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// File is a Store persisted as a TOML file. Every Set/Delete rewrites the
// file; a missing file reads as an empty store, so first-ever use needs no
// initialization step.
type File struct {
	path string
}

// fileDoc is the on-disk shape of a File store.
type fileDoc struct {
	Preferences map[string]string `toml:"preferences"`
}

// NewFile returns a Store persisted at path. The file and its directory
// are created on first Set.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns the conventional preference file location under the
// user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "figsave", "preferences.toml"), nil
}

func (f *File) Get(key string) string {
	doc, err := f.load()
	if err != nil {
		return ""
	}
	return doc.Preferences[key]
}

func (f *File) Set(key, value string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}
	if doc.Preferences == nil {
		doc.Preferences = make(map[string]string)
	}
	doc.Preferences[key] = value
	return f.save(doc)
}

func (f *File) Delete(key string) error {
	doc, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := doc.Preferences[key]; !ok {
		return nil
	}
	delete(doc.Preferences, key)
	return f.save(doc)
}

func (f *File) load() (*fileDoc, error) {
	var doc fileDoc
	if _, err := toml.DecodeFile(f.path, &doc); err != nil {
		if os.IsNotExist(err) {
			return &fileDoc{}, nil
		}
		return nil, fmt.Errorf("decode preference file %q: %w", f.path, err)
	}
	return &doc, nil
}

func (f *File) save(doc *fileDoc) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
		return fmt.Errorf("create preference dir: %w", err)
	}
	file, err := os.OpenFile(f.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("create preference file: %w", err)
	}
	defer file.Close()

	if err := toml.NewEncoder(file).Encode(doc); err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	return nil
}
