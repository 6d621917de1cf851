// Package jsonfile persists whole documents as JSON files.
package jsonfile

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// ErrNotExist is returned by Load when the file is missing.
var ErrNotExist = errors.New("file does not exist")

// CorruptError is returned by Load when the file exists but cannot be decoded.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("corrupt file %s: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error {
	return e.Err
}

// Load decodes the file at path into a new T.
func Load[T any](path string) (T, error) {
	var v T

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return v, ErrNotExist
	}

	if err != nil {
		return v, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &v); err != nil {
		var zero T
		return zero, &CorruptError{Path: path, Err: err}
	}

	return v, nil
}

// LoadOrInit loads the file at path. When it is missing, def() is written
// and returned. When it is corrupt, def() is returned together with the
// *CorruptError and the file is left as it is.
func LoadOrInit[T any](path string, def func() T) (T, error) {
	v, err := Load[T](path)
	if err == nil {
		return v, nil
	}

	if errors.Is(err, ErrNotExist) {
		v = def()
		if err := Save(path, v); err != nil {
			return v, err
		}

		return v, nil
	}

	var corrupt *CorruptError
	if errors.As(err, &corrupt) {
		return def(), err
	}

	return v, err
}

// Save writes v to path through a temporary file and a rename, so readers
// never observe a half-written document.
func Save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	return WriteAtomic(path, append(data, '\n'))
}

// WriteAtomic replaces the file at path with data.
func WriteAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file for %s: %w", path, err)
	}

	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)

		return fmt.Errorf("writing %s: %w", path, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing %s: %w", path, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", path, err)
	}

	return nil
}
