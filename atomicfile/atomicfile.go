// Package atomicfile writes files, which appear at their destination only
// after a successful Close.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// File is a temporary file, renamed to its final name on Close.
type File struct {
	*os.File
	name string
	done bool
}

// New creates a temporary file in the directory of name.
func New(name string) (*File, error) {
	dir, base := filepath.Split(name)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, err
	}
	return &File{File: f, name: name}, nil
}

// Name returns the final name of the file.
func (f *File) Name() string {
	return f.name
}

// Close syncs and closes the temporary file and moves it into place.
func (f *File) Close() error {
	if f.done {
		return nil
	}
	f.done = true
	if err := f.File.Sync(); err != nil {
		f.File.Close()
		os.Remove(f.File.Name())
		return err
	}
	if err := f.File.Close(); err != nil {
		os.Remove(f.File.Name())
		return err
	}
	if err := os.Chmod(f.File.Name(), 0644); err != nil {
		return err
	}
	if err := os.Rename(f.File.Name(), f.name); err != nil {
		return fmt.Errorf("atomicfile: %w", err)
	}
	return nil
}

// Abort discards the temporary file, the destination stays untouched.
func (f *File) Abort() error {
	if f.done {
		return nil
	}
	f.done = true
	f.File.Close()
	return os.Remove(f.File.Name())
}
