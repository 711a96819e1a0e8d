package storage

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"tranxledger/internal/core"
)

// SeedImage copies the image to dbPath only when no database exists there
// yet, so an existing ledger is never replaced. It reports whether it copied.
func SeedImage(imagePath, dbPath string) (bool, error) {
	_, err := os.Stat(dbPath)
	switch {
	case err == nil:
		return false, nil
	case !errors.Is(err, fs.ErrNotExist):
		return false, &core.StoreError{Op: "seed image", Err: err}
	}
	if err := CopyImage(imagePath, dbPath); err != nil {
		return false, err
	}
	return true, nil
}

// CopyImage places a pre-built ledger database image at dbPath, replacing
// whatever is there. The store is then opened on dbPath as usual.
func CopyImage(imagePath, dbPath string) error {
	src, err := os.Open(imagePath)
	if err != nil {
		return &core.StoreError{Op: "copy image", Err: err}
	}
	defer src.Close()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return &core.StoreError{Op: "copy image", Err: fmt.Errorf("create db directory: %w", err)}
	}

	tmp, err := os.CreateTemp(filepath.Dir(dbPath), filepath.Base(dbPath)+".*.tmp")
	if err != nil {
		return &core.StoreError{Op: "copy image", Err: err}
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return &core.StoreError{Op: "copy image", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &core.StoreError{Op: "copy image", Err: err}
	}
	if err := os.Rename(tmp.Name(), dbPath); err != nil {
		return &core.StoreError{Op: "copy image", Err: err}
	}
	return nil
}
