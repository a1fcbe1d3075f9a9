package uploads

import (
	"context"
	"io"
	"os"
	"path/filepath"
)

// DiskStore writes uploads into a local directory served as static files.
type DiskStore struct {
	Dir string
}

func NewDiskStore(dir string) *DiskStore {
	return &DiskStore{Dir: dir}
}

func (d *DiskStore) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(filepath.Join(d.Dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}
	return "/uploads/" + name, nil
}
