package blob

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"charla/server/internal/utils"
)

// Disk stores blobs as files in a local directory.
type Disk struct {
	Dir string
	now func() time.Time
}

// NewDisk creates the upload directory if needed.
func NewDisk(dir string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Disk{Dir: dir, now: time.Now}, nil
}

// Put writes the content to <Dir>/<time-prefixed name>.
func (d *Disk) Put(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := utils.GenerateBlobName(filename, d.now())
	fullPath := filepath.Join(d.Dir, name)

	f, err := os.OpenFile(fullPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", name, err)
	}

	written, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err == nil && size > 0 && written != size {
		err = fmt.Errorf("short write: %d of %d bytes", written, size)
	}
	if err != nil {
		os.Remove(fullPath)
		return "", fmt.Errorf("failed to save %s: %w", name, err)
	}

	return publicRef(name), nil
}
