// Package storage holds the local-disk resume sink. Object storage is an
// external collaborator; this is the development-grade implementation of the
// usecase.ResumeStorage interface.
package storage

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"jobboard/internal/usecase"
)

// Disk writes uploads under a root directory with unique generated names.
type Disk struct {
	root string
}

// NewDisk ensures the root directory exists and returns the sink.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{root: root}, nil
}

// Save streams the upload to disk under a resume-<ts>-<rand><ext> name. The
// writer is capped at the validator's ceiling so an understated Size header
// cannot smuggle a larger body past the gate.
func (d *Disk) Save(ctx context.Context, originalName string, r io.Reader) (string, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}

	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		return "", "", err
	}
	storedName := fmt.Sprintf("resume-%d-%s%s",
		time.Now().UnixNano(), hex.EncodeToString(suffix), filepath.Ext(originalName))
	path := filepath.Join(d.root, storedName)

	f, err := os.Create(path)
	if err != nil {
		return "", "", fmt.Errorf("create resume file: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, io.LimitReader(r, usecase.MaxResumeSize+1))
	if err != nil {
		os.Remove(path)
		return "", "", fmt.Errorf("write resume file: %w", err)
	}
	if n > usecase.MaxResumeSize {
		os.Remove(path)
		return "", "", fmt.Errorf("resume stream exceeded %d bytes", usecase.MaxResumeSize)
	}

	return path, storedName, nil
}
