package csvstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

// FileTarget writes the canonical dataset to one CSV path.
type FileTarget struct {
	path string
}

var _ ports.CanonicalTarget = (*FileTarget)(nil)

// NewFileTarget returns a target for path.
func NewFileTarget(path string) *FileTarget {
	return &FileTarget{path: path}
}

// Name identifies the target in reports.
func (t *FileTarget) Name() string {
	return t.path
}

// Stage writes the records to a hidden temp file next to the destination.
func (t *FileTarget) Stage(ctx context.Context, records []domain.Record) (ports.StagedWrite, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return StageFile(t.path, records)
}

// StagedFile is a fully written temp file awaiting rename.
type StagedFile struct {
	tmp  string
	path string
}

// StageFile writes records to a temp file in the directory of path.
func StageFile(path string, records []domain.Record) (*StagedFile, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmp := f.Name()

	if err := Write(f, records); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmp, 0o644); err != nil {
		_ = os.Remove(tmp)
		return nil, fmt.Errorf("chmod temp file: %w", err)
	}

	return &StagedFile{tmp: tmp, path: path}, nil
}

// Commit renames the temp file over the destination.
func (s *StagedFile) Commit() error {
	if err := os.Rename(s.tmp, s.path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// Abort removes the temp file.
func (s *StagedFile) Abort() error {
	if err := os.Remove(s.tmp); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove temp file: %w", err)
	}
	return nil
}

// WriteFile replaces path with records atomically.
func WriteFile(path string, records []domain.Record) error {
	staged, err := StageFile(path, records)
	if err != nil {
		return err
	}
	if err := staged.Commit(); err != nil {
		_ = staged.Abort()
		return err
	}
	return nil
}
