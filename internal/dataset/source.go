package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/infrastructure/csvstore"
)

// SourceSpec describes where partial collections live.
type SourceSpec struct {
	Root    string
	Pattern string
	Exclude []string
}

// LoadResult is the unordered candidate pool of a build.
type LoadResult struct {
	Sources []string
	Skipped []*domain.SourceReadError
	Records []domain.Record
}

// DiscoverSources walks spec.Root and returns every file whose base name matches
// spec.Pattern and is not excluded, sorted lexicographically. Hidden files and
// directories are ignored. A missing root yields no sources.
func DiscoverSources(spec SourceSpec) ([]string, error) {
	if _, err := filepath.Match(spec.Pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", spec.Pattern, err)
	}

	var paths []string
	err := filepath.WalkDir(spec.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == spec.Root && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return err
		}
		name := d.Name()
		if d.IsDir() {
			if path != spec.Root && strings.HasPrefix(name, ".") {
				return fs.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") || slices.Contains(spec.Exclude, name) {
			return nil
		}
		if ok, _ := filepath.Match(spec.Pattern, name); ok {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", spec.Root, err)
	}

	slices.Sort(paths)
	return paths, nil
}

// LoadSources parses every path in order. Files that cannot be parsed or lack a
// required column are skipped as a whole and reported in Skipped.
func LoadSources(paths []string, logger *slog.Logger) LoadResult {
	result := LoadResult{Sources: paths}
	for _, path := range paths {
		records, err := loadSource(path)
		if err != nil {
			var readErr *domain.SourceReadError
			if !errors.As(err, &readErr) {
				readErr = &domain.SourceReadError{Path: path, Err: err}
			}
			result.Skipped = append(result.Skipped, readErr)
			if logger != nil {
				logger.Warn("skip source", "path", path, "error", readErr)
			}
			continue
		}

		for i := range records {
			if _, err := domain.ParseSignal(string(records[i].Signal)); err != nil && logger != nil {
				logger.Debug("signal defaulted", "path", path, "row", i+1, "error", err)
			}
			records[i] = records[i].WithDefaults()
		}
		if logger != nil {
			logger.Debug("source loaded", "path", path, "records", len(records))
		}
		result.Records = append(result.Records, records...)
	}
	return result
}

func loadSource(path string) ([]domain.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := csvstore.Read(f)
	if err != nil {
		return nil, err
	}
	records, missing := csvstore.Records(table)
	if len(missing) > 0 {
		return nil, &domain.SourceReadError{Path: path, Missing: missing}
	}
	return records, nil
}
