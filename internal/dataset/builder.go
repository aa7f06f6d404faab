package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

// Report describes one canonical build.
type Report struct {
	Sources []string
	Skipped []*domain.SourceReadError
	Targets []string
	Stats   domain.BuildStats
}

// Print writes the run counts in the line format operators grep for.
func (r Report) Print(w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "source_files=%d\n", len(r.Sources))
	for _, src := range r.Sources {
		fmt.Fprintf(&buf, " - %s\n", src)
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(&buf, "skipped_files=%d\n", len(r.Skipped))
		for _, skipped := range r.Skipped {
			fmt.Fprintf(&buf, " ! %s\n", skipped.Error())
		}
	}
	fmt.Fprintf(&buf, "rows_written=%d\n", r.Stats.RowsWritten)

	_, err := buf.WriteTo(w)
	return err
}

// Builder regenerates the canonical dataset from all partial collections.
// Runs against the same targets must not overlap.
type Builder struct {
	spec     SourceSpec
	writer   *Writer
	recorder ports.RunRecorder
	logger   *slog.Logger
}

// NewBuilder wires the stages. recorder may be nil.
func NewBuilder(spec SourceSpec, writer *Writer, recorder ports.RunRecorder, logger *slog.Logger) *Builder {
	return &Builder{spec: spec, writer: writer, recorder: recorder, logger: logger}
}

// Build loads, validates, deduplicates, orders and writes. Only write failures
// and an unreadable source root are returned as errors.
func (b *Builder) Build(ctx context.Context) (Report, error) {
	paths, err := DiscoverSources(b.spec)
	if err != nil {
		return Report{}, fmt.Errorf("discover sources: %w", err)
	}

	loaded := LoadSources(paths, b.logger)
	valid, invalid := Validate(loaded.Records)
	unique, duplicates := Deduplicate(valid)
	ordered := Order(unique)

	report := Report{
		Sources: loaded.Sources,
		Skipped: loaded.Skipped,
		Targets: b.writer.Targets(),
		Stats: domain.BuildStats{
			Sources:    len(loaded.Sources),
			Skipped:    len(loaded.Skipped),
			Loaded:     len(loaded.Records),
			Invalid:    invalid,
			Duplicates: duplicates,
		},
	}

	if err := b.writer.Write(ctx, ordered); err != nil {
		return report, err
	}
	report.Stats.RowsWritten = len(ordered)

	if b.logger != nil {
		b.logger.Info("canonical dataset built",
			"sources", report.Stats.Sources,
			"skipped", report.Stats.Skipped,
			"loaded", report.Stats.Loaded,
			"invalid", invalid,
			"duplicates", duplicates,
			"rows", report.Stats.RowsWritten)
	}

	if b.recorder != nil {
		if err := b.recorder.Record(ctx, report.Stats); err != nil && b.logger != nil {
			b.logger.Warn("record build stats", "error", err)
		}
	}
	return report, nil
}
