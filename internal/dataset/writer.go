package dataset

import (
	"context"
	"errors"
	"log/slog"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

// Writer replaces every target with the same record sequence. All targets are
// staged before any is committed, so a failed stage leaves every target untouched.
type Writer struct {
	targets []ports.CanonicalTarget
	logger  *slog.Logger
}

// NewWriter wires the output targets in commit order.
func NewWriter(logger *slog.Logger, targets ...ports.CanonicalTarget) *Writer {
	return &Writer{targets: targets, logger: logger}
}

// Targets returns the target names in commit order.
func (w *Writer) Targets() []string {
	names := make([]string, 0, len(w.targets))
	for _, t := range w.targets {
		names = append(names, t.Name())
	}
	return names
}

// Write stages and then commits records to every target.
func (w *Writer) Write(ctx context.Context, records []domain.Record) error {
	staged := make([]ports.StagedWrite, 0, len(w.targets))
	for _, target := range w.targets {
		s, err := target.Stage(ctx, records)
		if err != nil {
			w.abort(staged)
			return &domain.WriteError{Target: target.Name(), Err: err}
		}
		staged = append(staged, s)
	}

	for i, s := range staged {
		if err := s.Commit(); err != nil {
			w.abort(staged[i:])
			return &domain.WriteError{Target: w.targets[i].Name(), Err: err}
		}
		w.debug("target replaced", "target", w.targets[i].Name(), "rows", len(records))
	}
	return nil
}

func (w *Writer) abort(staged []ports.StagedWrite) {
	var errs []error
	for _, s := range staged {
		if err := s.Abort(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil && w.logger != nil {
		w.logger.Warn("abort staged writes", "error", err)
	}
}

func (w *Writer) debug(msg string, args ...any) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
