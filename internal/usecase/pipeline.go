package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"NewsSignal/internal/annotation"
	"NewsSignal/internal/dataset"
	"NewsSignal/internal/domain"
	"NewsSignal/internal/infrastructure/csvstore"
	"NewsSignal/internal/ports"
)

const (
	partialStampLayout = "20060102_150405"
	digestHeadlines    = 5
)

// CanonicalBuilder regenerates the canonical dataset after new rows land.
type CanonicalBuilder interface {
	Build(ctx context.Context) (dataset.Report, error)
}

// PipelineDeps wires all driven adapters into the collection pipeline.
type PipelineDeps struct {
	Searcher  ports.NewsSearcher
	Fetcher   ports.ArticleFetcher
	Annotator ports.Annotator
	Builder   CanonicalBuilder
	Notifier  ports.Notifier
	Recorder  ports.CollectionRecorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// PipelineSettings bounds one collection run.
type PipelineSettings struct {
	Query         string
	SearchLimit   int
	TargetCount   int
	MaxErrors     int
	FetchWorkers  int
	Location      *time.Location
	Dir           string
	PartialPrefix string
	// CanonicalPath lists links already annotated; those candidates are skipped.
	CanonicalPath string
}

// RunResult summarizes one collection run.
type RunResult struct {
	Candidates int
	Known      int
	Collected  []domain.Record
	Rejected   int
	Failed     int
	Partial    string
	Report     dataset.Report
}

// Pipeline implements the collect-annotate-build workflow.
type Pipeline struct {
	searcher  ports.NewsSearcher
	fetcher   ports.ArticleFetcher
	annotator ports.Annotator
	builder   CanonicalBuilder
	notifier  ports.Notifier
	recorder  ports.CollectionRecorder
	logger    *slog.Logger
	now       func() time.Time
	settings  PipelineSettings
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps, settings PipelineSettings) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if settings.FetchWorkers <= 0 {
		settings.FetchWorkers = 1
	}
	return &Pipeline{
		searcher:  deps.Searcher,
		fetcher:   deps.Fetcher,
		annotator: deps.Annotator,
		builder:   deps.Builder,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		logger:    logger,
		now:       now,
		settings:  settings,
	}
}

type candidate struct {
	article domain.RawArticle
	meta    domain.ArticleMeta
}

// Run searches, annotates up to TargetCount new articles, writes them as a
// partial collection and rebuilds the canonical dataset.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	var result RunResult
	if p.searcher == nil || p.annotator == nil {
		return result, fmt.Errorf("pipeline requires a searcher and an annotator")
	}

	articles, err := p.searcher.Search(ctx, p.settings.Query, p.settings.SearchLimit)
	if err != nil {
		return result, fmt.Errorf("search: %w", err)
	}
	result.Candidates = len(articles)

	known := p.knownLinks()
	fresh := articles[:0:0]
	for _, a := range articles {
		if _, ok := known[strings.TrimSpace(a.Link)]; ok {
			result.Known++
			continue
		}
		fresh = append(fresh, a)
	}
	p.logger.Info("candidates found", "query", p.settings.Query, "total", result.Candidates, "known", result.Known)

	collectedAt := p.now().In(p.settings.Location)
	annotated, stopped := 0, false
	for start := 0; start < len(fresh) && !stopped; start += p.batchSize() {
		end := min(start+p.batchSize(), len(fresh))
		batch, err := p.fetchBatch(ctx, fresh[start:end])
		if err != nil {
			return result, err
		}

		for _, c := range batch {
			if p.settings.TargetCount > 0 && annotated >= p.settings.TargetCount {
				stopped = true
				break
			}
			record, status, err := p.annotate(ctx, c, collectedAt)
			if errors.Is(err, domain.ErrRateLimited) {
				p.logger.Warn("annotator rate limited, stopping collection", "annotated", annotated)
				stopped = true
				break
			}
			if err != nil && ctx.Err() != nil {
				return result, ctx.Err()
			}
			p.track(status)

			switch status {
			case domain.StatusAnnotated:
				annotated++
				result.Collected = append(result.Collected, record)
			case domain.StatusRejected:
				result.Rejected++
			case domain.StatusFallback:
				result.Failed++
				result.Collected = append(result.Collected, record)
				p.logger.Warn("annotation failed", "link", c.article.Link, "error", err)
				if result.Failed > p.settings.MaxErrors {
					p.logger.Warn("too many annotation failures, stopping collection", "failed", result.Failed)
					stopped = true
				}
			}
			if stopped {
				break
			}
		}
	}

	if len(result.Collected) > 0 {
		name := p.settings.PartialPrefix + collectedAt.Format(partialStampLayout) + ".csv"
		result.Partial = filepath.Join(p.settings.Dir, name)
		if err := csvstore.WriteFile(result.Partial, result.Collected); err != nil {
			return result, &domain.WriteError{Target: result.Partial, Err: err}
		}
		p.logger.Info("partial collection written", "path", result.Partial, "rows", len(result.Collected))
	}

	if p.builder != nil {
		report, err := p.builder.Build(ctx)
		if err != nil {
			return result, fmt.Errorf("build canonical dataset: %w", err)
		}
		result.Report = report
	}

	if p.notifier != nil && annotated > 0 {
		if err := p.notifier.PublishDigest(ctx, BuildDigest(result)); err != nil {
			p.logger.Warn("publish digest", "error", err)
		}
	}
	return result, nil
}

func (p *Pipeline) batchSize() int {
	if p.settings.TargetCount > 0 {
		return max(p.settings.TargetCount, p.settings.FetchWorkers)
	}
	return p.settings.FetchWorkers * 4
}

// fetchBatch scrapes article pages concurrently, preserving input order.
func (p *Pipeline) fetchBatch(ctx context.Context, articles []domain.RawArticle) ([]candidate, error) {
	out := make([]candidate, len(articles))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.settings.FetchWorkers)
	for i, a := range articles {
		out[i].article = a
		if p.fetcher == nil {
			continue
		}
		g.Go(func() error {
			meta, err := p.fetcher.Fetch(gctx, a.Link)
			if err != nil {
				p.logger.Debug("fetch article", "link", a.Link, "error", err)
			}
			out[i].meta = meta
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch articles: %w", err)
	}
	return out, nil
}

func (p *Pipeline) annotate(ctx context.Context, c candidate, at time.Time) (domain.Record, domain.CollectionStatus, error) {
	content := c.meta.Content
	if strings.TrimSpace(content) == "" {
		content = c.article.Description
	}
	record := domain.Record{
		Title:       c.article.Title,
		Link:        c.article.Link,
		Publisher:   c.meta.Publisher,
		Reporter:    c.meta.Reporter,
		Signal:      domain.SignalFlat,
		CollectedAt: at.Format(domain.CollectedAtLayout),
	}

	text, err := p.annotator.Annotate(ctx, c.article.Title, content)
	if errors.Is(err, domain.ErrRateLimited) {
		return domain.Record{}, "", err
	}
	if err != nil {
		return record.WithDefaults(), domain.StatusFallback, err
	}

	ann := annotation.ParseResponse(text)
	if ann.Invalid {
		p.logger.Debug("article rejected", "link", c.article.Link)
		return domain.Record{}, domain.StatusRejected, domain.ErrInvalidArticle
	}
	record.Summary = text
	record.Signal = ann.Signal
	return record.WithDefaults(), domain.StatusAnnotated, nil
}

func (p *Pipeline) knownLinks() map[string]struct{} {
	known := map[string]struct{}{}
	if p.settings.CanonicalPath == "" {
		return known
	}
	table, err := csvstore.ReadFile(p.settings.CanonicalPath)
	if err != nil {
		p.logger.Debug("no canonical dataset to skip known links", "path", p.settings.CanonicalPath, "error", err)
		return known
	}
	records, _ := csvstore.Records(table)
	for _, r := range records {
		if key := dataset.LinkKey(r); key != "" {
			known[key] = struct{}{}
		}
	}
	return known
}

func (p *Pipeline) track(status domain.CollectionStatus) {
	if p.recorder != nil && status != "" {
		p.recorder.RecordCollection(status)
	}
}

// BuildDigest renders the Telegram message for a run: counts per signal and
// the newest headlines.
func BuildDigest(result RunResult) string {
	counts := map[domain.Signal]int{}
	var annotated []domain.Record
	for _, r := range result.Collected {
		if strings.TrimSpace(r.Summary) == "" {
			continue
		}
		counts[r.Signal]++
		annotated = append(annotated, r)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "새 기사 %d건 (BULL %d / BEAR %d / FLAT %d)\n",
		len(annotated), counts[domain.SignalBull], counts[domain.SignalBear], counts[domain.SignalFlat])
	for i, r := range annotated {
		if i == digestHeadlines {
			break
		}
		fmt.Fprintf(&b, "- [%s] %s\n  %s\n", r.Signal, r.Title, r.Link)
	}
	if result.Report.Stats.RowsWritten > 0 {
		fmt.Fprintf(&b, "누적 %d건\n", result.Report.Stats.RowsWritten)
	}
	return strings.TrimRight(b.String(), "\n")
}
