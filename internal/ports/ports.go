package ports

import (
	"context"
	"time"

	"NewsSignal/internal/domain"
)

// NewsSearcher pulls candidate articles from a search provider.
type NewsSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]domain.RawArticle, error)
}

// ArticleFetcher scrapes publisher, byline and body text from an article page.
type ArticleFetcher interface {
	Fetch(ctx context.Context, link string) (domain.ArticleMeta, error)
}

// Annotator sends article text to a generative summarization service.
type Annotator interface {
	Annotate(ctx context.Context, title, content string) (string, error)
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}

// CanonicalTarget is one destination of the canonical dataset.
// Stage prepares a full replacement without making it visible.
type CanonicalTarget interface {
	Name() string
	Stage(ctx context.Context, records []domain.Record) (StagedWrite, error)
}

// StagedWrite is a prepared replacement waiting to be published or discarded.
type StagedWrite interface {
	Commit() error
	Abort() error
}

// RunRecorder receives per-run counters.
type RunRecorder interface {
	Record(ctx context.Context, stats domain.BuildStats) error
}

// CollectionRecorder counts per-article outcomes of a collection run.
type CollectionRecorder interface {
	RecordCollection(status domain.CollectionStatus)
}
