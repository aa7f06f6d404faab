package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/scanner"
)

// queryPlaceholder in a feed URL is replaced by the escaped search query.
const queryPlaceholder = "{query}"

// RSSFeeds reads articles from configured RSS/Atom feeds.
type RSSFeeds struct {
	feeds  []string
	parser *gofeed.Parser
}

var _ scanner.Provider = (*RSSFeeds)(nil)

// NewRSSFeeds wires a feed parser over client.
func NewRSSFeeds(feeds []string, client *http.Client) *RSSFeeds {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "NewsSignal/1.0"
	return &RSSFeeds{feeds: feeds, parser: parser}
}

// Name identifies the provider inside the registry.
func (r *RSSFeeds) Name() string {
	return "rss"
}

// Search walks every feed in order until limit articles are gathered.
func (r *RSSFeeds) Search(ctx context.Context, query string, limit int) ([]domain.RawArticle, error) {
	if len(r.feeds) == 0 {
		return nil, fmt.Errorf("no feeds configured")
	}

	var articles []domain.RawArticle
	for _, feedURL := range r.feeds {
		target := strings.ReplaceAll(feedURL, queryPlaceholder, url.QueryEscape(query))
		feed, err := r.parser.ParseURLWithContext(target, ctx)
		if err != nil {
			return nil, fmt.Errorf("parse feed %s: %w", target, err)
		}

		for _, item := range feed.Items {
			if limit > 0 && len(articles) >= limit {
				return articles, nil
			}
			article := domain.RawArticle{
				Title:       plainText(item.Title),
				Link:        strings.TrimSpace(item.Link),
				Description: plainText(item.Description),
				Source:      feed.Title,
			}
			if item.PublishedParsed != nil {
				article.PublishedAt = *item.PublishedParsed
			}
			articles = append(articles, article)
		}
	}
	return articles, nil
}
