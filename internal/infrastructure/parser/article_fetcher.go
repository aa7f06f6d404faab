package parser

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

const maxPageBytes = 4 << 20

// Known article body containers, most specific first.
var bodySelectors = []string{
	"article#dic_area",
	"#newsct_article",
	"#articleBodyContents",
}

var reporterSelectors = []string{
	".media_end_head_journalist_name",
	".byline_s",
	".journalistcard_summary_name",
}

var reporterMetaSelectors = []string{
	"meta[name='author']",
	"meta[property='og:article:author']",
	"meta[property='article:author']",
}

// ArticleFetcher downloads an article page and extracts publisher, byline and body.
type ArticleFetcher struct {
	client       *http.Client
	contentLimit int
}

var _ ports.ArticleFetcher = (*ArticleFetcher)(nil)

// NewArticleFetcher wires an HTTP client; contentLimit caps the body in runes.
func NewArticleFetcher(client *http.Client, contentLimit int) *ArticleFetcher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &ArticleFetcher{client: client, contentLimit: contentLimit}
}

// Fetch returns the page metadata. Fields that cannot be found keep their defaults.
func (a *ArticleFetcher) Fetch(ctx context.Context, link string) (domain.ArticleMeta, error) {
	meta := domain.ArticleMeta{Publisher: domain.Unknown, Reporter: domain.Unknown}

	pageURL, err := url.Parse(link)
	if err != nil || pageURL.Host == "" {
		return meta, fmt.Errorf("invalid article url %q", link)
	}

	raw, err := a.fetchPage(ctx, pageURL.String())
	if err != nil {
		return meta, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return meta, fmt.Errorf("parse document: %w", err)
	}

	if publisher := metaContent(doc, "meta[property='og:site_name']"); publisher != "" {
		meta.Publisher = publisher
	}
	if reporter := extractReporter(doc); reporter != "" {
		meta.Reporter = reporter
	}

	content := extractBody(doc)
	if content == "" {
		content = readableText(raw, pageURL)
	}
	meta.Content = truncateRunes(content, a.contentLimit)

	return meta, nil
}

func (a *ArticleFetcher) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("article returned %s", resp.Status)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return raw, nil
}

func extractBody(doc *goquery.Document) string {
	for _, selector := range bodySelectors {
		if node := doc.Find(selector).First(); node.Length() > 0 {
			if text := collapseSpace(node.Text()); text != "" {
				return text
			}
		}
	}
	return ""
}

func extractReporter(doc *goquery.Document) string {
	for _, selector := range reporterSelectors {
		if text := collapseSpace(doc.Find(selector).First().Text()); text != "" {
			return text
		}
	}
	for _, selector := range reporterMetaSelectors {
		if text := metaContent(doc, selector); text != "" {
			return text
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, selector string) string {
	content, _ := doc.Find(selector).First().Attr("content")
	return strings.TrimSpace(content)
}

func readableText(raw []byte, pageURL *url.URL) string {
	article, err := readability.FromReader(bytes.NewReader(raw), pageURL)
	if err != nil {
		return ""
	}
	var buf strings.Builder
	if err := article.RenderText(&buf); err != nil {
		return ""
	}
	return collapseSpace(buf.String())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
