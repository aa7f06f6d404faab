// Package search implements news search providers.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"NewsSignal/internal/config"
	"NewsSignal/internal/domain"
	"NewsSignal/internal/scanner"
)

const naverMaxDisplay = 100

// NaverNews queries the Naver Open API news search.
type NaverNews struct {
	endpoint     string
	clientID     string
	clientSecret string
	sort         string
	httpClient   *http.Client
}

var _ scanner.Provider = (*NaverNews)(nil)

// NewNaverNews builds a client from configuration.
func NewNaverNews(cfg config.SearchConfig, client *http.Client) *NaverNews {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &NaverNews{
		endpoint:     cfg.Naver.Endpoint,
		clientID:     cfg.Naver.ClientID,
		clientSecret: cfg.Naver.ClientSecret,
		sort:         cfg.Sort,
		httpClient:   client,
	}
}

// Name identifies the provider inside the registry.
func (n *NaverNews) Name() string {
	return "naver"
}

type naverResponse struct {
	Items []naverItem `json:"items"`
}

type naverItem struct {
	Title        string `json:"title"`
	OriginalLink string `json:"originallink"`
	Link         string `json:"link"`
	Description  string `json:"description"`
	PubDate      string `json:"pubDate"`
}

// Search returns up to limit articles for query, newest first when sort=date.
func (n *NaverNews) Search(ctx context.Context, query string, limit int) ([]domain.RawArticle, error) {
	if n.clientID == "" || n.clientSecret == "" {
		return nil, fmt.Errorf("naver client misconfigured")
	}
	if limit <= 0 || limit > naverMaxDisplay {
		limit = naverMaxDisplay
	}

	endpoint, err := url.Parse(n.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %s: %w", n.endpoint, err)
	}
	params := endpoint.Query()
	params.Set("query", query)
	params.Set("display", strconv.Itoa(limit))
	if n.sort != "" {
		params.Set("sort", n.sort)
	}
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("X-Naver-Client-Id", n.clientID)
	req.Header.Set("X-Naver-Client-Secret", n.clientSecret)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, domain.ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("naver error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var body naverResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	articles := make([]domain.RawArticle, 0, len(body.Items))
	for _, item := range body.Items {
		link := strings.TrimSpace(item.OriginalLink)
		if link == "" {
			link = strings.TrimSpace(item.Link)
		}
		published, _ := time.Parse(time.RFC1123Z, item.PubDate)
		articles = append(articles, domain.RawArticle{
			Title:       plainText(item.Title),
			Link:        link,
			Description: plainText(item.Description),
			Source:      n.Name(),
			PublishedAt: published,
		})
	}
	return articles, nil
}
