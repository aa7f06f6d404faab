package scanner

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"NewsSignal/internal/domain"
	"NewsSignal/internal/ports"
)

// Provider is a named news search strategy (Naver Open API, RSS, etc.).
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]domain.RawArticle, error)
}

// Registry keeps a mapping from provider names to their implementations.
type Registry struct {
	providers map[string]Provider
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces a provider implementation.
func (r *Registry) Register(provider Provider) {
	if r.providers == nil {
		r.providers = map[string]Provider{}
	}
	r.providers[provider.Name()] = provider
}

// Resolve returns a provider by name or an error if it is absent.
func (r *Registry) Resolve(name string) (Provider, error) {
	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("search provider %s is not registered", name)
}

// FilteredSearcher drops articles whose title contains an excluded keyword
// and articles already seen under the same link. Linkless articles are all kept.
type FilteredSearcher struct {
	provider Provider
	exclude  []string
}

var _ ports.NewsSearcher = (*FilteredSearcher)(nil)

// NewFilteredSearcher wraps provider with an exclusion list.
func NewFilteredSearcher(provider Provider, exclude []string) *FilteredSearcher {
	return &FilteredSearcher{provider: provider, exclude: exclude}
}

// Search delegates to the provider and filters its results.
func (f *FilteredSearcher) Search(ctx context.Context, query string, limit int) ([]domain.RawArticle, error) {
	articles, err := f.provider.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%s search: %w", f.provider.Name(), err)
	}

	seen := map[string]struct{}{}
	kept := make([]domain.RawArticle, 0, len(articles))
	for _, article := range articles {
		if f.excluded(article.Title) {
			continue
		}
		link := strings.TrimSpace(article.Link)
		if link == "" {
			kept = append(kept, article)
			continue
		}
		if _, ok := seen[link]; ok {
			continue
		}
		seen[link] = struct{}{}
		kept = append(kept, article)
	}
	return kept, nil
}

func (f *FilteredSearcher) excluded(title string) bool {
	return slices.ContainsFunc(f.exclude, func(keyword string) bool {
		keyword = strings.TrimSpace(keyword)
		return keyword != "" && strings.Contains(title, keyword)
	})
}
