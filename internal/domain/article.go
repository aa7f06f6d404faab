package domain

import "time"

// RawArticle is an item returned by a news search provider.
type RawArticle struct {
	Title       string
	Link        string
	Description string
	Source      string
	PublishedAt time.Time
}

// ArticleMeta holds fields scraped from the article page itself.
type ArticleMeta struct {
	Publisher string
	Reporter  string
	Content   string
}

// Annotation is the typed result of parsing annotator output.
type Annotation struct {
	Region  string
	Keyword string
	Signal  Signal
	Display string
	Invalid bool
}

// CollectionStatus enumerates the outcome of annotating one article.
type CollectionStatus string

const (
	StatusAnnotated CollectionStatus = "annotated"
	StatusRejected  CollectionStatus = "rejected"
	StatusFallback  CollectionStatus = "fallback"
)
