package models

import (
	"time"

	"YieldDesk/pkg/date"
)

// News sort orders accepted by the news provider.
const (
	SortPublishedAt = "publishedAt"
	SortRelevancy   = "relevancy"
	SortPopularity  = "popularity"
)

// Article is a news headline passed through from the news provider untouched.
type Article struct {
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Source       string    `json:"source"`
	PublishedAt  time.Time `json:"published_at"`
	Description  string    `json:"description,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
}

// NewsQuery is a validated news search.
type NewsQuery struct {
	Query    string    `json:"query"`
	PageSize int       `json:"page_size"`
	SortBy   string    `json:"sort_by"`
	From     date.Date `json:"from,omitempty"`
	To       date.Date `json:"to,omitempty"`
}

// NewsResult is what the news endpoint returns. Unavailable is set when the
// provider failed and Articles is empty for that reason.
type NewsResult struct {
	Query       NewsQuery `json:"query"`
	Articles    []Article `json:"articles"`
	Unavailable bool      `json:"unavailable,omitempty"`
}
