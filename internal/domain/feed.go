package domain

import "time"

// FeedEntry is a published post enriched with everything a feed consumer
// needs to render it without querying the content schema.
type FeedEntry struct {
	Post         Post              `json:"post"`
	Author       *User             `json:"author,omitempty"`
	Categories   []string          `json:"categories"`
	Tags         []string          `json:"tags"`
	CommentCount int64             `json:"comment_count"`
	Meta         map[string]string `json:"meta,omitempty"`
}

type FeedState struct {
	ID              int64     `db:"id"`
	FeedID          string    `db:"feed_id"`
	LastPublishedAt time.Time `db:"last_published_at"`
	LastPostID      int64     `db:"last_post_id"`
	TotalPublished  int64     `db:"total_published"`
}

// FeedStats holds statistics about a feed run.
type FeedStats struct {
	FeedID    string
	Read      int
	Published int
	Errors    int
	Duration  time.Duration
}
