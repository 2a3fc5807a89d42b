package service

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"time"

	"wpfeed/internal/domain"
)

type ContentReader interface {
	PostsSince(ctx context.Context, since time.Time, sinceID int64, limit uint64) ([]domain.Post, error)
	PostCategories(ctx context.Context, postID int64) ([]string, error)
	PostTags(ctx context.Context, postID int64) ([]string, error)
	CommentCount(ctx context.Context, postID int64) (int64, error)
	Author(ctx context.Context, userID int64) (*domain.User, error)
	MetaValue(ctx context.Context, key string, postID int64) (string, bool, error)
}

type FeedStateStore interface {
	Get(ctx context.Context, feedID string) (*domain.FeedState, error)
	Update(ctx context.Context, state *domain.FeedState) error
}

type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	WithReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

type Publisher interface {
	Publish(ctx context.Context, entry *domain.FeedEntry) error
	Close() error
}
