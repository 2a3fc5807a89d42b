package postgres

import (
	"context"
	"time"

	"wpfeed/internal/domain"
)

// FeedReader exposes the repository reads the feed service needs as plain
// terminal calls.
type FeedReader struct {
	repo *ContentRepository
}

func NewFeedReader(repo *ContentRepository) *FeedReader {
	return &FeedReader{repo: repo}
}

// PostsSince returns up to limit published posts strictly after the
// (since, sinceID) cursor, oldest first.
func (f *FeedReader) PostsSince(ctx context.Context, since time.Time, sinceID int64, limit uint64) ([]domain.Post, error) {
	cols := withColumns(f.repo.projections.Posts, PostID, PostDate, PostAuthor)

	var posts []domain.Post
	_, err := f.repo.Posts(PostFilter{Columns: cols}).
		Seek(PostDate, PostID, since, sinceID).
		OrderBy(PostDate, Asc).
		OrderBy(PostID, Asc).
		Limit(limit, 0).
		All(ctx, &posts)
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (f *FeedReader) PostCategories(ctx context.Context, postID int64) ([]string, error) {
	var names []string
	if _, err := f.repo.Categories(postID).OrderBy(TermName, Asc).All(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (f *FeedReader) PostTags(ctx context.Context, postID int64) ([]string, error) {
	var names []string
	if _, err := f.repo.Tags(postID).OrderBy(TermName, Asc).All(ctx, &names); err != nil {
		return nil, err
	}
	return names, nil
}

func (f *FeedReader) CommentCount(ctx context.Context, postID int64) (int64, error) {
	return f.repo.CountComments(ctx, postID)
}

// Author returns nil when the user row is missing.
func (f *FeedReader) Author(ctx context.Context, userID int64) (*domain.User, error) {
	u, found, err := f.repo.User(ctx, userID)
	if err != nil || !found {
		return nil, err
	}
	u.ID = userID
	return &u, nil
}

func (f *FeedReader) MetaValue(ctx context.Context, key string, postID int64) (string, bool, error) {
	return f.repo.MetaValue(ctx, key, postID)
}
