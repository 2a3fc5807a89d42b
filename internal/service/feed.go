package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"wpfeed/internal/config"
	"wpfeed/internal/domain"
)

type FeedService struct {
	content   ContentReader
	feedState FeedStateStore
	txManager TransactionManager
	publisher Publisher
	logger    *slog.Logger
	config    config.FeedConfig
}

func NewFeedService(
	content ContentReader,
	feedState FeedStateStore,
	txManager TransactionManager,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.FeedConfig,
) *FeedService {
	return &FeedService{
		content:   content,
		feedState: feedState,
		txManager: txManager,
		publisher: publisher,
		logger:    logger.With("feed", cfg.ID),
		config:    cfg,
	}
}

// Run publishes the posts that appeared since the previous run. State only
// advances past entries that were published, and stops at the first failure
// so that the failed post is retried by the next run.
func (s *FeedService) Run(ctx context.Context) (*domain.FeedStats, error) {
	startTime := time.Now()

	state, err := s.feedState.Get(ctx, s.config.ID)
	if err != nil {
		return nil, fmt.Errorf("get feed state: %w", err)
	}

	s.logger.Info("starting feed run",
		"since", state.LastPublishedAt,
		"since_post_id", state.LastPostID,
		"batch_size", s.config.BatchSize,
	)

	var entries []domain.FeedEntry
	err = s.txManager.WithReadOnly(ctx, func(txCtx context.Context) error {
		var err error
		entries, err = s.readEntries(txCtx, state)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	s.logger.Info("read posts", "count", len(entries))

	stats := &domain.FeedStats{
		FeedID: s.config.ID,
		Read:   len(entries),
	}

	for i := range entries {
		entry := &entries[i]
		if err := s.publisher.Publish(ctx, entry); err != nil {
			s.logger.Error("publish failed",
				"post_id", entry.Post.ID,
				"error", err,
			)
			stats.Errors++
			break
		}

		stats.Published++
		state.LastPublishedAt = entry.Post.Date
		state.LastPostID = entry.Post.ID
	}

	if stats.Published > 0 {
		state.FeedID = s.config.ID
		state.TotalPublished += int64(stats.Published)
		err := s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
			return s.feedState.Update(txCtx, state)
		})
		if err != nil {
			return stats, fmt.Errorf("update feed state: %w", err)
		}
	}

	stats.Duration = time.Since(startTime)

	s.logger.Info("feed run completed",
		"published", stats.Published,
		"errors", stats.Errors,
		"duration", stats.Duration,
	)

	return stats, nil
}

func (s *FeedService) readEntries(ctx context.Context, state *domain.FeedState) ([]domain.FeedEntry, error) {
	posts, err := s.content.PostsSince(ctx, state.LastPublishedAt, state.LastPostID, uint64(s.config.BatchSize))
	if err != nil {
		return nil, fmt.Errorf("posts since: %w", err)
	}

	entries := make([]domain.FeedEntry, 0, len(posts))
	for _, post := range posts {
		entry, err := s.enrich(ctx, post)
		if err != nil {
			return nil, fmt.Errorf("post %d: %w", post.ID, err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *FeedService) enrich(ctx context.Context, post domain.Post) (domain.FeedEntry, error) {
	entry := domain.FeedEntry{Post: post}

	var err error
	if entry.Categories, err = s.content.PostCategories(ctx, post.ID); err != nil {
		return entry, fmt.Errorf("categories: %w", err)
	}
	if entry.Tags, err = s.content.PostTags(ctx, post.ID); err != nil {
		return entry, fmt.Errorf("tags: %w", err)
	}
	if entry.CommentCount, err = s.content.CommentCount(ctx, post.ID); err != nil {
		return entry, fmt.Errorf("comment count: %w", err)
	}
	if entry.Author, err = s.content.Author(ctx, post.AuthorID); err != nil {
		return entry, fmt.Errorf("author: %w", err)
	}
	if entry.Author == nil {
		s.logger.Debug("author not found", "post_id", post.ID, "author_id", post.AuthorID)
	}

	for _, key := range s.config.MetaKeys {
		value, found, err := s.content.MetaValue(ctx, key, post.ID)
		if err != nil {
			return entry, fmt.Errorf("meta %q: %w", key, err)
		}
		if !found {
			continue
		}
		if entry.Meta == nil {
			entry.Meta = make(map[string]string)
		}
		entry.Meta[key] = value
	}

	return entry, nil
}
