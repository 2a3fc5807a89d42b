package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"wpfeed/internal/domain"
)

// FeedStateStore persists how far each feed has published. It owns the
// feed_state table and never touches the content tables.
type FeedStateStore struct {
	db *sqlx.DB
}

func NewFeedStateStore(db *sqlx.DB) *FeedStateStore {
	return &FeedStateStore{db: db}
}

func (s *FeedStateStore) Get(ctx context.Context, feedID string) (*domain.FeedState, error) {
	var state domain.FeedState
	query := `
		SELECT id, feed_id, last_published_at, last_post_id, total_published
		FROM feed_state
		WHERE feed_id = $1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &state, query, feedID)
	if errors.Is(err, sql.ErrNoRows) {
		// Unknown feeds start from the beginning
		return &domain.FeedState{FeedID: feedID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *FeedStateStore) Update(ctx context.Context, state *domain.FeedState) error {
	query := `
		INSERT INTO feed_state (feed_id, last_published_at, last_post_id, total_published)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (feed_id) DO UPDATE SET
			last_published_at = EXCLUDED.last_published_at,
			last_post_id = EXCLUDED.last_post_id,
			total_published = EXCLUDED.total_published`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		state.FeedID,
		state.LastPublishedAt,
		state.LastPostID,
		state.TotalPublished,
	)
	return err
}
