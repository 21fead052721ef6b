package videos

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/dbx"
	"github.com/viewtube/viewtube/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, video *models.Video) (*models.Video, error) {
	query := `
		INSERT INTO videos (id, owner_id, video_url, thumbnail_url, title, description, duration, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	video.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, query,
		video.ID, video.OwnerID, video.VideoURL, video.ThumbnailURL,
		video.Title, video.Description, video.Duration, video.IsPublished).
		Scan(&video.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Video, error) {
	query := `
		SELECT id, owner_id, video_url, thumbnail_url, title, description, duration, views, is_published, created_at
		FROM videos
		WHERE id = $1
	`

	video := &models.Video{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&video.ID, &video.OwnerID, &video.VideoURL, &video.ThumbnailURL,
		&video.Title, &video.Description, &video.Duration, &video.Views,
		&video.IsPublished, &video.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return video, nil
}

func (r *PostgresRepository) IncrementViews(ctx context.Context, id string) error {
	query := `UPDATE videos SET views = views + 1 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RecordWatch(ctx context.Context, userID, videoID string) error {
	query := `
		INSERT INTO watch_history (user_id, video_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, video_id) DO UPDATE SET watched_at = now()
	`
	if _, err := r.db.ExecContext(ctx, query, userID, videoID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	query := `
		SELECT v.id, v.owner_id, v.video_url, v.thumbnail_url, v.title, v.description,
		       v.duration, v.views, v.is_published, v.created_at, h.watched_at
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		WHERE h.user_id = $1
		ORDER BY h.watched_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var history []models.WatchHistoryEntry
	for rows.Next() {
		var e models.WatchHistoryEntry
		if err := rows.Scan(&e.Video.ID, &e.Video.OwnerID, &e.Video.VideoURL,
			&e.Video.ThumbnailURL, &e.Video.Title, &e.Video.Description,
			&e.Video.Duration, &e.Video.Views, &e.Video.IsPublished,
			&e.Video.CreatedAt, &e.WatchedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		history = append(history, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return history, nil
}
