// Package videos declares the persistence contract for published videos and
// the per-user watch-history projection.
package videos

import (
	"context"

	"github.com/viewtube/viewtube/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, video *models.Video) (*models.Video, error)
	GetByID(ctx context.Context, id string) (*models.Video, error)
	IncrementViews(ctx context.Context, id string) error

	// RecordWatch upserts a watch-history row for the user; rewatching a
	// video moves it to the top of the history.
	RecordWatch(ctx context.Context, userID, videoID string) error

	// WatchHistory returns the user's history, most recent first.
	WatchHistory(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error)
}
