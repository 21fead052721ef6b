package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/viewtube/viewtube/internal/common"
	"github.com/viewtube/viewtube/internal/logging"
	"github.com/viewtube/viewtube/internal/server/models"
	"github.com/viewtube/viewtube/internal/server/repositories/repomanager"
)

// PublishInput carries a new video. File paths point at spooled uploads.
type PublishInput struct {
	OwnerID       string
	Title         string
	Description   string
	Duration      float64
	VideoPath     string
	ThumbnailPath string
}

// VideoService publishes videos and serves the watch-history projection.
type VideoService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	uploader    Uploader
	logger      logging.Logger
}

func NewVideoService(db *sql.DB, m repomanager.RepositoryManager, up Uploader, l logging.Logger) *VideoService {
	return &VideoService{
		db:          db,
		repomanager: m,
		uploader:    up,
		logger:      l.With("module", "video"),
	}
}

// Publish uploads the video file and thumbnail, then persists the record.
func (s *VideoService) Publish(ctx context.Context, in PublishInput) (*models.Video, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, fmt.Errorf("%w: title is required", common.ErrValidation)
	}
	if in.VideoPath == "" || in.ThumbnailPath == "" {
		return nil, fmt.Errorf("%w: video file and thumbnail are required", common.ErrValidation)
	}

	videoURL, err := s.uploader.Upload(ctx, in.VideoPath, "")
	if err != nil {
		s.logger.Error(ctx, "video upload failed", "error", err.Error())
		return nil, fmt.Errorf("%w: video upload failed", common.ErrInternal)
	}

	thumbnailURL, err := s.uploader.Upload(ctx, in.ThumbnailPath, "")
	if err != nil {
		s.logger.Error(ctx, "thumbnail upload failed", "error", err.Error())
		return nil, fmt.Errorf("%w: thumbnail upload failed", common.ErrInternal)
	}

	repo := s.repomanager.Videos(s.db)
	video, err := repo.Create(ctx, &models.Video{
		OwnerID:      in.OwnerID,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
		Title:        in.Title,
		Description:  in.Description,
		Duration:     in.Duration,
		IsPublished:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating video: %w", err)
	}

	return video, nil
}

// Watch returns the video and bumps its view counter. When viewerID is set
// the watch is recorded in that user's history.
func (s *VideoService) Watch(ctx context.Context, videoID, viewerID string) (*models.Video, error) {
	repo := s.repomanager.Videos(s.db)

	video, err := repo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if err := repo.IncrementViews(ctx, videoID); err != nil {
		return nil, common.ErrInternal
	}
	video.Views++

	if viewerID != "" {
		if err := repo.RecordWatch(ctx, viewerID, videoID); err != nil {
			// history is best effort; the video itself was served
			s.logger.Warn(ctx, "failed to record watch history", "user_id", viewerID, "video_id", videoID)
		}
	}

	return video, nil
}

// History returns the viewer's watch history, most recent first.
func (s *VideoService) History(ctx context.Context, userID string) ([]models.WatchHistoryEntry, error) {
	repo := s.repomanager.Videos(s.db)
	history, err := repo.WatchHistory(ctx, userID)
	if err != nil {
		return nil, common.ErrInternal
	}
	return history, nil
}
