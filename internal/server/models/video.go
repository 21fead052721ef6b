package models

import "time"

type Video struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner"`
	VideoURL     string    `json:"videoFile"`
	ThumbnailURL string    `json:"thumbnail"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Duration     float64   `json:"duration"`
	Views        int64     `json:"views"`
	IsPublished  bool      `json:"isPublished"`
	CreatedAt    time.Time `json:"createdAt"`
}

// WatchHistoryEntry is one row of a user's ordered watch history projection.
type WatchHistoryEntry struct {
	Video     Video     `json:"video"`
	WatchedAt time.Time `json:"watchedAt"`
}
