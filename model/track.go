package model

import "time"

// Track represents an audio track in a user's library.
//
// PlayedAt is the logical start of the current playback clock: for a playing
// track, elapsed time is now minus PlayedAt. On resume it is rewound so the
// elapsed time from before the pause is preserved without a separate
// accumulator column. PausedAt is only meaningful while Status is paused.
// Both are stored truncated to whole seconds, UTC.
type Track struct {
	ID       int64          `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID   int64          `json:"userId" gorm:"index;not null"`
	Title    string         `json:"title" gorm:"size:255;not null"`
	Artist   string         `json:"artist" gorm:"size:255"`
	Album    string         `json:"album" gorm:"size:255"`
	FilePath string         `json:"-" gorm:"column:file_path;size:767"` // Object key in MinIO, not exposed in API directly
	Duration float32        `json:"duration"`                           // Duration in seconds
	Status   PlaybackStatus `json:"status" gorm:"size:20;default:'stopped'"`
	PlayedAt *time.Time     `json:"playedAt,omitempty" gorm:"column:played_at"`
	PausedAt *time.Time     `json:"pausedAt,omitempty" gorm:"column:paused_at"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName sets the table name for GORM.
func (Track) TableName() string {
	return "tracks"
}
