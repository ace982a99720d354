package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"github.com/duythanhle/live-beats/core/playback"
	"github.com/duythanhle/live-beats/model"
)

// activeStatuses is the demotion predicate: these statuses hold the user's
// playback slot.
var activeStatuses = []model.PlaybackStatus{model.StatusPlaying, model.StatusPaused}

// gormPlaybackStore implements playback.TransitionStore on GORM/MySQL. The
// database transaction is the sole serialization point for transitions of the
// same user; no additional locking is taken here.
type gormPlaybackStore struct {
	db *gorm.DB
}

// NewGormPlaybackStore creates a playback transition store backed by GORM.
func NewGormPlaybackStore(db *gorm.DB) playback.TransitionStore {
	return &gormPlaybackStore{db: db}
}

// GetTrack loads a track snapshot by ID.
func (s *gormPlaybackStore) GetTrack(ctx context.Context, id int64) (*model.Track, error) {
	var track model.Track
	err := s.db.WithContext(ctx).First(&track, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, playback.ErrTrackNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load track %d: %w", id, mapStoreError(err))
	}
	return &track, nil
}

// ApplyTransition demotes every other active track of the user and writes the
// target row, in one transaction. Either both updates commit or neither does,
// so a reader can never observe two active tracks for the user, nor the
// target update without the demotion.
func (s *gormPlaybackStore) ApplyTransition(ctx context.Context, userID, trackID int64, fields playback.TransitionFields) (*model.Track, error) {
	var updated model.Track

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Step A: stop all peers. The target row is excluded; it is written
		// with its own field set next.
		if err := tx.Model(&model.Track{}).
			Where("user_id = ? AND id <> ? AND status IN ?", userID, trackID, activeStatuses).
			Update("status", model.StatusStopped).Error; err != nil {
			return fmt.Errorf("failed to demote active tracks for user %d: %w", userID, err)
		}

		// Step B: write the target row.
		res := tx.Model(&model.Track{}).
			Where("id = ? AND user_id = ?", trackID, userID).
			Updates(fields.Columns())
		if res.Error != nil {
			return fmt.Errorf("failed to update track %d: %w", trackID, res.Error)
		}
		if res.RowsAffected == 0 {
			return playback.ErrTrackNotFound
		}

		// Re-read so the caller and the notifier see the committed row.
		if err := tx.First(&updated, trackID).Error; err != nil {
			return fmt.Errorf("failed to re-read track %d: %w", trackID, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, playback.ErrTrackNotFound) {
			return nil, playback.ErrTrackNotFound
		}
		return nil, mapStoreError(err)
	}
	return &updated, nil
}

// CurrentActive returns the user's single active track, nil when none. Two
// active rows mean the at-most-one-active invariant is broken in the store;
// that is reported instead of silently picking one.
func (s *gormPlaybackStore) CurrentActive(ctx context.Context, userID int64) (*model.Track, error) {
	var tracks []model.Track
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND status IN ?", userID, activeStatuses).
		Limit(2).
		Find(&tracks).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query active track for user %d: %w", userID, mapStoreError(err))
	}

	switch len(tracks) {
	case 0:
		return nil, nil
	case 1:
		return &tracks[0], nil
	default:
		return nil, fmt.Errorf("%w: user %d", playback.ErrInvariantViolation, userID)
	}
}

// MySQL error numbers for lock contention.
const (
	mysqlErrDeadlock    = 1213
	mysqlErrLockTimeout = 1205
)

// mapStoreError folds retryable store failures into playback.ErrConflict and
// passes everything else through unchanged.
func mapStoreError(err error) error {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		switch mysqlErr.Number {
		case mysqlErrDeadlock, mysqlErrLockTimeout:
			return fmt.Errorf("%w: %v", playback.ErrConflict, err)
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", playback.ErrConflict, err)
	}
	return err
}
