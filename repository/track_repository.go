package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/duythanhle/live-beats/logger"
	"github.com/duythanhle/live-beats/model"
)

// TrackRepository defines the interface for track catalog operations. The
// playback fields of a track are only ever mutated through the playback
// transition store; this repository covers creation, lookup and deletion.
type TrackRepository interface {
	CreateTrack(track *model.Track) (int64, error)
	GetTrackByID(id int64) (*model.Track, error)
	GetAllTracksByUserID(userID int64) ([]*model.Track, error)
	GetTrackByUserIDAndFilePath(userID int64, filePath string) (*model.Track, error)
	DeleteTrack(trackID int64) error
}

// mysqlTrackRepository implements TrackRepository for MySQL.
type mysqlTrackRepository struct {
	db *sql.DB
}

// NewMySQLTrackRepository creates a new instance of mysqlTrackRepository.
func NewMySQLTrackRepository(db *sql.DB) TrackRepository {
	return &mysqlTrackRepository{db: db}
}

const trackColumns = `id, user_id, title, artist, album, file_path, duration, status, played_at, paused_at, created_at, updated_at`

// scanTrack scans one row into a Track, converting the nullable playback
// timestamps.
func scanTrack(row interface{ Scan(...interface{}) error }) (*model.Track, error) {
	track := &model.Track{}
	var playedAt, pausedAt sql.NullTime
	err := row.Scan(&track.ID, &track.UserID, &track.Title, &track.Artist, &track.Album,
		&track.FilePath, &track.Duration, &track.Status, &playedAt, &pausedAt,
		&track.CreatedAt, &track.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if playedAt.Valid {
		t := playedAt.Time
		track.PlayedAt = &t
	}
	if pausedAt.Valid {
		t := pausedAt.Time
		track.PausedAt = &t
	}
	return track, nil
}

// CreateTrack adds a new track to the database. New tracks always start
// stopped with empty playback timestamps.
func (r *mysqlTrackRepository) CreateTrack(track *model.Track) (int64, error) {
	query := `INSERT INTO tracks (title, artist, album, file_path, duration, status, user_id, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement for CreateTrack: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	res, err := stmt.Exec(track.Title, track.Artist, track.Album, track.FilePath,
		track.Duration, model.StatusStopped, track.UserID, now, now)
	if err != nil {
		return 0, fmt.Errorf("failed to execute CreateTrack: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for CreateTrack: %w", err)
	}
	logger.Info("track created", logger.Int64("trackId", id), logger.String("title", track.Title))
	return id, nil
}

// GetTrackByID retrieves a track by its ID. Returns nil when not found.
func (r *mysqlTrackRepository) GetTrackByID(id int64) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE id = ?`
	track, err := scanTrack(r.db.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track by ID %d: %w", id, err)
	}
	return track, nil
}

// GetAllTracksByUserID retrieves all tracks of one user, newest first.
func (r *mysqlTrackRepository) GetAllTracksByUserID(userID int64) ([]*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := r.db.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks for user ID %d: %w", userID, err)
	}
	defer rows.Close()

	tracks := make([]*model.Track, 0)
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan track in GetAllTracksByUserID: %w", err)
		}
		tracks = append(tracks, track)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration in GetAllTracksByUserID: %w", err)
	}

	return tracks, nil
}

// GetTrackByUserIDAndFilePath retrieves a track by its file path to check for
// duplicate imports. Returns nil when not found.
func (r *mysqlTrackRepository) GetTrackByUserIDAndFilePath(userID int64, filePath string) (*model.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE user_id = ? AND file_path = ?`
	track, err := scanTrack(r.db.QueryRow(query, userID, filePath))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // Track not found
		}
		return nil, fmt.Errorf("failed to scan track by user ID %d and file_path %s: %w", userID, filePath, err)
	}
	return track, nil
}

// DeleteTrack removes a track row entirely.
func (r *mysqlTrackRepository) DeleteTrack(trackID int64) error {
	query := `DELETE FROM tracks WHERE id = ?`
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare statement for DeleteTrack: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(trackID)
	if err != nil {
		return fmt.Errorf("failed to execute DeleteTrack for track ID %d: %w", trackID, err)
	}
	return nil
}
