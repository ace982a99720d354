// Package importer registers audio files dropped into a watched directory as
// library tracks. It is the thin end of the import pipeline: filename in,
// stopped track row out.
package importer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/duythanhle/live-beats/logger"
	"github.com/duythanhle/live-beats/model"
	"github.com/duythanhle/live-beats/repository"
)

var audioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".wav":  true,
	".ogg":  true,
	".m4a":  true,
}

// Watcher watches a drop directory and registers new audio files as tracks
// owned by a fixed user.
type Watcher struct {
	dir    string
	userID int64
	tracks repository.TrackRepository

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// New creates a watcher for dir; files found there become tracks of userID.
func New(dir string, userID int64, tracks repository.TrackRepository) *Watcher {
	return &Watcher{
		dir:    dir,
		userID: userID,
		tracks: tracks,
		done:   make(chan struct{}),
	}
}

// Start begins watching. Returns an error if the directory cannot be watched.
func (w *Watcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(w.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.watcher = watcher

	go w.loop()
	logger.Info("import watcher started",
		logger.String("dir", w.dir),
		logger.Int64("userId", w.userID))
	return nil
}

// Stop ends the watch loop and releases the watcher.
func (w *Watcher) Stop() {
	close(w.done)
	if w.watcher != nil {
		w.watcher.Close()
	}
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&fsnotify.Create == fsnotify.Create {
				w.register(event.Name)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Warn("import watcher error", logger.ErrorField(err))
		case <-w.done:
			return
		}
	}
}

// register creates a stopped track row for the file, skipping non-audio
// files and paths already in the library.
func (w *Watcher) register(path string) {
	ext := strings.ToLower(filepath.Ext(path))
	if !audioExtensions[ext] {
		return
	}

	existing, err := w.tracks.GetTrackByUserIDAndFilePath(w.userID, path)
	if err != nil {
		logger.Error("import lookup failed", logger.String("path", path), logger.ErrorField(err))
		return
	}
	if existing != nil {
		logger.Debug("import skipped, track exists", logger.String("path", path))
		return
	}

	title := strings.TrimSuffix(filepath.Base(path), ext)
	id, err := w.tracks.CreateTrack(&model.Track{
		UserID:   w.userID,
		Title:    title,
		FilePath: path,
	})
	if err != nil {
		logger.Error("import create failed", logger.String("path", path), logger.ErrorField(err))
		return
	}

	logger.Info("track imported",
		logger.Int64("trackId", id),
		logger.String("title", title),
		logger.String("path", path))
}
