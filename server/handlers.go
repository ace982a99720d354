package server

import (
	"encoding/json"
	"net/http"

	"github.com/duythanhle/live-beats/config"
	"github.com/duythanhle/live-beats/core/notify"
	"github.com/duythanhle/live-beats/core/playback"
	"github.com/duythanhle/live-beats/repository"
)

// APIHandler handles all API requests.
type APIHandler struct {
	trackRepo   repository.TrackRepository
	userRepo    repository.UserRepository
	playbackSvc *playback.Service
	notifier    *notify.RedisNotifier
	cfg         *config.Config
}

// NewAPIHandler creates a new API handler.
func NewAPIHandler(
	trackRepo repository.TrackRepository,
	userRepo repository.UserRepository,
	playbackSvc *playback.Service,
	notifier *notify.RedisNotifier,
	cfg *config.Config,
) *APIHandler {
	return &APIHandler{
		trackRepo:   trackRepo,
		userRepo:    userRepo,
		playbackSvc: playbackSvc,
		notifier:    notifier,
		cfg:         cfg,
	}
}

// respondJSON writes v as a JSON response.
func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

// respondError writes a JSON error body.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
