package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/duythanhle/live-beats/core/playback"
	"github.com/duythanhle/live-beats/logger"
	"github.com/duythanhle/live-beats/model"
)

// loadOwnedTrack resolves the {id} path variable to a track owned by userID.
// Writes the error response itself and returns nil when the track is not
// usable.
func (h *APIHandler) loadOwnedTrack(w http.ResponseWriter, r *http.Request, userID int64) *model.Track {
	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid track id")
		return nil
	}

	track, err := h.trackRepo.GetTrackByID(trackID)
	if err != nil {
		logger.Error("track lookup failed", logger.Int64("trackId", trackID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to load track")
		return nil
	}
	if track == nil || track.UserID != userID {
		respondError(w, http.StatusNotFound, "Track not found")
		return nil
	}
	return track
}

// writePlaybackError maps the playback error taxonomy onto HTTP statuses.
func writePlaybackError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, playback.ErrTrackNotFound):
		respondError(w, http.StatusNotFound, "Track not found")
	case errors.Is(err, playback.ErrConflict):
		// Retryable by the client; the service does not retry.
		respondError(w, http.StatusConflict, "Playback transition conflict, retry")
	case errors.Is(err, playback.ErrInvariantViolation):
		respondError(w, http.StatusInternalServerError, "Playback state inconsistent")
	default:
		respondError(w, http.StatusInternalServerError, "Playback transition failed")
	}
}

// PlayTrackHandler starts or resumes playback of a track.
func (h *APIHandler) PlayTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	track := h.loadOwnedTrack(w, r, userID)
	if track == nil {
		return
	}

	if err := h.playbackSvc.Play(r.Context(), track.ID); err != nil {
		logger.Error("play failed",
			logger.Int64("trackId", track.ID),
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writePlaybackError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, nil)
}

// PauseTrackHandler pauses a track.
func (h *APIHandler) PauseTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	track := h.loadOwnedTrack(w, r, userID)
	if track == nil {
		return
	}

	if err := h.playbackSvc.Pause(r.Context(), track); err != nil {
		logger.Error("pause failed",
			logger.Int64("trackId", track.ID),
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writePlaybackError(w, err)
		return
	}

	respondJSON(w, http.StatusAccepted, nil)
}

// CurrentTrackHandler returns the caller's active track with its elapsed
// seconds, or an empty body when nothing is active.
func (h *APIHandler) CurrentTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	track, err := h.playbackSvc.CurrentActive(r.Context(), userID)
	if err != nil {
		logger.Error("current track lookup failed",
			logger.Int64("userId", userID),
			logger.ErrorField(err))
		writePlaybackError(w, err)
		return
	}
	if track == nil {
		respondJSON(w, http.StatusOK, map[string]interface{}{"track": nil})
		return
	}

	elapsed, err := h.playbackSvc.Elapsed(track)
	if err != nil {
		logger.Error("elapsed computation failed",
			logger.Int64("trackId", track.ID),
			logger.ErrorField(err))
		writePlaybackError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"track":      track,
		"elapsedSec": elapsed.Seconds(),
	})
}
