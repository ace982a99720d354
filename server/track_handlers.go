package server

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/duythanhle/live-beats/logger"
	"github.com/duythanhle/live-beats/model"
	"github.com/duythanhle/live-beats/storage"
)

var nonAlphaNumeric = regexp.MustCompile(`[^a-zA-Z0-9_\-\.]`)

func generateUniqueSuffix() string {
	b := make([]byte, 4)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// GetTracksHandler returns the caller's track library.
func (h *APIHandler) GetTracksHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	tracks, err := h.trackRepo.GetAllTracksByUserID(userID)
	if err != nil {
		logger.Error("failed to list tracks", logger.Int64("userId", userID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to list tracks")
		return
	}

	respondJSON(w, http.StatusOK, tracks)
}

// UploadTrackHandler accepts a multipart audio upload, stores the file in
// MinIO and registers the track, stopped, in the caller's library.
func (h *APIHandler) UploadTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if err := r.ParseMultipartForm(64 << 20); err != nil { // 64 MB
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing audio file")
		return
	}
	defer file.Close()

	title := r.FormValue("title")
	if title == "" {
		title = strings.TrimSuffix(header.Filename, filepath.Ext(header.Filename))
	}

	safeName := nonAlphaNumeric.ReplaceAllString(header.Filename, "_")
	objectName := fmt.Sprintf("audio/%d/%s_%s", userID, generateUniqueSuffix(), safeName)

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/mpeg"
	}

	if err := storage.UploadAudio(r.Context(), objectName, file, header.Size, contentType); err != nil {
		logger.Error("audio upload failed", logger.String("object", objectName), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to store audio file")
		return
	}

	track := &model.Track{
		UserID:   userID,
		Title:    title,
		Artist:   r.FormValue("artist"),
		Album:    r.FormValue("album"),
		FilePath: objectName,
	}
	trackID, err := h.trackRepo.CreateTrack(track)
	if err != nil {
		logger.Error("track create failed", logger.String("title", title), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to create track")
		return
	}
	track.ID = trackID
	track.Status = model.StatusStopped

	respondJSON(w, http.StatusCreated, track)
}

// DeleteTrackHandler removes a track and its stored audio file.
func (h *APIHandler) DeleteTrackHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	trackID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid track id")
		return
	}

	track, err := h.trackRepo.GetTrackByID(trackID)
	if err != nil {
		logger.Error("track lookup failed", logger.Int64("trackId", trackID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}
	if track == nil || track.UserID != userID {
		respondError(w, http.StatusNotFound, "Track not found")
		return
	}

	if err := h.trackRepo.DeleteTrack(trackID); err != nil {
		logger.Error("track delete failed", logger.Int64("trackId", trackID), logger.ErrorField(err))
		respondError(w, http.StatusInternalServerError, "Failed to delete track")
		return
	}

	// Blob removal is best-effort; an orphaned object is preferable to a
	// dangling row.
	if track.FilePath != "" {
		if err := storage.RemoveObject(r.Context(), track.FilePath); err != nil {
			logger.Warn("failed to remove audio object",
				logger.String("object", track.FilePath),
				logger.ErrorField(err))
		}
	}

	respondJSON(w, http.StatusNoContent, nil)
}
