package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/models"
)

type RecordHandler struct {
	service service.Recorder
	logger  *zap.Logger
}

func NewRecord(s service.Recorder, l *zap.Logger) *RecordHandler {
	return &RecordHandler{
		service: s,
		logger:  l,
	}
}

// List returns the owner's cached records, most recent first.
func (h *RecordHandler) List(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.List(r.Context(), owner))
}

// Create builds and stores a new record.
func (h *RecordHandler) Create(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	var in models.RecordInput
	if !decodeOrFail(w, r, &in, h.logger) {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	rec, err := h.service.Create(ctx, owner, in)
	if err != nil {
		if errors.Is(err, service.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		h.logger.Error("create record", zap.String("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusCreated, rec)
}

// Settings returns the owner's local settings.
func (h *RecordHandler) Settings(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, h.service.Settings(r.Context(), owner))
}

// SaveSettings applies a partial settings update.
func (h *RecordHandler) SaveSettings(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	var req models.SettingsRequest
	if !decodeOrFail(w, r, &req, h.logger) {
		return
	}

	saved, err := h.service.SaveSettings(r.Context(), owner, models.UserSettings{
		AIKey:     req.AIKey,
		SyncURL:   req.SyncURL,
		Templates: req.Templates,
	})
	if err != nil {
		h.logger.Error("save settings", zap.String("owner", owner), zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, saved)
}
