package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/app/service"
	"github.com/atinyakov/utm-manager/internal/remote"
)

// autoSyncTimeout bounds a background auto-sync started over HTTP.
const autoSyncTimeout = 2 * time.Minute

type SyncHandler struct {
	syncer service.Syncer
	logger *zap.Logger
}

func NewSync(s service.Syncer, l *zap.Logger) *SyncHandler {
	return &SyncHandler{
		syncer: s,
		logger: l,
	}
}

// StatusFor maps sync errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrConcurrentSyncRejected):
		return http.StatusConflict
	case errors.Is(err, service.ErrSyncNotConfigured):
		return http.StatusPreconditionFailed
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, remote.ErrRemoteUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Full runs a full sync and answers with its summary.
func (h *SyncHandler) Full(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	summary, err := h.syncer.FullSync(r.Context(), owner)
	if err != nil {
		writeError(w, StatusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// Auto starts an auto-sync in the background and returns immediately.
func (h *SyncHandler) Auto(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), autoSyncTimeout)
		defer cancel()
		h.syncer.AutoSync(ctx, owner)
	}()

	w.WriteHeader(http.StatusAccepted)
}

// State reports the phase of the owner's latest pass.
func (h *SyncHandler) State(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"state": string(h.syncer.State(owner))})
}

// Reset clears the owner's local data, as on logout.
func (h *SyncHandler) Reset(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerOrFail(w, r)
	if !ok {
		return
	}

	if err := h.syncer.Reset(owner); err != nil {
		writeError(w, StatusFor(err), err.Error())
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
