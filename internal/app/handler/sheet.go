package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/sheet"
)

// Banner is the body of GET /exec, checked by connection tests.
const Banner = "UTM link builder sync endpoint is running"

const anonymousUser = "anonymous"

type SheetHandler struct {
	sheet  sheet.Sheet
	logger *zap.Logger
}

func NewSheet(s sheet.Sheet, l *zap.Logger) *SheetHandler {
	return &SheetHandler{
		sheet:  s,
		logger: l,
	}
}

// Banner answers GET requests so clients can test the endpoint.
func (h *SheetHandler) Banner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(Banner))
}

// Exec dispatches one envelope request. Unknown actions are answered with
// an error envelope; storage failures with a 500.
func (h *SheetHandler) Exec(w http.ResponseWriter, r *http.Request) {
	params, err := h.params(w, r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.Envelope{Result: models.ResultError, Error: err.Error()})
		return
	}

	userID := params["userId"]
	if userID == "" {
		userID = anonymousUser
	}

	var data any
	switch params["action"] {
	case models.ActionSaveSettings:
		err = h.sheet.SaveSettings(r.Context(), userID, models.WireSettings{
			AIKey:       params["aiKey"],
			SyncURL:     params["syncUrl"],
			Templates:   params["templates"],
			LastUpdated: params["lastUpdated"],
		})
	case models.ActionLoadSettings:
		data, err = h.sheet.LoadSettings(r.Context(), userID)
	case models.ActionSaveRecord:
		err = h.sheet.AppendRecord(r.Context(), userID, models.UtmRecord{
			Timestamp:   params["timestamp"],
			WebsiteURL:  params["websiteUrl"],
			FinalURL:    params["finalUrl"],
			UtmSource:   params["utmSource"],
			UtmMedium:   params["utmMedium"],
			UtmCampaign: params["utmCampaign"],
			UtmTerm:     params["utmTerm"],
			UtmContent:  params["utmContent"],
			ShortURL:    params["shortUrl"],
		})
	case models.ActionLoadRecords:
		data, err = h.sheet.Records(r.Context(), userID)
	default:
		writeJSON(w, http.StatusOK, models.Envelope{Result: models.ResultError, Error: "unknown_action"})
		return
	}

	if err != nil {
		h.logger.Error("sheet action failed", zap.String("action", params["action"]), zap.String("user", userID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, models.Envelope{Result: models.ResultError, Error: "storage failure"})
		return
	}

	env := models.Envelope{Result: models.ResultSuccess}
	if params["action"] == models.ActionLoadSettings || params["action"] == models.ActionLoadRecords {
		raw, err := json.Marshal(data)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, models.Envelope{Result: models.ResultError, Error: err.Error()})
			return
		}
		env.Data = raw
	}

	writeJSON(w, http.StatusOK, env)
}

// Stats reports the number of users and records stored.
func (h *SheetHandler) Stats(w http.ResponseWriter, r *http.Request) {
	st, err := h.sheet.Stats(r.Context())
	if err != nil {
		h.logger.Error("sheet stats", zap.Error(err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
		return
	}

	writeJSON(w, http.StatusOK, st)
}

// params flattens a form or JSON envelope into string fields. Non-string
// JSON values are re-encoded, so templates may be sent as a raw array.
func (h *SheetHandler) params(w http.ResponseWriter, r *http.Request) (map[string]string, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	if mediaType == "application/json" {
		var body map[string]json.RawMessage
		if err := decodeJSONBody(w, r, &body); err != nil {
			return nil, err
		}

		out := make(map[string]string, len(body))
		for k, v := range body {
			var s string
			if err := json.Unmarshal(v, &s); err == nil {
				out[k] = s
				continue
			}
			if string(v) != "null" {
				out[k] = string(v)
			}
		}
		return out, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	out := make(map[string]string, len(r.Form))
	for k := range r.Form {
		out[k] = r.Form.Get(k)
	}
	return out, nil
}
