package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atinyakov/utm-manager/internal/models"
	"github.com/atinyakov/utm-manager/internal/reconcile"
)

// maxResponseSize caps how much of a reply is read.
const maxResponseSize = 10 << 20

// pingBanner is what a spreadsheet endpoint answers to a GET.
const pingBanner = "UTM link builder"

// SpreadsheetStore talks to a spreadsheet-backed endpoint that stores
// settings in one sheet and appends records to another. Requests are form
// encoded envelopes {action, userId, ...fields}.
type SpreadsheetStore struct {
	endpoint string
	client   *http.Client
	logger   *zap.Logger
}

// NewSpreadsheetStore creates a store for endpoint. A nil client gets a
// client with a 15 second timeout.
func NewSpreadsheetStore(endpoint string, client *http.Client, logger *zap.Logger) *SpreadsheetStore {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &SpreadsheetStore{
		endpoint: endpoint,
		client:   client,
		logger:   logger,
	}
}

// call posts one envelope. Transport failures wrap ErrRemoteUnavailable,
// replies that are not an envelope wrap ErrMalformedResponse.
func (s *SpreadsheetStore) call(ctx context.Context, action, ownerID string, fields url.Values) (*models.Envelope, error) {
	form := url.Values{}
	for k, v := range fields {
		form[k] = v
	}
	form.Set("action", action)
	form.Set("userId", ownerID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, unavailable(action, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, unavailable(action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UnavailableError{Op: action, Status: resp.StatusCode, Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, unavailable(action, err)
	}

	var env models.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("%s: %w: %v", action, ErrMalformedResponse, err)
	}

	if env.Result != models.ResultSuccess && env.Result != models.ResultError {
		return nil, fmt.Errorf("%s: %w: result %q", action, ErrMalformedResponse, env.Result)
	}

	return &env, nil
}

// degrade turns a malformed reply into a logged business failure and keeps
// transport errors as they are.
func (s *SpreadsheetStore) degrade(ownerID string, err error) error {
	if errors.Is(err, ErrMalformedResponse) {
		s.logger.Warn("spreadsheet store returned malformed response", zap.String("owner", ownerID), zap.Error(err))
		return nil
	}
	return err
}

func (s *SpreadsheetStore) SaveSettings(ctx context.Context, ownerID string, settings models.UserSettings) (bool, error) {
	env, err := s.call(ctx, models.ActionSaveSettings, ownerID, settingsForm(settings))
	if err != nil {
		return false, s.degrade(ownerID, err)
	}

	if env.Result != models.ResultSuccess {
		s.logger.Info("spreadsheet store rejected settings", zap.String("owner", ownerID), zap.String("error", env.Error))
		return false, nil
	}

	return true, nil
}

func (s *SpreadsheetStore) LoadSettings(ctx context.Context, ownerID string) (*models.UserSettings, error) {
	env, err := s.call(ctx, models.ActionLoadSettings, ownerID, nil)
	if err != nil {
		return nil, s.degrade(ownerID, err)
	}

	if env.Result != models.ResultSuccess || isNull(env.Data) {
		return nil, nil
	}

	var wire models.WireSettings
	if err := json.Unmarshal(env.Data, &wire); err != nil {
		return nil, s.degrade(ownerID, fmt.Errorf("%w: settings: %v", ErrMalformedResponse, err))
	}

	settings := SettingsFromWire(wire)
	return &settings, nil
}

func (s *SpreadsheetStore) SaveRecord(ctx context.Context, ownerID string, record models.UtmRecord) (bool, error) {
	env, err := s.call(ctx, models.ActionSaveRecord, ownerID, recordForm(record))
	if err != nil {
		return false, s.degrade(ownerID, err)
	}

	if env.Result != models.ResultSuccess {
		s.logger.Info("spreadsheet store rejected record",
			zap.String("owner", ownerID),
			zap.String("timestamp", record.Timestamp),
			zap.String("error", env.Error),
		)
		return false, nil
	}

	return true, nil
}

func (s *SpreadsheetStore) LoadRecords(ctx context.Context, ownerID string) ([]models.UtmRecord, error) {
	env, err := s.call(ctx, models.ActionLoadRecords, ownerID, nil)
	if err != nil {
		return []models.UtmRecord{}, s.degrade(ownerID, err)
	}

	if env.Result != models.ResultSuccess || isNull(env.Data) {
		return []models.UtmRecord{}, nil
	}

	var records []models.UtmRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return []models.UtmRecord{}, s.degrade(ownerID, fmt.Errorf("%w: records: %v", ErrMalformedResponse, err))
	}

	for i := range records {
		records[i].OwnerID = ownerID
	}
	reconcile.SortRecords(records)

	return records, nil
}

// PushRecord is the fire-and-forget write. A request that failed in
// transport may still have been appended by the endpoint, so it is reported
// as unconfirmed rather than as success or failure.
func (s *SpreadsheetStore) PushRecord(ctx context.Context, ownerID string, record models.UtmRecord) models.PushResult {
	env, err := s.call(ctx, models.ActionSaveRecord, ownerID, recordForm(record))
	if err != nil {
		var ue *UnavailableError
		if errors.As(err, &ue) && ue.Status != 0 {
			s.logger.Warn("record push rejected", zap.String("timestamp", record.Timestamp), zap.Error(err))
			return models.PushFailed
		}

		s.logger.Warn("record push unconfirmed", zap.String("timestamp", record.Timestamp), zap.Error(err))
		return models.PushUnconfirmed
	}

	if env.Result != models.ResultSuccess {
		s.logger.Warn("record push rejected", zap.String("timestamp", record.Timestamp), zap.String("error", env.Error))
		return models.PushFailed
	}

	return models.PushSucceeded
}

// Ping checks that the endpoint answers GET with the spreadsheet banner.
func (s *SpreadsheetStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint, nil)
	if err != nil {
		return unavailable("ping", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return unavailable("ping", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return unavailable("ping", err)
	}

	if !bytes.Contains(body, []byte(pingBanner)) {
		return fmt.Errorf("ping: %w: unexpected banner", ErrMalformedResponse)
	}

	return nil
}

func settingsForm(settings models.UserSettings) url.Values {
	wire := SettingsToWire(settings)
	return url.Values{
		"aiKey":       {wire.AIKey},
		"syncUrl":     {wire.SyncURL},
		"templates":   {wire.Templates},
		"lastUpdated": {wire.LastUpdated},
	}
}

func recordForm(r models.UtmRecord) url.Values {
	return url.Values{
		"timestamp":   {r.Timestamp},
		"websiteUrl":  {r.WebsiteURL},
		"finalUrl":    {r.FinalURL},
		"utmSource":   {r.UtmSource},
		"utmMedium":   {r.UtmMedium},
		"utmCampaign": {r.UtmCampaign},
		"utmTerm":     {r.UtmTerm},
		"utmContent":  {r.UtmContent},
		"shortUrl":    {r.ShortURL},
	}
}

func isNull(data json.RawMessage) bool {
	d := bytes.TrimSpace(data)
	return len(d) == 0 || bytes.Equal(d, []byte("null"))
}
