package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// ErrNotConfigured is returned by providers that lack credentials.
var ErrNotConfigured = errors.New("provider not configured")

const (
	defaultPicSeeURL   = "https://api.picsee.co/v2"
	defaultTitle       = "UTM link"
	defaultDescription = "Generated by UTM Manager"
)

// PicSee shortens through the PicSee links API.
type PicSee struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

func NewPicSee(apiKey, baseURL string, client *http.Client) *PicSee {
	if baseURL == "" {
		baseURL = defaultPicSeeURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &PicSee{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (p *PicSee) ID() string { return "picsee" }

type picSeeRequest struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type picSeeResponse struct {
	Data struct {
		ID        string `json:"id"`
		PicseeURL string `json:"picseeUrl"`
		URL       string `json:"url"`
	} `json:"data"`
}

func (p *PicSee) Request(ctx context.Context, longURL string, meta Metadata) (Result, error) {
	if p.apiKey == "" {
		return Result{}, ErrNotConfigured
	}

	payload := picSeeRequest{
		URL:         longURL,
		Title:       meta.Title,
		Description: meta.Description,
	}
	if payload.Title == "" {
		payload.Title = defaultTitle
	}
	if payload.Description == "" {
		payload.Description = defaultDescription
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return Result{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/links", bytes.NewReader(b))
	if err != nil {
		return Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var out picSeeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return Result{}, fmt.Errorf("decode picsee response: %w", err)
	}

	if out.Data.PicseeURL == "" {
		return Result{}, errors.New("picsee response has no short url")
	}

	original := out.Data.URL
	if original == "" {
		original = longURL
	}

	return Result{ShortURL: out.Data.PicseeURL, OriginalURL: original}, nil
}
