package shortener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

const defaultTinyURL = "https://tinyurl.com/api-create.php"

// TinyURL shortens through the keyless TinyURL creation endpoint.
type TinyURL struct {
	endpoint string
	client   *http.Client
}

func NewTinyURL(endpoint string, client *http.Client) *TinyURL {
	if endpoint == "" {
		endpoint = defaultTinyURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &TinyURL{
		endpoint: endpoint,
		client:   client,
	}
}

func (t *TinyURL) ID() string { return "tinyurl" }

func (t *TinyURL) Request(ctx context.Context, longURL string, _ Metadata) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?url="+url.QueryEscape(longURL), nil)
	if err != nil {
		return Result{}, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return Result{}, err
	}

	short := strings.TrimSpace(string(body))
	if !strings.HasPrefix(short, "http") {
		return Result{}, errors.New("invalid tinyurl response")
	}

	return Result{ShortURL: short, OriginalURL: longURL}, nil
}
