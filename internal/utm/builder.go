// Package utm builds tracking links from a website URL and UTM parameters.
package utm

import (
	"errors"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when the website URL cannot be parsed.
var ErrInvalidURL = errors.New("invalid website url")

// Params are the five standard UTM parameters.
type Params struct {
	Source   string
	Medium   string
	Campaign string
	Term     string
	Content  string
}

func (p Params) pairs() [][2]string {
	return [][2]string{
		{"utm_source", p.Source},
		{"utm_medium", p.Medium},
		{"utm_campaign", p.Campaign},
		{"utm_term", p.Term},
		{"utm_content", p.Content},
	}
}

// BuildURL removes any utm_* parameters already present on website and sets
// the non-empty trimmed values from p. A missing scheme defaults to https.
func BuildURL(website string, p Params) (string, error) {
	website = strings.TrimSpace(website)
	if website == "" {
		return "", ErrInvalidURL
	}
	if !strings.Contains(website, "://") {
		website = "https://" + website
	}

	u, err := url.Parse(website)
	if err != nil || u.Host == "" {
		return "", ErrInvalidURL
	}

	q := u.Query()
	for k := range q {
		if strings.HasPrefix(strings.ToLower(k), "utm_") {
			q.Del(k)
		}
	}

	for _, kv := range p.pairs() {
		if v := strings.TrimSpace(kv[1]); v != "" {
			q.Set(kv[0], v)
		}
	}

	u.RawQuery = q.Encode()

	return u.String(), nil
}
