package usecase

import (
	"net/url"
	"strings"

	"ReadLater/internal/domain"
)

// NormalizeURL trims raw and checks it is an absolute http(s) URL.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &domain.ValidationError{Field: "url", Value: raw, Reason: "must not be empty"}
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", &domain.ValidationError{Field: "url", Value: raw, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", &domain.ValidationError{Field: "url", Value: raw, Reason: "scheme must be http or https"}
	}
	if u.Host == "" {
		return "", &domain.ValidationError{Field: "url", Value: raw, Reason: "host is missing"}
	}
	return trimmed, nil
}

// NormalizeURLs validates every URL and drops repeats, keeping the first occurrence.
// Nothing is returned unless every entry is valid.
func NormalizeURLs(raws []string) ([]string, error) {
	if len(raws) == 0 {
		return nil, domain.ErrEmptyURLList
	}

	seen := make(map[string]struct{}, len(raws))
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		u, err := NormalizeURL(raw)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out, nil
}
