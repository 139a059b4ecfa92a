package carbon

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	errURLRequired    = errors.New("the \"url\" field is required")
	errNotAbsoluteURL = errors.New("URL must be absolute, e.g. https://example.com")
	errUnsupportedURL = errors.New("only http and https URLs are supported")
)

// ParseTarget validates a caller-supplied URL and returns it parsed. The URL
// must be absolute with an http or https scheme and a non-empty host.
func ParseTarget(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errURLRequired
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: got %q", errNotAbsoluteURL, raw)
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: got scheme %q", errUnsupportedURL, u.Scheme)
	}

	if u.Hostname() == "" {
		return nil, fmt.Errorf("%w: got %q", errNotAbsoluteURL, raw)
	}
	return u, nil
}
