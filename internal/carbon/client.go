package carbon

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetcher defines how the engine retrieves a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// FetchResult is the raw outcome of one GET. It lives only as long as the
// request that produced it.
type FetchResult struct {
	Body       []byte
	ByteLength int
	StatusCode int
	FinalURL   string
}

// ClientOptions configures an HTTPClient.
type ClientOptions struct {
	// Timeout bounds the whole exchange, redirects and body read included.
	Timeout time.Duration
	// MaxBodyBytes caps the accepted response body.
	MaxBodyBytes int64
	// AllowPrivate disables the dial-time block on private/reserved addresses.
	AllowPrivate bool
}

const (
	defaultTimeout      = 30 * time.Second
	defaultMaxBodyBytes = 32 << 20
	maxRedirects        = 10
	userAgent           = "CarbonFootprintAnalyzer/1.0"
)

var (
	errTooManyRedirects = errors.New("too many redirects")
	errBlockedRedirect  = errors.New("redirect to non-http(s) scheme blocked")
	errPageTooLarge     = errors.New("response body exceeds maximum allowed size")
)

// HTTPClient implements Fetcher using a real HTTP client.
type HTTPClient struct {
	client       *http.Client
	maxBodyBytes int64
}

// NewHTTPClient returns a Fetcher backed by an http.Client that follows up to
// ten http(s) redirects and gives up after opts.Timeout. Unless
// opts.AllowPrivate is set, its transport refuses to connect to private and
// reserved IP ranges.
func NewHTTPClient(opts ClientOptions) *HTTPClient {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}

	dialer := safeDialer()
	if opts.AllowPrivate {
		dialer.Control = nil
	}

	return &HTTPClient{
		maxBodyBytes: opts.MaxBodyBytes,
		client: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy:               http.ProxyFromEnvironment,
				DialContext:         dialer.DialContext,
				ForceAttemptHTTP2:   true,
				TLSHandshakeTimeout: 10 * time.Second,
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
			CheckRedirect: redirectPolicy,
		},
	}
}

// redirectPolicy follows redirects to http(s) targets and limits the chain length.
func redirectPolicy(req *http.Request, via []*http.Request) error {
	if len(via) >= maxRedirects {
		return fmt.Errorf("%w: stopped after %d", errTooManyRedirects, maxRedirects)
	}
	if req.URL.Scheme != "http" && req.URL.Scheme != "https" {
		return fmt.Errorf("%w: %s", errBlockedRedirect, req.URL.Scheme)
	}
	return nil
}

// Fetch performs a single GET and buffers the full response body. Non-2xx
// responses are returned like any other; only transport failures are errors.
func (c *HTTPClient) Fetch(ctx context.Context, targetURL string) (*FetchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readLimited(resp.Body, c.maxBodyBytes)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Body:       body,
		ByteLength: len(body),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// readLimited reads r to EOF, failing if it yields more than limit bytes.
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	// Read one extra byte to detect overflow.
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w (%d bytes)", errPageTooLarge, limit)
	}
	return data, nil
}
