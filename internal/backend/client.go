// ABOUTME: HTTP client for the conference backend API.
// ABOUTME: Forwards caller credentials, sets language and CSRF headers, and decodes error envelopes.

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pyconkr/console/internal/auth"
	"github.com/pyconkr/console/internal/i18n"
)

// DefaultTimeout bounds every backend call unless configured otherwise.
const DefaultTimeout = 10 * time.Second

// Config configures a Client.
type Config struct {
	BaseURL        string
	Timeout        time.Duration
	Language       i18n.Language
	CSRFCookieName string
}

// Client talks to the backend API. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	language   i18n.Language
	csrfCookie string
	logger     *zap.Logger
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	base, err := url.ParseRequestURI(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend base URL: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	lang := cfg.Language
	if lang == "" {
		lang = i18n.Korean
	}

	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		language:   lang,
		csrfCookie: cfg.CSRFCookieName,
		logger:     logger.Named("backend"),
	}, nil
}

// BaseURL returns the backend root the client was configured with.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// resolve joins an already-escaped relative path onto the base URL.
func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid backend path %q: %w", path, err)
	}
	u := c.baseURL.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

// do performs one JSON request. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	target, err := c.resolve(path, query)
	if err != nil {
		return err
	}
	log := c.logger.With(zap.String("method", method), zap.String("url", target))

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	c.decorate(req, body != nil)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		observeRequest(method, -1, time.Since(start))
		log.Warn("Backend request failed without a response", zap.Error(err))
		return newTransportError(err)
	}
	defer resp.Body.Close()
	observeRequest(method, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newTransportError(fmt.Errorf("failed to read response body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		cerr := decodeClientError(resp.StatusCode, raw)
		log.Debug("Backend returned an error",
			zap.Int("status", resp.StatusCode),
			zap.String("type", cerr.Type),
			zap.String("detail", cerr.Detail()))
		return cerr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.Error("Failed to decode backend response", zap.Error(err))
		return fmt.Errorf("failed to decode backend response: %w", err)
	}
	return nil
}

// decorate forwards the caller's credentials and sets language headers.
func (c *Client) decorate(req *http.Request, hasBody bool) {
	req.Header.Set("Accept", "application/json")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept-Language", string(i18n.FromContext(req.Context(), c.language)))

	creds := auth.CredentialsFromContext(req.Context())
	if creds.Authorization != "" {
		req.Header.Set("Authorization", creds.Authorization)
	}
	for _, cookie := range creds.Cookies {
		req.AddCookie(&http.Cookie{Name: cookie.Name, Value: cookie.Value})
	}

	token := creds.CSRFToken
	if token == "" && c.csrfCookie != "" {
		for _, cookie := range creds.Cookies {
			if cookie.Name == c.csrfCookie {
				token = cookie.Value
				break
			}
		}
	}
	if token != "" {
		req.Header.Set("X-CSRFToken", token)
	}
}

func observeRequest(method string, status int, elapsed time.Duration) {
	backendRequestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	backendRequestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

func segment(s string) string {
	return url.PathEscape(s)
}
