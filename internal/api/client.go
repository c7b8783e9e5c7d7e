package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cherry/cherry-cli/internal/buildinfo"
)

const defaultTimeout = 30 * time.Second

// Client talks to the cherry service REST API. Calls are made once; there is
// no retry at this layer.
type Client struct {
	BaseURL     string
	WorkspaceID string
	Token       string
	HTTP        *http.Client
}

// Error is returned for any non-2xx response.
type Error struct {
	Method string
	Path   string
	Status int
	Body   string
}

func (e *Error) Error() string {
	body := truncateBody(strings.TrimSpace(e.Body), maxErrorBody)
	if body == "" {
		return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.Status)
	}
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Status, body)
}

const maxErrorBody = 200

// truncateBody cuts s to at most limit bytes without splitting a rune.
func truncateBody(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	n := 0
	for n < len(s) {
		_, size := utf8.DecodeRuneInString(s[n:])
		if n+size > limit {
			break
		}
		n += size
	}
	return s[:n] + "…"
}

func (c Client) endpointFor(path string, query url.Values) (string, error) {
	if strings.TrimSpace(c.BaseURL) == "" {
		return "", fmt.Errorf("missing api base url")
	}
	u, err := url.Parse(strings.TrimRight(c.BaseURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid api url: %w", err)
	}
	p := strings.TrimSpace(path)
	p = strings.TrimPrefix(p, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + p
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return &http.Client{Timeout: defaultTimeout}
}

func (c Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	endpoint, err := c.endpointFor(path, query)
	if err != nil {
		return nil, err
	}

	var r io.Reader
	if body != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, err
		}
		r = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, r)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "cherry-cli/"+buildinfo.DisplayVersion())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if strings.TrimSpace(c.Token) != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	if strings.TrimSpace(c.WorkspaceID) != "" {
		req.Header.Set("X-Cherry-Workspace", c.WorkspaceID)
	}
	return req, nil
}

// DoREST performs a raw request and returns the decoded JSON body, or the
// body as a string when it is not JSON, together with the status code.
func (c Client) DoREST(ctx context.Context, method string, path string, query url.Values, body any) (any, int, error) {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return nil, 0, err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	// Allow non-JSON (HTML 404 pages etc) to surface as a raw string so callers can wrap.
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return string(b), resp.StatusCode, nil
	}
	return out, resp.StatusCode, nil
}

// do performs a typed request. A nil out discards the response body.
func (c Client) do(ctx context.Context, method, path string, body any, out any) error {
	req, err := c.newRequest(ctx, method, path, nil, body)
	if err != nil {
		return err
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Method: method, Path: path, Status: resp.StatusCode, Body: string(b)}
	}
	if out == nil || len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%s %s: invalid json response (status=%d): %w", method, path, resp.StatusCode, err)
	}
	return nil
}
