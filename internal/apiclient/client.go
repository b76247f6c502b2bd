// Package apiclient talks to the remote invoice API. Every call is logged;
// failures are logged and returned unchanged in kind, with no retry.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/ErlanBelekov/invoice-console/internal/metrics"
	"github.com/ErlanBelekov/invoice-console/internal/requestid"
)

const maxResponseBytes = 4 << 20

// TokenSource yields the bearer token for the current request. An empty
// token means the call goes out unauthenticated.
type TokenSource interface {
	AccessToken(ctx context.Context) (string, error)
}

type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
	logger  *slog.Logger
}

// New returns a client without a token source. Use WithTokens to get a copy
// that authenticates its calls.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("component", "api_client"),
	}
}

// WithTokens returns a copy of c that attaches tokens from ts to every call
// except PostWithoutToken.
func (c *Client) WithTokens(ts TokenSource) *Client {
	cp := *c
	cp.tokens = ts
	return &cp
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", true, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, "", true, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, true, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPut, path, body, true, out)
}

// PostWithoutToken is used by login, registration and refresh, where no
// access token exists yet.
func (c *Client) PostWithoutToken(ctx context.Context, path string, body, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, body, false, out)
}

// File is one file part of a multipart form.
type File struct {
	Field       string
	Filename    string
	ContentType string
	Data        []byte
}

// Form is a multipart payload. Fields keep insertion order.
type Form struct {
	fields [][2]string
	files  []File
}

func (f *Form) Set(name, value string) {
	f.fields = append(f.fields, [2]string{name, value})
}

func (f *Form) AddFile(file File) {
	f.files = append(f.files, file)
}

// PostMultipart sends form as multipart/form-data. The content type comes
// from the multipart writer so it carries the boundary; the JSON content
// type is never set on these requests.
func (c *Client) PostMultipart(ctx context.Context, path string, form *Form, out any) error {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, kv := range form.fields {
		if err := w.WriteField(kv[0], kv[1]); err != nil {
			return fmt.Errorf("write field %s: %w", kv[0], err)
		}
	}
	for _, f := range form.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, f.Field, f.Filename))
		ct := f.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		h.Set("Content-Type", ct)
		part, err := w.CreatePart(h)
		if err != nil {
			return fmt.Errorf("create part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return fmt.Errorf("write part %s: %w", f.Field, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close multipart: %w", err)
	}

	return c.do(ctx, http.MethodPost, path, &buf, w.FormDataContentType(), true, out)
}

// Ping checks that the API answers at all; any non-5xx response counts.
func (c *Client) Ping(ctx context.Context) error {
	err := c.do(ctx, http.MethodGet, "/healthz", nil, "", false, nil)
	if apiErr, ok := AsAPIError(err); ok && apiErr.StatusCode < http.StatusInternalServerError {
		return nil
	}
	return err
}

func (c *Client) doJSON(ctx context.Context, method, path string, body any, auth bool, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	return c.do(ctx, method, path, reader, "application/json", auth, out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	requestid.Propagate(ctx, req)

	if auth && c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return fmt.Errorf("access token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	c.logger.DebugContext(ctx, "api request", "method", method, "path", path)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestDuration.WithLabelValues(method, "error").Observe(time.Since(start).Seconds())
		c.logger.ErrorContext(ctx, "api network error", "method", method, "path", path, "error", err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.APIRequestDuration.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Observe(time.Since(start).Seconds())

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		c.logger.ErrorContext(ctx, "api read error", "method", method, "path", path, "error", err)
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newAPIError(method, path, resp.StatusCode, raw)
		c.logger.ErrorContext(ctx, "api error",
			"method", method,
			"path", path,
			"status", resp.StatusCode,
			"message", apiErr.Message,
		)
		return apiErr
	}

	c.logger.DebugContext(ctx, "api response", "method", method, "path", path, "status", resp.StatusCode)

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.ErrorContext(ctx, "api decode error", "method", method, "path", path, "error", err)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
