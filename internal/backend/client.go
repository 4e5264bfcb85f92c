package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Observer receives timing for every backend round trip.
type Observer interface {
	ObserveBackendCall(method, route string, status int, duration time.Duration)
}

// Config configures the backend client.
type Config struct {
	BaseURL       string
	UploadBaseURL string
	Timeout       time.Duration
	Retries       int
	RetryWait     time.Duration
	Logger        *zap.Logger
	Observer      Observer
}

// FileUpload is one file part of a multipart request.
type FileUpload struct {
	Field    string
	FileName string
	Reader   io.Reader
}

// Client talks to the institute REST backend.
type Client struct {
	http       *resty.Client
	uploadBase string
	logger     *zap.Logger
	observer   Observer
}

type requestIDKey struct{}

// ContextWithRequestID tags ctx so outgoing calls carry the console's
// request id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// New constructs a backend client.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = 300 * time.Millisecond
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")

	if cfg.Retries > 0 {
		httpClient.
			SetRetryCount(cfg.Retries).
			SetRetryWaitTime(cfg.RetryWait).
			SetRetryMaxWaitTime(cfg.RetryWait * 8).
			AddRetryCondition(retryIdempotentReads)
	}

	return &Client{
		http:       httpClient,
		uploadBase: strings.TrimRight(cfg.UploadBaseURL, "/"),
		logger:     cfg.Logger,
		observer:   cfg.Observer,
	}
}

// Reads are retried on transport errors and 5xx; writes never are, so a
// submission can not be applied twice.
func retryIdempotentReads(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil {
		return false
	}
	if resp.Request.Method != http.MethodGet {
		return false
	}
	return err != nil || resp.StatusCode() >= http.StatusInternalServerError
}

// UploadURL maps a stored file name to its public URL. Absolute URLs and
// data URIs are returned unchanged.
func (c *Client) UploadURL(filename string) string {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return ""
	}
	lower := strings.ToLower(filename)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(lower, "data:") {
		return filename
	}
	filename = strings.TrimPrefix(filename, "/")
	filename = strings.TrimPrefix(filename, "uploads/")
	segments := strings.Split(filename, "/")
	for i, segment := range segments {
		segments[i] = url.PathEscape(segment)
	}
	return c.uploadBase + "/" + strings.Join(segments, "/")
}

func (c *Client) request(ctx context.Context, s *Session) *resty.Request {
	req := c.http.R().SetContext(ctx)
	if s != nil && s.Token != "" {
		req.SetAuthToken(s.Token)
	}
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		req.SetHeader("X-Request-ID", id)
	}
	return req
}

func (c *Client) do(ctx context.Context, req *resty.Request, method, route string) ([]byte, error) {
	start := time.Now()
	resp, err := req.Execute(method, route)
	status := 0
	if resp != nil && resp.RawResponse != nil {
		status = resp.StatusCode()
	}
	if c.observer != nil {
		c.observer.ObserveBackendCall(method, route, status, time.Since(start))
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		c.logger.Warn("backend call failed", zap.String("method", method), zap.String("route", route), zap.Error(err))
		return nil, fmt.Errorf("%w: %s %s: %v", ErrUnreachable, method, route, err)
	}
	if resp.IsError() {
		apiErr := newAPIError(resp.StatusCode(), resp.Body())
		if apiErr.Status >= http.StatusInternalServerError {
			c.logger.Warn("backend error response", zap.String("method", method), zap.String("route", route), zap.Int("status", apiErr.Status), zap.String("detail", apiErr.Detail))
		}
		return nil, apiErr
	}
	return resp.Body(), nil
}

func listResource[T any](ctx context.Context, c *Client, s *Session, route, field string, query map[string]string) ([]T, int, error) {
	req := c.request(ctx, s)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}
	body, err := c.do(ctx, req, http.MethodGet, route)
	if err != nil {
		return nil, 0, err
	}
	return decodeList[T](body, field)
}

func getResource[T any](ctx context.Context, c *Client, s *Session, route string, id int64, field string) (*T, error) {
	req := c.request(ctx, s).SetPathParam("id", strconv.FormatInt(id, 10))
	body, err := c.do(ctx, req, http.MethodGet, route)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](body, field)
}

func sendResource[T any](ctx context.Context, c *Client, s *Session, method, route string, id *int64, payload interface{}, field string) (*T, error) {
	req := c.request(ctx, s).SetHeader("Content-Type", "application/json").SetBody(payload)
	if id != nil {
		req.SetPathParam("id", strconv.FormatInt(*id, 10))
	}
	body, err := c.do(ctx, req, method, route)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](body, field)
}

func sendMultipart[T any](ctx context.Context, c *Client, s *Session, method, route string, id *int64, fields map[string]string, files []FileUpload, field string) (*T, error) {
	req := c.request(ctx, s).SetMultipartFormData(fields)
	for _, f := range files {
		if f.Reader == nil {
			continue
		}
		req.SetFileReader(f.Field, f.FileName, f.Reader)
	}
	if id != nil {
		req.SetPathParam("id", strconv.FormatInt(*id, 10))
	}
	body, err := c.do(ctx, req, method, route)
	if err != nil {
		return nil, err
	}
	return decodeItem[T](body, field)
}

func (c *Client) deleteResource(ctx context.Context, s *Session, route string, id int64) error {
	req := c.request(ctx, s).SetPathParam("id", strconv.FormatInt(id, 10))
	_, err := c.do(ctx, req, http.MethodDelete, route)
	return err
}

// payloadFields flattens a JSON-serialisable payload into multipart form
// fields under a single "payload" key.
func payloadFields(payload interface{}) (map[string]string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return map[string]string{"payload": string(raw)}, nil
}

// IsUnreachable reports a transport failure.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
