// SPDX-License-Identifier: MPL-2.0

package pinning

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/mintkit/mintkit/internal/retry"
)

const (
	// DefaultFileEndpoint is Pinata's multipart upload endpoint.
	DefaultFileEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"
	// DefaultJSONEndpoint is Pinata's JSON upload endpoint.
	DefaultJSONEndpoint = "https://api.pinata.cloud/pinning/pinJSONToIPFS"

	// DefaultTimeout bounds a single HTTP request.
	DefaultTimeout = 2 * time.Minute

	// maxErrorBody caps how much of a failed response is kept in StatusError.
	maxErrorBody = 4 << 10
)

var (
	// ErrMissingToken is returned when the client has no bearer token.
	ErrMissingToken = errors.New("pinning API token is not set")

	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("file to pin not found")

	// ErrStatus is the sentinel error wrapped by StatusError.
	ErrStatus = errors.New("pinning API returned an error status")

	// DefaultPolicy retries a pin request three times, two seconds apart.
	DefaultPolicy = retry.Policy{Name: "pin", MaxAttempts: 3, Delay: 2 * time.Second}
)

type (
	// Endpoints groups the URLs the client talks to.
	Endpoints struct {
		PinFile string `toml:"pin_file" mapstructure:"pin_file"`
		PinJSON string `toml:"pin_json" mapstructure:"pin_json"`
		Gateway string `toml:"gateway" mapstructure:"gateway"`
	}

	// StatusError is a non-2xx answer from the pinning API.
	StatusError struct {
		Endpoint   string
		StatusCode int
		Body       string
	}

	// NotFoundError is returned when the file to pin does not exist.
	NotFoundError struct {
		Path string
	}

	// ClientOption configures a Client.
	ClientOption func(*Client)

	// Client talks to the Pinata pinning API.
	Client struct {
		httpClient *http.Client
		token      string
		endpoints  Endpoints
		retrier    *retry.Retrier
		policy     retry.Policy
		logger     *log.Logger
	}
)

// DefaultEndpoints returns the public Pinata endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{PinFile: DefaultFileEndpoint, PinJSON: DefaultJSONEndpoint, Gateway: DefaultGateway}
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("%s: HTTP %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("%s: HTTP %d: %s", e.Endpoint, e.StatusCode, body)
}

// Unwrap returns ErrStatus for errors.Is() compatibility.
func (e *StatusError) Unwrap() error { return ErrStatus }

// Retryable reports whether the status may succeed on a later attempt.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= http.StatusInternalServerError
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("file to pin %q not found", e.Path)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithEndpoints overrides the API and gateway URLs. Empty fields keep
// their defaults.
func WithEndpoints(ep Endpoints) ClientOption {
	return func(c *Client) {
		if ep.PinFile != "" {
			c.endpoints.PinFile = ep.PinFile
		}
		if ep.PinJSON != "" {
			c.endpoints.PinJSON = ep.PinJSON
		}
		if ep.Gateway != "" {
			c.endpoints.Gateway = ep.Gateway
		}
	}
}

// WithRetry sets the retrier and policy used for every request.
func WithRetry(r *retry.Retrier, p retry.Policy) ClientOption {
	return func(c *Client) {
		if r != nil {
			c.retrier = r
		}
		c.policy = p
	}
}

// WithLogger sets the client's logger.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client that authenticates with the bearer token.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		token:      token,
		endpoints:  DefaultEndpoints(),
		retrier:    retry.New(),
		policy:     DefaultPolicy,
		logger:     log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PinFile uploads the file at path as the multipart field "file".
func (c *Client) PinFile(ctx context.Context, path string) (Result, error) {
	data, err := readLocal(path)
	if err != nil {
		return Result{}, err
	}
	name := filepath.Base(path)

	return c.pin(ctx, "pin file "+name, c.endpoints.PinFile, func() (io.Reader, string, error) {
		var body bytes.Buffer
		mw := multipart.NewWriter(&body)
		part, err := mw.CreateFormFile("file", name)
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
		if err := mw.Close(); err != nil {
			return nil, "", err
		}
		return &body, mw.FormDataContentType(), nil
	})
}

// PinJSON uploads the JSON document at path, wrapped in Pinata's envelope:
// CID version 1 and the file name as the pin name.
func (c *Client) PinJSON(ctx context.Context, path string) (Result, error) {
	data, err := readLocal(path)
	if err != nil {
		return Result{}, err
	}
	payload, err := JSONPayload(filepath.Base(path), data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	return c.pin(ctx, "pin json "+filepath.Base(path), c.endpoints.PinJSON, func() (io.Reader, string, error) {
		return bytes.NewReader(payload), "application/json", nil
	})
}

// JSONPayload builds the pinJSONToIPFS request body for content.
func JSONPayload(name string, content []byte) ([]byte, error) {
	if !gjson.ValidBytes(content) {
		return nil, errors.New("content is not valid JSON")
	}
	payload := []byte(`{}`)
	var err error
	if payload, err = sjson.SetBytes(payload, "pinataOptions.cidVersion", 1); err != nil {
		return nil, err
	}
	if payload, err = sjson.SetBytes(payload, "pinataMetadata.name", name); err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(payload, "pinataContent", content)
}

func (c *Client) pin(ctx context.Context, operation, endpoint string, body func() (io.Reader, string, error)) (Result, error) {
	if c.token == "" {
		return Result{}, ErrMissingToken
	}

	policy := c.policy
	policy.Name = operation
	res, out, err := retry.DoValue(ctx, c.retrier, policy, func(ctx context.Context, _ int) (Result, error) {
		r, contentType, err := body()
		if err != nil {
			return Result{}, retry.Permanent(fmt.Errorf("build request body: %w", err))
		}
		return c.post(ctx, endpoint, r, contentType)
	})
	if err != nil {
		return Result{}, err
	}
	c.logger.Info("pinned", "operation", operation, "hash", res.Hash, "attempts", out.Attempts)
	return res, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body io.Reader, contentType string) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("POST %s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := &StatusError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: string(msg)}
		if statusErr.Retryable() {
			return Result{}, statusErr
		}
		return Result{}, retry.Permanent(statusErr)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Result{}, fmt.Errorf("read response from %s: %w", endpoint, err)
	}
	fields := gjson.GetManyBytes(raw, "IpfsHash", "PinSize")
	if !fields[0].Exists() {
		return Result{}, retry.Permanent(fmt.Errorf("%w: response from %s has no IpfsHash: %s", ErrInvalidHash, endpoint, raw))
	}
	res, err := NewResult(fields[0].String(), c.endpoints.Gateway)
	if err != nil {
		return Result{}, retry.Permanent(err)
	}
	res.Size = fields[1].Int()
	return res, nil
}

func readLocal(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read %q: %w", path, err)
	}
	return data, nil
}
