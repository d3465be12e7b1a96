package cafeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/BearBump/PetCafe/internal/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const DefaultReadTimeout = 10 * time.Second

// MsgPetNotFound is shown when the backend answers 404 on a pet lookup.
const MsgPetNotFound = "Không tìm thấy thú cưng"

var ErrPetNotFound = errors.New(MsgPetNotFound)

// APIError is a non-2xx answer. Message carries the backend text verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cafe api: status %d", e.StatusCode)
	}
	return e.Message
}

// StatusCode returns the HTTP status of an APIError in err's chain, or 0.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	v, _ := ctx.Value(tokenKey{}).(string)
	return v
}

type Client struct {
	baseURL     string
	httpc       *http.Client
	readTimeout time.Duration
}

func New(baseURL string, readTimeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, readTimeout)
}

func NewWithHTTPClient(baseURL string, httpc *http.Client, readTimeout time.Duration) *Client {
	if readTimeout <= 0 {
		readTimeout = DefaultReadTimeout
	}
	if httpc == nil {
		httpc = http.DefaultClient
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		httpc:       httpc,
		readTimeout: readTimeout,
	}
}

// List is a normalized collection answer. Backends reply either with
// {"data": [...], "pagination": {...}} or with a bare array.
type List[T any] struct {
	Items      []T                `json:"data"`
	Pagination *models.Pagination `json:"pagination,omitempty"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in any) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	// Reads get a fixed deadline; writes run until the caller gives up.
	if method == http.MethodGet {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.readTimeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, errors.Wrap(err, "marshal request")
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, errors.Wrap(err, "new request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := TokenFromContext(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}

	if resp.StatusCode/100 != 2 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: backendMessage(raw)}
	}
	return raw, nil
}

func backendMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
	}
	return strings.TrimSpace(string(raw))
}

func decodeList[T any](raw []byte) (List[T], error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return List[T]{Items: []T{}}, nil
	}
	if raw[0] == '[' {
		var items []T
		if err := json.Unmarshal(raw, &items); err != nil {
			return List[T]{}, errors.Wrap(err, "decode list")
		}
		return List[T]{Items: items}, nil
	}
	var out List[T]
	if err := json.Unmarshal(raw, &out); err != nil {
		return List[T]{}, errors.Wrap(err, "decode list envelope")
	}
	if out.Items == nil {
		out.Items = []T{}
	}
	return out, nil
}

// decodeOne accepts both a bare object and {"data": {...}}.
func decodeOne[T any](raw []byte) (*T, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, errors.New("empty response body")
	}
	var env map[string]json.RawMessage
	if json.Unmarshal(raw, &env) == nil {
		if data, ok := env["data"]; ok && len(data) > 0 && data[0] == '{' {
			raw = data
		}
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "decode object")
	}
	return &out, nil
}

func getList[T any](ctx context.Context, c *Client, path string, query url.Values) (List[T], error) {
	raw, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return List[T]{}, err
	}
	return decodeList[T](raw)
}

func getOne[T any](ctx context.Context, c *Client, path string) (*T, error) {
	raw, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeOne[T](raw)
}

// send returns (nil, nil) for a 2xx answer without a body, e.g. 204.
func send[T any](ctx context.Context, c *Client, method, path string, in any) (*T, error) {
	raw, err := c.do(ctx, method, path, nil, in)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	return decodeOne[T](raw)
}

// sendRecord writes a full record and falls back to what was sent when the
// backend answers without a body.
func sendRecord[T any](ctx context.Context, c *Client, method, path string, in T) (*T, error) {
	out, err := send[T](ctx, c, method, path, in)
	if err != nil || out != nil {
		return out, err
	}
	return &in, nil
}

// Lenient turns a failed read into an empty result. Dashboards and
// reference lookups keep rendering when one collaborator is down.
func Lenient[T any](items []T, err error, what string) []T {
	if err != nil {
		slog.Warn("cafe api read failed", "resource", what, "error", err.Error())
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func pathID(prefix, id string) string {
	return prefix + "/" + url.PathEscape(id)
}
