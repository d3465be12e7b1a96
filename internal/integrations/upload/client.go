package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"strings"

	"github.com/BearBump/PetCafe/internal/integrations/cafeapi"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Uploader stores a file and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, filename, contentType string, data []byte) (string, error)
}

type Client struct {
	baseURL string
	apiKey  string
	folder  string
	httpc   *http.Client
}

func New(baseURL, apiKey, folder string) *Client {
	return NewWithHTTPClient(baseURL, apiKey, folder, &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	})
}

func NewWithHTTPClient(baseURL, apiKey, folder string, httpc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		folder:  folder,
		httpc:   httpc,
	}
}

// ObjectName renames the file to a collision-free name keeping its extension.
func ObjectName(filename string) string {
	return uuid.NewString() + strings.ToLower(path.Ext(filename))
}

func (c *Client) Upload(ctx context.Context, filename, contentType string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if c.folder != "" {
		if err := mw.WriteField("folder", c.folder); err != nil {
			return "", errors.Wrap(err, "write folder field")
		}
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+ObjectName(filename)+`"`)
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return "", errors.Wrap(err, "create file part")
	}
	if _, err := part.Write(data); err != nil {
		return "", errors.Wrap(err, "write file part")
	}
	if err := mw.Close(); err != nil {
		return "", errors.Wrap(err, "close multipart")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload", &buf)
	if err != nil {
		return "", errors.Wrap(err, "new request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if c.apiKey != "" {
		req.Header.Set("X-API-Key", c.apiKey)
	}
	if tok := cafeapi.TokenFromContext(ctx); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", errors.Wrap(err, "read body")
	}
	if resp.StatusCode/100 != 2 {
		return "", &cafeapi.APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	var body struct {
		URL       string `json:"url"`
		SecureURL string `json:"secure_url"`
		Data      *struct {
			URL string `json:"url"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", errors.Wrap(err, "decode upload response")
	}
	switch {
	case body.SecureURL != "":
		return body.SecureURL, nil
	case body.URL != "":
		return body.URL, nil
	case body.Data != nil && body.Data.URL != "":
		return body.Data.URL, nil
	}
	return "", errors.New("upload response has no url")
}
