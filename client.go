package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/checkmarble/llmclient/internal"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// ApiClient sends JSON payloads to a single LLM API endpoint.
//
// It is immutable once built and can be shared between goroutines, each call
// to Request being independent from the others.
type ApiClient struct {
	apiUrl string
	apiKey *string

	httpClient *http.Client
	logger     logrus.FieldLogger

	chunkSize   int
	checkStatus bool
}

// New creates a client targeting the given URL.
//
// Example usage:
//
//	client, err := llmclient.New(
//		"http://localhost:8080/v1/chat/completions",
//		llmclient.WithApiKey("your-api-key"),
//	)
func New(apiUrl string, opts ...Option) (*ApiClient, error) {
	u, err := url.ParseRequestURI(apiUrl)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid API url '%s'", apiUrl)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Newf("unsupported scheme '%s' in API url", u.Scheme)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.DisableCompression = true

	client := ApiClient{
		apiUrl:     apiUrl,
		httpClient: &http.Client{Transport: transport},
		logger:     logrus.StandardLogger(),
		chunkSize:  defaultChunkSize,
	}

	for _, opt := range opts {
		opt(&client)
	}

	return &client, nil
}

// Request POSTs the JSON-encoded payload to the API.
//
// When stream is false, the whole body is read and returned as a
// *TextResponse. When stream is true, a *StreamResponse is returned as soon as
// the response headers are received, and the body is consumed chunk by chunk
// by the caller.
//
// The status code is not inspected unless the client was built with
// WithStatusCheck(): an error status is returned like any other response.
func (c *ApiClient) Request(ctx context.Context, payload any, stream bool) (Response, error) {
	if stream {
		resp, err := c.RequestStream(ctx, payload)
		if err != nil {
			return nil, err
		}

		return resp, nil
	}

	resp, err := c.RequestText(ctx, payload)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// RequestText is Request with `stream` set to false.
func (c *ApiClient) RequestText(ctx context.Context, payload any) (*TextResponse, error) {
	resp, err := c.send(ctx, payload, false)
	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "could not read response body")
	}

	if c.checkStatus && !isSuccess(resp.StatusCode) {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.ToValidUTF8(string(buf), string(utf8.RuneError)),
		}
	}

	text, err := internal.DecodeUtf8(buf)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode response body")
	}

	return &TextResponse{
		ResponseMeta: ResponseMeta{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
		},
		Body: text,
	}, nil
}

// RequestStream is Request with `stream` set to true.
func (c *ApiClient) RequestStream(ctx context.Context, payload any) (*StreamResponse, error) {
	resp, err := c.send(ctx, payload, true)
	if err != nil {
		return nil, err
	}

	if c.checkStatus && !isSuccess(resp.StatusCode) {
		_ = resp.Body.Close()

		return nil, &StatusError{StatusCode: resp.StatusCode}
	}

	return &StreamResponse{
		ResponseMeta: ResponseMeta{
			StatusCode: resp.StatusCode,
			Header:     resp.Header,
		},
		Stream: newStream(resp.Body, c.chunkSize),
	}, nil
}

func (c *ApiClient) send(ctx context.Context, payload any, stream bool) (*http.Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "could not encode payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiUrl, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "could not build request")
	}

	req.Header.Set("Content-Type", "application/json")
	// An empty value keeps net/http from sending its default User-Agent.
	req.Header.Set("User-Agent", "")

	if c.apiKey != nil {
		req.Header.Set("Authorization", "Bearer "+*c.apiKey)
	}

	logger := c.logger.WithFields(logrus.Fields{
		"url":    c.apiUrl,
		"stream": stream,
	})

	logger.WithField("size", len(body)).Debug("sending request to LLM API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "could not send request to LLM API")
	}

	logger.WithField("status", resp.StatusCode).Debug("received response from LLM API")

	return resp, nil
}

func (c *ApiClient) ApiUrl() string {
	return c.apiUrl
}

func (c *ApiClient) HttpClient() *http.Client {
	return c.httpClient
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
