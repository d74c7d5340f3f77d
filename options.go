package llmclient

import (
	"net/http"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

const (
	defaultChunkSize = 32 * 1024
)

// Option configures an ApiClient, see New.
type Option func(*ApiClient)

// WithApiKey sets the key sent as a bearer token with every request.
//
// If not specified, no `Authorization` header is sent.
func WithApiKey(key string) Option {
	return func(c *ApiClient) {
		c.apiKey = lo.ToPtr(key)
	}
}

// WithHttpClient overrides the *http.Client used to send requests.
//
// No timeout is applied by default, deadlines are expected to be carried by
// the request context. A nil client is ignored.
func WithHttpClient(client *http.Client) Option {
	return func(c *ApiClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(c *ApiClient) {
		c.logger = logger
	}
}

// WithChunkSize sets the size of the buffer streamed chunks are read into.
//
// A transport chunk larger than this will be split into several elements.
func WithChunkSize(size int) Option {
	return func(c *ApiClient) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithStatusCheck makes requests fail with a *StatusError when the API
// responds with a non-2xx status code, instead of returning the response as
// usual.
func WithStatusCheck() Option {
	return func(c *ApiClient) {
		c.checkStatus = true
	}
}
