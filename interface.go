package llmclient

import (
	"context"
)

// LlmApi is anything able to send a payload to an LLM API.
//
// It is implemented by *ApiClient, and accepted by All() and Race().
type LlmApi interface {
	Request(ctx context.Context, payload any, stream bool) (Response, error)
}

var _ LlmApi = (*ApiClient)(nil)
