package llmclient

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// Response is the result of a request to the API.
//
// It is either a *TextResponse or a *StreamResponse, depending only on the
// `stream` flag passed to Request:
//
//	switch r := resp.(type) {
//	case *llmclient.TextResponse:
//		fmt.Println(r.Body)
//	case *llmclient.StreamResponse:
//		for chunk, err := range r.All() {
//			...
//		}
//	}
type Response interface {
	Meta() ResponseMeta

	isResponse()
}

// ResponseMeta holds what is known about the response before its body is read.
type ResponseMeta struct {
	StatusCode int
	Header     http.Header
}

func (m ResponseMeta) Meta() ResponseMeta {
	return m
}

// TextResponse is a fully-read response body.
type TextResponse struct {
	ResponseMeta

	Body string
}

func (*TextResponse) isResponse() {}

// Get extracts a value from a JSON body using gjson's path syntax.
//
// The status code is never checked by the client, so this can be used to look
// for an API-level error as well as for the content:
//
//	if msg := resp.Get("error.message"); msg.Exists() {
//		...
//	}
//
// See https://github.com/tidwall/gjson/blob/master/SYNTAX.md for the syntax.
func (r *TextResponse) Get(path string) gjson.Result {
	return gjson.Get(r.Body, path)
}

// StreamResponse is a response whose body is consumed chunk by chunk.
//
// The embedded Stream must be consumed until exhaustion or closed, otherwise
// the underlying connection is held open.
type StreamResponse struct {
	ResponseMeta
	*Stream
}

func (*StreamResponse) isResponse() {}
