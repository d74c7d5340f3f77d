package llmclient

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// AsyncResponse is the outcome of one of the requests sent by All: either a
// text response or the error that prevented getting one.
type AsyncResponse struct {
	Response *TextResponse
	Error    error
}

// All sends one non-streaming request per payload, concurrently, and waits for
// all of them to complete.
//
// Responses are returned in the same order as the payloads.
func All(ctx context.Context, api LlmApi, payloads ...any) []AsyncResponse {
	var wg sync.WaitGroup

	responses := make([]AsyncResponse, len(payloads))

	for idx, payload := range payloads {
		wg.Add(1)

		go func() {
			defer wg.Done()

			resp, err := requestText(ctx, api, payload)
			if err != nil {
				responses[idx] = AsyncResponse{Error: err}
				return
			}

			responses[idx] = AsyncResponse{Response: resp}
		}()
	}

	wg.Wait()

	return responses
}

// Race sends one non-streaming request per payload, concurrently, and returns
// the first one to succeed. The other requests are cancelled.
//
// Streaming is not supported here, since the body of a stream cannot outlive
// the cancelled context of its request.
func Race(ctx context.Context, api LlmApi, payloads ...any) (*TextResponse, error) {
	if len(payloads) == 0 {
		return nil, errors.New("no request to race")
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := make(chan AsyncResponse, len(payloads))

	for _, payload := range payloads {
		go func() {
			resp, err := requestText(ctx, api, payload)
			if err != nil {
				c <- AsyncResponse{Error: err}
				return
			}

			c <- AsyncResponse{Response: resp}
		}()
	}

	var errs error

	errored := 0

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case value := <-c:
			switch value.Error {
			case nil:
				return value.Response, nil

			default:
				errs = errors.CombineErrors(errs, value.Error)
				errored += 1

				if errored == len(payloads) {
					return nil, errors.WithSecondaryError(errors.New("all requests failed"), errs)
				}
			}
		}
	}
}

func requestText(ctx context.Context, api LlmApi, payload any) (*TextResponse, error) {
	resp, err := api.Request(ctx, payload, false)
	if err != nil {
		return nil, err
	}

	switch r := resp.(type) {
	case *TextResponse:
		return r, nil

	case *StreamResponse:
		_ = r.Close()
	}

	return nil, errors.Newf("expected a text response, got %T", resp)
}
