package llmclient

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// chunkedBody hands out exactly one scripted chunk per Read, as long as the
// read buffer is large enough.
type chunkedBody struct {
	chunks [][]byte
	// err is returned once all chunks are consumed, io.EOF if nil.
	err error
	// errWithLast returns err along with the last chunk instead of on its own.
	errWithLast bool

	reads  int
	closed bool
}

func newChunkedBody(chunks ...string) *chunkedBody {
	body := chunkedBody{}

	for _, chunk := range chunks {
		body.chunks = append(body.chunks, []byte(chunk))
	}

	return &body
}

func (b *chunkedBody) Read(p []byte) (int, error) {
	if b.closed {
		return 0, errors.New("read on closed body")
	}

	b.reads += 1

	end := b.err
	if end == nil {
		end = io.EOF
	}

	if len(b.chunks) == 0 {
		return 0, end
	}

	n := copy(p, b.chunks[0])

	if n < len(b.chunks[0]) {
		b.chunks[0] = b.chunks[0][n:]
		return n, nil
	}

	b.chunks = b.chunks[1:]

	if len(b.chunks) == 0 && b.errWithLast {
		return n, end
	}

	return n, nil
}

func (b *chunkedBody) Close() error {
	b.closed = true

	return nil
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

// chunkedClient is an *http.Client answering every request with the given
// status and body.
func chunkedClient(status int, body *chunkedBody) *http.Client {
	return &http.Client{
		Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			return &http.Response{
				StatusCode: status,
				Header:     http.Header{"Content-Type": {"text/plain; charset=utf-8"}},
				Body:       body,
				Request:    r,
			}, nil
		}),
	}
}

func collect(s *Stream) ([]string, []error) {
	chunks := []string{}
	errs := []error{}

	for s.Next() {
		chunk, err := s.Chunk()

		chunks = append(chunks, chunk)
		errs = append(errs, err)
	}

	return chunks, errs
}
