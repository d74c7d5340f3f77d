package llmclient

import (
	"io"
	"iter"

	"github.com/checkmarble/llmclient/internal"
	"github.com/cockroachdb/errors"
)

// Stream is a lazy, forward-only sequence of text chunks read from a response
// body.
//
// Each element is either one chunk decoded as UTF-8, or an error. A chunk that
// is not valid UTF-8 (for example because a codepoint was split across two
// chunks) yields an error matching ErrInvalidUtf8 and the sequence goes on. A
// failure to read from the connection yields a last error element and ends
// the sequence.
//
// An element holds whatever a single read of the body returned. net/http
// merges transport chunks that are already buffered into one read, so a
// transport chunk only maps to its own element while the consumer keeps up
// with the server. Merged chunks may also decode cleanly where the same chunks
// pulled one at a time would not.
//
// Chunks are never reassembled otherwise. A Stream is meant to be consumed by
// a single goroutine.
//
// Example usage:
//
//	for stream.Next() {
//		text, err := stream.Chunk()
//		...
//	}
type Stream struct {
	body io.ReadCloser
	buf  []byte

	current    string
	currentErr error

	// pending is an error returned by the body together with some data, that
	// will end the sequence on the next call to Next().
	pending error
	done    bool
	closed  bool
}

func newStream(body io.ReadCloser, chunkSize int) *Stream {
	return &Stream{
		body: body,
		buf:  make([]byte, chunkSize),
	}
}

// Next pulls the next element from the connection, blocking until one is
// available. It returns false once the sequence is exhausted, in which case the
// body was already closed.
func (s *Stream) Next() bool {
	if s.done {
		return false
	}

	if s.pending != nil {
		err := s.pending
		s.pending = nil

		return s.finish(err)
	}

	for {
		n, err := s.body.Read(s.buf)

		if n > 0 {
			s.current, s.currentErr = internal.DecodeUtf8(s.buf[:n])
			if s.currentErr != nil {
				s.currentErr = errors.Wrap(s.currentErr, "could not decode response chunk")
			}

			s.pending = err

			return true
		}

		if err != nil {
			return s.finish(err)
		}
	}
}

// Chunk returns the element Next() advanced to.
func (s *Stream) Chunk() (string, error) {
	return s.current, s.currentErr
}

// All returns an iterator over the remaining elements of the stream. The
// stream is closed when the iteration ends, even through a `break`.
func (s *Stream) All() iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		defer s.Close()

		for s.Next() {
			if !yield(s.Chunk()) {
				return
			}
		}
	}
}

// Close releases the underlying connection. The remaining chunks, if any, are
// not read. It is safe to call Close more than once.
func (s *Stream) Close() error {
	s.done = true

	if s.closed {
		return nil
	}

	s.closed = true

	return s.body.Close()
}

// finish ends the sequence. Reaching the end of the body is not an error, any
// other read error is turned into a last element.
func (s *Stream) finish(err error) bool {
	_ = s.Close()

	s.current = ""
	s.currentErr = nil

	if errors.Is(err, io.EOF) {
		return false
	}

	s.currentErr = errors.Wrap(err, "could not read response chunk")

	return true
}
