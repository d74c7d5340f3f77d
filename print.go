package llmclient

import (
	"context"
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
)

// StreamPrint sends a streaming request to apiUrl and writes every received
// chunk to w, as `Received chunk: <text>`.
//
// It builds a one-off client from the given options, see (*ApiClient).Print.
func StreamPrint(ctx context.Context, apiUrl string, payload any, w io.Writer, opts ...Option) error {
	client, err := New(apiUrl, opts...)
	if err != nil {
		return err
	}

	return client.Print(ctx, payload, w)
}

// Print sends a streaming request and writes every received chunk to w.
//
// Unlike a Stream consumed directly, Print gives up on the first error element,
// be it a chunk that is not valid UTF-8 or a failed read. The error is logged,
// the rest of the body is discarded without being read and the error is
// returned.
func (c *ApiClient) Print(ctx context.Context, payload any, w io.Writer) error {
	resp, err := c.RequestStream(ctx, payload)
	if err != nil {
		return err
	}

	defer resp.Close()

	for resp.Next() {
		chunk, err := resp.Chunk()
		if err != nil {
			c.logger.WithError(err).Error("Error while streaming")

			return errors.Wrap(err, "streaming was interrupted")
		}

		if _, err := fmt.Fprintf(w, "Received chunk: %s\n", chunk); err != nil {
			return errors.Wrap(err, "could not write chunk")
		}
	}

	return nil
}
