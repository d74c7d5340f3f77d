// Command llmstream sends a JSON payload to an LLM API endpoint and prints the
// response, either in one piece or chunk by chunk as it is streamed back.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/checkmarble/llmclient"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := run(ctx, os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr)

	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, flagSet, err := parseFlags(args, getenv)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printHelp(flagSet, stderr)
			return nil
		}

		return err
	}

	if cfg.help {
		printHelp(flagSet, stderr)
		return nil
	}

	logger := newLogger(cfg.logLevel, cfg.logFormat, stderr)

	payload, err := loadPayload(cfg, stdin)
	if err != nil {
		return err
	}

	opts := []llmclient.Option{llmclient.WithLogger(logger)}

	if cfg.apiKey != "" {
		opts = append(opts, llmclient.WithApiKey(cfg.apiKey))
	}
	if cfg.failOnStatus {
		opts = append(opts, llmclient.WithStatusCheck())
	}

	client, err := llmclient.New(cfg.apiUrl, opts...)
	if err != nil {
		return err
	}

	switch {
	case cfg.stream && cfg.raw:
		return streamRaw(ctx, client, payload, stdout, logger)

	case cfg.stream:
		return client.Print(ctx, payload, stdout)

	default:
		return printText(ctx, client, payload, cfg.path, stdout, logger)
	}
}

func printText(ctx context.Context, client *llmclient.ApiClient, payload any, path string, w io.Writer, logger logrus.FieldLogger) error {
	resp, err := client.RequestText(ctx, payload)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WithField("status", resp.StatusCode).Warn("API responded with an error status")
	}

	if path == "" {
		_, err := fmt.Fprintln(w, resp.Body)
		return err
	}

	result := resp.Get(path)
	if !result.Exists() {
		return errors.Newf("path '%s' not found in response", path)
	}

	_, err = fmt.Fprintln(w, result.String())

	return err
}

// streamRaw writes chunks as they come, skipping over chunks that are not valid
// UTF-8 instead of giving up like (*ApiClient).Print.
func streamRaw(ctx context.Context, client *llmclient.ApiClient, payload any, w io.Writer, logger logrus.FieldLogger) error {
	resp, err := client.RequestStream(ctx, payload)
	if err != nil {
		return err
	}

	skipped := 0

	for chunk, err := range resp.All() {
		if errors.Is(err, llmclient.ErrInvalidUtf8) {
			logger.WithError(err).Warn("skipping chunk")
			skipped += 1

			continue
		}
		if err != nil {
			return err
		}

		if _, err := io.WriteString(w, chunk); err != nil {
			return errors.Wrap(err, "could not write chunk")
		}
	}

	if skipped > 0 {
		logger.WithField("skipped", skipped).Warn("some chunks could not be decoded")
	}

	return nil
}

func printHelp(flagSet *pflag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `llmstream sends a JSON payload to an LLM API endpoint with a POST request.

The response body is printed as a whole, or with --stream, chunk by chunk as
it is received. Settings missing from the command line are read from the
environment, or from a .env file in the current directory.

Usage:
  llmstream --url URL (--data JSON | --file PATH) [flags]

Flags:
%s`, flagSet.FlagUsages())
}
