package main

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	envApiUrl   = "LLM_API_URL"
	envApiKey   = "LLM_API_KEY"
	envLogLevel = "LLM_LOG_LEVEL"
)

type config struct {
	apiUrl string
	apiKey string

	data string
	file string

	stream       bool
	raw          bool
	path         string
	failOnStatus bool

	logLevel  string
	logFormat string

	help bool
}

func newFlagSet(cfg *config) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("llmstream", pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	flagSet.StringVar(&cfg.apiUrl, "url", "", "URL of the LLM API endpoint (default: $"+envApiUrl+")")
	flagSet.StringVar(&cfg.apiKey, "key", "", "API key sent as a bearer token (default: $"+envApiKey+")")
	flagSet.StringVarP(&cfg.data, "data", "d", "", "JSON payload to send")
	flagSet.StringVarP(&cfg.file, "file", "f", "", "read the JSON payload from a file, - for stdin")
	flagSet.BoolVarP(&cfg.stream, "stream", "s", false, "print the response chunk by chunk as it is received")
	flagSet.BoolVar(&cfg.raw, "raw", false, "with --stream, write chunks as-is and skip the ones that cannot be decoded")
	flagSet.StringVarP(&cfg.path, "path", "p", "", "only print this gjson path of a JSON response (e.g. choices.0.message.content)")
	flagSet.BoolVar(&cfg.failOnStatus, "fail-on-status", false, "fail if the API responds with a non-2xx status")
	flagSet.StringVar(&cfg.logLevel, "log-level", "", "log level: debug, info, warn, error (default: $"+envLogLevel+" or info)")
	flagSet.StringVar(&cfg.logFormat, "log-format", "text", "log format: text or json")
	flagSet.BoolVarP(&cfg.help, "help", "h", false, "show help")

	return flagSet
}

// parseFlags reads the command line, falling back to the environment for
// settings that were not given as flags.
func parseFlags(args []string, getenv func(string) string) (*config, *pflag.FlagSet, error) {
	cfg := config{}
	flagSet := newFlagSet(&cfg)

	if err := flagSet.Parse(args); err != nil {
		return nil, flagSet, err
	}

	if cfg.help {
		return &cfg, flagSet, nil
	}

	if rest := flagSet.Args(); len(rest) > 0 {
		return nil, flagSet, errors.Newf("unexpected argument: %s", rest[0])
	}

	cfg.apiUrl = lo.CoalesceOrEmpty(cfg.apiUrl, getenv(envApiUrl))
	cfg.apiKey = lo.CoalesceOrEmpty(cfg.apiKey, getenv(envApiKey))
	cfg.logLevel = lo.CoalesceOrEmpty(cfg.logLevel, getenv(envLogLevel), "info")

	if cfg.apiUrl == "" {
		return nil, flagSet, errors.Newf("an API url is required, use --url or set %s", envApiUrl)
	}

	if cfg.raw && !cfg.stream {
		return nil, flagSet, errors.New("--raw only makes sense with --stream")
	}

	if cfg.path != "" && cfg.stream {
		return nil, flagSet, errors.New("--path cannot be used with --stream")
	}

	return &cfg, flagSet, nil
}

// loadPayload returns the JSON payload given with --data or --file.
func loadPayload(cfg *config, stdin io.Reader) (json.RawMessage, error) {
	var (
		payload []byte
		err     error
	)

	switch {
	case cfg.data != "" && cfg.file != "":
		return nil, errors.New("--data and --file are mutually exclusive")

	case cfg.data != "":
		payload = []byte(cfg.data)

	case cfg.file == "-":
		payload, err = io.ReadAll(stdin)
		if err != nil {
			return nil, errors.Wrap(err, "could not read payload from stdin")
		}

	case cfg.file != "":
		payload, err = os.ReadFile(cfg.file)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read payload from %s", cfg.file)
		}

	default:
		return nil, errors.New("a payload is required, use --data or --file")
	}

	if !json.Valid(payload) {
		return nil, errors.New("payload is not valid JSON")
	}

	return json.RawMessage(payload), nil
}

// newLogger builds the logger used by the client, writing to w so stdout is
// kept for the response.
func newLogger(level, format string, w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info' instead", level)
		lvl = logrus.InfoLevel
	}

	logger.SetLevel(lvl)

	switch strings.ToLower(format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return logger
}
