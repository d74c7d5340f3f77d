package llmclient

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptions(t *testing.T) {
	httpClient := &http.Client{}
	logger, _ := test.NewNullLogger()

	client, err := New(testApiUrl)

	assert.Nil(t, err)
	assert.Equal(t, testApiUrl, client.ApiUrl())
	assert.NotNil(t, client.HttpClient())
	assert.Nil(t, client.apiKey)
	assert.Equal(t, logrus.StandardLogger(), client.logger)
	assert.Equal(t, defaultChunkSize, client.chunkSize)
	assert.False(t, client.checkStatus)

	client, err = New(testApiUrl, WithApiKey("apikey"))

	assert.Nil(t, err)
	assert.Equal(t, "apikey", *client.apiKey)

	client, err = New(testApiUrl, WithHttpClient(httpClient), WithLogger(logger))

	assert.Nil(t, err)
	assert.Equal(t, httpClient, client.HttpClient())
	assert.Equal(t, logger, client.logger)

	client, _ = New(testApiUrl, WithHttpClient(nil))

	assert.NotNil(t, client.HttpClient())

	client, _ = New(testApiUrl, WithChunkSize(0))

	assert.Equal(t, defaultChunkSize, client.chunkSize)

	client, _ = New(testApiUrl, WithChunkSize(16), WithStatusCheck())

	assert.Equal(t, 16, client.chunkSize)
	assert.True(t, client.checkStatus)
}

func TestDefaultTransportSendsNoExtraHeaders(t *testing.T) {
	var header http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Clone()
		w.Header().Set("Content-Encoding", "gzip")
		_, _ = w.Write([]byte("not gzip"))
	}))
	defer server.Close()

	client, err := New(server.URL, WithApiKey("apikey"))
	require.NoError(t, err)

	resp, err := client.RequestText(t.Context(), map[string]string{})

	require.NoError(t, err)
	assert.Equal(t, "not gzip", resp.Body)
	assert.Equal(t, "application/json", header.Get("Content-Type"))
	assert.Equal(t, []string{"Bearer apikey"}, header.Values("Authorization"))
	assert.NotContains(t, header, "Accept-Encoding")
	assert.NotContains(t, header, "User-Agent")
	assert.ElementsMatch(t, []string{"Authorization", "Content-Length", "Content-Type"}, lo.Keys(map[string][]string(header)))
}

func TestNewInvalidUrl(t *testing.T) {
	client, err := New("")

	assert.ErrorContains(t, err, "invalid API url")
	assert.Nil(t, client)

	client, err = New("localhost:8080/v1/chat/completions")

	assert.NotNil(t, err)
	assert.Nil(t, client)

	client, err = New("ftp://localhost/v1/chat/completions")

	assert.ErrorContains(t, err, "unsupported scheme 'ftp'")
	assert.Nil(t, client)
}
