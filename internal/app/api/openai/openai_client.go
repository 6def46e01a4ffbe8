package openai

import (
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// NewClient builds a go-openai client. An empty baseURL keeps the public API
// endpoint; anything else targets an OpenAI-compatible server.
func NewClient(apiKey, baseURL string, httpClient *http.Client) *openai.Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		clientConfig.HTTPClient = httpClient
	}
	return openai.NewClientWithConfig(clientConfig)
}
