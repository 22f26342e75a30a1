package translate

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// CohereTranslator implements Provider with the Cohere chat API. The system
// preamble is fixed per instance; the segment text is the user message.
type CohereTranslator struct {
	client   *cohereclient.Client
	model    string
	preamble string
}

func NewCohereTranslator(apiKey, model, sourceLang, targetLang string) *CohereTranslator {
	// Force HTTP/1.1; the Cohere endpoint intermittently resets HTTP/2
	// streams under concurrent requests.
	httpClient := &http.Client{
		Timeout: 60 * time.Second,
		Transport: &http.Transport{
			TLSNextProto:      make(map[string]func(authority string, c *tls.Conn) http.RoundTripper),
			ForceAttemptHTTP2: false,
		},
	}

	client := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(httpClient),
	)

	return &CohereTranslator{
		client: client,
		model:  model,
		preamble: fmt.Sprintf(
			"Translate the following %s text into %s. Keep it concise and accurate.",
			sourceLang, targetLang,
		),
	}
}

func (c *CohereTranslator) Translate(ctx context.Context, text string) (string, error) {
	resp, err := c.client.Chat(ctx, &cohere.ChatRequest{
		Message:  text,
		Model:    &c.model,
		Preamble: &c.preamble,
	})
	if err != nil {
		return "", fmt.Errorf("cohere chat: %w", err)
	}
	if resp == nil {
		return "", errors.New("cohere chat returned empty response")
	}

	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return "", errors.New("cohere chat returned empty translation")
	}
	return out, nil
}
