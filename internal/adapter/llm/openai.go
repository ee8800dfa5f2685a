package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	openAIVendor         = "OpenAI"
	openAIDefaultBaseURL = "https://api.openai.com"
	openAIModel          = "gpt-3.5-turbo"

	openAITemperature = 0.7
	openAIMaxTokens   = 1000
)

// OpenAIClient talks to the OpenAI chat-completions endpoint.
type OpenAIClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewOpenAIClient creates a new OpenAI client. An empty apiKey is allowed at
// construction; every call then fails with an authentication error.
func NewOpenAIClient(baseURL, apiKey string, timeout time.Duration) *OpenAIClient {
	if baseURL == "" {
		baseURL = openAIDefaultBaseURL
	}
	return &OpenAIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// chatCompletionRequest is the OpenAI chat completion request body.
type chatCompletionRequest struct {
	Model       string          `json:"model"`
	Messages    []PromptMessage `json:"messages"`
	Temperature float64         `json:"temperature"`
	MaxTokens   int             `json:"max_tokens"`
}

// chatCompletionResponse is the subset of the response body we extract.
type chatCompletionResponse struct {
	Choices []struct {
		Message *struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// vendorError is the common {"error": {...}} error body shape.
type vendorError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the message list to OpenAI and returns the reply text.
func (c *OpenAIClient) Complete(ctx context.Context, messages []PromptMessage) (string, error) {
	if c.apiKey == "" {
		return "", Errorf(KindAuthentication, "OpenAI API key is not configured")
	}

	body, err := json.Marshal(chatCompletionRequest{
		Model:       openAIModel,
		Messages:    messages,
		Temperature: openAITemperature,
		MaxTokens:   openAIMaxTokens,
	})
	if err != nil {
		return "", Errorf(KindProvider, "OpenAI error: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", Errorf(KindProvider, "OpenAI error: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", Errorf(KindProvider, "OpenAI error: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Errorf(KindProvider, "OpenAI error: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", translateHTTP(openAIVendor, resp.StatusCode, errorDetail(respBody, resp.StatusCode))
	}

	var result chatCompletionResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", Errorf(KindMalformedResponse, "invalid response from OpenAI API")
	}
	if len(result.Choices) == 0 || result.Choices[0].Message == nil {
		return "", Errorf(KindMalformedResponse, "invalid response from OpenAI API")
	}

	return result.Choices[0].Message.Content, nil
}

// errorDetail pulls the vendor message out of an error body, falling back
// to the raw body when it does not parse.
func errorDetail(body []byte, status int) string {
	var ve vendorError
	if err := json.Unmarshal(body, &ve); err == nil && ve.Error != nil && ve.Error.Message != "" {
		return ve.Error.Message
	}
	if len(body) > 0 {
		return string(body)
	}
	return fmt.Sprintf("HTTP %d", status)
}
