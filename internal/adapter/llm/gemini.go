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

	"github.com/liuq93/gochat/internal/domain"
)

const (
	geminiVendor         = "Gemini"
	geminiDefaultBaseURL = "https://generativelanguage.googleapis.com"
	geminiDefaultModel   = "gemini-2.5-flash-lite"
)

// GeminiClient talks to the Gemini generateContent endpoint.
type GeminiClient struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewGeminiClient creates a new Gemini client. The model is configurable;
// an empty model falls back to the default. An empty apiKey is allowed at
// construction; every call then fails with an authentication error.
func NewGeminiClient(baseURL, apiKey, model string, timeout time.Duration) *GeminiClient {
	if baseURL == "" {
		baseURL = geminiDefaultBaseURL
	}
	if model == "" {
		model = geminiDefaultModel
	}
	return &GeminiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// geminiPart is a single text part of a content entry.
type geminiPart struct {
	Text string `json:"text"`
}

// geminiContent is one entry of the contents list. Gemini only knows the
// roles "user" and "model".
type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

// generateContentRequest is the Gemini request body.
type generateContentRequest struct {
	Contents []geminiContent `json:"contents"`
}

// generateContentResponse is the subset of the response body we extract.
type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Complete sends the message list to Gemini and returns the reply text.
// System-role messages are filtered out and assistant messages are remapped
// to Gemini's "model" role.
func (c *GeminiClient) Complete(ctx context.Context, messages []PromptMessage) (string, error) {
	if c.apiKey == "" {
		return "", Errorf(KindAuthentication, "Gemini API key is not configured")
	}

	body, err := json.Marshal(generateContentRequest{
		Contents: toGeminiContents(messages),
	})
	if err != nil {
		return "", Errorf(KindProvider, "Gemini error: %v", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", Errorf(KindProvider, "Gemini error: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", Errorf(KindProvider, "Gemini error: %v", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", Errorf(KindProvider, "Gemini error: %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusNotFound {
			return "", Errorf(KindNotFound, "Gemini model not found: %s", c.model)
		}
		return "", translateHTTP(geminiVendor, resp.StatusCode, errorDetail(respBody, resp.StatusCode))
	}

	var result generateContentResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", Errorf(KindMalformedResponse, "invalid response from Gemini API")
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", Errorf(KindMalformedResponse, "invalid response from Gemini API")
	}

	return result.Candidates[0].Content.Parts[0].Text, nil
}

// toGeminiContents converts the prompt list to Gemini's wire shape:
// system entries dropped, assistant mapped to "model", every message
// wrapped as a single text part.
func toGeminiContents(messages []PromptMessage) []geminiContent {
	contents := make([]geminiContent, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			continue
		}
		role := "user"
		if msg.Role == domain.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{
			Role:  role,
			Parts: []geminiPart{{Text: msg.Content}},
		})
	}
	return contents
}
