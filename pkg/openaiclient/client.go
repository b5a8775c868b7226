/**
 * @description
 * This package provides a client for the OpenAI chat-completions API. It
 * encapsulates the single call this service makes: a completion request with
 * one mandatory tool whose schema forces the model to return a structured
 * array of ad copies instead of free text.
 *
 * Key features:
 * - Manages the API base URL, secret key, model and temperature.
 * - Forces the generateAdCopies tool call via tool_choice.
 * - Parses the tool-call argument payload into the domain result type.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - The service's internal domain package for the generation result model.
 */
package openaiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/umaremlyn/Adstreamai/internal/domain"
)

// ErrBadResponse is returned when the provider answered but not with the
// structured tool call this client demands. The caller must never fall back
// to parsing free text.
var ErrBadResponse = errors.New("bad response from OpenAI")

const (
	toolName = "generateAdCopies"

	systemPrompt = `You are an expert marketing copywriter. Generate compelling ad copies based on the product details provided.
Each campaign should include:
- A catchy headline
- Engaging body text
- A strong call-to-action
- 3 variations for A/B testing`
)

// adCopiesSchema is the JSON Schema for the forced tool call: an array of
// {headline, body, cta, variations[]} objects under the adCopies key.
var adCopiesSchema = json.RawMessage(`{
  "type": "object",
  "properties": {
    "adCopies": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "headline": {"type": "string"},
          "body": {"type": "string"},
          "cta": {"type": "string"},
          "variations": {"type": "array", "items": {"type": "string"}}
        }
      }
    }
  }
}`)

// Client is a client for the OpenAI chat-completions API.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
}

// NewClient creates a new OpenAI client. The API key is validated by the
// configuration layer before this constructor runs.
func NewClient(baseURL, apiKey, model string, temperature float64) *Client {
	return &Client{
		baseURL:     baseURL,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		httpClient: &http.Client{
			// No client-level timeout; the caller bounds each request
			// through its context.
		},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolFunction struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type chatTool struct {
	Type     string       `json:"type"`
	Function toolFunction `json:"function"`
}

type toolChoiceFunction struct {
	Name string `json:"name"`
}

type toolChoice struct {
	Type     string             `json:"type"`
	Function toolChoiceFunction `json:"function"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Tools       []chatTool    `json:"tools"`
	ToolChoice  toolChoice    `json:"tool_choice"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			ToolCalls []struct {
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
	} `json:"choices"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// GenerateAdCopies asks the completion provider for structured ad copies for
// the given product. One attempt, no retries.
func (c *Client) GenerateAdCopies(ctx context.Context, productName, targetAudience, tone string) (*domain.GeneratedAdCopies, error) {
	reqBody := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{
				Role: "user",
				Content: fmt.Sprintf(
					"Create marketing content for:\nProduct: %s\nTarget Audience: %s\nTone: %s",
					productName, targetAudience, tone,
				),
			},
		},
		Tools: []chatTool{
			{
				Type: "function",
				Function: toolFunction{
					Name:        toolName,
					Description: "Generates marketing ad copies",
					Parameters:  adCopiesSchema,
				},
			},
		},
		ToolChoice: toolChoice{
			Type:     "function",
			Function: toolChoiceFunction{Name: toolName},
		},
		Temperature: c.temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/chat/completions", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr apiError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("openai API error: status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("openai API error: status %d", resp.StatusCode)
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, fmt.Errorf("%w: undecodable completion body", ErrBadResponse)
	}

	args := firstToolCallArguments(completion)
	if args == "" {
		return nil, fmt.Errorf("%w: no %s tool call in completion", ErrBadResponse, toolName)
	}

	var result domain.GeneratedAdCopies
	if err := json.Unmarshal([]byte(args), &result); err != nil {
		return nil, fmt.Errorf("%w: malformed tool call arguments", ErrBadResponse)
	}
	if result.AdCopies == nil {
		return nil, fmt.Errorf("%w: missing adCopies array", ErrBadResponse)
	}
	return &result, nil
}

func firstToolCallArguments(completion chatResponse) string {
	if len(completion.Choices) == 0 {
		return ""
	}
	for _, call := range completion.Choices[0].Message.ToolCalls {
		if call.Function.Name == toolName {
			return call.Function.Arguments
		}
	}
	return ""
}
