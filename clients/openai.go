package clients

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	domainerrors "github.com/aura-site/api/errors"
	"github.com/aura-site/api/models"
)

const (
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"
	DefaultOpenAIModel   = "gpt-4o-mini"

	openAIRPS   = 1.0
	openAIBurst = 3

	outlineMaxTokens     = 2048
	descriptionMaxTokens = 50

	outlineSystemPrompt = "Create a simple one page site, emphasize the vibe of the user."
	describePrompt      = "Describe this image in a short, concise phrase (5-7 words max) that captures its main elements and vibe, " +
		"as well as the characters present if there are any. Make it suitable for a Google image search query. The vibe is the important part."
)

//go:embed outline_schema.json
var outlineSchema json.RawMessage

var enclosingQuotes = regexp.MustCompile(`^["'](.*)["']$`)

// OutlineComponent is one block chosen by the model.
type OutlineComponent struct {
	Type    models.BlockType `json:"type"`
	Content json.RawMessage  `json:"content"`
}

// Outline is the model's plan for a site.
type Outline struct {
	SelectedComponents []OutlineComponent `json:"selected_components"`
	Aura               string             `json:"aura"`
	GlobalVariant      models.Variant     `json:"global_variant"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type responseFormat struct {
	Type       string `json:"type"`
	JSONSchema struct {
		Name   string          `json:"name"`
		Strict bool            `json:"strict"`
		Schema json.RawMessage `json:"schema"`
	} `json:"json_schema"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature,omitempty"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// OpenAIClient asks the chat completions API for site outlines and image
// descriptions.
type OpenAIClient struct {
	base
	baseURL string
	apiKey  string
	model   string
}

// NewOpenAIClient creates a chat completions client. Empty baseURL or model
// fall back to the defaults.
func NewOpenAIClient(baseURL, apiKey, model string, logger *slog.Logger) *OpenAIClient {
	if baseURL == "" {
		baseURL = DefaultOpenAIBaseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIClient{
		base:    newBase("openai", openAIRPS, openAIBurst, logger),
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
	}
}

// Outline asks the model to pick blocks, an aura and a variant for a user with
// the given colors and tweets.
func (c *OpenAIClient) Outline(ctx context.Context, colors []string, tweets []string) (Outline, error) {
	encodedColors, err := json.Marshal(colors)
	if err != nil {
		return Outline{}, domainerrors.Wrap(err, domainerrors.CodeInternal, "encode colors")
	}

	prompt := fmt.Sprintf("You are an expert at making unique websites for users given their vibe, "+
		"consider the vibe of the user given by the colors provided: %s.\n"+
		"Here are some recent tweets from the user to help you understand their vibe to transfer to the site:\n\n%s\n"+
		"Be creative when generating text, and choose components that best represent the user's vibe.",
		encodedColors, strings.Join(tweets, "\n"))

	format := &responseFormat{Type: "json_schema"}
	format.JSONSchema.Name = "component_selection"
	format.JSONSchema.Strict = true
	format.JSONSchema.Schema = outlineSchema

	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: []contentPart{{Type: "text", Text: outlineSystemPrompt}}},
			{Role: "user", Content: prompt},
		},
		Temperature:    1,
		MaxTokens:      outlineMaxTokens,
		ResponseFormat: format,
	})
	if err != nil {
		return Outline{}, err
	}

	var outline Outline
	if err := json.Unmarshal([]byte(content), &outline); err != nil {
		return Outline{}, domainerrors.Wrap(err, domainerrors.CodeDecodeFailure, "decode outline")
	}
	return outline, nil
}

// DescribeImage returns a short search phrase for the image at url.
func (c *OpenAIClient) DescribeImage(ctx context.Context, url string) (string, error) {
	content, err := c.complete(ctx, chatRequest{
		Model: c.model,
		Messages: []chatMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: describePrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: url}},
			},
		}},
		MaxTokens: descriptionMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return StripQuotes(strings.TrimSpace(content)), nil
}

// StripQuotes removes one pair of enclosing single or double quotes.
func StripQuotes(s string) string {
	return enclosingQuotes.ReplaceAllString(s, "$1")
}

func (c *OpenAIClient) complete(ctx context.Context, chat chatRequest) (string, error) {
	payload, err := json.Marshal(chat)
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "encode chat request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeInternal, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(ctx, req, maxResponseBytes)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", domainerrors.Wrap(err, domainerrors.CodeDecodeFailure, "decode chat response")
	}
	if len(resp.Choices) == 0 {
		return "", domainerrors.New(domainerrors.CodeDecodeFailure, "chat response has no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
