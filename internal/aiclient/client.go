// Package aiclient talks to the Gemini generative model on behalf of the
// OCR and structuring collaborators.
package aiclient

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"fjacquet/tering/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("model returned no text")

// Generator produces text from prompt parts. History, when given, is sent
// as prior conversation turns (few-shot examples).
type Generator interface {
	Generate(ctx context.Context, history []*genai.Content, parts ...genai.Part) (string, error)
}

// GeminiClient implements Generator on the Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger logging.Logger
}

// NewGeminiClient connects to the Gemini API with apiKey and uses model for
// every request.
func NewGeminiClient(ctx context.Context, apiKey, model string, logger logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, errors.New("GEMINI_API_KEY is not set")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

// Generate sends parts, after history if any, and returns the response text.
// A blocked prompt is reported as an unrecoverable error.
func (c *GeminiClient) Generate(ctx context.Context, history []*genai.Content, parts ...genai.Part) (string, error) {
	model := c.client.GenerativeModel(c.model)

	var resp *genai.GenerateContentResponse
	var err error
	if len(history) > 0 {
		session := model.StartChat()
		session.History = chatHistory(history)
		resp, err = session.SendMessage(ctx, parts...)
	} else {
		resp, err = model.GenerateContent(ctx, parts...)
	}
	if err != nil {
		var blocked *genai.BlockedError
		if errors.As(err, &blocked) {
			return "", Permanent(fmt.Errorf("prompt blocked: %w", err))
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := ResponseText(resp)
	if text == "" {
		return "", ErrEmptyResponse
	}
	c.logger.Debug("Gemini response received",
		logging.F("model", c.model),
		logging.F("chars", len(text)))
	return text, nil
}

// chatHistory copies history for one session. SendMessage appends to
// session.History, so callers sharing a history must not share its array.
func chatHistory(history []*genai.Content) []*genai.Content {
	return slices.Clone(history)
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

// ResponseText concatenates the text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}

// StripFences removes a surrounding Markdown code fence (```json,
// ```markdown or a bare ```) from model output.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if nl := strings.IndexByte(text, '\n'); nl >= 0 && !strings.ContainsAny(text[:nl], " {[\"") {
		// language tag on the opening fence
		text = text[nl+1:]
	}
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}
