// Package extract turns free text into structured records with an LLM,
// tolerating the partially-JSON answers models actually return.
package extract

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Extractor is the LLM-backed capability the web-search source and the
// plan summarizer consume.
type Extractor interface {
	ExtractStructured(ctx context.Context, text, schemaHint string) (map[string]any, error)
	Summarize(ctx context.Context, system, prompt string) (string, error)
}

type OpenAIExtractor struct {
	client *openai.Client
	model  string
}

func NewOpenAIExtractor(apiKey, model string) *OpenAIExtractor {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIExtractor{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// ExtractStructured prompts the model to emit JSON matching schemaHint
// and recovers the first well-formed JSON value from whatever comes
// back. A bare array is wrapped under "items".
func (e *OpenAIExtractor) ExtractStructured(ctx context.Context, text, schemaHint string) (map[string]any, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You extract structured travel data from web content. Reply with JSON only, matching the requested schema. Never invent details that are not in the content.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: schemaHint + "\n\nCONTENT:\n" + text,
			},
		},
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	if err != nil {
		return nil, fmt.Errorf("llm extraction: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm extraction: empty response")
	}

	return DecodeLoose(resp.Choices[0].Message.Content)
}

// DecodeLoose parses the first JSON value found in s into a map.
func DecodeLoose(s string) (map[string]any, error) {
	raw, ok := FirstJSON(s)
	if !ok {
		return nil, fmt.Errorf("no JSON found in response")
	}

	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err == nil {
		return obj, nil
	}

	var arr []any
	if err := json.Unmarshal([]byte(raw), &arr); err == nil {
		return map[string]any{"items": arr}, nil
	}

	return nil, fmt.Errorf("malformed JSON in response")
}

func (e *OpenAIExtractor) Summarize(ctx context.Context, system, prompt string) (string, error) {
	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.7,
		MaxTokens:   400,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
