// Package openai provides an LLMClient implementation using OpenAI.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/ersonp/lore-timeline/internal/domain/ports"
	"github.com/ersonp/lore-timeline/internal/infrastructure/config"
)

const extractionPrompt = `You extract dated events from the prose of a fictional world.

For each event, identify:
- title: a short name for the event
- description: one or two sentences on what happened
- date: when it happened, written in the world's calendar
- characters: names of the characters involved (optional)

Write dates as "<ERA> <year>-<month>-<day>" with month and day optional,
for example "SE 300-04-02" or "SE 300". Prefix uncertain dates with "~",
for example "~BE 12". Write spans as "<start>..<end>", for example
"BE 10..BE 20". Leave date empty when the text gives no clue.
%s
Return ONLY a valid JSON object of the form {"events": [...]}, no other text.

Example:
Input: "In SE 300 the old king died, and Queen Mara was crowned a year later."
Output: {"events": [
  {"title": "Death of the old king", "description": "The old king dies.", "date": "SE 300"},
  {"title": "Crowning of Mara", "description": "Mara is crowned queen.", "date": "SE 301", "characters": ["Mara"]}
]}`

// Client implements the LLMClient interface using OpenAI.
type Client struct {
	client *openai.Client
	model  string
}

// NewClient creates a new OpenAI LLM client.
func NewClient(cfg config.LLMConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("OpenAI API key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := "gpt-4o-mini"
	if cfg.Model != "" {
		model = cfg.Model
	}

	return &Client{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

// ExtractEvents extracts dated events from the given text.
func (c *Client) ExtractEvents(ctx context.Context, text string, eras []string) ([]ports.ExtractedEvent, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt(eras),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("calling OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, errors.New("no response from OpenAI")
	}

	return parseEvents(resp.Choices[0].Message.Content)
}

// systemPrompt builds the extraction prompt with the timeline's eras.
func systemPrompt(eras []string) string {
	if len(eras) == 0 {
		return fmt.Sprintf(extractionPrompt, "")
	}
	hint := fmt.Sprintf("\nThe eras of this calendar, oldest first, are: %s.\nUse only these era names.\n", strings.Join(eras, ", "))
	return fmt.Sprintf(extractionPrompt, hint)
}

// rawEvent is the JSON structure for extracted events.
type rawEvent struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Date        any      `json:"date"`
	Characters  []string `json:"characters,omitempty"`
}

// parseEvents decodes a model response. Both {"events": [...]} and a bare
// array are accepted.
func parseEvents(content string) ([]ports.ExtractedEvent, error) {
	content = cleanJSONResponse(content)

	var rawEvents []rawEvent
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &rawEvents); err != nil {
			return nil, fmt.Errorf("parsing events JSON: %w (response: %s)", err, content)
		}
	} else {
		var envelope struct {
			Events []rawEvent `json:"events"`
		}
		if err := json.Unmarshal([]byte(content), &envelope); err != nil {
			return nil, fmt.Errorf("parsing events JSON: %w (response: %s)", err, content)
		}
		rawEvents = envelope.Events
	}

	events := make([]ports.ExtractedEvent, 0, len(rawEvents))
	for _, re := range rawEvents {
		title := strings.TrimSpace(re.Title)
		if title == "" {
			continue
		}
		events = append(events, ports.ExtractedEvent{
			Title:       title,
			Description: strings.TrimSpace(re.Description),
			Date:        dateToString(re.Date),
			Characters:  re.Characters,
		})
	}

	return events, nil
}

// dateToString converts the date field to string (models sometimes answer
// with a bare year).
func dateToString(date any) string {
	switch v := date.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		if v == float64(int(v)) {
			return strconv.Itoa(int(v))
		}
		return strconv.FormatFloat(v, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// cleanJSONResponse removes markdown code blocks if present.
func cleanJSONResponse(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimSuffix(content, "```")
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
	}

	return strings.TrimSpace(content)
}
