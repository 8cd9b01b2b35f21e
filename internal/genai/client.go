package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"wordduel/internal/models"
)

var httpClient = &http.Client{Timeout: 30 * time.Second}

// ErrNotConfigured means no usable API key is present. Running without
// credentials is supported: the card generator falls back locally.
var ErrNotConfigured = errors.New("genai: api key not configured")

// PlaceholderAPIKey is the shipped default credential. It disables remote
// generation rather than producing authentication errors.
const PlaceholderAPIKey = "your-api-key"

// Config holds text service configuration.
type Config struct {
	BaseURL string // OpenAI-compatible API base, e.g. https://api.openai.com/v1
	APIKey  string
	Model   string
	// HTTPClient overrides the package default, mainly for tests.
	HTTPClient *http.Client
}

type Client struct {
	config Config
}

func NewClient(cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = httpClient
	}
	return &Client{config: cfg}
}

// Enabled reports whether remote generation can be attempted at all.
func (c *Client) Enabled() bool {
	key := strings.TrimSpace(c.config.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// Chat-completions request/response shapes (only the fields we read).
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

const systemPrompt = `You invent collectible battle cards for a word duel game.
Reply with a single JSON object and nothing else. Fields:
word, name, attribute, role ("attack" or "support"), type, cardType,
supportType, supportMessage, effectName, specialEffect, targetStat
("health", "stamina" or "magic"), logic {target, actionType, value, duration},
baseValue (number 1-100, or up to 999 for legendary words), finalValue (number),
hitRate (0-100), cost (number), duration (turns, 0 = instant).
Attack cards damage the opponent. Support cards heal, buff or enchant the player.`

// GenerateCard asks the text service to invent a card for a word and role.
// The result is untrusted free-form data; callers must normalize it.
func (c *Client) GenerateCard(ctx context.Context, word, role string) (*models.RawCard, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	user := fmt.Sprintf("Create a %s card for the word %q.", role, word)
	body, err := json.Marshal(chatRequest{
		Model: c.config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: user},
		},
		Temperature: 0.9,
	})
	if err != nil {
		return nil, err
	}
	url := strings.TrimRight(c.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("genai: api status %d", resp.StatusCode)
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if len(out.Choices) == 0 {
		return nil, errors.New("genai: empty completion")
	}
	payload := extractJSONObject(out.Choices[0].Message.Content)
	if payload == "" {
		return nil, errors.New("genai: no JSON object in completion")
	}
	var raw models.RawCard
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("genai: decode card: %w", err)
	}
	return &raw, nil
}

// extractJSONObject pulls the first top-level {...} block from text,
// removing common code fences like ```json ... ```.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		if i := strings.IndexByte(s, '\n'); i >= 0 {
			s = s[i+1:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
	}
	start := strings.IndexByte(s, '{')
	if start < 0 {
		return ""
	}
	end := strings.LastIndexByte(s, '}')
	if end <= start {
		return ""
	}
	return strings.TrimSpace(s[start : end+1])
}
