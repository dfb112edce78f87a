package translator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/SparklingP1/property.com.ve/helpers"
	"github.com/SparklingP1/property.com.ve/logger"
)

const systemPrompt = "You are a professional real estate copywriter specializing in " +
	"translating Venezuelan property listings for English-speaking international buyers. " +
	"Translate and lightly rewrite to sound natural and appealing while maintaining accuracy."

// Request carries the Spanish text of one listing.
type Request struct {
	Title            string
	DescriptionShort string
	DescriptionFull  string
}

// Result carries the English text. When translation fails, the result
// falls back to the Spanish originals and Model is left empty so the
// record is retried on the next content change.
type Result struct {
	TitleEN            string
	DescriptionShortEN string
	DescriptionFullEN  string
	Model              string
}

// Client translates listings through a chat-completions style API.
type Client struct {
	apiURL string
	apiKey string
	model  string
	client *http.Client
	retry  helpers.RetryConfig
}

// NewClient creates a translator client.
func NewClient(apiURL, apiKey, model string) *Client {
	return &Client{
		apiURL: apiURL,
		apiKey: apiKey,
		model:  model,
		client: &http.Client{Timeout: 60 * time.Second},
		retry:  helpers.DefaultRetry(),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// TranslateListing translates one listing's text fields. It never
// returns an error: after retries are exhausted the Spanish text is
// carried through unchanged as a same-language fallback.
func (c *Client) TranslateListing(ctx context.Context, req Request) Result {
	log := logger.ForTranslator()

	fallback := Result{
		TitleEN:            req.Title,
		DescriptionShortEN: req.DescriptionShort,
		DescriptionFullEN:  req.DescriptionFull,
	}
	if req.Title == "" {
		return fallback
	}

	var content string
	err := c.retry.Do("translate "+truncateForLog(req.Title), func() error {
		var callErr error
		content, callErr = c.callOnce(ctx, req)
		return callErr
	})
	if err != nil {
		logger.LogError("translator", err, "Translation failed, keeping Spanish text")
		return fallback
	}

	parsed := ParseResponse(content)
	result := Result{
		TitleEN:            parsed.TitleEN,
		DescriptionShortEN: parsed.DescriptionShortEN,
		DescriptionFullEN:  parsed.DescriptionFullEN,
		Model:              c.model,
	}
	if result.TitleEN == "" {
		result.TitleEN = req.Title
	}
	if result.DescriptionShortEN == "" {
		result.DescriptionShortEN = req.DescriptionShort
	}
	if result.DescriptionFullEN == "" {
		result.DescriptionFullEN = req.DescriptionFull
	}

	log.Debug().Str("title", truncateForLog(req.Title)).Msg("Translated listing")
	return result
}

func (c *Client) callOnce(ctx context.Context, req Request) (string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildPrompt(req)},
		},
		Temperature: 0.3,
		MaxTokens:   1000,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translation service status %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error.Message != "" {
		return "", fmt.Errorf("translation service error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("translation response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

func buildPrompt(req Request) string {
	descShort := req.DescriptionShort
	if descShort == "" {
		descShort = "N/A"
	}
	descFull := req.DescriptionFull
	if descFull == "" {
		descFull = "N/A"
	}

	return fmt.Sprintf(`Translate this Venezuelan property listing to English. Make it sound natural and appealing for international buyers.

**TITLE (Spanish):**
%s

**SHORT DESCRIPTION (Spanish):**
%s

**FULL DESCRIPTION (Spanish):**
%s

**INSTRUCTIONS:**
1. Translate the title to clear, descriptive English (e.g., "3-Bedroom Apartment in Caracas")
2. Translate the short description (keep under 200 characters)
3. Translate the full description, rewriting slightly to sound natural in English
4. Keep location names as proper nouns (Caracas, Distrito Metropolitano, etc.)
5. Convert measurements if needed (already in m²)
6. Use US real estate terminology where appropriate
7. Maintain all factual information accurately

**OUTPUT FORMAT (return exactly this structure):**
TITLE_EN: [translated title]
DESC_SHORT_EN: [translated short description]
DESC_FULL_EN: [translated full description]`, req.Title, descShort, descFull)
}

// ParseResponse splits the structured translation reply into its
// fields. Content after a marker accumulates until the next marker, so
// multi-line descriptions survive intact.
func ParseResponse(response string) Result {
	var result Result

	markers := []struct {
		prefix string
		target *string
	}{
		{"TITLE_EN:", &result.TitleEN},
		{"DESC_SHORT_EN:", &result.DescriptionShortEN},
		{"DESC_FULL_EN:", &result.DescriptionFullEN},
	}

	var current *string
	var buf []string
	flush := func() {
		if current != nil {
			*current = strings.TrimSpace(strings.Join(buf, "\n"))
		}
		buf = nil
	}

	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		matched := false
		for _, m := range markers {
			if strings.HasPrefix(line, m.prefix) {
				flush()
				current = m.target
				buf = []string{strings.TrimSpace(strings.TrimPrefix(line, m.prefix))}
				matched = true
				break
			}
		}
		if !matched && current != nil {
			buf = append(buf, line)
		}
	}
	flush()

	return result
}

func truncateForLog(s string) string {
	if len(s) > 50 {
		return s[:50]
	}
	return s
}
