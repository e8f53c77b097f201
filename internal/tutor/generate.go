package tutor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/mudhay027/ritaitutor/config"
)

// Fallback answer texts. Every outcome of generation is plain text, success
// and failure both; callers cannot tell "the model declined" from "the
// network failed" except by content. Preserved as-is because stored history
// and the UI already depend on these strings.
const (
	msgNoAPIKey          = "Error: Gemini API Key not configured."
	msgNoResponse        = "No response generated."
	msgMaxRetriesExceeded = "Error: Max retries exceeded. Please try again later."
)

const (
	// Rate-limit backoff is linear: attempt n waits n*rateLimitWaitUnit
	// (10s, 20s). Not exponential.
	rateLimitWaitUnit = 10 * time.Second
	// Transport errors wait a flat 2s before the next attempt.
	transportWait = 2 * time.Second
)

// GenerationClient calls the Gemini REST backend with a bounded retry loop.
// Rate limiting (HTTP 429) is retried with linear backoff; transport errors
// are retried after a short fixed wait; any other failure status returns
// immediately. Compare RetrievalClient: retrieval failures mean "nothing
// found", generation failures mean "try harder".
type GenerationClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxRetries int
	httpClient *http.Client
	logger     *log.Logger

	// sleep is a seam for tests; it must honor ctx cancellation.
	sleep func(ctx context.Context, d time.Duration) error
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generatePart struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// NewGenerationClient creates a Gemini client from configuration.
func NewGenerationClient(cfg config.GeminiConfig, logger *log.Logger) *GenerationClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[GEN] ", log.LstdFlags)
	}
	return &GenerationClient{
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		maxRetries: maxRetries,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		sleep:      sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Generate sends the rendered prompt as a single-message request and returns
// the answer text. All outcomes are plain text; this method never returns an
// error value.
func (c *GenerationClient) Generate(ctx context.Context, prompt string) string {
	if c.apiKey == "" {
		return msgNoAPIKey
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	body, err := json.Marshal(generateRequest{
		Contents: []generateContent{{Parts: []generatePart{{Text: prompt}}}},
	})
	if err != nil {
		return fmt.Sprintf("Error calling Gemini: %v", err)
	}

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
		if err != nil {
			return fmt.Sprintf("Error calling Gemini: %v", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if attempt == c.maxRetries {
				return fmt.Sprintf("Error calling Gemini: %v", err)
			}
			c.logger.Printf("attempt %d/%d failed: %v", attempt, c.maxRetries, err)
			if serr := c.sleep(ctx, transportWait); serr != nil {
				return fmt.Sprintf("Error calling Gemini: %v", serr)
			}
			continue
		}

		respBody, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			genRateLimits.Inc()
			if attempt == c.maxRetries {
				break
			}
			wait := time.Duration(attempt) * rateLimitWaitUnit
			c.logger.Printf("rate limited, waiting %s before attempt %d/%d", wait, attempt+1, c.maxRetries)
			if serr := c.sleep(ctx, wait); serr != nil {
				return fmt.Sprintf("Error calling Gemini: %v", serr)
			}
			continue
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			// Non-rate-limit failures are not retried.
			return fmt.Sprintf("Error from Gemini: %s - %s", resp.Status, string(respBody))
		}

		if readErr != nil {
			if attempt == c.maxRetries {
				return fmt.Sprintf("Error calling Gemini: %v", readErr)
			}
			if serr := c.sleep(ctx, transportWait); serr != nil {
				return fmt.Sprintf("Error calling Gemini: %v", serr)
			}
			continue
		}

		var parsed generateResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Sprintf("Error calling Gemini: %v", err)
		}
		if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 ||
			parsed.Candidates[0].Content.Parts[0].Text == "" {
			return msgNoResponse
		}
		return parsed.Candidates[0].Content.Parts[0].Text
	}

	return msgMaxRetriesExceeded
}
