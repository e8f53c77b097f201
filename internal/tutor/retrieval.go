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

// RetrievalClient talks to the external passage index service. Retrieval is
// best-effort: every failure mode degrades to an empty result so the
// orchestrator can fall back to the no-content answer. A single attempt per
// call, no retries.
type RetrievalClient struct {
	baseURL    string
	httpClient *http.Client
	cache      *RetrievalCache
	logger     *log.Logger
}

type retrieveRequest struct {
	Query     string  `json:"query"`
	TopK      int     `json:"top_k"`
	ActivePDF *string `json:"active_pdf"`
}

type retrieveResponse struct {
	Results []Passage `json:"results"`
}

// NewRetrievalClient creates a retrieval client for the configured index
// service. cache may be nil to disable caching.
func NewRetrievalClient(cfg config.RetrievalConfig, cache *RetrievalCache, logger *log.Logger) *RetrievalClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[RETR] ", log.LstdFlags)
	}
	return &RetrievalClient{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		logger:     logger,
	}
}

// Retrieve returns up to topK ranked passages for the query, optionally
// restricted to a single document. It never returns an error: transport
// failures, non-2xx statuses and malformed bodies all yield an empty slice.
func (c *RetrievalClient) Retrieve(ctx context.Context, query string, topK int, activePDF string) []Passage {
	if cached, ok := c.cache.Get(ctx, query, topK, activePDF); ok {
		return cached
	}

	reqBody := retrieveRequest{Query: query, TopK: topK}
	if activePDF != "" {
		reqBody.ActivePDF = &activePDF
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		c.logger.Printf("retrieve: marshal request: %v", err)
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/retrieve", bytes.NewReader(body))
	if err != nil {
		c.logger.Printf("retrieve: build request: %v", err)
		return nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("retrieve: %v (is the indexer running on %s?)", err, c.baseURL)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Printf("retrieve: indexer returned %s: %s", resp.Status, string(b))
		return nil
	}

	var out retrieveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		c.logger.Printf("retrieve: decode response: %v", err)
		return nil
	}
	results := out.Results
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}

	c.cache.Put(ctx, query, topK, activePDF, results)
	return results
}

// TriggerRebuild asks the index service to rebuild from the document corpus.
// Callers fire it on a detached goroutine; the error is for their logging
// only and is never surfaced to the request that triggered it. A rebuild
// invalidates any cached retrieval results.
func (c *RetrievalClient) TriggerRebuild(ctx context.Context) error {
	c.cache.Flush(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rebuild", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("rebuild returned %s: %s", resp.Status, string(b))
	}
	return nil
}

// Status reports the index service's current state. On any failure it
// reports a non-existent index rather than an error.
func (c *RetrievalClient) Status(ctx context.Context) IndexStatus {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/status", nil)
	if err != nil {
		return IndexStatus{}
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("status: %v", err)
		return IndexStatus{}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return IndexStatus{}
	}
	var st IndexStatus
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		c.logger.Printf("status: decode response: %v", err)
		return IndexStatus{}
	}
	return st
}
