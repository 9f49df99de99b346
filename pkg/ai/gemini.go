package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Options tunes a single generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// ClientConfig configures the Gemini REST client.
type ClientConfig struct {
	APIKey            string
	Endpoint          string
	RequestsPerMinute int
	CacheTTL          time.Duration
	CallTimeout       time.Duration
	SystemContext     string
	Logger            *zap.Logger
}

// Client wraps the Gemini generateContent endpoint with a per-minute rate
// limit and an in-memory response cache. Callers must treat failures as
// non-fatal and fall back to deterministic behaviour.
type Client struct {
	apiKey        string
	endpoint      string
	maxPerMinute  int
	cacheTTL      time.Duration
	callTimeout   time.Duration
	systemContext string
	httpClient    *http.Client
	logger        *zap.Logger

	mu           sync.Mutex
	requestCount int
	lastReset    time.Time
	cache        map[string]cachedResponse
}

type cachedResponse struct {
	text    string
	savedAt time.Time
}

// NewClient builds a Gemini client from config.
func NewClient(cfg ClientConfig) *Client {
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = 30
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = 20 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Client{
		apiKey:        cfg.APIKey,
		endpoint:      cfg.Endpoint,
		maxPerMinute:  cfg.RequestsPerMinute,
		cacheTTL:      cfg.CacheTTL,
		callTimeout:   cfg.CallTimeout,
		systemContext: cfg.SystemContext,
		httpClient:    &http.Client{Timeout: cfg.CallTimeout},
		logger:        cfg.Logger,
		lastReset:     time.Now(),
		cache:         make(map[string]cachedResponse),
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a prompt and returns the model text.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	if !c.allowRequest() {
		return "", fmt.Errorf("ai rate limit exceeded, retry in a minute")
	}

	cacheKey := c.cacheKey(prompt)
	if text, ok := c.fromCache(cacheKey); ok {
		return text, nil
	}

	if opts.Temperature <= 0 {
		opts.Temperature = 0.7
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = 1024
	}

	fullPrompt := prompt
	if c.systemContext != "" {
		fullPrompt = c.systemContext + "\n\n" + prompt
	}

	body := generateRequest{
		Contents: []content{{Parts: []part{{Text: fullPrompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     opts.Temperature,
			MaxOutputTokens: opts.MaxTokens,
			TopP:            0.9,
			TopK:            40,
		},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode ai request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"?key="+c.apiKey, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build ai request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode ai response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "ai endpoint error"
		if decoded.Error != nil && decoded.Error.Message != "" {
			msg = decoded.Error.Message
		}
		return "", fmt.Errorf("%s (status %d)", msg, resp.StatusCode)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("ai response contained no candidates")
	}

	text := decoded.Candidates[0].Content.Parts[0].Text
	c.toCache(cacheKey, text)
	c.countRequest()
	return text, nil
}

var jsonBlock = regexp.MustCompile(`\{[\s\S]*\}|\[[\s\S]*\]`)

// GenerateJSON asks for a JSON-only answer and unmarshals the first JSON
// block found in the response into out. A nil return with err == nil means
// the model answered but no JSON could be extracted.
func (c *Client) GenerateJSON(ctx context.Context, prompt string, opts Options, out interface{}) error {
	text, err := c.Generate(ctx, prompt+"\n\nAnswer with JSON only, no extra prose.", opts)
	if err != nil {
		return err
	}

	match := jsonBlock.FindString(text)
	if match == "" {
		return fmt.Errorf("no JSON found in ai response")
	}

	if err := json.Unmarshal([]byte(match), out); err != nil {
		return fmt.Errorf("parse ai JSON: %w", err)
	}
	return nil
}

// Available reports whether a call would currently pass the rate limit.
func (c *Client) Available() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetWindowLocked()
	return c.requestCount < c.maxPerMinute
}

// RemainingRequests returns how many calls are left in the current window.
func (c *Client) RemainingRequests() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetWindowLocked()
	remaining := c.maxPerMinute - c.requestCount
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (c *Client) allowRequest() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetWindowLocked()
	return c.requestCount < c.maxPerMinute
}

func (c *Client) countRequest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestCount++
}

func (c *Client) resetWindowLocked() {
	if time.Since(c.lastReset) > time.Minute {
		c.requestCount = 0
		c.lastReset = time.Now()
	}
}

func (c *Client) cacheKey(prompt string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(prompt))
	if len(encoded) > 50 {
		return encoded[:50]
	}
	return encoded
}

func (c *Client) fromCache(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.cache[key]
	if !ok {
		return "", false
	}
	if time.Since(cached.savedAt) > c.cacheTTL {
		delete(c.cache, key)
		return "", false
	}
	return cached.text, true
}

func (c *Client) toCache(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cachedResponse{text: text, savedAt: time.Now()}
}
