package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

var ErrEmptyResponse = errors.New("model returned an empty response")

// StatusError is returned when the model server answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("model server returned status %d", e.StatusCode)
	}

	return fmt.Sprintf("model server returned status %d: %s", e.StatusCode, e.Body)
}

type OllamaConfig struct {
	URL           string
	Model         string
	Timeout       time.Duration
	HealthTimeout time.Duration
	Temperature   float64
	MaxTokens     int
}

// OllamaClient talks to a local Ollama server over its HTTP API.
type OllamaClient struct {
	cfg    OllamaConfig
	client *http.Client
	log    zerolog.Logger
}

func NewOllamaClient(cfg OllamaConfig, log zerolog.Logger) *OllamaClient {
	cfg.URL = strings.TrimRight(cfg.URL, "/")

	return &OllamaClient{
		cfg:    cfg,
		client: &http.Client{},
		log:    log,
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

func (c *OllamaClient) Model() string {
	return c.cfg.Model
}

func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.cfg.Model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.cfg.Temperature,
			NumPredict:  c.cfg.MaxTokens,
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshalling request: %w", err)
	}

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)

		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("url", c.cfg.URL).Msg("model server unreachable")
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	text := strings.TrimSpace(out.Response)
	if text == "" {
		return "", ErrEmptyResponse
	}

	c.log.Debug().Str("model", out.Model).Int("chars", len(text)).Msg("model replied")

	return text, nil
}

// Health checks that the server answers the model listing endpoint.
func (c *OllamaClient) Health(ctx context.Context) error {
	if c.cfg.HealthTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.HealthTimeout)

		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))

	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}
