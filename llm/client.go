package llm

import (
	"github.com/barcastaff/cTAKES-mCODE/logger"
	"github.com/barcastaff/cTAKES-mCODE/types"
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"
)

var clientLogger = logger.NewLogger("Ollama")

// numPredict leaves room for models that emit a reasoning block before the
// short answer the prompts ask for.
const numPredict = 500

// Client talks to an Ollama server over its generate endpoint.
type Client struct {
	baseURL     string
	model       string
	temperature float64
	httpClient  *http.Client
}

func NewClient(config types.OllamaConfig) *Client {
	return &Client{
		baseURL:     config.BaseURL,
		model:       config.Model,
		temperature: config.Temperature,
		httpClient: &http.Client{
			Timeout: time.Duration(config.Timeout) * time.Second,
		},
	}
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	NumPredict  int     `json:"num_predict"`
}

type generateResponse struct {
	Response string `json:"response"`
	Thinking string `json:"thinking"`
}

// Complete sends a prompt and returns the raw completion text. Reasoning
// models sometimes leave the response field empty and put everything into
// the thinking field, which is then returned instead.
func (c *Client) Complete(prompt string) (string, error) {
	mcodeLogger := clientLogger.With().Str("model", c.model).Logger()

	payload, err := json.Marshal(generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			NumPredict:  numPredict,
		},
	})
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Post(c.baseURL+"/api/generate", "application/json", bytes.NewReader(payload))
	if err != nil {
		mcodeLogger.Err(err).Msg("Completion request failed")
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		mcodeLogger.Err(err).Msg("Could not read completion response")
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("completion service returned %s", resp.Status)
		mcodeLogger.Err(err).Msg("Completion request failed")
		return "", err
	}

	var result generateResponse
	if err := json.Unmarshal(body, &result); err != nil {
		mcodeLogger.Err(err).Msg("Could not decode completion response")
		return "", err
	}

	if result.Response == "" && result.Thinking != "" {
		return result.Thinking, nil
	}
	return result.Response, nil
}
