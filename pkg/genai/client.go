package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"micrositepilot/pkg/config"
)

// AudioPart is an inline audio payload for a model request.
type AudioPart struct {
	Data   []byte
	Format string // e.g. "wav", "mp3"
}

// Request is the uniform call contract shared by all three stages:
// an instruction, an optional text input, and optional inline audio,
// aimed at a named model.
type Request struct {
	Model       string
	Instruction string
	Input       string
	Audio       *AudioPart
}

// Invoker asks a generative model to transform the request into text.
// Failures surface as errors; an empty result is possible and is up to
// the caller to reject.
type Invoker interface {
	Invoke(ctx context.Context, req Request) (string, error)
}

// Client talks to a Gemini-style generateContent REST API.
type Client struct {
	cfg    config.ModelConfig
	client *http.Client
}

func NewClient(cfg config.ModelConfig) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

type generatePart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateContent struct {
	Role  string         `json:"role,omitempty"`
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	SystemInstruction *generateContent  `json:"system_instruction,omitempty"`
	Contents          []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) Invoke(ctx context.Context, req Request) (string, error) {
	if c.cfg.APIKey == "" {
		return "", fmt.Errorf("GEMINI_API_KEY not set")
	}

	var parts []generatePart
	if req.Input != "" {
		parts = append(parts, generatePart{Text: req.Input})
	}
	if req.Audio != nil {
		parts = append(parts, generatePart{InlineData: &inlineData{
			MimeType: "audio/" + req.Audio.Format,
			Data:     base64.StdEncoding.EncodeToString(req.Audio.Data),
		}})
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("model request has no input")
	}

	body := generateRequest{
		Contents: []generateContent{{Role: "user", Parts: parts}},
	}
	if req.Instruction != "" {
		body.SystemInstruction = &generateContent{
			Parts: []generatePart{{Text: req.Instruction}},
		}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to encode model request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		strings.TrimRight(c.cfg.BaseURL, "/"), req.Model, c.cfg.APIKey)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create model request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("model request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("model API error %d: %s", resp.StatusCode, string(raw))
	}

	var parsed generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to decode model response: %w", err)
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("model API error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}
	if len(parsed.Candidates) == 0 {
		return "", fmt.Errorf("model returned no candidates")
	}

	var out strings.Builder
	for _, part := range parsed.Candidates[0].Content.Parts {
		out.WriteString(part.Text)
	}
	return out.String(), nil
}
