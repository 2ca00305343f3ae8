package reward

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// Both pipeline stages retry up to 3 times after the initial attempt,
	// with a fixed small backoff between attempts.
	maxRetries = 3
	retryDelay = 500 * time.Millisecond
	// Per-call timeout; the external APIs get no longer than this per
	// attempt regardless of the caller's deadline.
	callTimeout = 60 * time.Second

	chatModel  = "gpt-3.5-turbo"
	imageModel = "dall-e-2"
	imageSize  = "1024x1024"
)

// NftAttribute is one trait of a generated NFT.
type NftAttribute struct {
	TraitType  string `json:"trait_type"`
	Color      string `json:"color"`
	TraitValue string `json:"trait_value"`
}

// NftMetadata is the structured output of the metadata stage. Image is
// filled in by the pipeline once the generated bytes are stored.
type NftMetadata struct {
	DNA         string         `json:"dna"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NftAttribute `json:"attributes"`
}

// MetadataGenerator produces NFT metadata from a prompt.
type MetadataGenerator interface {
	GenerateMetadata(ctx context.Context, prompt string) (*NftMetadata, error)
}

// ImageGenerator produces image bytes from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) ([]byte, error)
}

// Client talks to OpenAI-compatible chat and image endpoints.
type Client struct {
	apiKey   string
	chatURL  string
	imageURL string
	client   *http.Client
}

// NewClient builds a client for the configured endpoints.
func NewClient(apiKey, chatURL, imageURL string) *Client {
	return &Client{
		apiKey:   apiKey,
		chatURL:  chatURL,
		imageURL: imageURL,
		client:   &http.Client{Timeout: callTimeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type imageRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	ResponseFormat string `json:"response_format"`
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
	} `json:"data"`
}

// GenerateMetadata asks the chat endpoint for NFT metadata JSON. A
// well-formed HTTP response with unparseable content counts as a failed
// attempt and is retried like a transport error.
func (c *Client) GenerateMetadata(ctx context.Context, prompt string) (*NftMetadata, error) {
	body, err := json.Marshal(chatRequest{
		Model: chatModel,
		Messages: []chatMessage{
			{Role: "system", Content: "You are an artist and an expert in creating NFTs"},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	var meta *NftMetadata
	err = c.withRetries(ctx, func(attemptCtx context.Context) error {
		respBody, err := c.post(attemptCtx, c.chatURL, body)
		if err != nil {
			return err
		}
		var parsed chatResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("decode chat response: %w", err)
		}
		if len(parsed.Choices) == 0 {
			return fmt.Errorf("chat response has no choices")
		}
		var m NftMetadata
		if err := json.Unmarshal([]byte(parsed.Choices[0].Message.Content), &m); err != nil {
			return fmt.Errorf("malformed metadata content: %w", err)
		}
		meta = &m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return meta, nil
}

// GenerateImage asks the image endpoint for one image and returns the
// decoded bytes.
func (c *Client) GenerateImage(ctx context.Context, prompt string) ([]byte, error) {
	body, err := json.Marshal(imageRequest{
		Model:          imageModel,
		Prompt:         prompt,
		N:              1,
		Size:           imageSize,
		ResponseFormat: "b64_json",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal image request: %w", err)
	}

	var img []byte
	err = c.withRetries(ctx, func(attemptCtx context.Context) error {
		respBody, err := c.post(attemptCtx, c.imageURL, body)
		if err != nil {
			return err
		}
		var parsed imageResponse
		if err := json.Unmarshal(respBody, &parsed); err != nil {
			return fmt.Errorf("decode image response: %w", err)
		}
		if len(parsed.Data) == 0 {
			return fmt.Errorf("image response has no data")
		}
		decoded, err := base64.StdEncoding.DecodeString(parsed.Data[0].B64JSON)
		if err != nil {
			return fmt.Errorf("decode image bytes: %w", err)
		}
		img = decoded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return img, nil
}

// withRetries runs fn up to 1+maxRetries times with a fixed delay between
// attempts, respecting ctx cancellation.
func (c *Client) withRetries(ctx context.Context, fn func(ctx context.Context) error) error {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		attemptCtx, cancel := context.WithTimeout(ctx, callTimeout)
		err := fn(attemptCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return fmt.Errorf("exhausted retries: %w", lastErr)
}

func (c *Client) post(ctx context.Context, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error (%d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}
