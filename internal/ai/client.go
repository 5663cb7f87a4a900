package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/EcoCommute/service-planner/internal/domain"
	"github.com/EcoCommute/service-planner/internal/domain/route"
)

// Query describes the trip to generate route options for.
type Query struct {
	Origin         string
	Destination    string
	City           string
	OriginLat      float64
	OriginLng      float64
	DestinationLat float64
	DestinationLng float64
	Currency       string
}

// Baseline is the generator's estimate for the same trip by private car.
type Baseline struct {
	TotalDurationMinutes float64 `json:"total_duration_minutes"`
	TotalCostCurrency    float64 `json:"total_cost_currency"`
	CO2EmittedKg         float64 `json:"co2_emitted_kg"`
}

// RoutePlan is the parsed generator output for one query. Candidates are raw
// model output and still need normalization before they can be served.
type RoutePlan struct {
	Baseline   Baseline
	Candidates []route.Candidate
}

// RouteGenerator produces candidate routes for a trip query.
type RouteGenerator interface {
	GenerateRoutes(ctx context.Context, q Query) (*RoutePlan, error)
}

// Client calls an OpenAI-compatible chat completions API to generate route
// options. Failures surface as domain.UnavailableError so callers can map
// them to an upstream failure rather than a client mistake.
type Client struct {
	httpClient  *http.Client
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	logger      *zap.Logger
}

// NewClient creates a route generation client. baseURL is the API root
// without the /chat/completions suffix.
func NewClient(baseURL, apiKey, model string, temperature float64, timeout time.Duration, logger *zap.Logger) *Client {
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		logger:      logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

type routePlanPayload struct {
	Baseline Baseline          `json:"car_baseline"`
	Routes   []route.Candidate `json:"routes"`
}

// GenerateRoutes asks the model for route options between the query's
// endpoints. Candidates with no ID get one assigned so every route can be
// referenced individually later.
func (c *Client) GenerateRoutes(ctx context.Context, q Query) (*RoutePlan, error) {
	reqBody, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(q)},
		},
		Temperature:    c.temperature,
		ResponseFormat: &responseFormat{Type: "json_object"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Error("route generation request failed", zap.Error(err))
		return nil, domain.NewUnavailableError("route generator is unreachable")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewUnavailableError("failed to read route generator response")
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("route generator returned non-200 status",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", truncate(body, 512)),
		)
		return nil, domain.NewUnavailableError(fmt.Sprintf("route generator returned status %d", resp.StatusCode))
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return nil, domain.NewUnavailableError("route generator returned an unreadable response")
	}
	if chatResp.Error != nil {
		c.logger.Error("route generator returned an error",
			zap.String("type", chatResp.Error.Type),
			zap.String("message", chatResp.Error.Message),
		)
		return nil, domain.NewUnavailableError("route generator rejected the request")
	}
	if len(chatResp.Choices) == 0 {
		return nil, domain.NewUnavailableError("route generator returned no choices")
	}

	content := stripFences(chatResp.Choices[0].Message.Content)

	var payload routePlanPayload
	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		c.logger.Error("route generator returned malformed JSON",
			zap.Error(err),
			zap.String("content", string(truncate([]byte(content), 512))),
		)
		return nil, domain.NewUnavailableError("route generator returned malformed JSON")
	}

	for i := range payload.Routes {
		if len(payload.Routes[i].Steps) == 0 {
			c.logger.Error("route generator returned a route with no steps",
				zap.String("title", payload.Routes[i].Title),
			)
			return nil, domain.NewUnavailableError("route generator returned a route with no steps")
		}
		if payload.Routes[i].ID == "" {
			payload.Routes[i].ID = uuid.NewString()
		}
	}

	c.logger.Info("route options generated",
		zap.Int("candidates", len(payload.Routes)),
		zap.Int("total_tokens", chatResp.Usage.TotalTokens),
		zap.Duration("latency", time.Since(start)),
	)

	return &RoutePlan{
		Baseline:   payload.Baseline,
		Candidates: payload.Routes,
	}, nil
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite being told not to.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	if i := strings.LastIndex(s, "```"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
