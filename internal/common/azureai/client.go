// internal/common/azureai/client.go
package azureai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"askai-service/internal/common/config"
	"askai-service/internal/common/logger"
	"askai-service/internal/common/metrics"
	"askai-service/internal/models"
)

// Fixed sampling and retrieval settings for the "on your data" completion
// call. The upstream contract expects these on every request.
const (
	completionTemperature = 0.2
	completionTopP        = 1.0
	searchQueryType       = "semantic"
	searchStrictness      = 3
	searchTopNDocuments   = 5
)

// APIError is returned when the completion service answers with a non-200
// status. Status and body are kept so callers can surface them to the client.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion request failed (status %d): %s", e.StatusCode, e.Body)
}

// ErrMalformedResponse is returned when a 200 response does not carry the
// expected choices/message shape.
var ErrMalformedResponse = errors.New("malformed completion response")

// Completion is the parsed upstream answer.
type Completion struct {
	Content    string
	Citations  []models.Citation
	Confidence float64
}

type chatCompletionRequest struct {
	Messages    []models.ChatMessage `json:"messages"`
	Temperature float64              `json:"temperature"`
	TopP        float64              `json:"top_p"`
	DataSources []dataSource         `json:"data_sources"`
}

type dataSource struct {
	Type       string           `json:"type"`
	Parameters searchParameters `json:"parameters"`
}

type searchParameters struct {
	Endpoint              string               `json:"endpoint"`
	IndexName             string               `json:"index_name"`
	SemanticConfiguration string               `json:"semantic_configuration"`
	QueryType             string               `json:"query_type"`
	FieldsMapping         map[string]string    `json:"fields_mapping"`
	InScope               bool                 `json:"in_scope"`
	Filter                *string              `json:"filter"`
	Strictness            int                  `json:"strictness"`
	TopNDocuments         int                  `json:"top_n_documents"`
	Authentication        searchAuthentication `json:"authentication"`
}

type searchAuthentication struct {
	Type string `json:"type"`
	Key  string `json:"key"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content    *string  `json:"content"`
			Confidence *float64 `json:"confidence"`
			Context    struct {
				Citations []models.Citation `json:"citations"`
			} `json:"context"`
		} `json:"message"`
	} `json:"choices"`
}

type Client struct {
	endpoint   string
	apiKey     string
	search     config.SearchConfig
	httpClient *http.Client
	logger     logger.Logger
}

func NewClient(completion config.CompletionConfig, search config.SearchConfig, log logger.Logger) *Client {
	return &Client{
		endpoint: completion.Endpoint,
		apiKey:   completion.APIKey,
		search:   search,
		httpClient: &http.Client{
			Timeout: completion.Timeout,
		},
		logger: log.WithFields(map[string]interface{}{"component": "azureai"}),
	}
}

// Complete sends the assembled conversation to the hosted completion endpoint
// with the retrieval index attached as a data source.
func (c *Client) Complete(ctx context.Context, messages []models.ChatMessage) (*Completion, error) {
	payload := chatCompletionRequest{
		Messages:    messages,
		Temperature: completionTemperature,
		TopP:        completionTopP,
		DataSources: []dataSource{
			{
				Type: "azure_search",
				Parameters: searchParameters{
					Endpoint:              c.search.Endpoint,
					IndexName:             c.search.IndexName,
					SemanticConfiguration: c.search.SemanticConfiguration,
					QueryType:             searchQueryType,
					FieldsMapping:         map[string]string{},
					InScope:               true,
					Filter:                nil,
					Strictness:            searchStrictness,
					TopNDocuments:         searchTopNDocuments,
					Authentication: searchAuthentication{
						Type: "api_key",
						Key:  c.search.Key,
					},
				},
			},
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.CompletionRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()
	metrics.CompletionDuration.Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.CompletionRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	metrics.CompletionRequests.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("completion request failed", map[string]interface{}{
			"status": resp.StatusCode,
			"body":   string(body),
		})
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		return nil, fmt.Errorf("%w: no message content", ErrMalformedResponse)
	}

	msg := parsed.Choices[0].Message
	completion := &Completion{
		Content:    *msg.Content,
		Citations:  msg.Context.Citations,
		Confidence: 1.0,
	}
	if msg.Confidence != nil {
		completion.Confidence = *msg.Confidence
	}

	return completion, nil
}
