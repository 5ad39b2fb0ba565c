package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/sfc-gh-echristensen/cortex-data-analysis-with-postgres/models"
)

// ClaudeAIService wraps the hosted chat assistant used to narrate the
// pending-transaction review. The ledger never acts on model output
// directly; cancellations still go through LedgerService.Cancel.
type ClaudeAIService struct {
	apiKey     string
	model      string
	maxTokens  int
	httpClient *http.Client
}

type ClaudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	System    string          `json:"system,omitempty"`
	Messages  []ClaudeMessage `json:"messages"`
}

type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Model      string `json:"model"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

func NewClaudeAIService() *ClaudeAIService {
	model := os.Getenv("CLAUDE_MODEL")
	if model == "" {
		model = "claude-3-5-sonnet-latest"
	}

	return &ClaudeAIService{
		apiKey:     os.Getenv("ANTHROPIC_API_KEY"),
		model:      model,
		maxTokens:  1000,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Configured reports whether an API key is present; without one the
// analyzer skips the narrative and returns rule results only.
func (s *ClaudeAIService) Configured() bool {
	return s.apiKey != ""
}

// NarratePendingReview asks the assistant for a short plain-language summary
// of the rule-based findings over the pending transactions.
func (s *ClaudeAIService) NarratePendingReview(ctx context.Context, analysis *models.PendingAnalysis) (string, error) {
	if s.apiKey == "" {
		return "", fmt.Errorf("ANTHROPIC_API_KEY not set")
	}

	systemPrompt := `You are a financial review assistant. You receive the
results of an automated review of pending card transactions: counts, any
high-amount transactions and any transactions at unusual merchants.
Summarize the findings in at most four sentences for a dashboard user.
Recommend reviewing flagged transactions; never claim a transaction was
cancelled or approved.`

	var b strings.Builder
	fmt.Fprintf(&b, "Pending transactions reviewed: %d\n", analysis.PendingCount)
	fmt.Fprintf(&b, "High amount (flagged): %d\n", len(analysis.HighAmount))
	for _, txn := range analysis.HighAmount {
		fmt.Fprintf(&b, "- ID %d: %s $%s\n", txn.TransactionID, txn.Merchant, txn.Amount.StringFixed(2))
	}
	fmt.Fprintf(&b, "Unusual merchants (flagged): %d\n", len(analysis.UnusualMerchants))
	for _, txn := range analysis.UnusualMerchants {
		fmt.Fprintf(&b, "- ID %d: %s $%s\n", txn.TransactionID, txn.Merchant, txn.Amount.StringFixed(2))
	}

	requestBody := ClaudeRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    systemPrompt,
		Messages: []ClaudeMessage{
			{Role: "user", Content: b.String()},
		},
	}

	return s.executeRequest(ctx, requestBody)
}

func (s *ClaudeAIService) executeRequest(ctx context.Context, requestBody ClaudeRequest) (string, error) {
	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		"POST",
		"https://api.anthropic.com/v1/messages",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
	}

	var claudeResp ClaudeResponse
	if err := json.Unmarshal(body, &claudeResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(claudeResp.Content) == 0 {
		return "", fmt.Errorf("empty response from Claude")
	}

	return claudeResp.Content[0].Text, nil
}
