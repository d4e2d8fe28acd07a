package parsing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ZeroShotClassifier implements Classifier against a hosted zero-shot text
// classification endpoint (HuggingFace inference style: text plus candidate
// labels in, ranked labels out). Any failure of the remote call, and any
// top label outside the known vocabulary, falls through to the rule-based
// classifier so Classify never fails.
type ZeroShotClassifier struct {
	endpoint string
	client   *http.Client
	fallback *RuleClassifier
}

// NewZeroShotClassifier creates a ZeroShotClassifier and probes the
// endpoint once. A probe failure is returned so the caller can fall back
// to rule-based classification for the lifetime of the process.
func NewZeroShotClassifier(endpoint string) (*ZeroShotClassifier, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("zero-shot endpoint is required")
	}

	c := &ZeroShotClassifier{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		fallback: NewRuleClassifier(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.classify(ctx, "warmup"); err != nil {
		return nil, fmt.Errorf("probing zero-shot endpoint: %w", err)
	}

	return c, nil
}

type zeroShotRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters zeroShotParameters `json:"parameters"`
}

type zeroShotParameters struct {
	CandidateLabels []string `json:"candidate_labels"`
}

type zeroShotResponse struct {
	Labels []string  `json:"labels"`
	Scores []float64 `json:"scores"`
}

// Classify asks the remote model for the top-ranked label and normalizes
// it into the category vocabulary. Errors and unrecognized labels are
// logged and handed to the rule fallback.
func (c *ZeroShotClassifier) Classify(ctx context.Context, itemName string) Category {
	label, err := c.classify(ctx, itemName)
	if err != nil {
		slog.Warn("Zero-shot classification unavailable, using rules", "item", itemName, "error", err)
		return c.fallback.Classify(ctx, itemName)
	}

	category, ok := NormalizeLabel(label)
	if !ok {
		slog.Warn("Zero-shot classifier returned unknown label, using rules", "item", itemName, "label", label)
		return c.fallback.Classify(ctx, itemName)
	}
	return category
}

func (c *ZeroShotClassifier) classify(ctx context.Context, text string) (string, error) {
	reqBody := zeroShotRequest{
		Inputs: text,
		Parameters: zeroShotParameters{
			CandidateLabels: candidateLabels,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling classification API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("classification API error (status %d): %s", resp.StatusCode, string(body))
	}

	var result zeroShotResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if len(result.Labels) == 0 {
		return "", fmt.Errorf("no labels in classification response")
	}

	return result.Labels[0], nil
}
