package ocr

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// geminiTranscribePrompt asks the model for a verbatim transcription rather
// than any interpretation; the parsing pipeline does the rest.
const geminiTranscribePrompt = `You are transcribing a receipt or invoice image. Read every line of text visible in the image and write it out exactly as printed, one receipt line per output line, top to bottom.

Important:
- Keep item names and their prices on the same line, in the original order
- Keep currency symbols and decimal separators exactly as printed
- Do not summarize, interpret, categorize, or total anything
- Do not add any commentary before or after the transcription
- If a line is unreadable, skip it`

// Gemini implements the Engine interface using Google Gemini vision as a
// remote OCR service.
type Gemini struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGemini creates a new Gemini Engine instance
func NewGemini(apiKey string, modelName string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.5-pro"
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)

	return &Gemini{
		client: client,
		model:  model,
	}, nil
}

// ExtractText transcribes the receipt image
func (g *Gemini) ExtractText(imageData []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	finalImageData, _, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	// After prepareImageData everything is PNG, so the format suffix is
	// always "png"
	parts := []genai.Part{
		genai.ImageData("png", finalImageData),
		genai.Text(geminiTranscribePrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	// Strip markdown fences some models wrap transcriptions in
	text := strings.TrimSpace(responseText.String())
	text = strings.TrimPrefix(text, "```text")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	return strings.TrimSpace(text), nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
