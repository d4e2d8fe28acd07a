package ocr

import (
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract implements the Engine interface using a local tesseract
// installation via gosseract.
type Tesseract struct {
	language string
}

// segModes are the page-segmentation configurations tried per image, in
// order: single uniform block, single column, fully automatic. The longest
// non-empty result wins, since receipts confuse any single mode.
var segModes = []gosseract.PageSegMode{
	gosseract.PSM_SINGLE_BLOCK,
	gosseract.PSM_SINGLE_COLUMN,
	gosseract.PSM_AUTO,
}

// NewTesseract creates a new Tesseract Engine instance
func NewTesseract(language string) (*Tesseract, error) {
	if language == "" {
		language = "eng"
	}

	// Fail fast if the tesseract data for the language is missing
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(language); err != nil {
		return nil, fmt.Errorf("setting tesseract language: %w", err)
	}

	return &Tesseract{language: language}, nil
}

// ExtractText runs OCR over the receipt. A fresh client per call keeps the
// engine safe for concurrent use; gosseract clients are not.
func (t *Tesseract) ExtractText(imageData []byte, contentType string) (string, error) {
	finalImageData, _, _, err := prepareImageData(imageData, contentType)
	if err != nil {
		return "", err
	}

	var rawText string
	for _, mode := range segModes {
		text, err := t.recognize(finalImageData, mode)
		if err != nil {
			continue
		}
		if len(strings.TrimSpace(text)) > len(strings.TrimSpace(rawText)) {
			rawText = text
		}
	}

	if rawText == "" {
		return "", fmt.Errorf("tesseract produced no text")
	}
	return rawText, nil
}

func (t *Tesseract) recognize(pngData []byte, mode gosseract.PageSegMode) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.language); err != nil {
		return "", fmt.Errorf("setting language: %w", err)
	}
	if err := client.SetPageSegMode(mode); err != nil {
		return "", fmt.Errorf("setting page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return "", fmt.Errorf("setting image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("recognizing text: %w", err)
	}
	return text, nil
}

// Close closes the Tesseract engine (clients are per-call, nothing to release)
func (t *Tesseract) Close() error {
	return nil
}
