package ocr

// Engine defines the interface for turning a receipt image into raw text.
// The text is handed to the parsing pipeline verbatim, noise and all.
type Engine interface {
	// ExtractText reads all visible text from a receipt image or PDF
	ExtractText(imageData []byte, contentType string) (string, error)
	// Close closes the engine and releases resources
	Close() error
}
