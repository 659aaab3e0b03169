// Package textex turns uploaded CV files into plain text. Extraction failure
// is fatal for the CV: nothing downstream can run without text.
package textex

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Extractor converts a document file into plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// ForFile picks an extractor by file extension.
func ForFile(path string) (Extractor, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return &PDFExtractor{}, nil
	case ".html", ".htm":
		return &HTMLExtractor{}, nil
	case ".txt", ".text", ".md", "":
		return &PlainExtractor{}, nil
	default:
		return nil, fmt.Errorf("unsupported file type: %s", filepath.Ext(path))
	}
}

// ExtractFile is the convenience entry point: dispatch and extract.
func ExtractFile(path string) (string, error) {
	ex, err := ForFile(path)
	if err != nil {
		return "", err
	}
	text, err := ex.Extract(path)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", filepath.Base(path), err)
	}
	return text, nil
}

// PlainExtractor reads the file as-is.
type PlainExtractor struct{}

// Extract returns the file contents.
func (e *PlainExtractor) Extract(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return string(data), nil
}
