package render

import (
	"context"
	"fmt"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/createwith/invoicepdf/models"
)

// MarkdownEngine converts the document markup into a Markdown preview.
type MarkdownEngine struct{}

// NewMarkdownEngine creates a MarkdownEngine.
func NewMarkdownEngine() *MarkdownEngine {
	return &MarkdownEngine{}
}

// Render returns the Markdown rendition of doc.
func (e *MarkdownEngine) Render(ctx context.Context, doc models.Document) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	markdown, err := htmltomarkdown.ConvertString(doc.HTML)
	if err != nil {
		return nil, fmt.Errorf("converting document to markdown: %w", err)
	}
	return []byte(markdown), nil
}

// ContentType returns the Markdown MIME type.
func (e *MarkdownEngine) ContentType() string {
	return "text/markdown; charset=utf-8"
}

// Extension returns the file extension for Markdown output.
func (e *MarkdownEngine) Extension() string {
	return ".md"
}

// Close is a no-op.
func (e *MarkdownEngine) Close() error {
	return nil
}
