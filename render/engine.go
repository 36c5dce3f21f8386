// Package render converts composed documents into downloadable bytes.
// Each engine is an external collaborator of the invoice pipeline; the
// pipeline only depends on the Engine interface.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/createwith/invoicepdf/models"
)

// ErrUnknownEngine is returned by New for an unsupported engine name.
var ErrUnknownEngine = errors.New("unknown render engine")

// Engine names accepted by New.
const (
	EngineChrome   = "chrome"
	EngineDraft    = "draft"
	EngineMarkdown = "markdown"
)

// Engine turns a document into output bytes.
type Engine interface {
	Render(ctx context.Context, doc models.Document) ([]byte, error)
	// ContentType is the MIME type of the rendered output.
	ContentType() string
	// Extension returns the file extension for this engine (e.g. ".pdf").
	Extension() string
	// Close releases long-lived resources held by the engine.
	Close() error
}

// Options configure engine construction.
type Options struct {
	BrowserURL  string
	BrowserBin  string
	NoSandbox   bool
	Concurrency int
}

// New creates the engine registered under name.
func New(name string, opts Options) (Engine, error) {
	switch name {
	case EngineChrome:
		return NewChromeEngine(opts)
	case EngineDraft:
		return NewDraftEngine(), nil
	case EngineMarkdown:
		return NewMarkdownEngine(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEngine, name)
	}
}
