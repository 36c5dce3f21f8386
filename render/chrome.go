package render

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/createwith/invoicepdf/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"golang.org/x/sync/semaphore"
)

const (
	mmPerInch      = 25.4
	releaseTimeout = 5 * time.Second
)

// ChromeEngine prints documents to PDF with a headless Chrome browser.
// Every render runs in its own incognito context, and at most Concurrency
// renders run at once.
type ChromeEngine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	slots    *semaphore.Weighted

	closeOnce sync.Once
	closeErr  error
}

// NewChromeEngine connects to opts.BrowserURL when set, otherwise launches a
// local browser (opts.BrowserBin, or one managed by rod).
func NewChromeEngine(opts Options) (*ChromeEngine, error) {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	var (
		l          *launcher.Launcher
		controlURL string
		err        error
	)
	if opts.BrowserURL != "" {
		controlURL, err = launcher.ResolveURL(opts.BrowserURL)
		if err != nil {
			return nil, fmt.Errorf("resolving browser url: %w", err)
		}
	} else {
		l = launcher.New().Headless(true).NoSandbox(opts.NoSandbox)
		if opts.BrowserBin != "" {
			l = l.Bin(opts.BrowserBin)
		}
		controlURL, err = l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launching browser: %w", err)
		}
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}

	return &ChromeEngine{
		browser:  browser,
		launcher: l,
		slots:    semaphore.NewWeighted(int64(concurrency)),
	}, nil
}

// Render prints doc to PDF. The page and its browser context are released on
// every return path, including cancellation of ctx.
func (e *ChromeEngine) Render(ctx context.Context, doc models.Document) ([]byte, error) {
	if err := e.slots.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for render slot: %w", err)
	}
	defer e.slots.Release(1)

	session, err := e.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("opening browser context: %w", err)
	}
	// Disposing the context closes its pages. It runs on a context detached
	// from ctx so a timed-out render still releases the browser session.
	defer func() {
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
		defer cancel()
		_ = session.Context(cctx).Close()
	}()

	page, err := session.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("opening page: %w", err)
	}

	if err := page.SetDocumentContent(doc.HTML); err != nil {
		return nil, fmt.Errorf("loading document: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("waiting for document load: %w", err)
	}

	stream, err := page.PDF(printOptions(doc.Page))
	if err != nil {
		return nil, fmt.Errorf("printing pdf: %w", err)
	}
	data, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("reading pdf stream: %w", err)
	}
	return data, nil
}

// printOptions converts page geometry to Chrome's print parameters (inches).
func printOptions(g models.PageGeometry) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PrintBackground:   g.PrintBackground,
		PreferCSSPageSize: true,
		PaperWidth:        inches(g.WidthMM),
		PaperHeight:       inches(g.HeightMM),
		MarginTop:         inches(g.Margins.Top),
		MarginRight:       inches(g.Margins.Right),
		MarginBottom:      inches(g.Margins.Bottom),
		MarginLeft:        inches(g.Margins.Left),
	}
}

func inches(mm float64) *float64 {
	v := mm / mmPerInch
	return &v
}

// ContentType returns the PDF MIME type.
func (e *ChromeEngine) ContentType() string {
	return "application/pdf"
}

// Extension returns the file extension for PDF output.
func (e *ChromeEngine) Extension() string {
	return ".pdf"
}

// Close disconnects from the browser and stops it if it was launched here.
func (e *ChromeEngine) Close() error {
	e.closeOnce.Do(func() {
		e.closeErr = e.browser.Close()
		if e.launcher != nil {
			e.launcher.Kill()
			e.launcher.Cleanup()
		}
	})
	return e.closeErr
}
