package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/createwith/invoicepdf/middleware"
	"github.com/createwith/invoicepdf/models"
	"github.com/createwith/invoicepdf/normalize"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Normalizer resolves raw payloads into canonical invoices.
type Normalizer interface {
	Normalize(raw models.RawPayload) models.Invoice
}

// Composer lays out canonical invoices as documents.
type Composer interface {
	Compose(inv models.Invoice) (models.Document, error)
}

// Renderer turns a document into downloadable bytes.
type Renderer interface {
	Render(ctx context.Context, doc models.Document) ([]byte, error)
	ContentType() string
	Extension() string
}

type InvoiceHandler struct {
	normalizer    Normalizer
	composer      Composer
	pdf           Renderer
	markdown      Renderer
	renderTimeout time.Duration
	maxBodyBytes  int64
	log           logrus.FieldLogger
}

type InvoiceHandlerOptions struct {
	Normalizer    Normalizer
	Composer      Composer
	PDF           Renderer
	Markdown      Renderer
	RenderTimeout time.Duration
	MaxBodyBytes  int64
	Logger        logrus.FieldLogger
}

func NewInvoiceHandler(opts InvoiceHandlerOptions) *InvoiceHandler {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &InvoiceHandler{
		normalizer:    opts.Normalizer,
		composer:      opts.Composer,
		pdf:           opts.PDF,
		markdown:      opts.Markdown,
		renderTimeout: opts.RenderTimeout,
		maxBodyBytes:  opts.MaxBodyBytes,
		log:           log,
	}
}

// GeneratePDF answers with the rendered invoice as an attachment.
func (h *InvoiceHandler) GeneratePDF(c *gin.Context) {
	inv, doc, ok := h.prepare(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.renderTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.renderTimeout)
		defer cancel()
	}

	data, err := h.pdf.Render(ctx, doc)
	if err != nil {
		h.fail(c, "invoice_render_error", err)
		return
	}

	fileName := normalize.Filename(inv.InvoiceNumber)
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, fileName))
	c.Data(http.StatusOK, h.pdf.ContentType(), data)
}

// Preview answers with the composed HTML document.
func (h *InvoiceHandler) Preview(c *gin.Context) {
	_, doc, ok := h.prepare(c)
	if !ok {
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(doc.HTML))
}

// Markdown answers with a Markdown rendition of the document.
func (h *InvoiceHandler) Markdown(c *gin.Context) {
	_, doc, ok := h.prepare(c)
	if !ok {
		return
	}
	data, err := h.markdown.Render(c.Request.Context(), doc)
	if err != nil {
		h.fail(c, "invoice_markdown_error", err)
		return
	}
	c.Data(http.StatusOK, h.markdown.ContentType(), data)
}

// prepare decodes, normalizes and composes the request payload. It writes the
// error response itself and reports ok=false when the request is done.
func (h *InvoiceHandler) prepare(c *gin.Context) (models.Invoice, models.Document, bool) {
	body := c.Request.Body
	if h.maxBodyBytes > 0 {
		body = http.MaxBytesReader(c.Writer, body, h.maxBodyBytes)
	}

	raw, err := normalize.DecodePayload(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.String(http.StatusRequestEntityTooLarge, "Payload too large")
			return models.Invoice{}, models.Document{}, false
		}
		h.log.WithField("request_id", middleware.GetRequestID(c)).WithError(err).Debug("invoice_payload_rejected")
		c.String(http.StatusBadRequest, "Invalid JSON body")
		return models.Invoice{}, models.Document{}, false
	}

	inv := h.normalizer.Normalize(raw)
	doc, err := h.composer.Compose(inv)
	if err != nil {
		h.fail(c, "invoice_compose_error", err)
		return models.Invoice{}, models.Document{}, false
	}
	return inv, doc, true
}

// fail logs err and answers with a generic 500.
func (h *InvoiceHandler) fail(c *gin.Context, event string, err error) {
	h.log.WithFields(logrus.Fields{
		"request_id": middleware.GetRequestID(c),
		"timeout":    errors.Is(err, context.DeadlineExceeded),
	}).WithError(err).Error(event)
	c.String(http.StatusInternalServerError, "Failed to generate invoice")
}
