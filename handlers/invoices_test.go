package handlers

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/createwith/invoicepdf/compose"
	"github.com/createwith/invoicepdf/models"
	"github.com/createwith/invoicepdf/normalize"
	"github.com/createwith/invoicepdf/render"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type MockRenderer struct {
	RenderFunc  func(ctx context.Context, doc models.Document) ([]byte, error)
	contentType string
	extension   string
}

func (m *MockRenderer) Render(ctx context.Context, doc models.Document) ([]byte, error) {
	return m.RenderFunc(ctx, doc)
}

func (m *MockRenderer) ContentType() string {
	return m.contentType
}

func (m *MockRenderer) Extension() string {
	return m.extension
}

type MockComposer struct {
	ComposeFunc func(inv models.Invoice) (models.Document, error)
}

func (m *MockComposer) Compose(inv models.Invoice) (models.Document, error) {
	return m.ComposeFunc(inv)
}

func pdfRenderer(fn func(ctx context.Context, doc models.Document) ([]byte, error)) *MockRenderer {
	return &MockRenderer{RenderFunc: fn, contentType: "application/pdf", extension: ".pdf"}
}

func setupRouter(t *testing.T, pdf Renderer, composer Composer, maxBody int64) (*gin.Engine, *test.Hook) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	org := models.DefaultOrganization()
	if composer == nil {
		composer = compose.New(org.Brand)
	}
	handler := NewInvoiceHandler(InvoiceHandlerOptions{
		Normalizer:   normalize.New(org),
		Composer:     composer,
		PDF:          pdf,
		Markdown:     render.NewMarkdownEngine(),
		MaxBodyBytes: maxBody,
		Logger:       log,
	})
	return NewRouter(handler, log), hook
}

func TestGeneratePDF(t *testing.T) {
	var rendered models.Document
	router, _ := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		rendered = doc
		return []byte("%PDF-1.7 fake"), nil
	}), nil, 0)

	for _, path := range []string{"/", "/api/v1/invoices/pdf"} {
		t.Run(path, func(t *testing.T) {
			body := `{"items":[{"description":"Design","qty":2,"unitPrice":150}],"currency":"GBP"}`
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("POST", path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
			assert.Equal(t, `attachment; filename="invoice-DRAFT.pdf"`, w.Header().Get("Content-Disposition"))
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			assert.Equal(t, "%PDF-1.7 fake", w.Body.String())
			assert.Contains(t, rendered.HTML, "£300.00")
			assert.Equal(t, models.A4Portrait, rendered.Page)
		})
	}
}

func TestGeneratePDFFilename(t *testing.T) {
	router, _ := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		return []byte("%PDF"), nil
	}), nil, 0)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/", strings.NewReader(`{"invoiceNumber":"INV 7/\"x\""}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `attachment; filename="invoice-INV_7__x_.pdf"`, w.Header().Get("Content-Disposition"))
}

func TestGeneratePDFErrors(t *testing.T) {
	renderCalled := false
	okRenderer := pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		renderCalled = true
		return []byte("%PDF"), nil
	})

	tests := []struct {
		name           string
		method         string
		body           string
		renderer       *MockRenderer
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "Malformed JSON",
			method:         "POST",
			body:           `{"items":[`,
			renderer:       okRenderer,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid JSON body",
		},
		{
			name:           "Empty body",
			method:         "POST",
			body:           ``,
			renderer:       okRenderer,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid JSON body",
		},
		{
			name:           "Wrong method",
			method:         "GET",
			renderer:       okRenderer,
			expectedStatus: http.StatusMethodNotAllowed,
			expectedBody:   "Method not allowed",
		},
		{
			name:   "Renderer failure",
			method: "POST",
			body:   `{}`,
			renderer: pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
				return nil, errors.New("chrome crashed: secret detail")
			}),
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   "Failed to generate invoice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			renderCalled = false
			router, _ := setupRouter(t, tt.renderer, nil, 0)

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(tt.method, "/", strings.NewReader(tt.body))
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedBody, w.Body.String())
			assert.False(t, renderCalled)
		})
	}
}

func TestRenderFailureIsLogged(t *testing.T) {
	router, hook := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		return nil, context.DeadlineExceeded
	}), nil, 0)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/", strings.NewReader(`{}`))
	req.Header.Set("X-Request-ID", "req-1")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "deadline")

	var found *logrus.Entry
	for _, e := range hook.AllEntries() {
		if e.Message == "invoice_render_error" {
			found = e
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, logrus.ErrorLevel, found.Level)
	assert.Equal(t, "req-1", found.Data["request_id"])
	assert.Equal(t, true, found.Data["timeout"])
}

func TestComposeFailure(t *testing.T) {
	renderer := pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		t.Fatal("renderer must not be called")
		return nil, nil
	})
	composer := &MockComposer{ComposeFunc: func(inv models.Invoice) (models.Document, error) {
		return models.Document{}, errors.New("template broke")
	}}
	router, _ := setupRouter(t, renderer, composer, 0)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/", strings.NewReader(`{}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate invoice", w.Body.String())
}

func TestPayloadTooLarge(t *testing.T) {
	router, _ := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		return []byte("%PDF"), nil
	}), nil, 64)

	body := `{"notes":"` + strings.Repeat("x", 256) + `"}`
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/", strings.NewReader(body))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "Payload too large", w.Body.String())
}

func TestPreflight(t *testing.T) {
	router, _ := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		return []byte("%PDF"), nil
	}), nil, 0)

	for _, path := range []string{"/", "/api/v1/invoices/pdf"} {
		t.Run(path, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("OPTIONS", path, nil)
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNoContent, w.Code)
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "POST, OPTIONS", w.Header().Get("Access-Control-Allow-Methods"))
			assert.Equal(t, "Content-Type", w.Header().Get("Access-Control-Allow-Headers"))
			assert.Empty(t, w.Body.String())
		})
	}
}

func TestPreview(t *testing.T) {
	router, _ := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		return nil, errors.New("not used")
	}), nil, 0)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/invoices/preview", bytes.NewBufferString(`{"invoiceNumber":"INV-3","notes":"<script>x</script>"}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "Invoice INV-3")
	assert.NotContains(t, w.Body.String(), "<script>x</script>")
}

func TestMarkdown(t *testing.T) {
	router, _ := setupRouter(t, pdfRenderer(func(ctx context.Context, doc models.Document) ([]byte, error) {
		return nil, errors.New("not used")
	}), nil, 0)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/invoices/markdown", strings.NewReader(`{"invoiceNumber":"INV-4","items":[{"description":"Hosting","qty":1,"unitPrice":20}]}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/markdown; charset=utf-8", w.Header().Get("Content-Type"))
	out, _ := io.ReadAll(w.Body)
	assert.Contains(t, string(out), "INV-4")
	assert.Contains(t, string(out), "Hosting")
}
