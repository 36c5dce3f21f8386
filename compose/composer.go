// Package compose turns canonical invoices into printable documents.
//
// Composition is pure: the same invoice always produces byte-identical markup.
// All free text is escaped by html/template, and URL attributes are filtered a
// second time on top of the normalizer's sanitization.
package compose

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/createwith/invoicepdf/models"
)

//go:embed templates/invoice.html.tmpl
var templateFS embed.FS

var invoiceTemplate = template.Must(template.ParseFS(templateFS, "templates/invoice.html.tmpl"))

// Composer renders invoices with a fixed brand.
type Composer struct {
	brand models.Brand
	page  models.PageGeometry
}

// New creates a Composer for the given brand. Documents are laid out for
// models.A4Portrait.
func New(brand models.Brand) *Composer {
	return &Composer{brand: brand, page: models.A4Portrait}
}

type itemView struct {
	Description string
	Qty         string
	UnitPrice   string
	Total       string
}

type totalRow struct {
	Key    string
	Label  string
	Amount string
	Grand  bool
}

type documentView struct {
	Title         string
	InvoiceNumber string
	IssueDate     string
	DueDate       string
	BrandColor    string
	FontFamily    template.CSS
	PageSize      template.CSS
	PageMargins   template.CSS
	LogoURL       string
	LogoAlt       string
	Company       models.Company
	From          []string
	BillTo        []string
	Items         []itemView
	TotalRows     []totalRow
	Notes         string
	ShowPayment   bool
	Payment       models.Payment
}

// Compose lays out inv as a self-contained HTML document.
func (c *Composer) Compose(inv models.Invoice) (models.Document, error) {
	view := c.view(inv)

	var buf bytes.Buffer
	if err := invoiceTemplate.Execute(&buf, view); err != nil {
		return models.Document{}, fmt.Errorf("executing invoice template: %w", err)
	}

	return models.Document{
		Title: view.Title,
		HTML:  buf.String(),
		Page:  c.page,
	}, nil
}

func (c *Composer) view(inv models.Invoice) documentView {
	money := NewMoneyFormatter(inv.Currency)

	items := make([]itemView, 0, len(inv.LineItems))
	for _, it := range inv.LineItems {
		items = append(items, itemView{
			Description: it.Description,
			Qty:         it.Qty.String(),
			UnitPrice:   money.Format(it.UnitPrice),
			Total:       money.Format(it.Total()),
		})
	}

	t := inv.Totals
	rows := []totalRow{{Key: "subtotal", Label: "Subtotal", Amount: money.Format(t.Subtotal)}}
	if !t.Tax.IsZero() {
		rows = append(rows, totalRow{Key: "tax", Label: "Tax", Amount: money.Format(t.Tax)})
	}
	if !t.Discount.IsZero() {
		rows = append(rows, totalRow{Key: "discount", Label: "Discount", Amount: money.Format(t.Discount.Neg())})
	}
	if !t.Paid.IsZero() {
		rows = append(rows, totalRow{Key: "paid", Label: "Paid", Amount: money.Format(t.Paid)})
	}
	rows = append(rows, totalRow{Key: "balance-due", Label: "Balance Due", Amount: money.Format(t.BalanceDue), Grand: true})

	brandColor := inv.Company.BrandColor
	if brandColor == "" {
		brandColor = c.brand.Color
	}
	logo := inv.Company.LogoURL
	if logo == "" {
		logo = c.brand.LogoURL
	}

	m := c.page.Margins
	return documentView{
		Title:         "Invoice " + inv.InvoiceNumber,
		InvoiceNumber: inv.InvoiceNumber,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		BrandColor:    brandColor,
		FontFamily:    template.CSS(c.brand.FontFamily),
		PageSize:      template.CSS(c.page.Size + " portrait"),
		PageMargins:   template.CSS(fmt.Sprintf("%gmm %gmm %gmm %gmm", m.Top, m.Right, m.Bottom, m.Left)),
		LogoURL:       logo,
		LogoAlt:       c.brand.LogoAlt,
		Company:       inv.Company,
		From:          nonEmpty(inv.Company.Name, inv.Company.Address, inv.Company.Email, inv.Company.Website),
		BillTo:        nonEmpty(inv.BillTo.Name, inv.BillTo.Company, inv.BillTo.Address, inv.BillTo.Email),
		Items:         items,
		TotalRows:     rows,
		Notes:         inv.Notes,
		ShowPayment:   inv.ShowBankDetails,
		Payment:       inv.Payment,
	}
}

func nonEmpty(vals ...string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
