// Package normalize resolves loosely-shaped invoice payloads into canonical
// models.Invoice records. Normalization never fails: missing or invalid fields
// degrade to defaults so a usable draft can always be produced.
package normalize

import (
	"strings"

	"github.com/createwith/invoicepdf/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const (
	defaultInvoiceNumber = "DRAFT"
	defaultCurrency      = "GBP"
)

// Normalizer applies an organization's defaults to incoming payloads.
type Normalizer struct {
	org models.Organization
}

// New creates a Normalizer bound to the given organization defaults.
func New(org models.Organization) *Normalizer {
	return &Normalizer{org: org}
}

// Normalize builds the canonical invoice for raw.
func (n *Normalizer) Normalize(raw models.RawPayload) models.Invoice {
	p := map[string]any(raw)
	if p == nil {
		p = map[string]any{}
	}

	items := lineItems(p)
	totals := resolveTotals(p, items)

	return models.Invoice{
		InvoiceNumber:   override(p, invoiceNumberKeys, defaultInvoiceNumber),
		IssueDate:       text(p, issueDateKeys),
		DueDate:         text(p, dueDateKeys),
		Currency:        currencyCode(text(p, currencyKeys)),
		Company:         n.company(object(p, companyKeys)),
		BillTo:          billTo(object(p, billToKeys)),
		LineItems:       items,
		Totals:          totals,
		Notes:           text(p, notesKeys),
		Payment:         n.payment(object(p, paymentKeys)),
		ShowBankDetails: flag(p, showBankDetailsKeys, true),
	}
}

func lineItems(p map[string]any) []models.LineItem {
	v, _ := lookup(p, itemsKeys)
	list, ok := v.([]any)
	if !ok {
		return []models.LineItem{}
	}

	items := make([]models.LineItem, 0, len(list))
	for _, entry := range list {
		obj, _ := entry.(map[string]any)
		items = append(items, models.LineItem{
			Description: text(obj, descriptionKeys),
			Qty:         numberOrZero(obj, qtyKeys),
			UnitPrice:   numberOrZero(obj, unitPriceKeys),
		})
	}
	return items
}

// resolveTotals derives the subtotal from items and reads the remaining figures from
// the totals object first, then the payload top level.
func resolveTotals(p map[string]any, items []models.LineItem) models.Totals {
	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.Total())
	}

	t := object(p, totalsKeys)
	amount := func(keys []string) (decimal.Decimal, bool) {
		if d, ok := number(t, keys); ok {
			return d, true
		}
		return number(p, keys)
	}

	tax, _ := amount(taxKeys)
	discount, _ := amount(discountKeys)
	paid, _ := amount(paidKeys)

	balance, ok := amount(balanceDueKeys)
	if !ok {
		balance = subtotal.Add(tax).Sub(discount).Sub(paid)
	}

	return models.Totals{
		Subtotal:   subtotal,
		Tax:        tax,
		Discount:   discount,
		Paid:       paid,
		BalanceDue: balance,
	}
}

func (n *Normalizer) company(c map[string]any) models.Company {
	def := n.org.Company
	out := models.Company{
		Name:          override(c, nameKeys, def.Name),
		CompanyNumber: override(c, companyNumberKeys, def.CompanyNumber),
		VATNumber:     override(c, vatNumberKeys, def.VATNumber),
		Address:       override(c, addressKeys, def.Address),
		Domain:        override(c, domainKeys, def.Domain),
		Email:         override(c, emailKeys, def.Email),
		Website:       SanitizeURL(text(c, websiteKeys)),
		LogoURL:       SanitizeURL(text(c, logoURLKeys)),
		BrandColor:    sanitizeColor(text(c, brandColorKeys)),
	}
	if out.Website == "" {
		out.Website = def.Website
	}
	if out.LogoURL == "" {
		out.LogoURL = firstNonEmpty(def.LogoURL, n.org.Brand.LogoURL)
	}
	if out.BrandColor == "" {
		out.BrandColor = firstNonEmpty(def.BrandColor, n.org.Brand.Color)
	}
	return out
}

func billTo(b map[string]any) models.BillTo {
	return models.BillTo{
		Name:    text(b, nameKeys),
		Company: text(b, companyNameKeys),
		Address: text(b, addressKeys),
		Email:   text(b, emailKeys),
	}
}

func (n *Normalizer) payment(pay map[string]any) models.Payment {
	def := n.org.Bank
	out := models.Payment{
		Bank:          override(pay, bankKeys, def.Bank),
		AccountName:   override(pay, accountNameKeys, def.AccountName),
		SortCode:      override(pay, sortCodeKeys, def.SortCode),
		AccountNumber: override(pay, accountNumberKeys, def.AccountNumber),
		IBAN:          override(pay, ibanKeys, def.IBAN),
		SWIFT:         override(pay, swiftKeys, def.SWIFT),
		QRImage:       SanitizeURL(text(pay, qrImageKeys)),
	}
	if out.QRImage == "" {
		out.QRImage = SanitizeURL(def.QRImage)
	}
	return out
}

// currencyCode upper-cases and validates an ISO 4217 code.
func currencyCode(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 3 {
		return defaultCurrency
	}
	if _, err := currency.ParseISO(s); err != nil {
		return defaultCurrency
	}
	return s
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
